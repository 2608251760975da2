package planner

import (
	"fmt"
)

// ValidationError reports a missing or ill-typed parameter, an unknown
// provider type, or a malformed reference. It is fatal; nothing is retried.
type ValidationError struct {
	Unit    string
	Subject string
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("unit %q: %s", e.Unit, e.Detail)
	}
	return fmt.Sprintf("unit %q: %s: %s", e.Unit, e.Subject, e.Detail)
}

func validationErrorf(unit, subject, format string, args ...any) *ValidationError {
	return &ValidationError{
		Unit:    unit,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	}
}

// ReferenceToExcludedNodeError reports that an included declaration
// dereferences a declaration whose condition evaluated to false. The
// evaluator fails fast rather than substituting a null.
type ReferenceToExcludedNodeError struct {
	Unit     string
	Referrer string
	Target   string
}

func (e *ReferenceToExcludedNodeError) Error() string {
	return fmt.Sprintf("unit %q: %s references %s, which is excluded by its condition", e.Unit, e.Referrer, e.Target)
}

// CycleError reports that the reference graph is not a DAG, either through
// property references within a unit or through module source inclusion.
type CycleError struct {
	Unit   string
	Detail string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("unit %q: dependency cycle: %s", e.Unit, e.Detail)
}
