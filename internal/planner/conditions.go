package planner

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/opsforge/secplan/internal/config"
	"github.com/opsforge/secplan/internal/ctxlog"
	"github.com/opsforge/secplan/internal/exprs"
)

// inclusion records which declarations survived condition evaluation.
// Included declarations keep their file order; excluded is keyed by local
// address ("resource.<name>" / "module.<name>").
type inclusion struct {
	resources []*config.ResourceDecl
	modules   []*config.ModuleRef
	excluded  map[string]bool
}

// evaluateConditions evaluates each declaration's inclusion predicate
// against the bound parameters. Predicates are pure functions of parameters
// only: referencing any other symbol, or depending on a deferred parameter
// value, is a ValidationError.
func evaluateConditions(ctx context.Context, unit *config.Unit, bound *BoundParameters) (*inclusion, error) {
	logger := ctxlog.FromContext(ctx)
	evalCtx := newScope(bound).paramsContext()

	inc := &inclusion{excluded: make(map[string]bool)}

	for _, r := range unit.Resources {
		included, err := evaluateCondition(unit, "resource."+r.Name, r.Condition, evalCtx)
		if err != nil {
			return nil, err
		}
		if included {
			inc.resources = append(inc.resources, r)
		} else {
			logger.Debug("Condition excluded declaration.", "unit", unit.Name, "address", "resource."+r.Name)
			inc.excluded["resource."+r.Name] = true
		}
	}

	for _, m := range unit.Modules {
		included, err := evaluateCondition(unit, "module."+m.Name, m.Condition, evalCtx)
		if err != nil {
			return nil, err
		}
		if included {
			inc.modules = append(inc.modules, m)
		} else {
			logger.Debug("Condition excluded declaration.", "unit", unit.Name, "address", "module."+m.Name)
			inc.excluded["module."+m.Name] = true
		}
	}

	return inc, nil
}

func evaluateCondition(unit *config.Unit, address string, cond hcl.Expression, evalCtx *hcl.EvalContext) (bool, error) {
	if cond == nil {
		return true, nil
	}

	for _, traversal := range cond.Variables() {
		if traversal.RootName() != "param" {
			return false, validationErrorf(unit.Name, address,
				"condition must be a pure function of parameters, but references %s", exprs.TraversalKey(traversal))
		}
	}

	val, diags := cond.Value(evalCtx)
	if diags.HasErrors() {
		return false, validationErrorf(unit.Name, address, "condition evaluation failed: %s", diags.Error())
	}
	if !val.IsKnown() {
		return false, validationErrorf(unit.Name, address, "condition depends on a value not known until deployment")
	}

	boolVal, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return false, validationErrorf(unit.Name, address, "condition is not a boolean: %s", err)
	}
	if boolVal.IsNull() {
		return false, validationErrorf(unit.Name, address, "condition evaluated to null")
	}

	return boolVal.True(), nil
}
