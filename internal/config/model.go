package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Scope identifies the target scope a deployment unit is authored for.
type Scope string

const (
	ScopeSubscription  Scope = "subscription"
	ScopeResourceGroup Scope = "resourceGroup"
)

// Unit is the format-agnostic representation of a single deployment unit: a
// named, parameterized collection of resource and module declarations.
type Unit struct {
	Name   string
	Scope  Scope
	Source string // absolute path of the file the unit was loaded from

	// Params preserves declaration order so diagnostics are stable.
	Params    []*Parameter
	Resources []*ResourceDecl
	Modules   []*ModuleRef
	Outputs   []*OutputDecl
}

// Param returns the declared parameter with the given name, or nil.
func (u *Unit) Param(name string) *Parameter {
	for _, p := range u.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Parameter is a typed input of a deployment unit. A parameter with a
// Default is optional; one without is required. Allowed, when non-empty,
// restricts supplied values to the listed set.
type Parameter struct {
	Name        string
	Type        cty.Type
	Default     *cty.Value
	Allowed     []cty.Value
	Description string
	DeclRange   hcl.Range
}

// Required reports whether a value must be supplied for the parameter.
func (p *Parameter) Required() bool {
	return p.Default == nil
}

// ResourceDecl is a single typed cloud-resource declaration. Condition, when
// non-nil, gates the resource's inclusion in the plan. Properties holds the
// raw attribute expressions of the `properties` block; they are evaluated
// only after parameter binding.
type ResourceDecl struct {
	Name         string
	ProviderType string
	APIVersion   string
	Condition    hcl.Expression
	Properties   map[string]hcl.Expression
	DependsOn    []string
	DeclRange    hcl.Range
}

// ModuleRef is the inclusion of one deployment unit inside another. Source is
// resolved relative to the including unit's file. Bindings map the nested
// unit's parameter names to caller-scope expressions; there is no implicit
// inheritance of any caller state.
type ModuleRef struct {
	Name      string
	Source    string
	Condition hcl.Expression
	Bindings  map[string]hcl.Expression
	DependsOn []string
	DeclRange hcl.Range
}

// OutputDecl is a named value a unit surfaces to its caller or the operator.
type OutputDecl struct {
	Name        string
	Value       hcl.Expression
	Description string
}
