package planner

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/exprs"
)

// scope holds the values visible to a unit's expressions during one
// evaluation: the bound parameters, typed placeholders for included
// resources, and the outputs of already-expanded modules.
type scope struct {
	params    map[string]cty.Value
	resources map[string]cty.Value
	modules   map[string]cty.Value
}

func newScope(bound *BoundParameters) *scope {
	return &scope{
		params:    bound.Values,
		resources: make(map[string]cty.Value),
		modules:   make(map[string]cty.Value),
	}
}

// paramsContext returns the evaluation context for inclusion conditions:
// parameters and functions only, no node references.
func (s *scope) paramsContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"param": cty.ObjectVal(s.params),
		},
		Functions: exprs.Functions(),
	}
}

// fullContext returns the evaluation context for property bags, module
// bindings, and outputs. Resource attributes appear as typed unknowns until
// the provisioning engine materializes them.
func (s *scope) fullContext() *hcl.EvalContext {
	vars := map[string]cty.Value{
		"param": cty.ObjectVal(s.params),
	}
	if len(s.resources) > 0 {
		vars["resource"] = cty.ObjectVal(s.resources)
	}
	if len(s.modules) > 0 {
		vars["module"] = cty.ObjectVal(s.modules)
	}
	return &hcl.EvalContext{
		Variables: vars,
		Functions: exprs.Functions(),
	}
}

// addResourcePlaceholder registers an included resource as an unknown value
// of its catalog object type so consumers can traverse its attributes.
func (s *scope) addResourcePlaceholder(logicalName string, objType cty.Type) {
	s.resources[logicalName] = cty.UnknownVal(objType)
}

// addModuleOutputs registers an expanded module's outputs under
// module.<name>.outputs.
func (s *scope) addModuleOutputs(logicalName string, outputs map[string]cty.Value) {
	if len(outputs) == 0 {
		outputs = map[string]cty.Value{}
	}
	s.modules[logicalName] = cty.ObjectVal(map[string]cty.Value{
		"outputs": cty.ObjectVal(outputs),
	})
}
