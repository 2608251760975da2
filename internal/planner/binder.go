package planner

import (
	"context"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/opsforge/secplan/internal/config"
	"github.com/opsforge/secplan/internal/ctxlog"
)

// BoundParameters holds the validated parameter values for one unit
// evaluation. Every declared parameter has an entry; values coming from
// deferred module bindings may be unknown.
type BoundParameters struct {
	Unit   *config.Unit
	Values map[string]cty.Value
}

// BindParameters validates supplied values against the unit's declared
// parameters and fills in defaults. A default applies only when a parameter
// is entirely omitted from supplied, never when an empty or zero value was
// given. Any violation is a ValidationError; no node is evaluated before
// binding succeeds.
func BindParameters(ctx context.Context, unit *config.Unit, supplied map[string]cty.Value) (*BoundParameters, error) {
	logger := ctxlog.FromContext(ctx)

	for name := range supplied {
		if unit.Param(name) == nil {
			return nil, validationErrorf(unit.Name, "param "+name, "parameter not declared by the unit")
		}
	}

	bound := &BoundParameters{
		Unit:   unit,
		Values: make(map[string]cty.Value, len(unit.Params)),
	}

	for _, param := range unit.Params {
		val, wasSupplied := supplied[param.Name]

		if !wasSupplied {
			if param.Required() {
				return nil, validationErrorf(unit.Name, "param "+param.Name, "required parameter not supplied")
			}
			bound.Values[param.Name] = *param.Default
			continue
		}

		if val.IsNull() {
			return nil, validationErrorf(unit.Name, "param "+param.Name, "null value supplied; omit the parameter to use its default")
		}

		converted, err := convert.Convert(val, param.Type)
		if err != nil {
			return nil, validationErrorf(unit.Name, "param "+param.Name, "value does not match declared type %s: %s", param.Type.FriendlyName(), err)
		}

		// Deferred values can't be checked against the allowed set until the
		// producer materializes; membership is the provisioning engine's
		// problem at that point.
		if len(param.Allowed) > 0 && converted.IsKnown() {
			if !allowedValue(converted, param.Allowed) {
				return nil, validationErrorf(unit.Name, "param "+param.Name, "value %s is not in the allowed set", valueForMessage(converted))
			}
		}

		bound.Values[param.Name] = converted
	}

	logger.Debug("Parameters bound.", "unit", unit.Name, "count", len(bound.Values))
	return bound, nil
}

func allowedValue(val cty.Value, allowed []cty.Value) bool {
	for _, candidate := range allowed {
		if val.Equals(candidate).True() {
			return true
		}
	}
	return false
}

func valueForMessage(val cty.Value) string {
	if val.Type() == cty.String && val.IsKnown() && !val.IsNull() {
		return "\"" + val.AsString() + "\""
	}
	return val.GoString()
}
