package hclcfg

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/opsforge/secplan/internal/config"
	"github.com/opsforge/secplan/internal/exprs"
	"github.com/opsforge/secplan/internal/schema"
)

// translateUnit converts the HCL-specific unit file schema into the agnostic
// config model, resolving parameter types, defaults, and allowed-value sets.
func (l *Loader) translateUnit(ctx context.Context, path string, f *schema.UnitFile) (*config.Unit, error) {
	unit := &config.Unit{
		Name:   f.Unit.Name,
		Scope:  config.ScopeSubscription,
		Source: path,
	}

	if f.Unit.Scope != "" {
		switch s := config.Scope(f.Unit.Scope); s {
		case config.ScopeSubscription, config.ScopeResourceGroup:
			unit.Scope = s
		default:
			return nil, fmt.Errorf("unit %q: unsupported scope %q", unit.Name, f.Unit.Scope)
		}
	}

	seenParams := make(map[string]bool)
	for _, p := range f.Params {
		if seenParams[p.Name] {
			return nil, fmt.Errorf("unit %q: duplicate param %q", unit.Name, p.Name)
		}
		seenParams[p.Name] = true

		param, err := l.translateParam(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("unit %q: %w", unit.Name, err)
		}
		unit.Params = append(unit.Params, param)
	}

	seenResources := make(map[string]bool)
	for _, r := range f.Resources {
		if seenResources[r.Name] {
			return nil, fmt.Errorf("unit %q: duplicate resource %q", unit.Name, r.Name)
		}
		seenResources[r.Name] = true

		props, err := bodyAttributes(propertiesBody(r.Properties))
		if err != nil {
			return nil, fmt.Errorf("unit %q: resource %q: %w", unit.Name, r.Name, err)
		}
		unit.Resources = append(unit.Resources, &config.ResourceDecl{
			Name:         r.Name,
			ProviderType: r.ProviderType,
			APIVersion:   r.APIVersion,
			Condition:    presentExpr(r.Condition),
			Properties:   props,
			DependsOn:    r.DependsOn,
			DeclRange:    hcl.Range{Filename: path},
		})
	}

	seenModules := make(map[string]bool)
	for _, m := range f.Modules {
		if seenModules[m.Name] {
			return nil, fmt.Errorf("unit %q: duplicate module %q", unit.Name, m.Name)
		}
		seenModules[m.Name] = true

		bindings, err := bodyAttributes(paramsBody(m.Params))
		if err != nil {
			return nil, fmt.Errorf("unit %q: module %q: %w", unit.Name, m.Name, err)
		}
		unit.Modules = append(unit.Modules, &config.ModuleRef{
			Name:      m.Name,
			Source:    m.Source,
			Condition: presentExpr(m.Condition),
			Bindings:  bindings,
			DependsOn: m.DependsOn,
			DeclRange: hcl.Range{Filename: path},
		})
	}

	seenOutputs := make(map[string]bool)
	for _, o := range f.Outputs {
		if seenOutputs[o.Name] {
			return nil, fmt.Errorf("unit %q: duplicate output %q", unit.Name, o.Name)
		}
		seenOutputs[o.Name] = true

		unit.Outputs = append(unit.Outputs, &config.OutputDecl{
			Name:        o.Name,
			Value:       o.Value,
			Description: o.Description,
		})
	}

	return unit, nil
}

// translateParam resolves a param block's type expression, default, and
// allowed values. Defaults and allowed values must be static: they may call
// the shared functions but may not reference variables.
func (l *Loader) translateParam(ctx context.Context, p *schema.Param) (*config.Parameter, error) {
	paramType, err := typeExprToCtyType(ctx, p.Type)
	if err != nil {
		return nil, fmt.Errorf("param %q: invalid type: %w", p.Name, err)
	}

	param := &config.Parameter{
		Name:        p.Name,
		Type:        paramType,
		Description: p.Description,
		DeclRange:   p.Type.Range(),
	}

	if def := presentExpr(p.Default); def != nil {
		val, err := staticValue(def)
		if err != nil {
			return nil, fmt.Errorf("param %q: invalid default: %w", p.Name, err)
		}
		if !val.IsNull() {
			converted, err := convert.Convert(val, paramType)
			if err != nil {
				return nil, fmt.Errorf("param %q: default does not match declared type: %w", p.Name, err)
			}
			param.Default = &converted
		}
	}

	if allowed := presentExpr(p.Allowed); allowed != nil {
		val, err := staticValue(allowed)
		if err != nil {
			return nil, fmt.Errorf("param %q: invalid allowed values: %w", p.Name, err)
		}
		if !val.Type().IsTupleType() && !val.Type().IsListType() {
			return nil, fmt.Errorf("param %q: allowed must be a list of values", p.Name)
		}
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			converted, err := convert.Convert(elem, paramType)
			if err != nil {
				return nil, fmt.Errorf("param %q: allowed value does not match declared type: %w", p.Name, err)
			}
			param.Allowed = append(param.Allowed, converted)
		}
	}

	return param, nil
}

// presentExpr normalizes the placeholder gohcl substitutes for an absent
// optional expression attribute back to nil. Attributes written in a unit
// file always decode to hclsyntax nodes; the synthetic placeholder does not,
// so an explicit `= null` in the file is still kept and surfaced later.
func presentExpr(expr hcl.Expression) hcl.Expression {
	if expr == nil {
		return nil
	}
	if _, ok := expr.(hclsyntax.Expression); !ok {
		return nil
	}
	return expr
}

// staticValue evaluates an expression that must not reference any variables.
func staticValue(expr hcl.Expression) (cty.Value, error) {
	if vars := expr.Variables(); len(vars) > 0 {
		return cty.NilVal, fmt.Errorf("expression must be static, but references %s", exprs.TraversalKey(vars[0]))
	}
	val, diags := expr.Value(&hcl.EvalContext{Functions: exprs.Functions()})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%s", diags.Error())
	}
	return val, nil
}

func propertiesBody(b *schema.PropertiesBlock) hcl.Body {
	if b == nil {
		return nil
	}
	return b.Body
}

func paramsBody(b *schema.ParamsBlock) hcl.Body {
	if b == nil {
		return nil
	}
	return b.Body
}

// bodyAttributes extracts the attribute expressions of a raw block body,
// leaving them unevaluated for the planner. Nested blocks are rejected so a
// misplaced block cannot silently vanish from the plan.
func bodyAttributes(body hcl.Body) (map[string]hcl.Expression, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.Error())
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap, nil
}
