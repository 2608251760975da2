package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/config"
	"github.com/opsforge/secplan/internal/ctxlog"
	"github.com/opsforge/secplan/internal/exprs"
	"github.com/opsforge/secplan/internal/plan"
)

// planUnit runs the full evaluation pipeline for one unit — bind, prune,
// resolve, expand — appending its flattened resources to out. It returns
// the unit's output values for consumption by a calling unit. prefix is the
// flattened address prefix ("" for the root unit), origins maps the unit's
// deferred parameters to the root-relative symbolic value that produces
// them, and visiting tracks the module source inclusion stack for cycle
// detection.
func (p *Planner) planUnit(ctx context.Context, unit *config.Unit, supplied map[string]cty.Value, prefix string, origins map[string]plan.Value, visiting map[string]bool, out *plan.Plan) (map[string]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	for _, r := range unit.Resources {
		if err := p.catalog.Validate(r.ProviderType, r.APIVersion); err != nil {
			return nil, validationErrorf(unit.Name, "resource."+r.Name, "%s", err)
		}
	}

	bound, err := BindParameters(ctx, unit, supplied)
	if err != nil {
		return nil, err
	}

	inc, err := evaluateConditions(ctx, unit, bound)
	if err != nil {
		return nil, err
	}

	res, err := p.resolveReferences(ctx, unit, inc)
	if err != nil {
		return nil, err
	}

	sc := newScope(bound)
	resourceDecls := make(map[string]*config.ResourceDecl, len(inc.resources))
	for _, r := range inc.resources {
		resourceDecls["resource."+r.Name] = r
		rt, ok := p.catalog.Lookup(r.ProviderType)
		if !ok {
			return nil, validationErrorf(unit.Name, "resource."+r.Name, "unknown provider type %q", r.ProviderType)
		}
		sc.addResourcePlaceholder(r.Name, rt.ObjectType())
	}
	moduleDecls := make(map[string]*config.ModuleRef, len(inc.modules))
	for _, m := range inc.modules {
		moduleDecls["module."+m.Name] = m
	}

	src, _ := p.loader.SourceBytes(unit.Source)

	for _, addr := range res.order {
		switch {
		case resourceDecls[addr] != nil:
			planned, err := p.planResource(unit, resourceDecls[addr], sc, src, prefix, origins, res.deps[addr])
			if err != nil {
				return nil, err
			}
			out.Resources = append(out.Resources, planned)
			out.Summary.Resources++

		case moduleDecls[addr] != nil:
			m := moduleDecls[addr]
			outputs, err := p.expandModule(ctx, unit, m, sc, src, prefix, origins, res.deps[addr], visiting, out)
			if err != nil {
				return nil, err
			}
			sc.addModuleOutputs(m.Name, outputs)
			out.Summary.Modules++

		default:
			return nil, fmt.Errorf("unit %q: internal error: planned address %q has no declaration", unit.Name, addr)
		}
	}

	out.Summary.Excluded += len(inc.excluded)

	outputs := make(map[string]cty.Value, len(unit.Outputs))
	for _, o := range unit.Outputs {
		val, diags := o.Value.Value(sc.fullContext())
		if diags.HasErrors() {
			return nil, validationErrorf(unit.Name, "output."+o.Name, "evaluation failed: %s", diags.Error())
		}
		outputs[o.Name] = val
	}

	// Only the root unit surfaces outputs on the plan itself; nested unit
	// outputs feed the caller's expressions instead.
	if prefix == "" && len(unit.Outputs) > 0 {
		out.Outputs = make(map[string]plan.Value, len(unit.Outputs))
		for _, o := range unit.Outputs {
			val, err := p.planValue(unit, sc, src, prefix, origins, o.Value)
			if err != nil {
				return nil, validationErrorf(unit.Name, "output."+o.Name, "%s", err)
			}
			out.Outputs[o.Name] = val
		}
	}

	logger.Debug("Unit planned.", "unit", unit.Name, "prefix", prefix, "resources", len(inc.resources), "modules", len(inc.modules), "excluded", len(inc.excluded))
	return outputs, nil
}

// planResource resolves a resource's property bag into plan values and
// rewrites its addresses into flattened form.
func (p *Planner) planResource(unit *config.Unit, r *config.ResourceDecl, sc *scope, src []byte, prefix string, origins map[string]plan.Value, deps []string) (*plan.Resource, error) {
	planned := &plan.Resource{
		Address:    prefix + "resource." + r.Name,
		Type:       r.ProviderType,
		APIVersion: r.APIVersion,
	}

	if len(r.Properties) > 0 {
		planned.Properties = make(map[string]plan.Value, len(r.Properties))
		names := make([]string, 0, len(r.Properties))
		for name := range r.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			val, err := p.planValue(unit, sc, src, prefix, origins, r.Properties[name])
			if err != nil {
				return nil, validationErrorf(unit.Name, "resource."+r.Name, "property %q: %s", name, err)
			}
			planned.Properties[name] = val
		}
	}

	for _, dep := range deps {
		planned.DependsOn = append(planned.DependsOn, prefix+dep)
	}

	return planned, nil
}

// planValue resolves one expression into a plan value: a literal when fully
// known at plan time, a symbolic value otherwise.
func (p *Planner) planValue(unit *config.Unit, sc *scope, src []byte, prefix string, origins map[string]plan.Value, expr hcl.Expression) (plan.Value, error) {
	val, diags := expr.Value(sc.fullContext())
	if diags.HasErrors() {
		return plan.Value{}, fmt.Errorf("evaluation failed: %s", diags.Error())
	}

	if val.IsWhollyKnown() {
		out, err := plan.LiteralValue(val)
		if err != nil {
			return plan.Value{}, fmt.Errorf("encoding literal: %w", err)
		}
		return out, nil
	}

	return symbolicValue(src, prefix, origins, expr), nil
}

// symbolicValue renders an expression whose result is not known at plan
// time. A bare node traversal becomes a plan reference; anything else keeps
// its source text. Both forms are rewritten into root-relative flattened
// form: node references gain the module address prefix, and a deferred
// parameter is replaced by the caller value that produced it, so plan
// consumers never see a nested parameter name they cannot resolve.
func symbolicValue(src []byte, prefix string, origins map[string]plan.Value, expr hcl.Expression) plan.Value {
	if st, ok := expr.(*hclsyntax.ScopeTraversalExpr); ok {
		switch st.Traversal.RootName() {
		case "resource", "module":
			return plan.ReferenceValue(prefix + exprs.TraversalKey(st.Traversal))
		case "param":
			if name, ok := traversalAttr(st.Traversal, 1); ok && len(st.Traversal) == 2 {
				if origin, found := origins[name]; found {
					return origin
				}
			}
		}
	}
	return plan.ExpressionValue(rewriteSnippet(src, prefix, origins, expr))
}

// rewriteSnippet extracts an expression's source text and splices its
// traversals into root-relative form: resource/module references gain the
// flattened address prefix and deferred parameters are replaced by their
// producing caller expression.
func rewriteSnippet(src []byte, prefix string, origins map[string]plan.Value, expr hcl.Expression) string {
	if src == nil || expr == nil {
		return ""
	}
	rng := expr.Range()
	snippet := append([]byte(nil), rng.SliceBytes(src)...)

	type splice struct {
		start, end int
		text       string
	}
	var splices []splice
	for _, tr := range expr.Variables() {
		switch tr.RootName() {
		case "resource", "module":
			if prefix == "" {
				continue
			}
			at := tr.SourceRange().Start.Byte - rng.Start.Byte
			splices = append(splices, splice{start: at, end: at, text: prefix})

		case "param":
			name, ok := traversalAttr(tr, 1)
			if !ok {
				continue
			}
			origin, found := origins[name]
			if !found {
				continue
			}
			text := origin.Reference
			if text == "" {
				if origin.Expression == "" {
					continue
				}
				text = "(" + origin.Expression + ")"
			}
			splices = append(splices, splice{
				start: tr.SourceRange().Start.Byte - rng.Start.Byte,
				end:   tr[1].SourceRange().End.Byte - rng.Start.Byte,
				text:  text,
			})
		}
	}

	if len(splices) == 0 {
		return exprs.RenderExpr(src, expr)
	}

	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })
	for _, s := range splices {
		if s.start < 0 || s.end > len(snippet) || s.start > s.end {
			continue
		}
		snippet = append(snippet[:s.start], append([]byte(s.text), snippet[s.end:]...)...)
	}
	return strings.TrimSpace(string(snippet))
}

// expandModule evaluates a module's bindings in the caller's scope, loads
// the nested unit, and recursively plans it under the module's flattened
// address prefix. Tags and naming tokens reach the nested unit only through
// these explicit bindings. Bindings whose values are deferred are also
// recorded symbolically, in root-relative form, so the nested unit's plan
// values can name their producer.
func (p *Planner) expandModule(ctx context.Context, unit *config.Unit, m *config.ModuleRef, sc *scope, src []byte, prefix string, origins map[string]plan.Value, deps []string, visiting map[string]bool, out *plan.Plan) (map[string]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	nestedPath := filepath.Join(filepath.Dir(unit.Source), m.Source)
	if visiting[nestedPath] {
		return nil, &CycleError{Unit: unit.Name, Detail: fmt.Sprintf("module source cycle involving %q", m.Source)}
	}

	bindings := make(map[string]cty.Value, len(m.Bindings))
	nestedOrigins := make(map[string]plan.Value)
	for name, expr := range m.Bindings {
		val, diags := expr.Value(sc.fullContext())
		if diags.HasErrors() {
			return nil, validationErrorf(unit.Name, "module."+m.Name, "binding %q: evaluation failed: %s", name, diags.Error())
		}
		bindings[name] = val
		if !val.IsWhollyKnown() {
			nestedOrigins[name] = symbolicValue(src, prefix, origins, expr)
		}
	}

	nested, err := p.loader.Load(ctx, nestedPath)
	if err != nil {
		return nil, fmt.Errorf("unit %q: module %q: %w", unit.Name, m.Name, err)
	}

	logger.Debug("Expanding module.", "unit", unit.Name, "module", m.Name, "source", nestedPath)

	visiting[nestedPath] = true
	defer delete(visiting, nestedPath)

	before := len(out.Resources)
	outputs, err := p.planUnit(ctx, nested, bindings, prefix+"module."+m.Name+".", nestedOrigins, visiting, out)
	if err != nil {
		return nil, err
	}

	// The module's own caller-level ordering constraints apply to everything
	// it flattened into the plan.
	if len(deps) > 0 {
		prefixed := make([]string, 0, len(deps))
		for _, dep := range deps {
			prefixed = append(prefixed, prefix+dep)
		}
		for _, r := range out.Resources[before:] {
			r.DependsOn = appendUnique(r.DependsOn, prefixed...)
		}
	}

	return outputs, nil
}

func appendUnique(existing []string, values ...string) []string {
	for _, v := range values {
		if !contains(existing, v) {
			existing = append(existing, v)
		}
	}
	return existing
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
