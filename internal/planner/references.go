package planner

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/opsforge/secplan/internal/config"
	"github.com/opsforge/secplan/internal/ctxlog"
	"github.com/opsforge/secplan/internal/dag"
	"github.com/opsforge/secplan/internal/exprs"
)

// resolved is the outcome of reference resolution for one unit: a
// deterministic topological order over the included local addresses, and
// the dependency edges per address.
type resolved struct {
	order []string
	deps  map[string][]string
}

// resolveReferences builds the dependency graph over the included
// declarations of a unit and returns a topological order. Producers always
// precede consumers. A reference to an excluded declaration is a
// ReferenceToExcludedNodeError; a reference cycle is a CycleError. The
// resolution is a pure function of the bound graph, so repeat runs yield
// identical orderings.
func (p *Planner) resolveReferences(ctx context.Context, unit *config.Unit, inc *inclusion) (*resolved, error) {
	logger := ctxlog.FromContext(ctx)

	graph := dag.New()
	for _, r := range inc.resources {
		graph.AddNode("resource." + r.Name)
	}
	for _, m := range inc.modules {
		graph.AddNode("module." + m.Name)
	}

	for _, r := range inc.resources {
		referrer := "resource." + r.Name
		for _, expr := range r.Properties {
			if err := p.linkExpression(unit, inc, graph, referrer, expr, true); err != nil {
				return nil, err
			}
		}
		if err := p.linkExplicit(ctx, unit, inc, graph, referrer, r.DependsOn); err != nil {
			return nil, err
		}
	}

	for _, m := range inc.modules {
		referrer := "module." + m.Name
		for _, expr := range m.Bindings {
			if err := p.linkExpression(unit, inc, graph, referrer, expr, true); err != nil {
				return nil, err
			}
		}
		if err := p.linkExplicit(ctx, unit, inc, graph, referrer, m.DependsOn); err != nil {
			return nil, err
		}
	}

	// Output expressions never create ordering edges (they are evaluated
	// after the whole graph), but the excluded-reference rule still applies.
	for _, o := range unit.Outputs {
		if err := p.linkExpression(unit, inc, graph, "output."+o.Name, o.Value, false); err != nil {
			return nil, err
		}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, &CycleError{Unit: unit.Name, Detail: err.Error()}
	}
	logger.Debug("Reference resolution complete.", "unit", unit.Name, "order", order)

	deps := make(map[string][]string, len(order))
	for _, addr := range order {
		d, err := graph.Dependencies(addr)
		if err != nil {
			return nil, err
		}
		deps[addr] = d
	}

	return &resolved{order: order, deps: deps}, nil
}

// linkExpression validates every node reference inside an expression and,
// when linkEdges is set, adds the corresponding dependency edges.
func (p *Planner) linkExpression(unit *config.Unit, inc *inclusion, graph *dag.Graph, referrer string, expr hcl.Expression, linkEdges bool) error {
	if expr == nil {
		return nil
	}
	for _, traversal := range expr.Variables() {
		target, err := p.checkTraversal(unit, inc, referrer, traversal)
		if err != nil {
			return err
		}
		if target == "" || !linkEdges {
			continue
		}
		if err := graph.AddEdge(target, referrer); err != nil {
			return &CycleError{Unit: unit.Name, Detail: err.Error()}
		}
	}
	return nil
}

// checkTraversal classifies one traversal. It returns the local address of
// the referenced node ("" for parameter references) or the error mandated
// by the reference rules.
func (p *Planner) checkTraversal(unit *config.Unit, inc *inclusion, referrer string, traversal hcl.Traversal) (string, error) {
	switch root := traversal.RootName(); root {
	case "param":
		return "", nil

	case "resource":
		logical, ok := traversalAttr(traversal, 1)
		if !ok {
			return "", validationErrorf(unit.Name, referrer, "malformed resource reference %s", exprs.TraversalKey(traversal))
		}
		target := "resource." + logical

		var decl *config.ResourceDecl
		for _, r := range unit.Resources {
			if r.Name == logical {
				decl = r
				break
			}
		}
		if decl == nil {
			return "", validationErrorf(unit.Name, referrer, "reference to undeclared resource %q", logical)
		}
		if inc.excluded[target] {
			return "", &ReferenceToExcludedNodeError{Unit: unit.Name, Referrer: referrer, Target: target}
		}

		if attr, ok := traversalAttr(traversal, 2); ok {
			rt, found := p.catalog.Lookup(decl.ProviderType)
			if found && !rt.HasAttribute(attr) {
				return "", validationErrorf(unit.Name, referrer,
					"resource %q of type %s does not export attribute %q (exports: %s)",
					logical, decl.ProviderType, attr, strings.Join(rt.AttributeNames(), ", "))
			}
		}
		return target, nil

	case "module":
		logical, ok := traversalAttr(traversal, 1)
		if !ok {
			return "", validationErrorf(unit.Name, referrer, "malformed module reference %s", exprs.TraversalKey(traversal))
		}
		target := "module." + logical

		var decl *config.ModuleRef
		for _, m := range unit.Modules {
			if m.Name == logical {
				decl = m
				break
			}
		}
		if decl == nil {
			return "", validationErrorf(unit.Name, referrer, "reference to undeclared module %q", logical)
		}
		if inc.excluded[target] {
			return "", &ReferenceToExcludedNodeError{Unit: unit.Name, Referrer: referrer, Target: target}
		}

		if attr, ok := traversalAttr(traversal, 2); ok && attr != "outputs" {
			return "", validationErrorf(unit.Name, referrer,
				"module %q only exposes its outputs; reference them as module.%s.outputs.<name>", logical, logical)
		}
		return target, nil

	default:
		return "", validationErrorf(unit.Name, referrer,
			"unknown symbol %q in expression; unit expressions may reference param, resource, or module", root)
	}
}

// linkExplicit validates depends_on entries and adds their edges. An entry
// naming an excluded declaration is dropped: there is nothing left to order
// against, and depends_on carries no value reference that could dangle.
func (p *Planner) linkExplicit(ctx context.Context, unit *config.Unit, inc *inclusion, graph *dag.Graph, referrer string, dependsOn []string) error {
	logger := ctxlog.FromContext(ctx)

	for _, target := range dependsOn {
		if !strings.HasPrefix(target, "resource.") && !strings.HasPrefix(target, "module.") {
			return validationErrorf(unit.Name, referrer,
				"depends_on entry %q must be a local address of the form resource.<name> or module.<name>", target)
		}
		if !declaredAddress(unit, target) {
			return validationErrorf(unit.Name, referrer, "depends_on entry %q does not match any declaration", target)
		}
		if inc.excluded[target] {
			logger.Debug("Dropping depends_on edge to excluded declaration.", "unit", unit.Name, "from", referrer, "to", target)
			continue
		}
		if err := graph.AddEdge(target, referrer); err != nil {
			return &CycleError{Unit: unit.Name, Detail: err.Error()}
		}
	}
	return nil
}

func declaredAddress(unit *config.Unit, address string) bool {
	if logical, ok := strings.CutPrefix(address, "resource."); ok {
		for _, r := range unit.Resources {
			if r.Name == logical {
				return true
			}
		}
		return false
	}
	if logical, ok := strings.CutPrefix(address, "module."); ok {
		for _, m := range unit.Modules {
			if m.Name == logical {
				return true
			}
		}
	}
	return false
}

// traversalAttr returns the attribute name at the given traversal position.
func traversalAttr(traversal hcl.Traversal, index int) (string, bool) {
	if len(traversal) <= index {
		return "", false
	}
	attr, ok := traversal[index].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}
