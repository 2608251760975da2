package planner

import (
	"context"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/catalog"
	"github.com/opsforge/secplan/internal/config"
	"github.com/opsforge/secplan/internal/ctxlog"
	"github.com/opsforge/secplan/internal/plan"
)

// Planner evaluates deployment units into ordered plans. It owns no state
// beyond its collaborators and a single Planner may evaluate any number of
// units.
type Planner struct {
	loader  config.Loader
	catalog *catalog.Catalog
}

// New creates a Planner backed by the given loader and provider catalog.
func New(loader config.Loader, cat *catalog.Catalog) *Planner {
	return &Planner{loader: loader, catalog: cat}
}

// Plan evaluates the unit at path with the supplied parameter values and
// returns the fully flattened, topologically ordered plan. All four failure
// classes — validation, excluded-node reference, cycle, and load errors —
// are fatal and returned immediately.
func (p *Planner) Plan(ctx context.Context, path string, supplied map[string]cty.Value) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	unit, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	out := plan.New(unit.Name, string(unit.Scope))
	visiting := map[string]bool{unit.Source: true}

	if _, err := p.planUnit(ctx, unit, supplied, "", nil, visiting, out); err != nil {
		return nil, err
	}

	logger.Info("Plan evaluated.",
		"unit", unit.Name,
		"plan_id", out.ID,
		"resources", out.Summary.Resources,
		"modules", out.Summary.Modules,
		"excluded", out.Summary.Excluded,
	)
	return out, nil
}

// Validate loads the unit at path and checks everything that can be checked
// without parameter values: template syntax, provider types and API
// versions against the catalog, reference well-formedness, static cycles,
// and the same for every reachable nested unit.
func (p *Planner) Validate(ctx context.Context, path string) error {
	return p.validateUnit(ctx, path, make(map[string]bool))
}

func (p *Planner) validateUnit(ctx context.Context, path string, visiting map[string]bool) error {
	logger := ctxlog.FromContext(ctx)

	unit, err := p.loader.Load(ctx, path)
	if err != nil {
		return err
	}
	if visiting[unit.Source] {
		return &CycleError{Unit: unit.Name, Detail: "module source cycle involving " + unit.Source}
	}
	visiting[unit.Source] = true
	defer delete(visiting, unit.Source)

	for _, r := range unit.Resources {
		if err := p.catalog.Validate(r.ProviderType, r.APIVersion); err != nil {
			return validationErrorf(unit.Name, "resource."+r.Name, "%s", err)
		}
	}

	// Static pass: treat every declaration as included, so reference shape
	// and cycles are checked independently of any particular binding.
	inc := &inclusion{
		resources: unit.Resources,
		modules:   unit.Modules,
		excluded:  map[string]bool{},
	}
	if _, err := p.resolveReferences(ctx, unit, inc); err != nil {
		return err
	}

	for _, m := range unit.Modules {
		nestedPath := filepath.Join(filepath.Dir(unit.Source), m.Source)
		if err := p.validateUnit(ctx, nestedPath, visiting); err != nil {
			return err
		}
	}

	logger.Debug("Unit validated.", "unit", unit.Name, "path", unit.Source)
	return nil
}
