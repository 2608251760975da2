package hclcfg

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/opsforge/secplan/internal/config"
	"github.com/opsforge/secplan/internal/ctxlog"
	"github.com/opsforge/secplan/internal/schema"
)

// Loader reads deployment unit files from disk and translates them into the
// format-agnostic config model. It implements config.Loader.
type Loader struct {
	parser *hclparse.Parser

	mu      sync.Mutex
	sources map[string][]byte
}

// NewLoader creates a Loader with an empty parser state.
func NewLoader() *Loader {
	return &Loader{
		parser:  hclparse.NewParser(),
		sources: make(map[string][]byte),
	}
}

// Load parses and translates a single unit file. The path is resolved to an
// absolute path so nested module sources can be resolved against it.
func (l *Loader) Load(ctx context.Context, path string) (*config.Unit, error) {
	logger := ctxlog.FromContext(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve unit path %s: %w", path, err)
	}
	logger.Debug("Loading deployment unit file.", "path", absPath)

	file, diags := l.parser.ParseHCLFile(absPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse unit file %s: %s", absPath, diags.Error())
	}

	l.mu.Lock()
	l.sources[absPath] = file.Bytes
	l.mu.Unlock()

	var unitFile schema.UnitFile
	diags = gohcl.DecodeBody(file.Body, nil, &unitFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode unit file %s: %s", absPath, diags.Error())
	}
	if unitFile.Unit == nil {
		return nil, fmt.Errorf("unit file %s has no `unit` block", absPath)
	}

	unit, err := l.translateUnit(ctx, absPath, &unitFile)
	if err != nil {
		return nil, err
	}

	logger.Debug("Unit file loaded and translated.",
		"unit", unit.Name,
		"params", len(unit.Params),
		"resources", len(unit.Resources),
		"modules", len(unit.Modules),
	)
	return unit, nil
}

// SourceBytes returns the raw bytes of a previously loaded file.
func (l *Loader) SourceBytes(path string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.sources[path]
	return src, ok
}
