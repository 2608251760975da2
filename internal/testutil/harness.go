// Package testutil provides a standardized harness for planner tests: it
// writes HCL fixture files into a temp directory and runs the evaluation
// pipeline against them with a test-scoped logger.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/catalog"
	"github.com/opsforge/secplan/internal/ctxlog"
	"github.com/opsforge/secplan/internal/hclcfg"
	"github.com/opsforge/secplan/internal/plan"
	"github.com/opsforge/secplan/internal/planner"
)

// WriteFiles writes the given relative-path -> content map into a fresh
// temp directory and returns its root.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// Context returns a context carrying a logger that writes through t.Log.
func Context(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// NewPlanner returns a planner over a fresh loader and the default catalog.
func NewPlanner() *planner.Planner {
	return planner.New(hclcfg.NewLoader(), catalog.Default())
}

// PlanFixture writes the fixture files, then evaluates the entry unit with
// the supplied parameter values.
func PlanFixture(t *testing.T, files map[string]string, entry string, params map[string]cty.Value) (*plan.Plan, error) {
	t.Helper()
	root := WriteFiles(t, files)
	return NewPlanner().Plan(Context(t), filepath.Join(root, entry), params)
}

// ValidateFixture writes the fixture files, then statically validates the
// entry unit.
func ValidateFixture(t *testing.T, files map[string]string, entry string) error {
	t.Helper()
	root := WriteFiles(t, files)
	return NewPlanner().Validate(Context(t), filepath.Join(root, entry))
}
