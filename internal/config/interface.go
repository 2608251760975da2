package config

import (
	"context"
)

// Loader is the interface for a format-specific deployment unit loader.
type Loader interface {
	// Load reads a single unit file, translates it into the format-agnostic
	// model, and returns it. The returned unit's Source is the absolute path
	// it was loaded from, which callers use to resolve nested module sources.
	Load(ctx context.Context, path string) (*Unit, error)

	// SourceBytes returns the raw bytes of a previously loaded file, used to
	// render expression snippets in diagnostics and plan output.
	SourceBytes(path string) ([]byte, bool)
}
