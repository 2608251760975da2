package main

import (
	"log/slog"
	"os"

	"github.com/opsforge/secplan/internal/cli"
)

// main is the entrypoint for the secplan application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
