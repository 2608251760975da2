package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zclconf/go-cty/cty"

	"github.com/opsforge/secplan/internal/catalog"
	"github.com/opsforge/secplan/internal/ctxlog"
	"github.com/opsforge/secplan/internal/fsutil"
	"github.com/opsforge/secplan/internal/hclcfg"
	"github.com/opsforge/secplan/internal/hooks"
	"github.com/opsforge/secplan/internal/plan"
	"github.com/opsforge/secplan/internal/planner"
	"github.com/opsforge/secplan/internal/rules"
)

// Config holds the global settings every command shares.
type Config struct {
	LogLevel  string
	LogFormat string
}

// App wires the loader, catalog, and planner together and implements the
// CLI commands. Logs go to logW; command output (plans) goes to outW.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	planner *planner.Planner
}

// NewApp constructs a fully initialized App with an isolated logger.
func NewApp(outW, logW io.Writer, cfg Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	loader := hclcfg.NewLoader()
	return &App{
		outW:    outW,
		logger:  logger,
		planner: planner.New(loader, catalog.Default()),
	}
}

// Logger returns the app's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Context returns ctx with the app's logger attached.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Plan evaluates a root unit with the supplied parameter values and writes
// the rendered plan to outPath, or to the app's output writer when outPath
// is empty.
func (a *App) Plan(ctx context.Context, unitPath string, params map[string]cty.Value, format plan.Format, outPath string) error {
	ctx = a.Context(ctx)

	result, err := a.planner.Plan(ctx, unitPath, params)
	if err != nil {
		return err
	}

	rendered, err := result.Render(format)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, rendered, 0o644); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
		a.logger.Info("Plan written.", "path", outPath, "format", format)
		return nil
	}

	_, err = fmt.Fprintln(a.outW, string(rendered))
	return err
}

// Validate checks every unit file under path (a file or a directory),
// including units reachable through module references.
func (a *App) Validate(ctx context.Context, path string) error {
	ctx = a.Context(ctx)

	files, err := fsutil.FindUnitFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no unit files found under %s", path)
	}

	for _, file := range files {
		if err := a.planner.Validate(ctx, file); err != nil {
			return err
		}
	}

	a.logger.Info("Validation passed.", "files", len(files))
	return nil
}

// PushRuleOptions are the inputs for the push-rule command.
type PushRuleOptions struct {
	Endpoint string
	Token    string
	RuleName string
	RulePath string // empty selects the built-in payload
	DryRun   bool
}

// PushRule validates an analytics-rule payload and issues the single
// detection-API call. Dry-run mode validates and logs but sends nothing.
func (a *App) PushRule(ctx context.Context, opts PushRuleOptions) error {
	ctx = a.Context(ctx)

	var payload []byte
	var err error
	if opts.RulePath == "" {
		payload = rules.Default()
		if err := rules.Validate(payload); err != nil {
			return err
		}
	} else {
		payload, err = rules.LoadFile(opts.RulePath)
		if err != nil {
			return err
		}
	}

	client := hooks.NewClient(opts.Endpoint, opts.Token, opts.DryRun)
	defer client.Close()

	return client.PushAnalyticsRule(ctx, opts.RuleName, payload)
}

// SetContactOptions are the inputs for the set-contact command.
type SetContactOptions struct {
	Endpoint string
	Token    string
	Contact  hooks.SecurityContact
	DryRun   bool
}

// SetContact updates the subscription's default security contact through
// the management API.
func (a *App) SetContact(ctx context.Context, opts SetContactOptions) error {
	ctx = a.Context(ctx)

	client := hooks.NewClient(opts.Endpoint, opts.Token, opts.DryRun)
	defer client.Close()

	return client.SetSecurityContact(ctx, opts.Contact)
}
