// Package cli defines the secplan command-line surface and maps command
// outcomes onto process exit codes: 0 on success, 2 on usage errors, 1 on
// any of the fatal evaluation or call failures.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	"github.com/opsforge/secplan/internal/app"
	"github.com/opsforge/secplan/internal/hooks"
	"github.com/opsforge/secplan/internal/plan"
)

// CLI is the full command tree parsed by kong.
type CLI struct {
	LogLevel  string `help:"Set the logging level." enum:"debug,info,warn,error" default:"info"`
	LogFormat string `help:"Log output format." enum:"text,json" default:"text"`

	Plan       PlanCmd       `cmd:"" help:"Evaluate a deployment unit into an ordered resource plan."`
	Validate   ValidateCmd   `cmd:"" help:"Check unit files without producing a plan."`
	PushRule   PushRuleCmd   `cmd:"" name:"push-rule" help:"Push an analytics rule payload to a detection API."`
	SetContact SetContactCmd `cmd:"" name:"set-contact" help:"Set the subscription's default security contact."`
}

// PlanCmd evaluates one root unit into a plan.
type PlanCmd struct {
	Unit   string   `arg:"" help:"Path to the root unit file."`
	Param  []string `short:"p" help:"Parameter value as name=value. Repeatable."`
	Format string   `help:"Plan output format." enum:"json,yaml" default:"json"`
	Out    string   `short:"o" help:"Write the plan to a file instead of stdout." type:"path"`
}

// Run implements the plan command.
func (c *PlanCmd) Run(a *app.App) error {
	params, err := app.ParseParams(c.Param)
	if err != nil {
		return err
	}
	return a.Plan(context.Background(), c.Unit, params, plan.Format(c.Format), c.Out)
}

// ValidateCmd checks unit files for template, catalog, and reference errors.
type ValidateCmd struct {
	Path string `arg:"" help:"Unit file or directory of unit files."`
}

// Run implements the validate command.
func (c *ValidateCmd) Run(a *app.App) error {
	return a.Validate(context.Background(), c.Path)
}

// PushRuleCmd issues the single detection-rule API call.
type PushRuleCmd struct {
	Endpoint string `required:"" help:"Base URL of the detection-rule API."`
	Token    string `env:"SECPLAN_TOKEN" help:"Bearer token for the API. Required unless --dry-run."`
	Name     string `default:"suspicious-signin" help:"Rule name to upsert."`
	Rule     string `arg:"" optional:"" help:"Rule payload file. Defaults to the built-in payload." type:"path"`
	DryRun   bool   `help:"Validate and log the request without sending it."`
}

// Run implements the push-rule command.
func (c *PushRuleCmd) Run(a *app.App) error {
	if c.Token == "" && !c.DryRun {
		return fmt.Errorf("--token is required unless --dry-run is set")
	}
	return a.PushRule(context.Background(), app.PushRuleOptions{
		Endpoint: c.Endpoint,
		Token:    c.Token,
		RuleName: c.Name,
		RulePath: c.Rule,
		DryRun:   c.DryRun,
	})
}

// SetContactCmd issues the single security-contact API call.
type SetContactCmd struct {
	Endpoint     string `required:"" help:"Base URL of the management API."`
	Token        string `env:"SECPLAN_TOKEN" help:"Bearer token for the API. Required unless --dry-run."`
	Email        string `required:"" help:"Notification email address."`
	Phone        string `help:"Notification phone number."`
	NotifyAdmins bool   `help:"Also notify subscription owners."`
	DryRun       bool   `help:"Log the request without sending it."`
}

// Run implements the set-contact command.
func (c *SetContactCmd) Run(a *app.App) error {
	if c.Token == "" && !c.DryRun {
		return fmt.Errorf("--token is required unless --dry-run is set")
	}
	return a.SetContact(context.Background(), app.SetContactOptions{
		Endpoint: c.Endpoint,
		Token:    c.Token,
		Contact: hooks.SecurityContact{
			Email:        c.Email,
			Phone:        c.Phone,
			NotifyAdmins: c.NotifyAdmins,
		},
		DryRun: c.DryRun,
	})
}

// Run parses args, wires up the application, and executes the selected
// command. It returns the process exit code.
func Run(args []string, outW, errW io.Writer) int {
	var cli CLI
	exited := -1
	parser, err := kong.New(&cli,
		kong.Name("secplan"),
		kong.Description("Evaluates declarative deployment units into ordered, validated resource plans."),
		kong.Writers(outW, errW),
		kong.Exit(func(code int) { exited = code }),
	)
	if err != nil {
		fmt.Fprintln(errW, err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if exited >= 0 {
		// --help exits through kong's Exit hook after printing; whatever
		// Parse returns afterwards is not a real usage error.
		return exited
	}
	if err != nil {
		fmt.Fprintln(errW, err)
		return 2
	}

	a := app.NewApp(outW, errW, app.Config{
		LogLevel:  cli.LogLevel,
		LogFormat: cli.LogFormat,
	})

	if err := kctx.Run(a); err != nil {
		fmt.Fprintln(errW, "Error:", err)
		return 1
	}
	return 0
}
