// Package cli parses the command line and dispatches to registered commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/secret"
)

// ServiceFactory creates the backend client from config.
// Used to inject the backend during dispatch.
type ServiceFactory[S any] func(ctx context.Context, cfg *config.Config) (S, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher[S any] struct {
	registry  *commands.Registry[S]
	factory   ServiceFactory[S]
	newConfig func() *config.Config
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher[S any](registry *commands.Registry[S], factory ServiceFactory[S]) *Dispatcher[S] {
	return &Dispatcher[S]{
		registry:  registry,
		factory:   factory,
		newConfig: config.New,
	}
}

// WithConfig replaces how the per-invocation Config is built (used by tests).
func (d *Dispatcher[S]) WithConfig(fn func() *config.Config) *Dispatcher[S] {
	d.newConfig = fn
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher[S]) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		args = []string{"help"}
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher[S]) dispatchCommand(ctx context.Context, cmd commands.Command[S], args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var quiet bool
	var debug bool

	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return reportFlagError(err, cmd, out, errOut)
	}

	cfg := d.newConfig()
	cfg.Quiet = quiet
	cfg.Debug = debug

	level := hclog.Off
	if debug {
		level = hclog.Debug
	}
	cfg.Log = hclog.New(&hclog.LoggerOptions{
		Name:   d.registry.Bin,
		Level:  level,
		Output: errOut,
	})

	var svc S
	if cmd.NeedsAuth() {
		var err error
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			return reportSetupError(err, errOut)
		}
	}

	return cmd.Run(ctx, cfg, svc, fs.Args(), out, errOut)
}

func reportFlagError[S any](err error, cmd commands.Command[S], out, errOut io.Writer) int {
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(out, "Usage:\n  %s\n", cmd.Usage())
		return exitcode.Success
	}

	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "unknown flag: "):
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", strings.TrimPrefix(errStr, "unknown flag: "))
	case strings.HasPrefix(errStr, "unknown shorthand flag: "):
		flag := errStr
		if i := strings.LastIndex(errStr, " in "); i >= 0 {
			flag = errStr[i+len(" in "):]
		}
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flag)
	default:
		fmt.Fprintf(errOut, "error: %s\n", errStr)
	}
	return exitcode.UserError
}

func reportSetupError(err error, errOut io.Writer) int {
	var missing *config.MissingError
	var resolveErr *secret.ResolveError
	var invalid validation.Errors

	switch {
	case errors.As(err, &missing):
		fmt.Fprint(errOut, missing.Help())
		return exitcode.ConfigError
	case errors.As(err, &resolveErr):
		fmt.Fprintf(errOut, "error: %v\n\n%s\n", err, resolveErr.Hint)
		return exitcode.ConfigError
	case errors.As(err, &invalid):
		fmt.Fprintf(errOut, "error: invalid configuration: %v\n", err)
		return exitcode.ConfigError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
