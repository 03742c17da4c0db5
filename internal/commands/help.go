package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"apitools/internal/config"
	"apitools/internal/exitcode"
)

// HelpCmd implements the help command.
type HelpCmd[S any] struct {
	Registry *Registry[S]
}

func (c *HelpCmd[S]) Name() string      { return "help" }
func (c *HelpCmd[S]) Aliases() []string { return nil }
func (c *HelpCmd[S]) Synopsis() string  { return "Print usage" }
func (c *HelpCmd[S]) Usage() string     { return c.Registry.Bin + " help [command]" }
func (c *HelpCmd[S]) NeedsAuth() bool   { return false }

func (c *HelpCmd[S]) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd[S]) Run(ctx context.Context, cfg *config.Config, svc S, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := c.Registry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		return exitcode.Success
	}

	fmt.Fprint(out, HelpText(c.Registry))
	return exitcode.Success
}

// HelpText renders the usage summary for every registered command.
func HelpText[S any](r *Registry[S]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage:\n  %s <command> [common flags] [args...]\n\nCommands:\n", r.Bin)

	cmds := r.All()
	width := 0
	for _, cmd := range cmds {
		if len(cmd.Name()) > width {
			width = len(cmd.Name())
		}
	}
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, cmd.Name(), cmd.Synopsis())
	}

	b.WriteString("\nCommon flags:\n")
	b.WriteString("  --quiet   Suppress informational output\n")
	b.WriteString("  --debug   Log requests to stderr\n")
	fmt.Fprintf(&b, "\nRun '%s help <command>' for command usage.\n", r.Bin)
	return b.String()
}
