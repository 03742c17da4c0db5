package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"apitools/internal/config"
	"apitools/internal/exitcode"
)

// Version is the release version of every binary.
const Version = "0.1.0"

// VersionCmd implements the version command.
type VersionCmd[S any] struct {
	Registry *Registry[S]
}

func (c *VersionCmd[S]) Name() string      { return "version" }
func (c *VersionCmd[S]) Aliases() []string { return nil }
func (c *VersionCmd[S]) Synopsis() string  { return "Print version" }
func (c *VersionCmd[S]) Usage() string     { return c.Registry.Bin + " version" }
func (c *VersionCmd[S]) NeedsAuth() bool   { return false }

func (c *VersionCmd[S]) RegisterFlags(fs *pflag.FlagSet) {}

func (c *VersionCmd[S]) Run(ctx context.Context, cfg *config.Config, svc S, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "%s %s\n", c.Registry.Bin, Version)
	return exitcode.Success
}
