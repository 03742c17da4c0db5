// Package commands provides the command interface, the registry and the
// built-in commands shared by every binary.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"apitools/internal/config"
)

// Command defines the interface for CLI commands. S is the backend client
// handed to commands that need authentication.
type Command[S any] interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command talks to the remote API.
	// help, version, login and logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// svc is the zero value if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc S, args []string, out, errOut io.Writer) int
}
