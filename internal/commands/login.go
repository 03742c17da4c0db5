package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/99designs/keyring"
	"github.com/spf13/pflag"

	"apitools/internal/config"
	"apitools/internal/exitcode"
	"apitools/internal/secret"
)

// LoginCmd stores a credential in the system keyring.
type LoginCmd[S any] struct {
	Registry *Registry[S]

	// Keys lists the credential names this binary reads.
	Keys []string

	// Stdin is read when the value argument is "-". Defaults to os.Stdin.
	Stdin io.Reader
}

func (c *LoginCmd[S]) Name() string      { return "login" }
func (c *LoginCmd[S]) Aliases() []string { return nil }
func (c *LoginCmd[S]) Synopsis() string  { return "Store a credential in the system keyring" }
func (c *LoginCmd[S]) Usage() string {
	return c.Registry.Bin + " login <" + strings.Join(c.Keys, "|") + "> <value|->"
}
func (c *LoginCmd[S]) NeedsAuth() bool { return false }

func (c *LoginCmd[S]) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LoginCmd[S]) Run(ctx context.Context, cfg *config.Config, svc S, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintf(errOut, "error: usage: %s\n", c.Usage())
		return exitcode.UserError
	}
	name, value := args[0], args[1]
	if !slices.Contains(c.Keys, name) {
		fmt.Fprintf(errOut, "error: unknown credential: %s (expected one of %s)\n", name, strings.Join(c.Keys, ", "))
		return exitcode.UserError
	}

	if value == "-" {
		in := c.Stdin
		if in == nil {
			in = os.Stdin
		}
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			fmt.Fprintf(errOut, "error: reading value: %v\n", err)
			return exitcode.UserError
		}
		value = strings.TrimSpace(line)
	}
	if value == "" {
		fmt.Fprintln(errOut, "error: value required")
		return exitcode.UserError
	}

	if err := cfg.Keyring.Store(name, value); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok\nexport %s=%s\n", name, secret.KeyringRef(name))
	}
	return exitcode.Success
}

// LogoutCmd removes a stored credential.
type LogoutCmd[S any] struct {
	Registry *Registry[S]
	Keys     []string
}

func (c *LogoutCmd[S]) Name() string      { return "logout" }
func (c *LogoutCmd[S]) Aliases() []string { return nil }
func (c *LogoutCmd[S]) Synopsis() string  { return "Remove stored credentials" }
func (c *LogoutCmd[S]) Usage() string {
	return c.Registry.Bin + " logout [" + strings.Join(c.Keys, "|") + "]"
}
func (c *LogoutCmd[S]) NeedsAuth() bool { return false }

func (c *LogoutCmd[S]) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LogoutCmd[S]) Run(ctx context.Context, cfg *config.Config, svc S, args []string, out, errOut io.Writer) int {
	names := c.Keys
	if len(args) > 0 {
		names = args
	}

	for _, name := range names {
		if !slices.Contains(c.Keys, name) {
			fmt.Fprintf(errOut, "error: unknown credential: %s (expected one of %s)\n", name, strings.Join(c.Keys, ", "))
			return exitcode.UserError
		}
	}

	for _, name := range names {
		err := cfg.Keyring.Remove(name)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			cfg.Logger().Debug("credential not stored", "name", name)
			continue
		}
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to remove credential %s: %v\n", name, err)
			return exitcode.ConfigError
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RegisterBuiltins adds help, version, login and logout to r. keys are the
// credential names login accepts.
func RegisterBuiltins[S any](r *Registry[S], keys ...string) {
	r.MustRegister(
		&HelpCmd[S]{Registry: r},
		&VersionCmd[S]{Registry: r},
		&LoginCmd[S]{Registry: r, Keys: keys},
		&LogoutCmd[S]{Registry: r, Keys: keys},
	)
}
