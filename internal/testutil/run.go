package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/99designs/keyring"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"apitools/internal/commands"
	"apitools/internal/config"
	"apitools/internal/secret"
)

// Config returns a Config with an empty environment, no secret resolution
// and an in-memory keyring.
func Config() *config.Config {
	return &config.Config{
		Log:      hclog.NewNullLogger(),
		Env:      config.NewEnv(nil),
		Resolver: secret.Passthrough,
		Keyring:  secret.NewKeyring(keyring.NewArrayKeyring(nil)),
	}
}

// RunCommand parses args the way the dispatcher does, then runs cmd against
// svc.
func RunCommand[S any](t *testing.T, cmd commands.Command[S], svc S, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	return RunCommandWith(t, Config(), cmd, svc, args...)
}

// RunCommandWith is RunCommand with a caller-supplied Config.
func RunCommandWith[S any](t *testing.T, cfg *config.Config, cmd commands.Command[S], svc S, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.BoolVar(&cfg.Quiet, "quiet", false, "")
	fs.BoolVar(&cfg.Debug, "debug", false, "")
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing args %v: %v", args, err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}
