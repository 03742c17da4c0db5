package secret

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// OnePasswordPrefix marks a 1Password secret reference.
const OnePasswordPrefix = "op://"

const onePasswordHint = `Make sure the 1Password CLI is installed and signed in:
  1. Install: https://developer.1password.com/docs/cli/get-started/
  2. Sign in: op signin
  3. Check the reference: op read "<reference>"`

// RunFunc runs a command and returns its standard output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// OnePassword resolves op:// references with "op read".
type OnePassword struct {
	Run RunFunc
}

// NewOnePassword returns a resolver that shells out to the op binary.
func NewOnePassword() *OnePassword {
	return &OnePassword{Run: runCommand}
}

func (o *OnePassword) Resolve(ctx context.Context, ref string) (string, error) {
	out, err := o.Run(ctx, "op", "read", ref)
	if err != nil {
		return "", &ResolveError{
			Ref:  ref,
			Err:  err,
			Hint: strings.ReplaceAll(onePasswordHint, "<reference>", ref),
		}
	}
	value := strings.TrimRight(string(out), " \t\r\n")
	if value == "" {
		return "", &ResolveError{Ref: ref, Err: errors.New("empty value"), Hint: onePasswordHint}
	}
	return value, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
