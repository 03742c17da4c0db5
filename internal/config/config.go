// Package config resolves per-invocation settings from the process
// environment.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"

	"apitools/internal/secret"
)

// Config holds settings shared by every command of one invocation.
type Config struct {
	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Log is the invocation logger. Never nil after New.
	Log hclog.Logger

	// Env is the environment source.
	Env *viper.Viper

	// Resolver turns credential references into values.
	Resolver secret.Resolver

	// Keyring stores credentials for login/logout.
	Keyring *secret.Keyring
}

// New creates a Config reading from the process environment.
func New() *Config {
	env := viper.New()
	env.AutomaticEnv()
	return &Config{
		Log:      hclog.NewNullLogger(),
		Env:      env,
		Resolver: secret.Default(),
		Keyring:  secret.NewKeyring(nil),
	}
}

// NewEnv returns an environment source holding exactly values.
func NewEnv(values map[string]string) *viper.Viper {
	env := viper.New()
	for k, v := range values {
		env.Set(k, v)
	}
	return env
}

// MissingError lists every required variable that was unset.
type MissingError struct {
	Service string
	Keys    []string

	// Example maps every variable the service reads to a sample value.
	Example map[string]string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// Help renders the missing names and a settings snippet.
func (e *MissingError) Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: missing %s configuration: %s\n\n", e.Service, strings.Join(e.Keys, ", "))
	b.WriteString("Please set the following environment variables:\n")
	snippet, err := json.MarshalIndent(map[string]any{"env": e.Example}, "", "  ")
	if err == nil {
		b.Write(snippet)
		b.WriteString("\n")
	}
	return b.String()
}

type setting struct {
	key      string
	example  string
	required bool
	secret   bool
	dest     *string
}

// load reads settings, reports all missing required keys at once, then
// resolves secret references.
func (c *Config) load(ctx context.Context, service string, settings []setting) error {
	example := make(map[string]string, len(settings))
	var missing []string
	for _, s := range settings {
		example[s.key] = s.example
		value := strings.TrimSpace(c.Env.GetString(s.key))
		if value == "" {
			if s.required {
				missing = append(missing, s.key)
			}
			continue
		}
		*s.dest = value
	}
	if len(missing) > 0 {
		return &MissingError{Service: service, Keys: missing, Example: example}
	}

	resolver := c.Resolver
	if resolver == nil {
		resolver = secret.Passthrough
	}
	for _, s := range settings {
		if !s.secret || *s.dest == "" {
			continue
		}
		value, err := resolver.Resolve(ctx, *s.dest)
		if err != nil {
			return err
		}
		*s.dest = value
	}
	return nil
}

// normalizeHost strips a scheme and trailing slashes from a host value.
func normalizeHost(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

// Logger returns Log, or a discarding logger when unset.
func (c *Config) Logger() hclog.Logger {
	if c.Log == nil {
		return hclog.NewNullLogger()
	}
	return c.Log
}
