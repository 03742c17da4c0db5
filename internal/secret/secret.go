// Package secret resolves credential references such as op://vault/item/field
// and keyring://name into their values.
package secret

import (
	"context"
	"fmt"
	"strings"
)

// Resolver turns a reference into a secret value.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Func adapts a function to Resolver.
type Func func(ctx context.Context, ref string) (string, error)

func (f Func) Resolve(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ResolveError reports a reference that could not be resolved.
type ResolveError struct {
	Ref  string
	Err  error
	Hint string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve secret %s: %v", e.Ref, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Chain dispatches references to a resolver by scheme prefix. Values with no
// registered prefix are returned unchanged.
type Chain map[string]Resolver

func (c Chain) Resolve(ctx context.Context, ref string) (string, error) {
	for prefix, r := range c {
		if strings.HasPrefix(ref, prefix) {
			return r.Resolve(ctx, ref)
		}
	}
	return ref, nil
}

// IsReference reports whether v uses one of the known reference schemes.
func IsReference(v string) bool {
	return strings.HasPrefix(v, OnePasswordPrefix) || strings.HasPrefix(v, KeyringPrefix)
}

// Default returns the resolver used by the binaries: 1Password CLI references
// and system keyring references.
func Default() Chain {
	return Chain{
		OnePasswordPrefix: NewOnePassword(),
		KeyringPrefix:     NewKeyring(nil),
	}
}

// Passthrough returns every value unchanged.
var Passthrough = Func(func(ctx context.Context, ref string) (string, error) {
	return ref, nil
})
