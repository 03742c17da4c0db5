package secret

import (
	"context"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

// KeyringPrefix marks a system keyring reference.
const KeyringPrefix = "keyring://"

// ServiceName is the keyring service credentials are stored under.
const ServiceName = "apitools"

const keyringHint = "Store the value first with the login command: login <name> <value>"

// Keyring resolves keyring://name references and manages stored items.
type Keyring struct {
	open func() (keyring.Keyring, error)
}

// NewKeyring returns a Keyring backed by ring, or by the system keyring when
// ring is nil.
func NewKeyring(ring keyring.Keyring) *Keyring {
	if ring != nil {
		return &Keyring{open: func() (keyring.Keyring, error) { return ring, nil }}
	}
	return &Keyring{open: openKeyring}
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/apitools/credentials",
		FilePasswordFunc:         keyring.TerminalPrompt,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringRef returns the reference string for a stored name.
func KeyringRef(name string) string {
	return KeyringPrefix + name
}

func (k *Keyring) Resolve(ctx context.Context, ref string) (string, error) {
	name := strings.TrimPrefix(ref, KeyringPrefix)
	value, err := k.Get(name)
	if err != nil {
		return "", &ResolveError{Ref: ref, Err: err, Hint: keyringHint}
	}
	return value, nil
}

// Get returns the value stored under name.
func (k *Keyring) Get(name string) (string, error) {
	ring, err := k.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(name)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", name, err)
	}
	return string(item.Data), nil
}

// Store saves value under name.
func (k *Keyring) Store(name, value string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	err = ring.Set(keyring.Item{
		Key:   name,
		Data:  []byte(value),
		Label: ServiceName + " " + name,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", name, err)
	}
	return nil
}

// Remove deletes the value stored under name.
func (k *Keyring) Remove(name string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(name); err != nil {
		return fmt.Errorf("deleting credential %q: %w", name, err)
	}
	return nil
}
