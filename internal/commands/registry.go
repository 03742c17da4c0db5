package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the commands of one binary.
type Registry[S any] struct {
	// Bin is the binary name used in help and version output.
	Bin string

	mu   sync.RWMutex
	cmds map[string]Command[S] // name and aliases map to command
}

// NewRegistry creates a new command registry for bin.
func NewRegistry[S any](bin string) *Registry[S] {
	return &Registry[S]{
		Bin:  bin,
		cmds: make(map[string]Command[S]),
	}
}

// Register adds a command to the registry.
// Returns an error if the name or any alias is already registered.
func (r *Registry[S]) Register(c Command[S]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}

	for _, alias := range c.Aliases() {
		if _, exists := r.cmds[alias]; exists {
			return fmt.Errorf("command alias already registered: %s", alias)
		}
	}

	r.cmds[name] = c
	for _, alias := range c.Aliases() {
		r.cmds[alias] = c
	}

	return nil
}

// MustRegister is Register that panics on duplicates. Used from init().
func (r *Registry[S]) MustRegister(cmds ...Command[S]) {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Find looks up a command by name or alias.
func (r *Registry[S]) Find(name string) (Command[S], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all unique commands sorted by name.
func (r *Registry[S]) All() []Command[S] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]Command[S])
	for _, cmd := range r.cmds {
		seen[cmd.Name()] = cmd
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command[S], len(names))
	for i, name := range names {
		result[i] = seen[name]
	}
	return result
}
