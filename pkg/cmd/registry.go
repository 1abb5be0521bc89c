package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownCommand is returned by Registry.Run for keys nothing handles.
var ErrUnknownCommand = errors.New("unknown command")

// DefaultRegistry holds the commands registered from init().
var DefaultRegistry = NewRegistry()

// Registry stores commands by name and resolves invocation keys.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. It panics when the name is taken, like
// http.Handle, since registration happens at init time.
func (r *Registry) Register(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[c.Name()]; dup {
		panic(fmt.Sprintf("cmd: command %q registered twice", c.Name()))
	}
	r.commands[c.Name()] = c
}

// Get returns the command with the given name, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// Resolve finds the command for key. Component custom ids are routed by
// their prefix: "lock:unlock" resolves to "lock" with args ["unlock"].
func (r *Registry) Resolve(key string) (Command, []string) {
	parts := strings.Split(key, ":")
	c := r.Get(parts[0])
	if c == nil {
		return nil, nil
	}
	return c, parts[1:]
}

// Run resolves inv.Key and runs the command.
func (r *Registry) Run(ctx context.Context, inv *Invocation) error {
	c, args := r.Resolve(inv.Key)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Key)
	}
	inv.Args = args
	return c.Run(ctx, inv)
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
