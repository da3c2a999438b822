// Package command provides the named-command dispatcher shared by all
// transports. Commands take named string arguments decoded from a JSON
// object and return either a value or an error.
package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
)

// HandlerFunc executes a command with validated arguments.
type HandlerFunc func(ctx context.Context, args Args) (any, error)

// Param describes a required named argument.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Command is a named operation invokable by the front-end.
type Command struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []Param     `json:"params"`
	Mutating    bool        `json:"mutating"`
	Handler     HandlerFunc `json:"-"`
}

// Observer is notified after every invocation, successful or not.
type Observer func(ctx context.Context, inv models.Invocation)

// Registry maps command names to handlers.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]Command
	order     []string
	observers []Observer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c. Names must be unique and handlers non-nil.
func (r *Registry) Register(c Command) error {
	if c.Name == "" {
		return fmt.Errorf("command: empty name")
	}
	if c.Handler == nil {
		return fmt.Errorf("command: %s has no handler", c.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[c.Name]; dup {
		return fmt.Errorf("command: %s already registered", c.Name)
	}
	r.commands[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

// Observe adds an invocation observer.
func (r *Registry) Observe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// Invoke decodes raw into the command's arguments and runs it.
// raw may be empty or JSON null when the command takes no arguments.
func (r *Registry) Invoke(ctx context.Context, name string, raw []byte) (any, error) {
	start := time.Now()

	c, ok := r.Lookup(name)
	if !ok {
		err := apperr.New(apperr.KindUnknownCommand, name, "",
			fmt.Errorf("command %s not found", name))
		r.notify(ctx, name, nil, err, start)
		return nil, err
	}

	args, err := decodeArgs(c, raw)
	if err != nil {
		r.notify(ctx, name, nil, err, start)
		return nil, err
	}

	result, err := c.Handler(ctx, args)
	r.notify(ctx, name, args, err, start)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Registry) notify(ctx context.Context, name string, args Args, err error, start time.Time) {
	r.mu.RLock()
	observers := r.observers
	r.mu.RUnlock()
	if len(observers) == 0 {
		return
	}

	inv := models.Invocation{
		Command:   name,
		Path:      args["path"],
		OK:        err == nil,
		Duration:  time.Since(start),
		InvokedAt: start.UTC(),
	}
	if content, ok := args["content"]; ok {
		inv.Checksum = checksum.Sum([]byte(content))
	}
	if err != nil {
		inv.ErrorKind = string(apperr.KindOf(err))
		inv.Error = err.Error()
	}
	for _, o := range observers {
		o(ctx, inv)
	}
}
