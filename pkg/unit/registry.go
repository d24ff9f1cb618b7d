package unit

import (
	"errors"
	"sync"
)

var (
	ErrCommandAlreadyRegistered = errors.New("command already registered")
	ErrQueryAlreadyRegistered   = errors.New("query already registered")
	ErrCommandNotFound          = errors.New("command not found")
	ErrQueryNotFound            = errors.New("query not found")
)

// Registry is the central thread-safe registry of Commands and Queries.
// The gateway and every protocol adapter resolve units through it.
type Registry struct {
	commands map[string]Command
	queries  map[string]Query
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		queries:  make(map[string]Query),
	}
}

func (r *Registry) RegisterCommand(cmd Command) error {
	if cmd == nil {
		return ErrCommandNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := cmd.Name()
	if _, exists := r.commands[name]; exists {
		return ErrCommandAlreadyRegistered
	}

	r.commands[name] = cmd
	return nil
}

func (r *Registry) RegisterQuery(q Query) error {
	if q == nil {
		return ErrQueryNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := q.Name()
	if _, exists := r.queries[name]; exists {
		return ErrQueryAlreadyRegistered
	}

	r.queries[name] = q
	return nil
}

// GetCommand retrieves a Command by name. Returns nil if not found.
func (r *Registry) GetCommand(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.commands[name]
}

// GetQuery retrieves a Query by name. Returns nil if not found.
func (r *Registry) GetQuery(name string) Query {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.queries[name]
}

func (r *Registry) ListCommands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	return result
}

func (r *Registry) ListQueries() []Query {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Query, 0, len(r.queries))
	for _, q := range r.queries {
		result = append(result, q)
	}
	return result
}

func (r *Registry) CommandCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.commands)
}

func (r *Registry) QueryCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.queries)
}

func (r *Registry) UnregisterCommand(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; !exists {
		return false
	}
	delete(r.commands, name)
	return true
}

func (r *Registry) UnregisterQuery(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.queries[name]; !exists {
		return false
	}
	delete(r.queries, name)
	return true
}
