package runner

import (
	"sync"
)

// Registry maps job types to their actors. It is safe for concurrent
// use.
type Registry struct {
	mu     sync.RWMutex
	actors map[string]Actor
}

// NewRegistry creates an empty actor registry.
func NewRegistry() *Registry {
	return &Registry{
		actors: make(map[string]Actor),
	}
}

// Register binds an actor to a job type. A later registration for the
// same type replaces the earlier one.
func (r *Registry) Register(jobType string, actor Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actors[jobType] = actor
}

// Get returns the actor for the given job type.
// Returns false if no actor is registered.
func (r *Registry) Get(jobType string) (Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[jobType]
	return a, ok
}

// Types returns all registered job types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.actors))
	for t := range r.actors {
		types = append(types, t)
	}
	return types
}
