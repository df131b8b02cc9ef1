package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// JsonService is a type-erased action: it takes a raw JSON input and
// returns a channel of raw JSON events. Concrete implementations decode
// Input themselves and encode each emitted Event before sending, so the
// orchestrator and daemon layers never need a concrete Go type for either
// side of the exchange.
type JsonService interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input json.RawMessage) (<-chan json.RawMessage, error)
}

// TaskType is a JsonService for a one-shot action (deploy, migrate, seed)
// rather than a long-lived service. Type returns the discriminant stored
// alongside the task in the registry; IsCompleted lets a caller skip
// re-running an action whose effect already happened — e.g. a package
// already extracted to its destination.
type TaskType interface {
	JsonService
	Type() string
	IsCompleted(ctx context.Context, input json.RawMessage) (bool, error)
}

// Constructor builds a fresh TaskType instance. Task types are
// stateless configuration objects, not the in-flight execution itself, so
// a constructor rather than a shared singleton keeps concurrent
// invocations of the same type from sharing mutable state by accident.
type Constructor func() TaskType

// Registry maps task_type discriminant strings to constructors, so new
// task types can be added without the orchestrator or daemon layers
// knowing about them ahead of time.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty task-type registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds or replaces the constructor for typeName.
func (r *Registry) Register(typeName string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[typeName] = ctor
}

// New builds a TaskType instance for typeName, or an error if no
// constructor was registered for it.
func (r *Registry) New(typeName string) (TaskType, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown task type: %s", typeName)
	}
	return ctor(), nil
}
