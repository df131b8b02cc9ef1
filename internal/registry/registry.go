package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"harness/internal/harnesserr"
	"harness/pkg/logging"
)

// subscriberQueueSize bounds each subscriber's event channel. A connection
// that cannot keep up is disconnected rather than allowed to block writers.
const subscriberQueueSize = 64

// Registry is the orchestrator- and daemon-facing API over a Backend. It
// adds in-process subscription fan-out on top of whatever durability the
// Backend provides, and serializes writes per service name so that two
// concurrent updates to the same entry cannot interleave.
type Registry struct {
	backend Backend

	mu          sync.Mutex
	keyLocks    map[string]*sync.Mutex
	subscribers map[string]chan Event
}

// New returns a Registry backed by backend. Callers own the Backend's
// lifecycle (e.g. closing a BadgerBackend) independently of the Registry.
func New(backend Backend) *Registry {
	return &Registry{
		backend:     backend,
		keyLocks:    make(map[string]*sync.Mutex),
		subscribers: make(map[string]chan Event),
	}
}

// Init prepares the underlying backend for use.
func (r *Registry) Init(ctx context.Context) error {
	return r.backend.Init(ctx)
}

func (r *Registry) lockFor(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.keyLocks[name]
	if !ok {
		l = &sync.Mutex{}
		r.keyLocks[name] = l
	}
	return l
}

// Put stores entry, publishing Registered if it is new or StateChanged /
// Updated otherwise.
func (r *Registry) Put(ctx context.Context, entry ServiceEntry) error {
	lock := r.lockFor(entry.Name)
	lock.Lock()
	defer lock.Unlock()

	existing, had, err := r.backend.GetService(ctx, entry.Name)
	if err != nil {
		return fmt.Errorf("put service %q: %w", entry.Name, err)
	}

	if err := r.backend.PutService(ctx, entry); err != nil {
		return fmt.Errorf("put service %q: %w", entry.Name, err)
	}

	switch {
	case !had:
		r.publish(Event{Type: EventRegistered, ServiceName: entry.Name, Entry: entry})
	case existing.State != entry.State:
		r.publish(Event{Type: EventStateChanged, ServiceName: entry.Name, Entry: entry})
	default:
		r.publish(Event{Type: EventUpdated, ServiceName: entry.Name, Entry: entry})
	}
	return nil
}

// Get returns the stored entry for name, or a NotFoundError.
func (r *Registry) Get(ctx context.Context, name string) (ServiceEntry, error) {
	entry, ok, err := r.backend.GetService(ctx, name)
	if err != nil {
		return ServiceEntry{}, fmt.Errorf("get service %q: %w", name, err)
	}
	if !ok {
		return ServiceEntry{}, harnesserr.NewNotFoundError("service", name)
	}
	return entry, nil
}

// List returns every registered service entry.
func (r *Registry) List(ctx context.Context) ([]ServiceEntry, error) {
	entries, err := r.backend.GetAllServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return entries, nil
}

// Remove deletes name from the registry and publishes Removed.
func (r *Registry) Remove(ctx context.Context, name string) error {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	if err := r.backend.RemoveService(ctx, name); err != nil {
		return fmt.Errorf("remove service %q: %w", name, err)
	}
	r.publish(Event{Type: EventRemoved, ServiceName: name})
	return nil
}

// SetEndpoint adds or updates a single endpoint on an existing entry and
// publishes EndpointAdded.
func (r *Registry) SetEndpoint(ctx context.Context, name, endpointName, value string) error {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	entry, ok, err := r.backend.GetService(ctx, name)
	if err != nil {
		return fmt.Errorf("set endpoint on %q: %w", name, err)
	}
	if !ok {
		return harnesserr.NewNotFoundError("service", name)
	}
	if entry.Endpoints == nil {
		entry.Endpoints = make(map[string]string)
	}
	entry.Endpoints[endpointName] = value
	if err := r.backend.PutService(ctx, entry); err != nil {
		return fmt.Errorf("set endpoint on %q: %w", name, err)
	}
	r.publish(Event{Type: EventEndpointAdded, ServiceName: name, Entry: entry})
	return nil
}

// RemoveEndpoint deletes a single endpoint and publishes EndpointRemoved.
func (r *Registry) RemoveEndpoint(ctx context.Context, name, endpointName string) error {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	entry, ok, err := r.backend.GetService(ctx, name)
	if err != nil {
		return fmt.Errorf("remove endpoint on %q: %w", name, err)
	}
	if !ok {
		return harnesserr.NewNotFoundError("service", name)
	}
	delete(entry.Endpoints, endpointName)
	if err := r.backend.PutService(ctx, entry); err != nil {
		return fmt.Errorf("remove endpoint on %q: %w", name, err)
	}
	r.publish(Event{Type: EventEndpointRemoved, ServiceName: name, Entry: entry})
	return nil
}

// Subscribe registers id to receive events matching sub.Events and returns
// a channel of them. The channel is closed when Unsubscribe is called or
// when the subscriber is dropped for falling behind.
func (r *Registry) Subscribe(ctx context.Context, sub EventSubscription) (<-chan Event, error) {
	if err := r.backend.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("subscribe %q: %w", sub.ID, err)
	}

	ch := make(chan Event, subscriberQueueSize)
	r.mu.Lock()
	r.subscribers[sub.ID] = ch
	r.mu.Unlock()
	return ch, nil
}

// Unsubscribe removes id's subscription and closes its channel.
func (r *Registry) Unsubscribe(ctx context.Context, id string) error {
	r.mu.Lock()
	ch, ok := r.subscribers[id]
	delete(r.subscribers, id)
	r.mu.Unlock()
	if ok {
		close(ch)
	}
	return r.backend.RemoveSubscription(ctx, id)
}

// PutTask persists a task record, stamping UpdatedAt. Unlike service
// entries, task records are not broadcast to subscribers — they are a
// pull-based status surface, not an event source.
func (r *Registry) PutTask(ctx context.Context, task TaskRecord) error {
	task.UpdatedAt = time.Now()
	if err := r.backend.PutTask(ctx, task); err != nil {
		return fmt.Errorf("put task %q: %w", task.Name, err)
	}
	return nil
}

// GetTask returns the stored task record for name, or a NotFoundError.
func (r *Registry) GetTask(ctx context.Context, name string) (TaskRecord, error) {
	task, ok, err := r.backend.GetTask(ctx, name)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("get task %q: %w", name, err)
	}
	if !ok {
		return TaskRecord{}, harnesserr.NewNotFoundError("task", name)
	}
	return task, nil
}

// ListTasks returns every persisted task record.
func (r *Registry) ListTasks(ctx context.Context) ([]TaskRecord, error) {
	tasks, err := r.backend.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// publish fans evt out to every matching subscriber. A subscriber whose
// channel is full is dropped rather than blocking the writer that
// triggered the event — slow consumers lose events, not the registry.
func (r *Registry) publish(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, ch := range r.subscribers {
		sub, ok, err := r.backend.GetSubscription(context.Background(), id)
		if err != nil || !ok || !sub.Matches(evt.Type) {
			continue
		}
		select {
		case ch <- evt:
		default:
			logging.WithComponent("registry").Warn().
				Str("subscription", id).
				Str("event", string(evt.Type)).
				Msg("dropping event for slow subscriber")
			close(ch)
			delete(r.subscribers, id)
		}
	}
}
