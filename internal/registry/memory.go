package registry

import (
	"context"
	"sync"
)

// MemoryBackend is a process-local Backend backed by plain maps guarded by
// an RWMutex. It is the default for single-daemon-process deployments and
// for tests.
type MemoryBackend struct {
	mu            sync.RWMutex
	services      map[string]ServiceEntry
	subscriptions map[string]EventSubscription
	tasks         map[string]TaskRecord
}

// NewMemoryBackend returns an initialized, empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		services:      make(map[string]ServiceEntry),
		subscriptions: make(map[string]EventSubscription),
		tasks:         make(map[string]TaskRecord),
	}
}

func (b *MemoryBackend) Init(ctx context.Context) error { return nil }

func (b *MemoryBackend) PutService(ctx context.Context, entry ServiceEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.services[entry.Name] = entry
	return nil
}

func (b *MemoryBackend) GetService(ctx context.Context, name string) (ServiceEntry, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.services[name]
	return e, ok, nil
}

func (b *MemoryBackend) ListServices(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.services))
	for name := range b.services {
		names = append(names, name)
	}
	return names, nil
}

func (b *MemoryBackend) RemoveService(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.services, name)
	return nil
}

func (b *MemoryBackend) GetAllServices(ctx context.Context) ([]ServiceEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := make([]ServiceEntry, 0, len(b.services))
	for _, e := range b.services {
		entries = append(entries, e)
	}
	return entries, nil
}

func (b *MemoryBackend) PutSubscription(ctx context.Context, sub EventSubscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[sub.ID] = sub
	return nil
}

func (b *MemoryBackend) GetSubscription(ctx context.Context, id string) (EventSubscription, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.subscriptions[id]
	return s, ok, nil
}

func (b *MemoryBackend) RemoveSubscription(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscriptions, id)
	return nil
}

func (b *MemoryBackend) ListSubscriptions(ctx context.Context) ([]EventSubscription, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := make([]EventSubscription, 0, len(b.subscriptions))
	for _, s := range b.subscriptions {
		subs = append(subs, s)
	}
	return subs, nil
}

func (b *MemoryBackend) PutTask(ctx context.Context, task TaskRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks[task.Name] = task
	return nil
}

func (b *MemoryBackend) GetTask(ctx context.Context, name string) (TaskRecord, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tasks[name]
	return t, ok, nil
}

func (b *MemoryBackend) RemoveTask(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tasks, name)
	return nil
}

func (b *MemoryBackend) ListTasks(ctx context.Context) ([]TaskRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	tasks := make([]TaskRecord, 0, len(b.tasks))
	for _, t := range b.tasks {
		tasks = append(tasks, t)
	}
	return tasks, nil
}
