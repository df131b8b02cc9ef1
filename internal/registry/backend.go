package registry

import "context"

// Backend is the storage contract a registry implementation must satisfy.
// It mirrors the original Rust RegistryBackend trait method-for-method so
// that in-memory and persistent implementations stay interchangeable.
type Backend interface {
	Init(ctx context.Context) error

	PutService(ctx context.Context, entry ServiceEntry) error
	GetService(ctx context.Context, name string) (ServiceEntry, bool, error)
	ListServices(ctx context.Context) ([]string, error)
	RemoveService(ctx context.Context, name string) error
	GetAllServices(ctx context.Context) ([]ServiceEntry, error)

	PutSubscription(ctx context.Context, sub EventSubscription) error
	GetSubscription(ctx context.Context, id string) (EventSubscription, bool, error)
	RemoveSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context) ([]EventSubscription, error)

	// PutTask, GetTask, RemoveTask, and ListTasks store one-shot task
	// records in a "task:<name>" key-space parallel to "service:<name>",
	// so internal/task's idempotency check survives a daemon restart.
	PutTask(ctx context.Context, task TaskRecord) error
	GetTask(ctx context.Context, name string) (TaskRecord, bool, error)
	RemoveTask(ctx context.Context, name string) error
	ListTasks(ctx context.Context) ([]TaskRecord, error)
}
