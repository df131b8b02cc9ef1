package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harness/internal/harnesserr"
)

// backends returns every Backend implementation under test, so property
// tests run identically against each.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	badgerBackend, err := OpenBadgerBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerBackend.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"badger": badgerBackend,
	}
}

func TestBackendPutGetRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			entry := ServiceEntry{Name: "redis", State: StateRunning}
			require.NoError(t, backend.PutService(ctx, entry))

			got, ok, err := backend.GetService(ctx, "redis")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, StateRunning, got.State)

			_, ok, err = backend.GetService(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBackendListAndRemoveService(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.PutService(ctx, ServiceEntry{Name: "a"}))
			require.NoError(t, backend.PutService(ctx, ServiceEntry{Name: "b"}))

			names, err := backend.ListServices(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"a", "b"}, names)

			require.NoError(t, backend.RemoveService(ctx, "a"))
			names, err = backend.ListServices(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"b"}, names)
		})
	}
}

func TestBackendSubscriptionRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sub := EventSubscription{ID: "conn-1", Events: []EventType{EventStateChanged}}
			require.NoError(t, backend.PutSubscription(ctx, sub))

			got, ok, err := backend.GetSubscription(ctx, "conn-1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, sub.Events, got.Events)

			require.NoError(t, backend.RemoveSubscription(ctx, "conn-1"))
			_, ok, err = backend.GetSubscription(ctx, "conn-1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRegistryPutPublishesRegisteredThenStateChanged(t *testing.T) {
	ctx := context.Background()
	reg := New(NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))

	events, err := reg.Subscribe(ctx, EventSubscription{
		ID:     "watcher",
		Events: []EventType{EventRegistered, EventStateChanged},
	})
	require.NoError(t, err)

	require.NoError(t, reg.Put(ctx, ServiceEntry{Name: "redis", State: StateRegistered}))
	require.NoError(t, reg.Put(ctx, ServiceEntry{Name: "redis", State: StateRunning}))

	first := <-events
	assert.Equal(t, EventRegistered, first.Type)

	second := <-events
	assert.Equal(t, EventStateChanged, second.Type)
	assert.Equal(t, StateRunning, second.Entry.State)
}

func TestRegistryGetMissingReturnsNotFoundError(t *testing.T) {
	ctx := context.Background()
	reg := New(NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))

	_, err := reg.Get(ctx, "nope")
	require.Error(t, err)
	var notFound *harnesserr.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestRegistrySubscriptionFiltersByEventType(t *testing.T) {
	ctx := context.Background()
	reg := New(NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))

	events, err := reg.Subscribe(ctx, EventSubscription{
		ID:     "watcher",
		Events: []EventType{EventRemoved},
	})
	require.NoError(t, err)

	require.NoError(t, reg.Put(ctx, ServiceEntry{Name: "redis", State: StateRegistered}))
	require.NoError(t, reg.Remove(ctx, "redis"))

	evt := <-events
	assert.Equal(t, EventRemoved, evt.Type)
}

func TestRegistrySlowSubscriberIsDroppedNotBlocking(t *testing.T) {
	ctx := context.Background()
	reg := New(NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))

	_, err := reg.Subscribe(ctx, EventSubscription{
		ID:     "slow",
		Events: []EventType{EventUpdated},
	})
	require.NoError(t, err)

	for i := 0; i < subscriberQueueSize+10; i++ {
		err := reg.Put(ctx, ServiceEntry{Name: "redis", State: StateRunning, Metadata: map[string]string{"i": "x"}})
		require.NoError(t, err)
	}
	// No deadlock: reaching here means publish() never blocked on the full
	// channel.
}

func TestRegistrySetAndRemoveEndpoint(t *testing.T) {
	ctx := context.Background()
	reg := New(NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))
	require.NoError(t, reg.Put(ctx, ServiceEntry{Name: "redis"}))

	require.NoError(t, reg.SetEndpoint(ctx, "redis", "main", "localhost:6380"))
	entry, err := reg.Get(ctx, "redis")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", entry.Endpoints["main"])

	require.NoError(t, reg.RemoveEndpoint(ctx, "redis", "main"))
	entry, err = reg.Get(ctx, "redis")
	require.NoError(t, err)
	_, ok := entry.Endpoints["main"]
	assert.False(t, ok)
}

func TestBackendTaskRoundTripAndRemoval(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			task := TaskRecord{Name: "deploy-subgraph", TaskType: "deploy-package", State: TaskRunning}
			require.NoError(t, backend.PutTask(ctx, task))

			got, ok, err := backend.GetTask(ctx, "deploy-subgraph")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, TaskRunning, got.State)

			tasks, err := backend.ListTasks(ctx)
			require.NoError(t, err)
			assert.Len(t, tasks, 1)

			require.NoError(t, backend.RemoveTask(ctx, "deploy-subgraph"))
			_, ok, err = backend.GetTask(ctx, "deploy-subgraph")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRegistryPutTaskStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	reg := New(NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))

	require.NoError(t, reg.PutTask(ctx, TaskRecord{Name: "deploy-subgraph", TaskType: "deploy-package", State: TaskCompleted}))

	got, err := reg.GetTask(ctx, "deploy-subgraph")
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, got.State)
	assert.False(t, got.UpdatedAt.IsZero())

	_, err = reg.GetTask(ctx, "missing")
	var nf *harnesserr.NotFoundError
	require.ErrorAs(t, err, &nf)
}
