package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	serviceKeyPrefix      = "service:"
	subscriptionKeyPrefix = "subscription:"
	taskKeyPrefix         = "task:"
)

// BadgerBackend is a Backend implementation backed by an embedded BadgerDB,
// used when the daemon is configured for persistence across restarts
// (registry state otherwise survives only as long as the process).
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadgerBackend opens (creating if necessary) a BadgerDB database
// rooted at dir, typically "<data-dir>/registry.db".
func OpenBadgerBackend(dir string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

// Close releases the underlying database handle.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

func (b *BadgerBackend) Init(ctx context.Context) error { return nil }

func (b *BadgerBackend) PutService(ctx context.Context, entry ServiceEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal service entry: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(serviceKeyPrefix+entry.Name), data)
	})
}

func (b *BadgerBackend) GetService(ctx context.Context, name string) (ServiceEntry, bool, error) {
	var entry ServiceEntry
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(serviceKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get service %q: %w", name, err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return ServiceEntry{}, false, err
	}
	return entry, found, nil
}

func (b *BadgerBackend) ListServices(ctx context.Context) ([]string, error) {
	var names []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(serviceKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			names = append(names, string(key[len(serviceKeyPrefix):]))
		}
		return nil
	})
	return names, err
}

func (b *BadgerBackend) RemoveService(ctx context.Context, name string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(serviceKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (b *BadgerBackend) GetAllServices(ctx context.Context) ([]ServiceEntry, error) {
	var entries []ServiceEntry
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(serviceKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry ServiceEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("unmarshal service entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

func (b *BadgerBackend) PutSubscription(ctx context.Context, sub EventSubscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(subscriptionKeyPrefix+sub.ID), data)
	})
}

func (b *BadgerBackend) GetSubscription(ctx context.Context, id string) (EventSubscription, bool, error) {
	var sub EventSubscription
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(subscriptionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get subscription %q: %w", id, err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sub)
		})
	})
	if err != nil {
		return EventSubscription{}, false, err
	}
	return sub, found, nil
}

func (b *BadgerBackend) RemoveSubscription(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(subscriptionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (b *BadgerBackend) ListSubscriptions(ctx context.Context) ([]EventSubscription, error) {
	var subs []EventSubscription
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(subscriptionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var sub EventSubscription
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sub)
			})
			if err != nil {
				return fmt.Errorf("unmarshal subscription: %w", err)
			}
			subs = append(subs, sub)
		}
		return nil
	})
	return subs, err
}

func (b *BadgerBackend) PutTask(ctx context.Context, task TaskRecord) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(taskKeyPrefix+task.Name), data)
	})
}

func (b *BadgerBackend) GetTask(ctx context.Context, name string) (TaskRecord, bool, error) {
	var task TaskRecord
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(taskKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get task %q: %w", name, err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		})
	})
	if err != nil {
		return TaskRecord{}, false, err
	}
	return task, found, nil
}

func (b *BadgerBackend) RemoveTask(ctx context.Context, name string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(taskKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (b *BadgerBackend) ListTasks(ctx context.Context) ([]TaskRecord, error) {
	var tasks []TaskRecord
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(taskKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var task TaskRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &task)
			})
			if err != nil {
				return fmt.Errorf("unmarshal task: %w", err)
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	return tasks, err
}
