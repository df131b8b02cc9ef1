package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"harness/pkg/logging"
)

const defaultDebounceInterval = 500 * time.Millisecond

// Watcher reloads a configuration file whenever it changes on disk and
// pushes the newly validated document to a channel. It watches the file's
// parent directory rather than the file itself, since editors commonly
// replace a file by renaming a temp file over it, which would otherwise
// orphan a watch held directly on the old inode.
type Watcher struct {
	mu sync.Mutex

	path             string
	debounceInterval time.Duration

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	running bool
}

// NewWatcher returns a Watcher for the configuration file at path. A zero
// debounceInterval defaults to 500ms.
func NewWatcher(path string, debounceInterval time.Duration) *Watcher {
	if debounceInterval <= 0 {
		debounceInterval = defaultDebounceInterval
	}
	return &Watcher{path: path, debounceInterval: debounceInterval}
}

// Start begins watching the configuration file and emits a freshly loaded
// HarnessConfig on changes whenever it parses and validates successfully.
// A reload that fails validation is logged and dropped rather than sent,
// so a caller mid-edit of the file never receives a half-written document.
func (w *Watcher) Start(ctx context.Context, changes chan<- HarnessConfig) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = fsw
	w.stopCh = make(chan struct{})
	w.running = true
	w.mu.Unlock()

	go w.run(ctx, changes)
	return nil
}

// Stop halts the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	if w.watcher != nil {
		_ = w.watcher.Close()
		w.watcher = nil
	}
}

func (w *Watcher) run(ctx context.Context, changes chan<- HarnessConfig) {
	log := logging.WithComponent("config-watcher")
	base := filepath.Base(w.path)

	var debounce *time.Timer
	var pending bool

	reload := func() {
		cfg, err := Load(w.path)
		if err != nil {
			log.Warn().Err(err).Msg("configuration reload failed, keeping previous config")
			return
		}
		select {
		case changes <- cfg:
		default:
			log.Warn().Msg("config change channel full, dropping reload")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(evt.Name) != base {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			pending = true
			debounce = time.AfterFunc(w.debounceInterval, func() {
				if pending {
					pending = false
					reload()
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("filesystem watcher error")
		}
	}
}
