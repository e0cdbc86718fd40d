package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ShardChange is a shard file event that this process did not cause
type ShardChange struct {
	File string
	Op   string
	At   time.Time
}

// ShardWatcher reports writes to the leads directory made by other processes or by hand.
// Such edits bypass the single-writer discipline and may be overwritten by the next save.
type ShardWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	store    *ShardStore
	grace    time.Duration
	onChange func(ShardChange)
	logger   *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewShardWatcher creates a watcher for the store's directory. Events within grace of one of the
// store's own saves are attributed to the store and ignored.
func NewShardWatcher(store *ShardStore, grace time.Duration, onChange func(ShardChange), logger *zap.Logger) (*ShardWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shard watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShardWatcher{
		watcher:  watcher,
		store:    store,
		grace:    grace,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine
func (w *ShardWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.store.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create leads directory: %w", err)
	}
	if err := w.watcher.Add(w.store.Dir()); err != nil {
		return fmt.Errorf("failed to watch leads directory: %w", err)
	}
	w.running = true

	go w.run(ctx)

	w.logger.Info("Watching lead shards", zap.String("dir", w.store.Dir()))
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit
func (w *ShardWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Failed to close shard watcher", zap.Error(err))
	}
}

func (w *ShardWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Shard watcher error", zap.Error(err))
		}
	}
}

func (w *ShardWatcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	if _, err := FormatOf(name); err != nil {
		return
	}

	var op string
	switch {
	case event.Has(fsnotify.Create):
		op = "create"
	case event.Has(fsnotify.Write):
		op = "write"
	case event.Has(fsnotify.Remove):
		op = "remove"
	case event.Has(fsnotify.Rename):
		op = "rename"
	default:
		return
	}

	if w.store.RecentlyWrote(w.grace) {
		return
	}

	externalShardWritesTotal.WithLabelValues(op).Inc()
	w.logger.Warn("Lead shard changed outside the application",
		zap.String("file", name),
		zap.String("op", op),
	)
	if w.onChange != nil {
		w.onChange(ShardChange{File: name, Op: op, At: time.Now()})
	}
}
