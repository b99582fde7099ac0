// Package inbox reads product notifications dropped as JSON files into a
// watched directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
)

// ProcessedDir is the subdirectory committed files are moved into.
const ProcessedDir = "processed"

// Watcher queues *.json files created in a directory. It implements
// pipeline.BatchExtractor; committing a RawEvent moves its file into
// ProcessedDir.
//
// Producers should write notifications under another name (or extension) and
// rename them into place, so a file is never read half-written.
//
// A file stays known from the moment it is queued until its RawEvent is
// committed, so events on a file that is in flight do not queue it again.
// A file whose batch is never committed stays in the inbox and is picked up
// again only when a new Watcher scans the directory at start.
type Watcher struct {
	dir       string
	processed string
	watcher   *fsnotify.Watcher
	logger    *slog.Logger

	mu     sync.Mutex
	queue  []string
	known  map[string]bool // queued or in flight
	signal chan struct{}
	done   chan struct{}
}

// NewWatcher starts watching dir. Files already present are queued first, in
// name order.
func NewWatcher(dir string, logger *slog.Logger) (*Watcher, error) {
	processed := filepath.Join(dir, ProcessedDir)
	if err := os.MkdirAll(processed, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:       dir,
		processed: processed,
		watcher:   fw,
		logger:    logger,
		known:     make(map[string]bool),
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	existing, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("scan inbox: %w", err)
	}
	sort.Strings(existing)
	for _, path := range existing {
		w.enqueue(path)
	}
	if len(existing) > 0 {
		logger.Info("inbox backlog queued", "dir", dir, "files", len(existing))
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.enqueue(ev.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watch error", "dir", w.dir, "error", err)
		}
	}
}

func (w *Watcher) enqueue(path string) {
	if !strings.HasSuffix(path, ".json") || filepath.Dir(path) != filepath.Clean(w.dir) {
		return
	}
	w.mu.Lock()
	if !w.known[path] {
		w.known[path] = true
		w.queue = append(w.queue, path)
	}
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *Watcher) take(n int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	n = min(n, len(w.queue))
	paths := append([]string(nil), w.queue[:n]...)
	w.queue = w.queue[n:]
	return paths
}

// forget drops a path so a later event on it queues it again.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.known, path)
	w.mu.Unlock()
}

// ExtractBatch blocks until at least one file is queued, then returns up to
// batchSize of them. Files that vanished before being read are skipped.
func (w *Watcher) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	for {
		var batch []domain.RawEvent
		for _, path := range w.take(batchSize) {
			raw, err := w.read(path)
			if err != nil {
				w.forget(path)
				w.logger.Warn("inbox file unreadable, skipping", "file", path, "error", err)
				continue
			}
			batch = append(batch, raw)
		}
		if len(batch) > 0 {
			return batch, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-w.signal:
		}
	}
}

func (w *Watcher) read(path string) (domain.RawEvent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawEvent{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RawEvent{}, err
	}
	name := filepath.Base(path)
	return domain.RawEvent{
		Key:       []byte(name),
		Value:     data,
		Topic:     w.dir,
		Timestamp: info.ModTime(),
		Commit: func(context.Context) error {
			if err := os.Rename(path, filepath.Join(w.processed, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("move %s to %s: %w", name, ProcessedDir, err)
			}
			w.forget(path)
			return nil
		},
	}, nil
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
