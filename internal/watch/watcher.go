// Package watch monitors a directory for new or changed documents and
// feeds them to an ingest callback. Events are debounced per file so a
// document being written in several bursts is ingested once. Settled
// files queue to a single worker: the store is single-writer, so
// ingests must never overlap. A rate limiter paces the worker across
// bulk drops.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/atlas-safety/safekb-cli/internal/logger"
)

const (
	// DefaultSettle is how long a file must stay quiet before it is
	// considered fully written.
	DefaultSettle = 500 * time.Millisecond

	// DefaultRateLimit is the sustained ingests-per-second ceiling.
	DefaultRateLimit = 2.0

	// DefaultBurst is the rate limiter burst size.
	DefaultBurst = 4

	// settledQueueSize bounds how many settled files may wait for
	// the ingest worker.
	settledQueueSize = 64
)

// IngestFunc receives the path of a settled file.
type IngestFunc func(ctx context.Context, path string) error

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	dir        string
	extensions map[string]struct{}
	ingest     IngestFunc
	settle     time.Duration
	limiter    *rate.Limiter

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures the watcher.
type Option func(*Watcher)

// WithSettle overrides the per-file quiet period.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithRateLimit overrides the ingest rate limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(w *Watcher) {
		if perSecond > 0 && burst > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// New creates a watcher for dir. Only files whose lowercase extension
// appears in extensions are reported.
func New(dir string, extensions []string, ingest IngestFunc, opts ...Option) (*Watcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("watch: empty directory")
	}
	if ingest == nil {
		return nil, fmt.Errorf("watch: nil ingest func")
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}

	w := &Watcher{
		dir:        dir,
		extensions: exts,
		ingest:     ingest,
		settle:     DefaultSettle,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultBurst),
		pending:    make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is cancelled. It returns an error if the
// directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s", w.dir)

	ctx, cancel := context.WithCancel(ctx)
	settled := make(chan string, settledQueueSize)
	workerDone := make(chan struct{})
	go w.ingestLoop(ctx, settled, workerDone)
	defer func() {
		cancel()
		<-workerDone
		w.stopPending()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if !w.supported(ev.Name) {
				continue
			}
			w.schedule(ctx, ev.Name, settled)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// ingestLoop drains settled paths strictly one at a time. Append
// rewrites partition and metadata files with no locking, so two
// ingests must never run at once.
func (w *Watcher) ingestLoop(ctx context.Context, settled <-chan string, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-settled:
			w.fire(ctx, path)
		}
	}
}

func (w *Watcher) supported(path string) bool {
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// schedule arms or resets the settle timer for path. The timer hands
// the path to the ingest worker rather than ingesting itself.
func (w *Watcher) schedule(ctx context.Context, path string, settled chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case settled <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) fire(ctx context.Context, path string) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}
	if err := w.ingest(ctx, path); err != nil {
		logger.Warn("ingest %s: %v", filepath.Base(path), err)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
