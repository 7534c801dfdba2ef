package build

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"logicmake/internal/logging"
	"logicmake/internal/term"
)

// WatchStats tracks watcher activity for debugging.
type WatchStats struct {
	Events        int
	Rebuilds      int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher re-satisfies a set of targets whenever a watched path changes.
// Rapid bursts of events (an editor save writes several times) are
// debounced: a rebuild fires only after a path has been quiet for the
// debounce window.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	sat      *Satisfier
	targets  []term.Term
	paths    []string
	debounce time.Duration
	pending  map[string]time.Time
	stats    WatchStats

	eg      *errgroup.Group
	cancel  context.CancelFunc
	running bool
	log     *zap.Logger
}

// NewWatcher creates a watcher over the given directories. Targets are
// added with Watch before Start.
func NewWatcher(sat *Satisfier, paths []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		fsw:      fsw,
		sat:      sat,
		paths:    paths,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		log:      logging.Get(logging.CategoryWatch),
	}, nil
}

// Watch registers a target to re-satisfy on changes.
func (w *Watcher) Watch(target term.Term) {
	w.mu.Lock()
	w.targets = append(w.targets, target)
	w.mu.Unlock()
}

// Start begins watching. Non-blocking; the event loop runs until Stop or
// context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, p := range w.paths {
		if err := w.fsw.Add(p); err != nil {
			w.log.Warn("cannot watch path", zap.String("path", p), zap.Error(err))
			continue
		}
		w.log.Info("watching", zap.String("path", p))
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	eg, egCtx := errgroup.WithContext(ctx)
	w.eg = eg
	eg.Go(func() error { return w.run(egCtx) })
	return nil
}

// Stop shuts the event loop down and closes the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.cancel()
	err := w.eg.Wait()
	if closeErr := w.fsw.Close(); err == nil {
		err = closeErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatchStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			if w.settle() {
				w.rebuild(ctx)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debug("event", zap.String("op", event.Op.String()), zap.String("path", event.Name))
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// settle reports whether at least one pending event has been quiet past
// the debounce window, clearing the settled entries.
func (w *Watcher) settle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	any := false
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			delete(w.pending, path)
			any = true
		}
	}
	return any
}

func (w *Watcher) rebuild(ctx context.Context) {
	w.mu.Lock()
	targets := make([]term.Term, len(w.targets))
	copy(targets, w.targets)
	w.mu.Unlock()

	for _, t := range targets {
		proof, err := w.sat.Satisfy(ctx, t)
		w.mu.Lock()
		w.stats.Rebuilds++
		if err != nil {
			w.stats.Errors++
		}
		w.mu.Unlock()
		if err != nil {
			w.log.Warn("rebuild failed", zap.Stringer("target", t), zap.Error(err))
			continue
		}
		w.log.Info("rebuilt", zap.Stringer("target", t), zap.Int("rules", len(proof.Rules)))
	}
}
