// Package watcher ingests files created or modified inside watched directories.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/pkg/utils"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// IngestFunc is called once per settled file change.
type IngestFunc func(ctx context.Context, path string)

// Watcher watches directory trees and calls an IngestFunc for files whose
// extension matches. Bursts of events on one path are collapsed by a debounce
// timer. Removals are logged only; the knowledge store is append-only.
type Watcher struct {
	roots      []string
	extensions []string
	recursive  bool
	ingest     IngestFunc
	debounce   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	done    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher for the directories in cfg.
func New(cfg config.WatchConfig, ingest IngestFunc, opts ...Option) *Watcher {
	w := &Watcher{
		extensions: cfg.Extensions,
		recursive:  cfg.RecursiveOrDefault(),
		ingest:     ingest,
		debounce:   defaultDebounce,
		pending:    make(map[string]*time.Timer),
	}
	for _, dir := range cfg.Directories {
		if abs, err := filepath.Abs(dir); err == nil {
			w.roots = append(w.roots, filepath.Clean(abs))
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = utils.OrNop(w.logger)
	return w
}

// Directories returns the watched root directories.
func (w *Watcher) Directories() []string {
	return append([]string(nil), w.roots...)
}

// Start begins watching. Missing roots are created. Events are handled in a
// goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range w.roots {
		if err := os.MkdirAll(root, 0755); err != nil {
			_ = fsw.Close()
			return err
		}
		if err := w.watchTree(fsw, root); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	w.logger.Info("watching directories",
		zap.Strings("roots", w.roots),
		zap.Strings("extensions", w.extensions),
		zap.Bool("recursive", w.recursive))
	go w.loop(ctx, fsw, w.done)
	return nil
}

func (w *Watcher) watchTree(fsw *fsnotify.Watcher, dir string) error {
	if !w.recursive {
		return fsw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) && w.recursive {
				w.addDirectory(ctx, fsw, path)
			}
			return
		}
		if matchExtension(path, w.extensions) {
			w.schedule(ctx, path)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(path)
		if matchExtension(path, w.extensions) {
			w.logger.Info("watched file removed; its chunks stay in the store", zap.String("path", path))
		}
	}
}

// addDirectory watches a directory created under a root and ingests the
// files it already holds, which were written before the watch was in place.
func (w *Watcher) addDirectory(ctx context.Context, fsw *fsnotify.Watcher, dir string) {
	if err := w.watchTree(fsw, dir); err != nil {
		w.logger.Warn("could not watch new directory", zap.String("path", dir), zap.Error(err))
		return
	}
	w.logger.Debug("watching new directory", zap.String("path", dir))
	w.walk(dir, func(path string) { w.schedule(ctx, path) })
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.logger.Debug("ingesting changed file", zap.String("path", path))
		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// Sync ingests every matching file already present under the roots.
func (w *Watcher) Sync(ctx context.Context) {
	for _, root := range w.roots {
		w.walk(root, func(path string) {
			if ctx.Err() == nil {
				w.ingest(ctx, path)
			}
		})
	}
}

func (w *Watcher) walk(dir string, fn func(path string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && !w.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if matchExtension(path, w.extensions) {
			fn(path)
		}
		return nil
	})
}

// Stop stops watching and drops pending ingests.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	_ = w.fsw.Close()
	w.fsw = nil
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
