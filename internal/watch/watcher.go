package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/panini/internal/logfields"
)

// Watcher monitors a directory tree and requests a rebuild after changes
// settle for the debounce interval.
type Watcher struct {
	root     string
	ignore   []string
	debounce time.Duration
	notify   func(reason string)
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	last  string
}

// NewWatcher watches root. Paths under any of ignore (for example the
// output and staging directories) never trigger a rebuild.
func NewWatcher(root string, ignore []string, debounce time.Duration, notify func(reason string), logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		root:     absRoot,
		debounce: debounce,
		notify:   notify,
		watcher:  fw,
		logger:   logger,
	}
	for _, p := range ignore {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
	return w, nil
}

// Start adds every directory under the root and processes events until ctx
// ends or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", logfields.Path(w.root))
	go w.loop(ctx)
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	for _, ig := range w.ignore {
		if path == ig || strings.HasPrefix(path, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.ignored(event.Name) || event.Op == fsnotify.Chmod {
		return
	}
	if event.Op.Has(fsnotify.Create) {
		// New directories need their own watch; errors mean it was a file
		// or is already gone.
		_ = w.addTree(event.Name)
	}
	w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
	w.schedule(event.Name)
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = path
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		last := w.last
		w.mu.Unlock()
		rel, err := filepath.Rel(w.root, last)
		if err != nil {
			rel = last
		}
		w.notify("changed: " + filepath.ToSlash(rel))
	})
}
