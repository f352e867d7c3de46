// Package watch reports changed files below a directory in debounced batches.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/logfields"
)

// Handler receives the paths, relative to the root and slash-separated, that
// changed since the previous batch.
type Handler func(ctx context.Context, paths []string) error

// Watcher watches one directory tree.
type Watcher struct {
	root     string
	debounce time.Duration
	handler  Handler
	skip     []string
}

// New returns a Watcher over root. skip lists directories (absolute or
// relative to root) whose events are ignored, such as a nested output tree.
func New(root string, debounce time.Duration, handler Handler, skip ...string) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	w := &Watcher{root: abs, debounce: debounce, handler: handler}
	for _, s := range skip {
		if !filepath.IsAbs(s) {
			s = filepath.Join(abs, s)
		}
		w.skip = append(w.skip, filepath.Clean(s))
	}
	return w, nil
}

// Run watches until ctx is canceled. Handler errors are logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addDirsRecursive(fw, w.root); err != nil {
		return err
	}
	slog.Info("Watching for changes", logfields.Path(w.root))

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.accept(fw, ev)
			if !ok {
				continue
			}
			slog.Debug("File change detected", logfields.Path(rel), "op", ev.Op.String())
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			clear(pending)
			if err := w.handler(ctx, batch); err != nil {
				slog.Warn("Change handler failed", logfields.Error(err))
			}
		}
	}
}

// accept filters an event and returns its path relative to the root.
func (w *Watcher) accept(fw *fsnotify.Watcher, ev fsnotify.Event) (string, bool) {
	if w.skipped(ev.Name) || ev.Op == fsnotify.Chmod {
		return "", false
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fw, ev.Name)
			return "", false
		}
	}
	if shouldIgnoreEvent(ev.Name) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) skipped(path string) bool {
	for _, s := range w.skip {
		if path == s || strings.HasPrefix(path, s+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipped(path) || d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent reports editor scratch files and OS metadata.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case base == ".DS_Store" || base == "Thumbs.db":
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, ".#"), strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
