package endnotes

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls a function whenever files below a directory change. Bursts
// of events are collapsed into a single call once the tree has been quiet
// for the debounce interval.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(context.Context) error
	log      *slog.Logger

	// SkipDirs lists directory names that are never watched, such as the
	// build output directory.
	SkipDirs []string
}

// NewWatcher returns a Watcher for root. A nil logger uses slog.Default().
func NewWatcher(root string, debounce time.Duration, onChange func(context.Context) error, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		SkipDirs: []string{"_site", "node_modules"},
	}
}

// Run watches until ctx is cancelled. Errors returned by the change function
// are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("endnotes: create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.log.Info("watching for changes", "root", w.root)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.skip(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debug("event received", "name", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						w.log.Warn("watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			fire = time.After(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", "error", err)
		case <-fire:
			fire = nil
			if err := w.onChange(ctx); err != nil {
				w.log.Warn("change handler failed", "error", err)
			}
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skip(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("endnotes: watch %s: %w", path, err)
		}
		return nil
	})
}

// skip reports whether path is hidden or inside a skipped directory.
func (w *Watcher) skip(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
		for _, d := range w.SkipDirs {
			if part == d {
				return true
			}
		}
	}
	return false
}
