package autosave

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/pders01/checkpoint/internal/debounce"
)

// Watcher reports quiet periods after changes in a project tree.
// The backend metadata directory is never watched.
type Watcher struct {
	root    string
	delay   time.Duration
	onQuiet func()
	log     logr.Logger
}

// NewWatcher creates a watcher calling onQuiet once changes under root have
// stopped for delay
func NewWatcher(root string, delay time.Duration, onQuiet func(), log logr.Logger) *Watcher {
	return &Watcher{root: root, delay: delay, onQuiet: onQuiet, log: log.WithName("watcher")}
}

// Run watches until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.log.Error(err, "watcher close")
		}
	}()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	d := debounce.New(w.delay, w.onQuiet)
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnore(w.root, ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						w.log.Error(err, "cannot watch new directory", "path", ev.Name)
					}
				}
			}
			w.log.V(1).Info("fsnotify event", "op", ev.Op.String(), "path", ev.Name)
			d.Trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "fsnotify error")
		}
	}
}

// addTree adds dir and its subdirectories; fsnotify is not recursive
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if entry.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func shouldIgnore(root, name string) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".git" {
			return true
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".tmp"
}
