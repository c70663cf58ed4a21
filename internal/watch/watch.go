// Package watch invalidates cache entries when record files change on disk
// outside the process, e.g. a sync tool or a second tallybook instance
// rewriting a user's file.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Invalidator is the slice of the cache the watcher needs.
type Invalidator interface {
	Invalidate(key string)
}

// Watcher invalidates cache keys for CSV files modified under a data dir.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

// debounceWindow collapses the bursts of events editors and atomic renames
// produce for a single logical change.
const debounceWindow = 100 * time.Millisecond

// New starts watching every directory under dataDir that currently exists.
// Create, write, rename and remove events on .csv files invalidate the
// matching cache key after a short debounce.
func New(dataDir string, inv Invalidator, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := addWatchTree(fw, dataDir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}
	go w.loop(inv, log)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(inv Invalidator, log zerolog.Logger) {
	defer close(w.done)

	var timer *time.Timer
	pending := make(map[string]struct{})
	fire := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				// New subdirectories need their own watch.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchTree(w.fw, event.Name)
				}
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), ".csv") {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounceWindow)
			}

		case <-fire:
			for name := range pending {
				log.Debug().Str("path", name).Msg("record file changed on disk, invalidating")
				inv.Invalidate(name)
				delete(pending, name)
			}
			timer = nil

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// addWatchTree registers root and all its subdirectories.
func addWatchTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
