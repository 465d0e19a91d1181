package adapter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	m "sniff.dev/pkg/sniff/internal/model"
)

// Watcher signals when C++ sources under the watched roots change, so check
// --watch can re-run the analysis.
type Watcher interface {
	// Watch emits a tick on the returned channel after each burst of file
	// changes. The channel closes when ctx is cancelled.
	Watch(ctx context.Context, roots []m.Path, debounce time.Duration) (<-chan struct{}, error)
}

// FsnotifyWatcher is the concrete Watcher backed by fsnotify.
type FsnotifyWatcher struct{}

// NewFsnotifyWatcher constructs an FsnotifyWatcher.
func NewFsnotifyWatcher() *FsnotifyWatcher {
	return &FsnotifyWatcher{}
}

// Watch registers every directory under roots and debounces change events.
func (w *FsnotifyWatcher) Watch(ctx context.Context, roots []m.Path, debounce time.Duration) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, root := range roots {
		dir, _ := splitPattern(root)
		if err := addDirs(watcher, string(dir)); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	ticks := make(chan struct{}, 1)

	go func() {
		defer close(ticks)
		defer func() {
			_ = watcher.Close()
		}()

		var timer *time.Timer

		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if !relevantEvent(event) {
					continue
				}

				slog.Debug("source changed", "path", event.Name, "op", event.Op.String())

				if timer == nil {
					timer = time.NewTimer(debounce)
					timerC = timer.C
				} else {
					timer.Reset(debounce)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				slog.Warn("watch error", "error", err)

			case <-timerC:
				select {
				case ticks <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ticks, nil
}

func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if path != root && (base == ".git" || base == "build") {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

func relevantEvent(event fsnotify.Event) bool {
	if !IsCppFile(event.Name) {
		return false
	}

	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) || event.Op.Has(fsnotify.Remove)
}
