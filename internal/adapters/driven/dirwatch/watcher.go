// Package dirwatch reports changes below a content directory.
package dirwatch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/restgate/internal/logger"
)

// Defaults for New.
const (
	DefaultQuiet    = 500 * time.Millisecond
	DefaultInterval = 2 * time.Second
)

// Watcher coalesces file system events below a directory into change
// notifications. A notification is sent once no event arrived for the quiet
// period, and at most once per interval.
type Watcher struct {
	root    string
	quiet   time.Duration
	watcher *fsnotify.Watcher
	limiter *rate.Limiter

	closeOnce sync.Once
}

// New watches root and every non-hidden directory below it.
func New(root string, quiet, interval time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		root:    root,
		quiet:   quiet,
		watcher: fw,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Watch starts delivering notifications. The channel is closed when ctx is
// done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) <-chan struct{} {
	changes := make(chan struct{}, 1)
	go w.loop(ctx, changes)
	return changes
}

func (w *Watcher) loop(ctx context.Context, changes chan<- struct{}) {
	defer close(changes)

	timer := time.NewTimer(w.quiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.watchIfDir(event.Name)
			}
			timer.Reset(w.quiet)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", w.root, err)
		case <-timer.C:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}
}

// relevant drops hidden entries and pure permission changes.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if isHidden(event.Name) {
		return false
	}
	return event.Op != fsnotify.Chmod
}

func (w *Watcher) watchIfDir(path string) {
	if err := w.addTree(path); err != nil {
		logger.Debug("not watching %s: %v", path, err)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
