// Package watch signals when any of a set of files changes, using fsnotify
// on the parent directories with a stat-polling fallback. It drives the
// CLI's -watch mode, where the config file and the configured font file
// trigger a re-render.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval used in polling mode.
const DefaultPollInterval = 2 * time.Second

// ErrNoFiles is returned when a Watcher is created without paths.
var ErrNoFiles = errors.New("no files to watch")

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors files for changes. Parent directories are watched rather
// than the files themselves so editors that save by rename are still seen.
type Watcher struct {
	// files maps each watched absolute path to true.
	files map[string]bool
	// events delivers a signal each time a watched file changes.
	// The channel is buffered to 1 so back-to-back writes coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to signal goroutines to exit.
	done chan struct{}
	// fsw is the underlying fsnotify watcher; nil when polling from the start.
	fsw *fsnotify.Watcher
	// once ensures [Watcher.Close] is idempotent.
	once sync.Once
	// polling is true when the watcher has fallen back to stat-based polling.
	polling atomic.Bool
	// pollInterval is the duration between stat passes in polling mode.
	pollInterval time.Duration
}

// New creates a Watcher for paths. It uses fsnotify on each parent directory
// and falls back to polling every pollInterval if fsnotify is unavailable.
// A zero pollInterval means [DefaultPollInterval].
func New(paths []string, pollInterval time.Duration) (*Watcher, error) {
	w, err := newWatcher(paths, pollInterval)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}

	for _, dir := range w.dirs() {
		if err := fsw.Add(dir); err != nil {
			slog.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}

	w.fsw = fsw
	go w.watch()
	return w, nil
}

// NewPolling creates a Watcher that only polls, for filesystems where
// change notifications are unreliable.
func NewPolling(paths []string, pollInterval time.Duration) (*Watcher, error) {
	w, err := newWatcher(paths, pollInterval)
	if err != nil {
		return nil, err
	}
	w.startPolling()
	return w, nil
}

// newWatcher resolves paths and allocates an idle Watcher.
func newWatcher(paths []string, pollInterval time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	w := &Watcher{
		files:        make(map[string]bool, len(paths)),
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// dirs returns the distinct parent directories of the watched files.
func (w *Watcher) dirs() []string {
	seen := map[string]bool{}
	var out []string
	for f := range w.files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when a watched file changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

// watch loops over fsnotify events and forwards write, create, and rename
// notifications for watched files. If fsnotify reports an error it switches
// to polling.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err == nil && w.files[abs] {
				w.notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.startPolling()
			return
		}
	}
}

// startPolling marks the watcher as polling and starts [Watcher.poll].
func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// poll periodically stats every watched file and sends a notification when
// any modification time advances.
func (w *Watcher) poll() {
	last := w.modTimes()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := w.modTimes()
			for f, mod := range cur {
				if mod.After(last[f]) {
					w.notify()
					break
				}
			}
			last = cur
		}
	}
}

// modTimes returns the modification time of each watched file that exists.
func (w *Watcher) modTimes() map[string]time.Time {
	out := make(map[string]time.Time, len(w.files))
	for f := range w.files {
		if info, err := os.Stat(f); err == nil {
			out[f] = info.ModTime()
		}
	}
	return out
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op, coalescing rapid successive changes.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
		// Channel already has a pending event, skip
	}
}
