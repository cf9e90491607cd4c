// Package watch signals when build files change on disk.
//
// It watches the directories holding the files rather than the files
// themselves, since editors commonly save by writing a temporary file and
// renaming it over the original.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval used when fsnotify is unavailable.
const DefaultPollInterval = 2 * time.Second

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors a set of files for changes using fsnotify with a polling
// fallback.
type Watcher struct {
	// files is the set of absolute paths being monitored.
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
	// pollInterval is the duration between stat calls in polling mode.
	pollInterval time.Duration

	mu      sync.Mutex
	changed map[string]bool

	log *slog.Logger
}

// New creates a Watcher for the given files. A nil logger uses slog.Default.
func New(paths []string, log *slog.Logger) (*Watcher, error) {
	return newWatcher(paths, log, false, DefaultPollInterval)
}

func newWatcher(paths []string, log *slog.Logger, forcePoll bool, interval time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to watch")
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{
		files:        make(map[string]bool),
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: interval,
		changed:      make(map[string]bool),
		log:          log,
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	if forcePoll {
		w.startPolling()
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}
	w.fsw = fsw
	go w.watch()
	return w, nil
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when any watched file
// changes. Use [Watcher.TakeChanged] to learn which.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// TakeChanged returns the files changed since the last call, sorted, and
// clears the set.
func (w *Watcher) TakeChanged() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.changed))
	for p := range w.changed {
		out = append(out, p)
	}
	clear(w.changed)
	sort.Strings(out)
	return out
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

// watch loops over fsnotify events and forwards write/create notifications
// for watched files. If fsnotify reports an error, watch falls back to
// polling.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name := filepath.Clean(event.Name); w.files[name] {
				w.notify(name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Info("fsnotify error, switching to polling", "error", err)
			w.fsw.Close()
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// poll periodically stats every file and sends a notification when a
// modification time advances.
func (w *Watcher) poll() {
	lastMod := make(map[string]time.Time, len(w.files))
	for p := range w.files {
		if info, err := os.Stat(p); err == nil {
			lastMod[p] = info.ModTime()
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			for p := range w.files {
				info, err := os.Stat(p)
				if err != nil {
					continue
				}
				if info.ModTime().After(lastMod[p]) {
					lastMod[p] = info.ModTime()
					w.notify(p)
				}
			}
		}
	}
}

// notify records path and sends a single signal to the events channel. If a
// signal is already pending the send is skipped, coalescing rapid changes.
func (w *Watcher) notify(path string) {
	w.mu.Lock()
	w.changed[path] = true
	w.mu.Unlock()

	select {
	case w.events <- struct{}{}:
	default:
	}
}
