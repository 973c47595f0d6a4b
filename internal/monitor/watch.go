package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce coalesces bursts of filesystem events
const DefaultDebounce = 500 * time.Millisecond

// Watcher forwards filesystem events for the configuration directory to a
// Monitor. Events are only hints: the monitor still confirms every change
// through its snapshots.
type Watcher struct {
	monitor  *Monitor
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher watches the monitor's configuration directory
func NewWatcher(m *Monitor, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(m.Layout().Dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", m.Layout().Dir, err)
	}

	return &Watcher{
		monitor:  m,
		watcher:  fw,
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Run forwards events until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) {
	defer w.close()

	log.Info().Str("dir", w.monitor.Layout().Dir).Msg("Watching configuration directory")

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
			w.schedule(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// relevant filters out events that cannot affect a profile or the active file
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	layout := w.monitor.Layout()
	base := filepath.Base(event.Name)
	if base == layout.SettingsFile {
		return true
	}
	_, ok := layout.ProfileName(base)
	return ok
}

// schedule notifies the monitor once events for path have settled
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		log.Debug().Str("path", path).Msg("Detected configuration file change")
		w.monitor.Notify(path)
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close file watcher")
	}
}
