package vars

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"azdoctl/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last detected change
// before triggering a reload.
const DefaultDebounceInterval = 500 * time.Millisecond

// DefaultPollInterval is the fallback polling interval when fsnotify is not
// available.
const DefaultPollInterval = 2 * time.Second

// WatchConfig holds configuration for a variable file watcher.
type WatchConfig struct {
	// Path is the variable document to watch.
	Path string

	// PollInterval is the fallback polling interval when fsnotify is not
	// available.
	PollInterval time.Duration

	// OnChange is called (debounced) when the file changes.
	OnChange func()
}

// Watcher monitors a variable document for changes and triggers re-exports.
// It uses fsnotify for efficient file system monitoring with a fallback to
// polling for environments where fsnotify is not available or reliable.
type Watcher struct {
	mu sync.Mutex

	config WatchConfig

	// fsWatcher is the fsnotify watcher (nil when falling back to polling)
	fsWatcher *fsnotify.Watcher

	// stopCh signals the watcher to stop
	stopCh chan struct{}

	// running indicates if the watcher is active
	running bool

	// lastModTime tracks the last modification time for fallback polling
	lastModTime time.Time

	// debounceTimer collapses rapid successive changes into one reload
	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a watcher for the document at config.Path.
func NewWatcher(config WatchConfig) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}

	return &Watcher{config: config}, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Vars", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges()
		return nil
	}

	w.fsWatcher = watcher

	// Watch the containing directory: editors replace files on save, so
	// watching the file itself loses the watch after the first write.
	dir := filepath.Dir(w.config.Path)
	if err := w.fsWatcher.Add(dir); err != nil {
		logging.Warn("Vars", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		w.fsWatcher.Close()
		w.fsWatcher = nil
		go w.pollForChanges()
		return nil
	}

	// Capture channels before releasing lock to avoid race conditions
	eventsCh := w.fsWatcher.Events
	errorsCh := w.fsWatcher.Errors

	go w.processEvents(eventsCh, errorsCh)

	logging.Info("Vars", "Watching %s for changes", w.config.Path)
	return nil
}

// processEvents handles fsnotify events.
// The channels are passed as parameters to avoid race conditions with Stop().
func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Vars", err, "fsnotify error")
		}
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.config.Path) {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("Vars", "Variable file changed: %s", event.Name)
	w.triggerReloadDebounced()
}

// triggerReloadDebounced triggers a reload after a debounce period so rapid
// successive writes (editor save sequences, formatters) cause one reload.
func (w *Watcher) triggerReloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(DefaultDebounceInterval, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

// pollForChanges implements fallback polling when fsnotify is not available.
func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	if info, err := os.Stat(w.config.Path); err == nil {
		w.lastModTime = info.ModTime()
	}

	for {
		select {
		case <-w.stopCh:
			return

		case <-ticker.C:
			if w.checkForChange() {
				logging.Debug("Vars", "Variable file change detected via polling")
				w.triggerReloadDebounced()
			}
		}
	}
}

// checkForChange reports whether the file has been modified since the last
// poll.
func (w *Watcher) checkForChange() bool {
	info, err := os.Stat(w.config.Path)
	if err != nil {
		return false
	}

	modTime := info.ModTime()
	changed := !w.lastModTime.IsZero() && modTime.After(w.lastModTime)
	w.lastModTime = modTime
	return changed
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Vars", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Debug("Vars", "Stopped watching %s", w.config.Path)
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
