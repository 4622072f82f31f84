// Package watcher monitors source directories and feeds newly downloaded
// audio files into the organizing pipeline once they stop changing.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	DebounceSeconds      int      // Delay before processing (default: 2)
	StableThresholdMs    int      // File size stability threshold in milliseconds (default: 1000)
	StabilityTimeoutSecs int      // Give up on a still-growing file after this long (default: 30)
	IgnorePatterns       []string // Glob patterns to ignore (e.g., "*.part", "*.ytdl")
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceSeconds:      2,
		StableThresholdMs:    1000,
		StabilityTimeoutSecs: 30,
		IgnorePatterns:       DefaultIgnorePatterns(),
	}
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	FilesOrganized int
	FilesReviewed  int
	FilesSkipped   int
	Duration       time.Duration
}

// FileHandler is called for each settled file. It reports whether the file
// was moved into the library, routed to for-review, or left in place.
type FileHandler func(path string) (organized bool, reviewed bool, err error)

// ErrorHandler receives watch errors that do not stop the session.
type ErrorHandler func(err error)

// Watcher monitors directories for new audio files. Events pass through the
// ignore filter, are debounced per path, and the file must hold a stable size
// before the handler runs. Downloads that rename their temp file into place
// show up as a create followed by writes, so both event kinds reset the timer.
type Watcher struct {
	config       *WatchConfig
	fileHandler  FileHandler
	errorHandler ErrorHandler
	fsWatcher    *fsnotify.Watcher
	fileFilter   *FileFilter
	debouncer    *Debouncer
	stability    *StabilityChecker
	done         chan struct{}
	wg           sync.WaitGroup
	inflight     sync.WaitGroup
	startTime    time.Time

	mu             sync.Mutex
	filesOrganized int
	filesReviewed  int
	filesSkipped   int
}

// New creates a new Watcher with the given configuration.
// If config is nil, default configuration is used.
func New(config *WatchConfig, fileHandler FileHandler) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	threshold := time.Duration(config.StableThresholdMs) * time.Millisecond
	timeout := time.Duration(config.StabilityTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultStabilityTimeout
	}
	w := &Watcher{
		config:      config,
		fileHandler: fileHandler,
		fileFilter:  NewFileFilter(config.IgnorePatterns),
		stability:   NewStabilityCheckerWithOptions(threshold, timeout, pollIntervalFor(threshold)),
		done:        make(chan struct{}),
	}
	w.debouncer = NewDebouncer(time.Duration(config.DebounceSeconds)*time.Second, w.debounceFired)
	return w
}

func (w *Watcher) debounceFired(path string) {
	w.inflight.Add(1)
	defer w.inflight.Done()
	w.processFile(path)
}

// SetErrorHandler installs a callback for non-fatal watch errors.
// Must be called before Start.
func (w *Watcher) SetErrorHandler(handler ErrorHandler) {
	w.errorHandler = handler
}

// Start begins watching the specified directories for file changes.
// The watcher runs until Stop() is called.
func (w *Watcher) Start(dirs []string) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			w.fsWatcher.Close()
			return err
		}
		if err := w.fsWatcher.Add(absDir); err != nil {
			w.fsWatcher.Close()
			return err
		}
	}

	w.startTime = time.Now()
	w.done = make(chan struct{})

	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop gracefully shuts down the watcher and returns a summary of the session.
// Pending debounce timers are cancelled; a file mid-processing finishes first.
func (w *Watcher) Stop() *WatchSummary {
	close(w.done)
	w.wg.Wait()

	w.debouncer.CancelAll()
	w.inflight.Wait()

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return &WatchSummary{
		FilesOrganized: w.filesOrganized,
		FilesReviewed:  w.filesReviewed,
		FilesSkipped:   w.filesSkipped,
		Duration:       time.Since(w.startTime),
	}
}

// processEvents handles file system events from fsnotify.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFileEvent(event.Name, event.Op&fsnotify.Create != 0)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// handleFileEvent filters and debounces one event. Write events for an
// ignored temp file never count as skips; only its first appearance does.
func (w *Watcher) handleFileEvent(path string, created bool) {
	if w.fileFilter.ShouldIgnore(path) {
		if created {
			w.countSkipped()
		}
		return
	}

	w.debouncer.Add(path)
}

// processFile runs after the debounce delay: wait for the size to settle,
// then hand the file to the organizing callback.
func (w *Watcher) processFile(path string) {
	select {
	case <-w.done:
		return
	default:
	}

	info, err := os.Stat(path)
	if err != nil {
		// Renamed or removed while debouncing, nothing to do.
		return
	}
	if info.IsDir() {
		return
	}

	if err := w.stability.WaitForStable(path); err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			w.reportError(err)
			w.countSkipped()
		}
		return
	}

	if w.fileHandler == nil {
		w.countOrganized()
		return
	}

	organized, reviewed, err := w.fileHandler(path)
	w.mu.Lock()
	switch {
	case err != nil:
		w.filesSkipped++
	case organized:
		w.filesOrganized++
	case reviewed:
		w.filesReviewed++
	default:
		w.filesSkipped++
	}
	w.mu.Unlock()
	if err != nil {
		w.reportError(err)
	}
}

func (w *Watcher) reportError(err error) {
	if w.errorHandler != nil {
		w.errorHandler(err)
	}
}

func (w *Watcher) countSkipped() {
	w.mu.Lock()
	w.filesSkipped++
	w.mu.Unlock()
}

func (w *Watcher) countOrganized() {
	w.mu.Lock()
	w.filesOrganized++
	w.mu.Unlock()
}

// GetConfig returns the current watcher configuration.
func (w *Watcher) GetConfig() *WatchConfig {
	return w.config
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	select {
	case <-w.done:
		return false
	default:
		return w.fsWatcher != nil
	}
}
