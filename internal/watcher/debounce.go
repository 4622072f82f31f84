package watcher

import (
	"sync"
	"time"
)

// Debouncer holds back a path until its event stream goes quiet. A download
// in progress fires a write event per flushed chunk; only the last one in a
// quiet window should reach the callback.
type Debouncer struct {
	delay    time.Duration
	pending  map[string]*time.Timer
	callback func(path string)
	mu       sync.Mutex
}

// NewDebouncer creates a Debouncer that invokes callback with a path once no
// event for that path has arrived for the given delay.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		pending:  make(map[string]*time.Timer),
		callback: callback,
	}
}

// Add records an event for path, resetting its quiet-window timer.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.pending[path]; exists {
		timer.Stop()
	}

	d.pending[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()

		// callback runs unlocked so it may call back into the Debouncer
		if d.callback != nil {
			d.callback(path)
		}
	})
}

// Cancel drops a pending path without firing its callback.
func (d *Debouncer) Cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.pending[path]; exists {
		timer.Stop()
		delete(d.pending, path)
	}
}

// CancelAll drops every pending path. Called on shutdown so no callback
// fires after the watcher stops.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for path, timer := range d.pending {
		timer.Stop()
		delete(d.pending, path)
	}
}

// PendingCount returns how many paths are waiting out their quiet window.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending reports whether path is waiting out its quiet window.
func (d *Debouncer) IsPending(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, exists := d.pending[path]
	return exists
}

// GetDelay returns the configured quiet-window length.
func (d *Debouncer) GetDelay() time.Duration {
	return d.delay
}
