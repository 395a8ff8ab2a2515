package requisition

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated calls per key into a single deferred
// execution. Used for comment and week-tag autosave: each keystroke schedules
// a save, and only the last one within the delay window runs.
type Debouncer struct {
	delay  time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer creates a Debouncer with the given delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arranges fn to run after the delay, replacing any pending run for
// the same key. The latest fn wins.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

// Flush runs a pending call for the key immediately, if any
func (d *Debouncer) Flush(key string) {
	d.mu.Lock()
	timer, ok := d.timers[key]
	if ok {
		delete(d.timers, key)
	}
	d.mu.Unlock()

	if ok && timer.Stop() {
		// the timer had not fired yet; Reset(0) would race with the map
		// cleanup inside the callback, so fire through a zero-delay timer
		timer.Reset(0)
	}
}

// Cancel discards a pending call for the key, if any
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// CancelAll discards every pending call
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
