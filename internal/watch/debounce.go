package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers per key: each trigger restarts the
// key's timer, and the action runs once the key has been quiet for the
// full delay (trailing edge).
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu     sync.Mutex
	timers map[string]Timer
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	return &Debouncer{
		clock:  clock,
		delay:  delay,
		timers: make(map[string]Timer),
	}
}

// Trigger schedules fn to run after the quiet window, replacing any timer
// already pending for the key. The latest fn wins.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels a pending trigger for the key, if any.
func (d *Debouncer) Stop(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// StopAll cancels every pending trigger.
func (d *Debouncer) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
