package schedule

import (
	"sync"
	"time"
)

// TimerSet manages one debounce timer per key with last-write-wins coalescing.
//
// Schedule re-arms the key's timer, canceling any pending fire. Cancel disarms
// deterministically: a canceled timer never fires. A sequence number per key
// guards against a timer callback that was already running when it was
// re-armed or canceled.
type TimerSet struct {
	mu     sync.Mutex
	timers map[string]*keyTimer
	seq    uint64 // set-wide, so sequence values never repeat across Remove/Schedule
}

type keyTimer struct {
	timer *time.Timer
	seq   uint64
}

// NewTimerSet creates an empty timer set.
func NewTimerSet() *TimerSet {
	return &TimerSet{timers: make(map[string]*keyTimer)}
}

// Schedule arms (or re-arms) the timer for key to call fn after delay.
func (ts *TimerSet) Schedule(key string, delay time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	kt, ok := ts.timers[key]
	if !ok {
		kt = &keyTimer{}
		ts.timers[key] = kt
	}

	if kt.timer != nil {
		kt.timer.Stop()
	}

	ts.seq++
	kt.seq = ts.seq
	seq := kt.seq

	kt.timer = time.AfterFunc(delay, func() {
		ts.mu.Lock()
		current, ok := ts.timers[key]
		stale := !ok || current.seq != seq
		if !stale {
			current.timer = nil
		}
		ts.mu.Unlock()

		if !stale {
			fn()
		}
	})
}

// Cancel disarms the timer for key without firing. Unknown keys are no-ops.
func (ts *TimerSet) Cancel(key string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	kt, ok := ts.timers[key]
	if !ok {
		return
	}
	if kt.timer != nil {
		kt.timer.Stop()
		kt.timer = nil
	}
	ts.seq++
	kt.seq = ts.seq
}

// Pending reports whether a timer is armed for key.
func (ts *TimerSet) Pending(key string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	kt, ok := ts.timers[key]
	return ok && kt.timer != nil
}

// Remove cancels and forgets the key entirely.
func (ts *TimerSet) Remove(key string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if kt, ok := ts.timers[key]; ok {
		if kt.timer != nil {
			kt.timer.Stop()
		}
		ts.seq++
		kt.seq = ts.seq
		delete(ts.timers, key)
	}
}

// CancelAll disarms every timer in the set.
func (ts *TimerSet) CancelAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, kt := range ts.timers {
		if kt.timer != nil {
			kt.timer.Stop()
			kt.timer = nil
		}
		ts.seq++
		kt.seq = ts.seq
	}
}
