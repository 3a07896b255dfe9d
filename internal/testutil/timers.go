package testutil

import (
	"sort"
	"sync"
	"time"
)

// FakeTimers is a manually advanced replacement for time.AfterFunc.
type FakeTimers struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*FakeTimer
}

// FakeTimer is a pending callback registered with FakeTimers.
type FakeTimer struct {
	parent  *FakeTimers
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the timer and reports whether it was still pending.
func (t *FakeTimer) Stop() bool {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func NewFakeTimers() *FakeTimers {
	return &FakeTimers{}
}

// AfterFunc registers fn to run once the fake clock advances by d.
func (f *FakeTimers) AfterFunc(d time.Duration, fn func()) *FakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &FakeTimer{parent: f, at: f.now + d, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward and runs every due timer in order.
// Callbacks run without the internal lock held.
func (f *FakeTimers) Advance(d time.Duration) {
	f.mu.Lock()
	f.now += d
	var due []*FakeTimer
	rest := f.timers[:0]
	for _, t := range f.timers {
		switch {
		case t.stopped:
		case t.at <= f.now:
			t.fired = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	f.timers = rest
	f.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (f *FakeTimers) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
