// Package debouncetest provides a manually advanced clock for debounce tests.
package debouncetest

import (
	"sync"
	"time"

	"github.com/liquidevz/rangaone/pkg/debounce"
)

type timer struct {
	clock   *Clock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true

	return active
}

// Clock fires timers only when Advance is called.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

var _ debounce.Clock = (*Clock)(nil)

func (c *Clock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &timer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves the clock forward and runs every timer that became due,
// synchronously, in creation order.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*timer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// Active returns the number of timers that are neither stopped nor fired.
func (c *Clock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}

	return n
}

// Callback returns the callback of the i-th timer ever created.
func (c *Clock) Callback(i int) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.timers[i].f
}
