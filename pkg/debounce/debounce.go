// Package debounce delays a call until its trigger has been quiet for a fixed period.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock creates timers. The default clock is backed by time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Debouncer.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Debouncer calls fn with the most recent triggered value once no new
// trigger has arrived for delay. At most one timer is pending at any time.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)
	clock Clock

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	stopped bool
}

// New creates a Debouncer for fn with the given quiet period.
func New[T any](delay time.Duration, fn func(T), opts ...Option) *Debouncer[T] {
	o := options{clock: realClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
		clock: o.clock,
	}
}

// Func is the functional form: it returns a trigger that debounces fn.
func Func[T any](delay time.Duration, fn func(T)) func(T) {
	return New(delay, fn).Trigger
}

// Trigger (re)starts the quiet period with v as the pending value.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen, v) })
}

// fire runs fn unless a newer trigger or a cancel happened after the timer was
// armed. time.Timer.Stop cannot recall a callback that already started.
func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Cancel drops the pending call, if any. The debouncer stays usable.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// Stop cancels the pending call and ignores all further triggers.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
