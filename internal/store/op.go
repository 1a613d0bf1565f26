package store

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Throttle passes its leading call and then suppresses further calls
// until the interval has elapsed. Used to bound event storms from
// progress ticks (500ms for duration accumulation, 10s for partner
// reporting).
type Throttle struct {
	clock    clockwork.Clock
	interval time.Duration
	last     time.Time
	primed   bool
}

func NewThrottle(clock clockwork.Clock, interval time.Duration) *Throttle {
	return &Throttle{clock: clock, interval: interval}
}

// Allow reports whether the caller may proceed now.
func (t *Throttle) Allow() bool {
	now := t.clock.Now()
	if t.primed && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.primed = true
	return true
}

// Debounce runs fn only after the wait has elapsed with no further
// calls. Each call resets the timer and replaces the pending fn.
type Debounce struct {
	clock clockwork.Clock
	wait  time.Duration

	mu    sync.Mutex
	timer clockwork.Timer
}

func NewDebounce(clock clockwork.Clock, wait time.Duration) *Debounce {
	return &Debounce{clock: clock, wait: wait}
}

func (d *Debounce) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.wait, fn)
}

// Once is a take-first gate: the first call to Do returns true, every
// later call returns false. It backs both at-most-once emission
// (MediaStart, continuous-play triggers) and idempotent listener
// registration.
type Once struct {
	mu   sync.Mutex
	done bool
}

func (o *Once) Do() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return false
	}
	o.done = true
	return true
}

// Done reports whether the gate has fired without consuming it.
func (o *Once) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

// Distinct suppresses repeats of the same value, mirroring
// distinct-until-changed over a snapshot stream.
type Distinct[T comparable] struct {
	seen bool
	last T
}

// Changed records v and reports whether it differs from the previous
// value. The first value always reports true.
func (d *Distinct[T]) Changed(v T) bool {
	if d.seen && d.last == v {
		return false
	}
	d.seen = true
	d.last = v
	return true
}
