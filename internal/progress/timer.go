// Package progress tracks how far the active item of a story has played and
// projects that onto the per-item progress bars.
package progress

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer advances a single fraction from 0 to 1 over a duration at wall clock
// rate. It does not run on its own: the owner calls Tick, typically once per
// frame, and the completion callback fires from inside that call.
//
// Elapsed time is tracked as durations so completion is exact; the fraction
// is derived from it on demand.
//
// A Timer is not safe for concurrent use.
type Timer struct {
	clock      clockwork.Clock
	onComplete func()

	duration  time.Duration
	acc       time.Duration // time accumulated before the current segment
	startedAt time.Time     // start of the current running segment
	running   bool
	done      bool

	// fast-forward state, see JumpToEnd
	jumping  bool
	jumpFrom float64
	jumpFor  time.Duration
}

// NewTimer creates a stopped timer. onComplete may be nil.
func NewTimer(clock clockwork.Clock, onComplete func()) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timer{clock: clock, onComplete: onComplete, done: true}
}

// Start begins a fresh run from 0 over d. Any previous run is discarded and
// will never complete.
func (t *Timer) Start(d time.Duration) {
	t.duration = d
	t.acc = 0
	t.startedAt = t.clock.Now()
	t.running = true
	t.done = false
	t.jumping = false
	t.jumpFrom = 0
	t.jumpFor = 0
}

// Stop freezes the current fraction. No callback fires.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.acc = t.elapsed()
	t.running = false
}

// Resume continues from the frozen fraction at the original rate, so the
// remaining time is (1-fraction)*duration.
func (t *Timer) Resume() {
	if t.running || t.done {
		return
	}
	t.startedAt = t.clock.Now()
	t.running = true
}

// JumpToEnd animates from the current fraction to 1 over transition and then
// completes through the normal callback. A frozen timer is resumed for the
// transition.
func (t *Timer) JumpToEnd(transition time.Duration) {
	if t.done {
		return
	}
	t.jumpFrom = t.Value()
	t.jumping = true
	t.jumpFor = transition
	t.acc = 0
	t.startedAt = t.clock.Now()
	t.running = true
}

// Cancel discards the current run without completing it.
func (t *Timer) Cancel() {
	t.running = false
	t.done = true
	t.jumping = false
}

// Tick completes the run once its time is up. It reports whether the
// completion callback was invoked.
func (t *Timer) Tick() bool {
	if !t.running || t.done {
		return false
	}
	if t.elapsed() < t.target() {
		return false
	}
	t.acc = t.target()
	t.running = false
	t.done = true
	if t.onComplete != nil {
		t.onComplete()
	}
	return true
}

// Value returns the current fraction in [0,1].
func (t *Timer) Value() float64 {
	if t.done && t.acc >= t.target() {
		return 1
	}
	target := t.target()
	if target <= 0 {
		return 1
	}
	elapsed := t.elapsed()
	if elapsed >= target {
		return 1
	}
	r := float64(elapsed) / float64(target)
	if t.jumping {
		return t.jumpFrom + (1-t.jumpFrom)*r
	}
	return r
}

// Remaining returns how long the current run still needs while running.
func (t *Timer) Remaining() time.Duration {
	if t.done {
		return 0
	}
	if rem := t.target() - t.elapsed(); rem > 0 {
		return rem
	}
	return 0
}

// Running reports whether the fraction is advancing.
func (t *Timer) Running() bool { return t.running }

// Done reports whether the current run has completed or been cancelled.
func (t *Timer) Done() bool { return t.done }

// FastForwarding reports whether a JumpToEnd transition is in progress.
func (t *Timer) FastForwarding() bool { return t.jumping && !t.done }

// Duration returns the duration the current run was started with.
func (t *Timer) Duration() time.Duration { return t.duration }

func (t *Timer) target() time.Duration {
	if t.jumping {
		return t.jumpFor
	}
	return t.duration
}

func (t *Timer) elapsed() time.Duration {
	if !t.running {
		return t.acc
	}
	return t.acc + t.clock.Since(t.startedAt)
}
