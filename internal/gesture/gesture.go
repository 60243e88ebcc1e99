// Package gesture turns positional taps and presses on a story into playback
// intents.
//
// The left third of the surface rewinds on tap. The remaining two thirds
// advance on a short tap and pause for as long as they are held.
package gesture

import "time"

// DefaultHoldDelay is how long a press has to last before it counts as a hold.
const DefaultHoldDelay = 500 * time.Millisecond

// Intent is what the playback engine is asked to do.
type Intent int

const (
	IntentNone Intent = iota
	IntentAdvance
	IntentRewind
	IntentPause
	IntentResume
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentAdvance:
		return "advance"
	case IntentRewind:
		return "rewind"
	case IntentPause:
		return "pause"
	case IntentResume:
		return "resume"
	default:
		return "unknown"
	}
}

// Region is the part of the surface a pointer went down on.
type Region int

const (
	RegionRewind Region = iota
	RegionAdvance
)

// RegionAt maps a horizontal position on a surface of the given width.
func RegionAt(x, width float64) Region {
	if width > 0 && x < width/3 {
		return RegionRewind
	}
	return RegionAdvance
}

// Phase is the state of a Classifier.
type Phase int

const (
	// PhaseIdle means no press is in progress.
	PhaseIdle Phase = iota
	// PhasePending means a press started but may still turn out to be a tap.
	PhasePending
	// PhaseCommitted means the press has been held long enough to be a hold.
	PhaseCommitted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// Classifier tells a tap from a press-and-hold on the advance region.
//
// Playback freezes as soon as the press starts. Releasing while still
// pending is a tap and advances; releasing a committed hold resumes.
// Cancelling a press in either phase resumes.
type Classifier struct {
	holdDelay time.Duration
	phase     Phase
	pressedAt time.Time
}

// NewClassifier creates an idle classifier. A non-positive delay falls back
// to DefaultHoldDelay.
func NewClassifier(holdDelay time.Duration) *Classifier {
	if holdDelay <= 0 {
		holdDelay = DefaultHoldDelay
	}
	return &Classifier{holdDelay: holdDelay}
}

// Phase returns the current phase.
func (c *Classifier) Phase() Phase { return c.phase }

// HoldDelay returns the debounce used to commit a hold.
func (c *Classifier) HoldDelay() time.Duration { return c.holdDelay }

// Press starts a press. A press while one is already in progress is ignored.
func (c *Classifier) Press(now time.Time) Intent {
	if c.phase != PhaseIdle {
		return IntentNone
	}
	c.phase = PhasePending
	c.pressedAt = now
	return IntentPause
}

// Tick commits a pending press once the hold delay has elapsed. It never
// produces an intent of its own: the pause was already issued by Press.
func (c *Classifier) Tick(now time.Time) Intent {
	if c.phase == PhasePending && now.Sub(c.pressedAt) >= c.holdDelay {
		c.phase = PhaseCommitted
	}
	return IntentNone
}

// Release ends the press.
func (c *Classifier) Release(now time.Time) Intent {
	c.Tick(now)
	phase := c.phase
	c.phase = PhaseIdle
	switch phase {
	case PhasePending:
		return IntentAdvance
	case PhaseCommitted:
		return IntentResume
	default:
		return IntentNone
	}
}

// Cancel aborts the press, for example when the pointer leaves the surface.
func (c *Classifier) Cancel() Intent {
	phase := c.phase
	c.phase = PhaseIdle
	if phase == PhaseIdle {
		return IntentNone
	}
	return IntentResume
}
