// Package playback sequences the items of a story: it times the active item,
// tracks which items have been shown and reacts to completion, navigation
// and pause requests.
package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"storyview/internal/controller"
	"storyview/internal/progress"
	"storyview/internal/story"
)

// DefaultFastForward is how long advancing past the last item takes to
// animate its bar to the end.
const DefaultFastForward = 50 * time.Millisecond

// ErrDisposed is returned when a disposed engine is asked to start.
var ErrDisposed = errors.New("playback engine disposed")

// Options configure an Engine. The zero value plays once, with local pause
// control, on the real clock and without logging.
type Options struct {
	Repeat bool
	// Inline and Indicator are presentation hints carried for the renderer.
	Inline    bool
	Indicator IndicatorPosition

	// Controller, when set, becomes the pause authority.
	Controller *controller.Controller

	// FastForward is the transition used when advancing past the last item.
	FastForward time.Duration

	Clock  clockwork.Clock
	Logger zerolog.Logger

	// OnComplete is called each time the last item finishes, before a
	// repeating story starts over. It must not navigate the engine.
	OnComplete func()
	// OnStoryShow is called once every time an item becomes active,
	// including restarts.
	OnStoryShow func(index int, item story.Item)
}

// Engine is the playback state machine. The position is an explicit cursor:
// items before it are shown, items from it onwards are not, and
// cursor == len(items) means everything has been shown.
//
// An Engine is not safe for concurrent use. Player runs one on a single
// goroutine; hosts with their own event loop may drive it directly.
type Engine struct {
	opts  Options
	log   zerolog.Logger
	items []story.Item

	cursor    int
	state     State
	authority PauseSource
	timer     *progress.Timer
	sub       *controller.Subscription

	started  bool
	disposed bool
}

// NewEngine validates the items and prepares playback. It takes a copy of
// the items; the engine is the only thing that changes their shown flags.
//
// If every item is already shown the story starts over. Otherwise the first
// unshown item becomes the position and everything after it is reset to
// unshown.
func NewEngine(items []story.Item, opts Options) (*Engine, error) {
	if err := story.Validate(items); err != nil {
		return nil, fmt.Errorf("invalid story: %w", err)
	}
	if opts.FastForward <= 0 {
		opts.FastForward = DefaultFastForward
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	e := &Engine{
		opts:  opts,
		log:   opts.Logger.With().Str("component", "playback").Logger(),
		items: append([]story.Item(nil), items...),
	}
	e.timer = progress.NewTimer(opts.Clock, e.complete)
	if opts.Controller != nil {
		e.authority = PauseSourceExternal
		e.sub = opts.Controller.Subscribe()
	}

	e.cursor = e.firstUnshown()
	if e.cursor == len(e.items) {
		e.resetShown(0)
		e.cursor = 0
	} else {
		e.resetShown(e.cursor)
	}
	return e, nil
}

// Start activates the item at the position. Starting twice is a no-op. A
// controller that is already paused keeps the item paused at zero.
func (e *Engine) Start() error {
	if e.disposed {
		return ErrDisposed
	}
	if e.started {
		return nil
	}
	e.started = true
	e.log.Debug().Int("items", len(e.items)).Int("position", e.cursor).
		Str("pause_source", e.authority.String()).Msg("starting story")
	e.activate(e.cursor)
	if e.authority == PauseSourceExternal && e.opts.Controller.State() == controller.SignalPause {
		e.applyPause()
	}
	return nil
}

// Tick advances time: it completes the active item when its timer is done.
func (e *Engine) Tick() {
	if e.disposed || e.state == StateIdle {
		return
	}
	e.timer.Tick()
}

// Advance skips the rest of the active item. On the last item the bar is
// fast-forwarded instead, and completion follows the normal path once the
// transition elapses. Advancing while idle does nothing.
func (e *Engine) Advance() {
	if e.disposed || e.state == StateIdle {
		return
	}
	if e.cursor < len(e.items)-1 {
		e.items[e.cursor].Shown = true
		e.log.Debug().Int("index", e.cursor).Msg("skipping item")
		e.activate(e.cursor + 1)
		e.syncPlay()
		return
	}
	e.log.Debug().Int("index", e.cursor).Dur("transition", e.opts.FastForward).Msg("fast-forwarding last item")
	e.timer.JumpToEnd(e.opts.FastForward)
	e.state = StatePlaying
	e.syncPlay()
}

// Rewind steps back to the item before the active one and plays it from the
// start. On the first item it restarts that item. When everything has been
// shown it reactivates the last item. Rewinding always resumes playback.
func (e *Engine) Rewind() {
	if e.disposed || !e.started {
		return
	}
	switch {
	case e.cursor >= len(e.items):
		last := len(e.items) - 1
		e.items[last].Shown = false
		e.activate(last)
	case e.cursor == 0:
		e.activate(0)
	default:
		e.items[e.cursor].Shown = false
		e.items[e.cursor-1].Shown = false
		e.activate(e.cursor - 1)
	}
	e.syncPlay()
}

// Pause asks for playback to freeze. With a controller attached the request
// goes through it; otherwise the timer stops immediately.
func (e *Engine) Pause() {
	if e.disposed {
		return
	}
	switch e.authority {
	case PauseSourceExternal:
		e.opts.Controller.Pause()
	case PauseSourceLocal:
		e.applyPause()
	}
}

// Resume asks for playback to continue from the frozen fraction.
func (e *Engine) Resume() {
	if e.disposed {
		return
	}
	switch e.authority {
	case PauseSourceExternal:
		e.opts.Controller.Play()
	case PauseSourceLocal:
		e.applyResume()
	}
}

// HandleSignal applies a controller signal.
func (e *Engine) HandleSignal(sig controller.Signal) {
	if e.disposed {
		return
	}
	switch sig {
	case controller.SignalPause:
		e.applyPause()
	case controller.SignalPlay:
		e.applyResume()
	}
}

// Signals returns the controller subscription channel, or nil when no
// controller is attached.
func (e *Engine) Signals() <-chan controller.Signal {
	if e.sub == nil {
		return nil
	}
	return e.sub.C()
}

// PumpSignals applies every controller signal that is already pending. It
// is for hosts that drive the engine without a Player.
func (e *Engine) PumpSignals() {
	ch := e.Signals()
	if ch == nil {
		return
	}
	for {
		select {
		case sig, ok := <-ch:
			if !ok {
				return
			}
			e.HandleSignal(sig)
		default:
			return
		}
	}
}

// Dispose cancels the timer and the controller subscription. No callback
// fires afterwards. It is safe to call more than once.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.timer.Cancel()
	if e.sub != nil {
		e.sub.Cancel()
	}
	e.state = StateIdle
	e.log.Debug().Msg("disposed")
}

// State returns the current playback state.
func (e *Engine) State() State { return e.state }

// PauseSource returns which authority decides pausing.
func (e *Engine) PauseSource() PauseSource { return e.authority }

// Len returns the number of items.
func (e *Engine) Len() int { return len(e.items) }

// Shown reports whether item i has been shown.
func (e *Engine) Shown(i int) bool { return e.items[i].Shown }

// Item returns a copy of item i.
func (e *Engine) Item(i int) story.Item { return e.items[i] }

// Items returns a copy of all items.
func (e *Engine) Items() []story.Item {
	return append([]story.Item(nil), e.items...)
}

// Position returns the cursor: the first unshown item, or Len when every
// item has been shown.
func (e *Engine) Position() int { return e.cursor }

// Active returns the index of the item being timed. There is none while
// idle.
func (e *Engine) Active() (int, bool) {
	if e.state == StateIdle || e.cursor >= len(e.items) {
		return 0, false
	}
	return e.cursor, true
}

// ActiveItem returns the item being timed, if any.
func (e *Engine) ActiveItem() (story.Item, bool) {
	i, ok := e.Active()
	if !ok {
		return story.Item{}, false
	}
	return e.items[i], true
}

// Fraction returns the live progress of the active item, or 0 when idle.
func (e *Engine) Fraction() float64 {
	if _, ok := e.Active(); !ok {
		return 0
	}
	return e.timer.Value()
}

// Options returns the options the engine was created with, defaults applied.
func (e *Engine) Options() Options { return e.opts }

// Snapshot is a point in time copy of the engine, safe to hand to other
// goroutines.
type Snapshot struct {
	State       State
	Active      int // -1 when idle
	Fraction    float64
	Shown       []bool
	Bars        []float64
	Repeat      bool
	Inline      bool
	Indicator   IndicatorPosition
	PauseSource PauseSource
}

// Snapshot captures the current state together with the projected bars.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		State:       e.state,
		Active:      -1,
		Fraction:    e.Fraction(),
		Shown:       make([]bool, len(e.items)),
		Bars:        progress.Bars(e),
		Repeat:      e.opts.Repeat,
		Inline:      e.opts.Inline,
		Indicator:   e.opts.Indicator,
		PauseSource: e.authority,
	}
	if i, ok := e.Active(); ok {
		s.Active = i
	}
	for i, it := range e.items {
		s.Shown[i] = it.Shown
	}
	return s
}

// complete is the timer callback for the active item.
func (e *Engine) complete() {
	if e.disposed || e.cursor >= len(e.items) {
		return
	}
	index := e.cursor
	e.items[index].Shown = true
	e.cursor++

	if e.cursor < len(e.items) {
		e.activate(e.cursor)
		return
	}

	e.log.Debug().Bool("repeat", e.opts.Repeat).Msg("story complete")
	e.state = StateIdle
	if e.opts.OnComplete != nil {
		e.opts.OnComplete()
	}
	if e.disposed || !e.opts.Repeat {
		return
	}
	e.resetShown(0)
	e.activate(0)
}

func (e *Engine) activate(i int) {
	e.cursor = i
	e.state = StatePlaying
	e.timer.Start(e.items[i].Duration)
	e.log.Debug().Int("index", i).Dur("duration", e.items[i].Duration).Msg("showing item")
	if e.opts.OnStoryShow != nil {
		e.opts.OnStoryShow(i, e.items[i])
	}
}

// syncPlay keeps an attached controller in step after navigation started
// playback.
func (e *Engine) syncPlay() {
	if e.authority == PauseSourceExternal && !e.disposed {
		e.opts.Controller.Play()
	}
}

func (e *Engine) applyPause() {
	if e.state != StatePlaying {
		return
	}
	e.timer.Stop()
	e.state = StatePaused
	e.log.Debug().Int("index", e.cursor).Float64("fraction", e.timer.Value()).Msg("paused")
}

func (e *Engine) applyResume() {
	if e.state != StatePaused {
		return
	}
	e.timer.Resume()
	e.state = StatePlaying
	e.log.Debug().Int("index", e.cursor).Msg("resumed")
}

func (e *Engine) firstUnshown() int {
	for i, it := range e.items {
		if !it.Shown {
			return i
		}
	}
	return len(e.items)
}

func (e *Engine) resetShown(from int) {
	for i := from; i < len(e.items); i++ {
		e.items[i].Shown = false
	}
}
