package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyview/internal/controller"
	"storyview/internal/gesture"
	"storyview/internal/story"
)

const (
	frame   = 10 * time.Millisecond
	waitFor = 2 * time.Second
	pollDur = 5 * time.Millisecond
)

type events struct {
	mu        sync.Mutex
	shows     []int
	completes int
}

func (ev *events) wire(opts *Options) {
	opts.OnStoryShow = func(i int, _ story.Item) {
		ev.mu.Lock()
		defer ev.mu.Unlock()
		ev.shows = append(ev.shows, i)
	}
	opts.OnComplete = func() {
		ev.mu.Lock()
		defer ev.mu.Unlock()
		ev.completes++
	}
}

func (ev *events) completed() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.completes
}

func newTestPlayer(t *testing.T, items []story.Item, opts Options) (*Player, clockwork.FakeClock, *events) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts.Clock = clock
	ev := &events{}
	ev.wire(&opts)
	e, err := NewEngine(items, opts)
	require.NoError(t, err)

	p := NewPlayer(e, PlayerConfig{FrameInterval: frame, HoldDelay: 500 * time.Millisecond})
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(p.Close)
	clock.BlockUntil(1)
	return p, clock, ev
}

func snapshot(t *testing.T, p *Player) Snapshot {
	t.Helper()
	s, ok := p.Snapshot()
	require.True(t, ok)
	return s
}

func eventuallyActive(t *testing.T, p *Player, want int, state State) {
	t.Helper()
	require.Eventually(t, func() bool {
		s, ok := p.Snapshot()
		return ok && s.Active == want && s.State == state
	}, waitFor, pollDur)
}

func TestPlayerPlaysThroughOnTicks(t *testing.T) {
	p, clock, ev := newTestPlayer(t, itemsOf(time.Second, time.Second), Options{})
	assert.Equal(t, 0, snapshot(t, p).Active)

	clock.Advance(time.Second)
	eventuallyActive(t, p, 1, StatePlaying)

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return ev.completed() == 1 }, waitFor, pollDur)
	s := snapshot(t, p)
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, []float64{1, 1}, s.Bars)
}

func TestPlayerCommands(t *testing.T) {
	p, _, ev := newTestPlayer(t, itemsOf(time.Second, time.Second, time.Second), Options{})

	require.True(t, p.Advance())
	assert.Equal(t, 1, snapshot(t, p).Active)

	require.True(t, p.Pause())
	assert.Equal(t, StatePaused, snapshot(t, p).State)
	require.True(t, p.Toggle())
	assert.Equal(t, StatePlaying, snapshot(t, p).State)
	require.True(t, p.Toggle())
	require.True(t, p.Resume())
	assert.Equal(t, StatePlaying, snapshot(t, p).State)

	require.True(t, p.Rewind())
	s := snapshot(t, p)
	assert.Equal(t, 0, s.Active)
	assert.Equal(t, []bool{false, false, false}, s.Shown)

	ev.mu.Lock()
	defer ev.mu.Unlock()
	assert.Equal(t, []int{0, 1, 0}, ev.shows)
}

func TestPlayerGestures(t *testing.T) {
	const width = 300.0

	t.Run("tap on the right advances", func(t *testing.T) {
		p, _, _ := newTestPlayer(t, itemsOf(time.Second, time.Second), Options{})
		assert.Equal(t, gesture.IntentPause, p.Press(250, width))
		assert.Equal(t, StatePaused, snapshot(t, p).State, "a press freezes the bar")
		assert.Equal(t, gesture.IntentAdvance, p.Release())
		s := snapshot(t, p)
		assert.Equal(t, 1, s.Active)
		assert.Equal(t, StatePlaying, s.State)
	})

	t.Run("hold on the right pauses until release", func(t *testing.T) {
		p, clock, _ := newTestPlayer(t, itemsOf(5*time.Second, time.Second), Options{})
		clock.Advance(time.Second)
		p.Press(250, width)
		clock.Advance(600 * time.Millisecond)
		require.Eventually(t, func() bool {
			var phase gesture.Phase
			p.do(func() { phase = p.mapper.Phase() })
			return phase == gesture.PhaseCommitted
		}, waitFor, pollDur)

		s := snapshot(t, p)
		assert.Equal(t, StatePaused, s.State)
		assert.Equal(t, 0, s.Active)
		assert.InDelta(t, 0.2, s.Fraction, tolerance)

		assert.Equal(t, gesture.IntentResume, p.Release())
		s = snapshot(t, p)
		assert.Equal(t, StatePlaying, s.State)
		assert.Equal(t, 0, s.Active, "a hold never advances")
	})

	t.Run("tap on the left rewinds", func(t *testing.T) {
		p, _, _ := newTestPlayer(t, itemsOf(time.Second, time.Second), Options{})
		p.Advance()
		assert.Equal(t, gesture.IntentNone, p.Press(20, width))
		assert.Equal(t, gesture.IntentRewind, p.Release())
		assert.Equal(t, 0, snapshot(t, p).Active)
	})

	t.Run("cancel resumes", func(t *testing.T) {
		p, _, _ := newTestPlayer(t, itemsOf(time.Second, time.Second), Options{})
		p.Press(250, width)
		assert.Equal(t, gesture.IntentResume, p.CancelPress())
		s := snapshot(t, p)
		assert.Equal(t, StatePlaying, s.State)
		assert.Equal(t, 0, s.Active)
	})
}

func TestPlayerFollowsController(t *testing.T) {
	ctrl := controller.New()
	p, _, _ := newTestPlayer(t, itemsOf(time.Second, time.Second), Options{Controller: ctrl})

	ctrl.Pause()
	eventuallyActive(t, p, 0, StatePaused)

	ctrl.Play()
	eventuallyActive(t, p, 0, StatePlaying)

	// a local pause goes through the controller and comes back as a signal
	p.Pause()
	assert.Equal(t, controller.SignalPause, ctrl.State())
	eventuallyActive(t, p, 0, StatePaused)

	// toggles follow the controller even before its signals arrive
	require.True(t, p.Toggle())
	require.True(t, p.Toggle())
	assert.Equal(t, controller.SignalPause, ctrl.State())
	require.True(t, p.Toggle())
	assert.Equal(t, controller.SignalPlay, ctrl.State())
	eventuallyActive(t, p, 0, StatePlaying)
}

func TestPlayerSuspendForOperation(t *testing.T) {
	p, _, _ := newTestPlayer(t, itemsOf(time.Second), Options{})

	require.True(t, p.SuspendForOperation())
	assert.Equal(t, StatePaused, snapshot(t, p).State)
	require.True(t, p.ResumeAfterOperation())
	assert.Equal(t, StatePlaying, snapshot(t, p).State)

	// a story paused by the user stays paused
	p.Pause()
	p.SuspendForOperation()
	p.ResumeAfterOperation()
	assert.Equal(t, StatePaused, snapshot(t, p).State)
}

func TestPlayerClose(t *testing.T) {
	ctrl := controller.New()
	p, clock, ev := newTestPlayer(t, itemsOf(time.Second, time.Second), Options{Controller: ctrl})

	p.Close()
	p.Close()
	<-p.Done()

	_, ok := p.Snapshot()
	assert.False(t, ok)
	assert.False(t, p.Advance())
	assert.Equal(t, gesture.IntentNone, p.Press(250, 300))
	assert.Zero(t, ctrl.Subscribers(), "engine disposed")

	clock.Advance(10 * time.Second)
	assert.Zero(t, ev.completed())
	assert.ErrorIs(t, p.Start(context.Background()), ErrDisposed)
}

func TestPlayerStopsWithContext(t *testing.T) {
	clock := clockwork.NewFakeClock()
	e, err := NewEngine(itemsOf(time.Second), Options{Clock: clock})
	require.NoError(t, err)
	p := NewPlayer(e, PlayerConfig{FrameInterval: frame})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	cancel()

	select {
	case <-p.Done():
	case <-time.After(waitFor):
		t.Fatal("player did not stop")
	}
	assert.Equal(t, StateIdle, e.State())
	p.Close()
}

func TestPlayerCloseBeforeStart(t *testing.T) {
	e, err := NewEngine(itemsOf(time.Second), Options{Clock: clockwork.NewFakeClock()})
	require.NoError(t, err)
	p := NewPlayer(e, PlayerConfig{})

	assert.False(t, p.Pause(), "commands need a running player")
	p.Close()
	<-p.Done()
	assert.ErrorIs(t, e.Start(), ErrDisposed)
}
