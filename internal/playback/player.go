package playback

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"storyview/internal/gesture"
)

const defaultFrameInterval = time.Second / 60

// PlayerConfig configures a Player.
type PlayerConfig struct {
	// FrameInterval is how often the engine is ticked. Defaults to 60 frames
	// per second.
	FrameInterval time.Duration
	// HoldDelay is the press duration after which a press on the advance
	// region counts as a hold.
	HoldDelay time.Duration
	Clock     clockwork.Clock
	Logger    zerolog.Logger
}

type command struct {
	fn  func()
	ack chan struct{}
}

// Player owns an Engine and drives it from a single goroutine: frame ticks,
// controller signals and caller commands are applied one at a time, so the
// engine never sees concurrent calls. All Player methods are safe for
// concurrent use.
//
// Engine callbacks run on the player goroutine. They must not call back into
// the Player.
type Player struct {
	engine   *Engine
	mapper   *gesture.Mapper
	clock    clockwork.Clock
	interval time.Duration
	log      zerolog.Logger

	cmds chan command
	done chan struct{}

	mu        sync.Mutex
	started   bool
	closed    bool
	cancel    context.CancelFunc
	suspended bool // paused for an operation
	resumeOp  bool // was playing when the operation started
}

// NewPlayer wraps engine. The engine should not be used directly afterwards.
func NewPlayer(engine *Engine, cfg PlayerConfig) *Player {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = defaultFrameInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = engine.opts.Clock
	}
	return &Player{
		engine:   engine,
		mapper:   gesture.NewMapper(cfg.HoldDelay),
		clock:    cfg.Clock,
		interval: cfg.FrameInterval,
		log:      cfg.Logger.With().Str("component", "player").Logger(),
		cmds:     make(chan command),
		done:     make(chan struct{}),
	}
}

// Start activates the engine and launches the loop. The loop stops when ctx
// is cancelled or Close is called. Starting twice is a no-op.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrDisposed
	}
	if p.started {
		return nil
	}
	if err := p.engine.Start(); err != nil {
		return err
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	go p.run(ctx)
	return nil
}

// Done is closed once the loop has exited and the engine is disposed.
func (p *Player) Done() <-chan struct{} { return p.done }

// Close stops the loop and disposes the engine. It waits for the loop to
// exit and is safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	started := p.started
	cancel := p.cancel
	p.mu.Unlock()

	if !started {
		p.engine.Dispose()
		close(p.done)
		return
	}
	cancel()
	<-p.done
}

func (p *Player) run(ctx context.Context) {
	defer close(p.done)
	defer p.engine.Dispose()

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()
	signals := p.engine.Signals()

	p.log.Debug().Dur("frame", p.interval).Msg("player loop started")
	for {
		select {
		case <-ctx.Done():
			p.log.Debug().Msg("player loop stopped")
			return
		case <-ticker.Chan():
			p.apply(p.mapper.Tick(p.clock.Now()))
			p.engine.Tick()
		case sig, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			p.engine.HandleSignal(sig)
		case cmd := <-p.cmds:
			cmd.fn()
			close(cmd.ack)
		}
	}
}

// do runs fn on the player goroutine and waits for it. It reports false when
// the player is not running.
func (p *Player) do(fn func()) bool {
	p.mu.Lock()
	running := p.started && !p.closed
	p.mu.Unlock()
	if !running {
		return false
	}

	cmd := command{fn: fn, ack: make(chan struct{})}
	select {
	case p.cmds <- cmd:
	case <-p.done:
		return false
	}
	select {
	case <-cmd.ack:
		return true
	case <-p.done:
		return false
	}
}

func (p *Player) apply(intent gesture.Intent) {
	switch intent {
	case gesture.IntentAdvance:
		p.engine.Advance()
	case gesture.IntentRewind:
		p.engine.Rewind()
	case gesture.IntentPause:
		p.engine.Pause()
	case gesture.IntentResume:
		p.engine.Resume()
	}
}

// Advance skips to the next item.
func (p *Player) Advance() bool { return p.do(p.engine.Advance) }

// Rewind steps back one item.
func (p *Player) Rewind() bool { return p.do(p.engine.Rewind) }

// Pause requests a pause.
func (p *Player) Pause() bool { return p.do(p.engine.Pause) }

// Resume requests playback to continue.
func (p *Player) Resume() bool { return p.do(p.engine.Resume) }

// Toggle pauses a playing story and resumes a paused one. With a controller
// attached the controller's state decides, so signals still in flight count.
func (p *Player) Toggle() bool {
	return p.do(func() {
		if p.engine.PauseSource() == PauseSourceExternal {
			p.engine.opts.Controller.Toggle()
			return
		}
		switch p.engine.State() {
		case StatePlaying:
			p.engine.Pause()
		case StatePaused:
			p.engine.Resume()
		}
	})
}

// Press handles a pointer going down at x on a surface of the given width.
func (p *Player) Press(x, width float64) gesture.Intent {
	return p.gesture(func() gesture.Intent { return p.mapper.Down(x, width, p.clock.Now()) })
}

// Release handles the pointer going up.
func (p *Player) Release() gesture.Intent {
	return p.gesture(func() gesture.Intent { return p.mapper.Up(p.clock.Now()) })
}

// CancelPress aborts a press in progress, for example when the pointer
// leaves the surface.
func (p *Player) CancelPress() gesture.Intent {
	return p.gesture(p.mapper.Cancel)
}

func (p *Player) gesture(classify func() gesture.Intent) gesture.Intent {
	intent := gesture.IntentNone
	p.do(func() {
		intent = classify()
		p.apply(intent)
	})
	return intent
}

// SuspendForOperation pauses playback while something else has the user's
// attention, such as a dialog, and remembers whether it was playing.
func (p *Player) SuspendForOperation() bool {
	return p.do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.suspended {
			return
		}
		p.suspended = true
		p.resumeOp = p.engine.State() == StatePlaying
		p.engine.Pause()
	})
}

// ResumeAfterOperation resumes playback only if it was playing when
// SuspendForOperation was called.
func (p *Player) ResumeAfterOperation() bool {
	return p.do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.suspended {
			return
		}
		if p.resumeOp {
			p.engine.Resume()
		}
		p.suspended = false
		p.resumeOp = false
	})
}

// Snapshot returns the engine state. It reports false once the player has
// stopped.
func (p *Player) Snapshot() (Snapshot, bool) {
	var s Snapshot
	ok := p.do(func() { s = p.engine.Snapshot() })
	return s, ok
}
