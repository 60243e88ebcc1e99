// Package controller provides the external play/pause signal that lets code
// outside the player pause and resume a story without owning playback.
package controller

import (
	"sync"
)

// Signal is the playback state carried by a Controller.
type Signal int

const (
	SignalPlay Signal = iota
	SignalPause
)

// String returns "play" or "pause".
func (s Signal) String() string {
	switch s {
	case SignalPlay:
		return "play"
	case SignalPause:
		return "pause"
	default:
		return "unknown"
	}
}

// Controller broadcasts play and pause signals to any number of subscribers.
// Each subscriber sees every emission made after it subscribed, except that a
// subscriber which falls behind only keeps the latest pending signal.
// Nothing is replayed to new subscribers.
//
// A Controller is safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	state  Signal
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
}

// New creates a controller in the play state.
func New() *Controller {
	return &Controller{
		state: SignalPlay,
		subs:  make(map[uint64]*Subscription),
	}
}

// Play emits SignalPlay.
func (c *Controller) Play() { c.emit(SignalPlay) }

// Pause emits SignalPause.
func (c *Controller) Pause() { c.emit(SignalPause) }

// Toggle emits the opposite of the current state.
func (c *Controller) Toggle() {
	c.mu.Lock()
	next := SignalPause
	if c.state == SignalPause {
		next = SignalPlay
	}
	c.mu.Unlock()
	c.emit(next)
}

// State returns the most recently emitted signal.
func (c *Controller) State() Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a new consumer. The returned subscription's channel is
// closed when it is cancelled or the controller is closed.
func (c *Controller) Subscribe() *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &Subscription{c: c, id: c.nextID, ch: make(chan Signal, 1)}
	c.nextID++
	if c.closed {
		close(s.ch)
		s.cancelled = true
		return s
	}
	c.subs[s.id] = s
	return s
}

// Subscribers returns the number of live subscriptions.
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close cancels every subscription. Later emissions only update State.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, s := range c.subs {
		delete(c.subs, id)
		s.cancelled = true
		close(s.ch)
	}
}

func (c *Controller) emit(sig Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = sig
	for _, s := range c.subs {
		// latest value wins: replace a signal the consumer has not read yet
		select {
		case <-s.ch:
		default:
		}
		s.ch <- sig
	}
}

// Subscription is one consumer's view of a Controller.
type Subscription struct {
	c         *Controller
	id        uint64
	ch        chan Signal
	cancelled bool // guarded by c.mu
}

// C returns the channel signals are delivered on.
func (s *Subscription) C() <-chan Signal {
	return s.ch
}

// Cancel stops delivery and closes the channel. It is safe to call more than
// once.
func (s *Subscription) Cancel() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	delete(s.c.subs, s.id)
	close(s.ch)
}
