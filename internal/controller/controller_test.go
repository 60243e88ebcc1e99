package controller

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, s *Subscription) Signal {
	t.Helper()
	select {
	case sig, ok := <-s.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return sig
	default:
		t.Fatal("no signal pending")
		return 0
	}
}

func assertNothingPending(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case sig, ok := <-s.C():
		if ok {
			t.Fatalf("unexpected signal %s", sig)
		}
	default:
	}
}

func TestControllerStartsPlaying(t *testing.T) {
	c := New()
	assert.Equal(t, SignalPlay, c.State())
	assert.Equal(t, "play", SignalPlay.String())
	assert.Equal(t, "pause", SignalPause.String())
	assert.Equal(t, "unknown", Signal(7).String())
}

func TestControllerBroadcastsToEverySubscriber(t *testing.T) {
	c := New()
	a := c.Subscribe()
	b := c.Subscribe()
	require.Equal(t, 2, c.Subscribers())

	c.Pause()
	assert.Equal(t, SignalPause, receive(t, a))
	assert.Equal(t, SignalPause, receive(t, b))
	assert.Equal(t, SignalPause, c.State())

	c.Play()
	assert.Equal(t, SignalPlay, receive(t, a))
	assert.Equal(t, SignalPlay, receive(t, b))
}

func TestControllerDoesNotReplayHistory(t *testing.T) {
	c := New()
	c.Pause()

	late := c.Subscribe()
	assertNothingPending(t, late)

	c.Play()
	assert.Equal(t, SignalPlay, receive(t, late))
}

func TestControllerLatestValueWins(t *testing.T) {
	c := New()
	s := c.Subscribe()

	c.Pause()
	c.Play()
	c.Pause()

	assert.Equal(t, SignalPause, receive(t, s))
	assertNothingPending(t, s)
}

func TestControllerToggle(t *testing.T) {
	c := New()
	s := c.Subscribe()

	c.Toggle()
	assert.Equal(t, SignalPause, receive(t, s))
	c.Toggle()
	assert.Equal(t, SignalPlay, receive(t, s))
}

func TestSubscriptionCancel(t *testing.T) {
	c := New()
	s := c.Subscribe()
	s.Cancel()
	s.Cancel()
	assert.Zero(t, c.Subscribers())

	_, ok := <-s.C()
	assert.False(t, ok, "channel is closed after cancel")

	// resubscribing does not see what was missed
	c.Pause()
	again := c.Subscribe()
	assertNothingPending(t, again)
}

func TestControllerClose(t *testing.T) {
	c := New()
	s := c.Subscribe()
	c.Close()
	c.Close()

	_, ok := <-s.C()
	assert.False(t, ok)
	s.Cancel()

	c.Pause()
	assert.Equal(t, SignalPause, c.State())

	after := c.Subscribe()
	_, ok = <-after.C()
	assert.False(t, ok, "subscribing to a closed controller yields a closed channel")
}

func TestControllerConcurrentProducers(t *testing.T) {
	c := New()
	s := c.Subscribe()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if (i+j)%2 == 0 {
					c.Pause()
				} else {
					c.Play()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, c.State(), receive(t, s), "the pending signal is the last one emitted")
}
