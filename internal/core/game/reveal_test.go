package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

type fakePlayer struct {
	calls    []string
	pauseErr error
}

func (f *fakePlayer) LoadURI(ctx context.Context, uri string) error {
	f.calls = append(f.calls, "load "+uri)
	return nil
}
func (f *fakePlayer) Play(ctx context.Context) error {
	f.calls = append(f.calls, "play")
	return nil
}
func (f *fakePlayer) Pause(ctx context.Context) error {
	f.calls = append(f.calls, "pause")
	return f.pauseErr
}
func (f *fakePlayer) Seek(ctx context.Context, ms int) error {
	f.calls = append(f.calls, "seek")
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRevealGuard_CutsAtWindow(t *testing.T) {
	ctx := context.Background()
	p := &fakePlayer{}
	clk := &fakeClock{t: time.Unix(0, 0)}
	g := NewRevealGuard(p, clk.now)

	require.NoError(t, g.SetCue(ctx, Cue{Token: 1, URI: "spotify:track:a", WindowMs: 1000}))
	assert.Equal(t, []string{"load spotify:track:a"}, p.calls)

	cut, err := g.Observe(ctx, 1, ports.PlaybackUpdate{Position: 0})
	require.NoError(t, err)
	assert.False(t, cut)

	clk.advance(950 * time.Millisecond)
	cut, _ = g.Poll(ctx)
	assert.False(t, cut)

	clk.advance(100 * time.Millisecond)
	cut, err = g.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, cut)
	assert.Equal(t, []string{"load spotify:track:a", "pause", "seek"}, p.calls)

	cut, _ = g.Poll(ctx)
	assert.False(t, cut, "cut fires once")
}

func TestRevealGuard_ReportedPositionPastWindow(t *testing.T) {
	p := &fakePlayer{}
	clk := &fakeClock{t: time.Unix(0, 0)}
	g := NewRevealGuard(p, clk.now)
	require.NoError(t, g.SetCue(context.Background(), Cue{Token: 1, WindowMs: 3000}))

	cut, err := g.Observe(context.Background(), 1, ports.PlaybackUpdate{Position: 3200})
	require.NoError(t, err)
	assert.True(t, cut)
}

func TestRevealGuard_NewTokenInvalidatesPendingCut(t *testing.T) {
	ctx := context.Background()
	p := &fakePlayer{}
	clk := &fakeClock{t: time.Unix(0, 0)}
	g := NewRevealGuard(p, clk.now)

	require.NoError(t, g.SetCue(ctx, Cue{Token: 1, URI: "a", WindowMs: 1000}))
	_, _ = g.Observe(ctx, 1, ports.PlaybackUpdate{Position: 0})
	clk.advance(900 * time.Millisecond)

	require.NoError(t, g.SetCue(ctx, Cue{Token: 2, URI: "b", WindowMs: 1000}))
	clk.advance(500 * time.Millisecond)
	cut, _ := g.Poll(ctx)
	assert.False(t, cut, "timing of the previous track must not carry over")

	cut, _ = g.Observe(ctx, 1, ports.PlaybackUpdate{Position: 5000})
	assert.False(t, cut, "stale token updates are ignored")
}

func TestRevealGuard_PauseResetsStart(t *testing.T) {
	ctx := context.Background()
	p := &fakePlayer{}
	clk := &fakeClock{t: time.Unix(0, 0)}
	g := NewRevealGuard(p, clk.now)
	require.NoError(t, g.SetCue(ctx, Cue{Token: 1, WindowMs: 2000}))

	_, _ = g.Observe(ctx, 1, ports.PlaybackUpdate{Position: 0})
	clk.advance(1500 * time.Millisecond)
	_, _ = g.Observe(ctx, 1, ports.PlaybackUpdate{IsPaused: true, Position: 1500})
	clk.advance(10 * time.Second)
	cut, _ := g.Poll(ctx)
	assert.False(t, cut, "paused playback never trips the window")
	assert.Equal(t, 1500, g.Elapsed())
}

func TestRevealGuard_WiderWindowRearms(t *testing.T) {
	ctx := context.Background()
	p := &fakePlayer{}
	clk := &fakeClock{t: time.Unix(0, 0)}
	g := NewRevealGuard(p, clk.now)
	require.NoError(t, g.SetCue(ctx, Cue{Token: 1, WindowMs: 1000}))
	_, _ = g.Observe(ctx, 1, ports.PlaybackUpdate{Position: 1100})

	require.NoError(t, g.SetCue(ctx, Cue{Token: 1, WindowMs: 2000}))
	_, _ = g.Observe(ctx, 1, ports.PlaybackUpdate{Position: 0})
	clk.advance(2100 * time.Millisecond)
	cut, _ := g.Poll(ctx)
	assert.True(t, cut)
}

func TestRevealGuard_PlayerError(t *testing.T) {
	p := &fakePlayer{pauseErr: errors.New("bus gone")}
	g := NewRevealGuard(p, nil)
	require.NoError(t, g.SetCue(context.Background(), Cue{Token: 1, WindowMs: 10}))
	cut, err := g.Observe(context.Background(), 1, ports.PlaybackUpdate{Position: 50})
	assert.True(t, cut)
	assert.ErrorContains(t, err, "bus gone")
}

func TestRevealGuard_Run(t *testing.T) {
	p := &fakePlayer{}
	g := NewRevealGuard(p, nil)
	cues := make(chan Cue, 1)
	updates := make(chan ports.PlaybackUpdate, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		g.Run(ctx, 5*time.Millisecond, cues, updates, nil)
		close(done)
	}()

	cues <- Cue{Token: 1, URI: "u", WindowMs: 20}
	time.Sleep(20 * time.Millisecond)
	updates <- ports.PlaybackUpdate{Position: 0}
	time.Sleep(100 * time.Millisecond)
	close(updates)
	<-done

	assert.Contains(t, p.calls, "pause")
	assert.Contains(t, p.calls, "seek")
}
