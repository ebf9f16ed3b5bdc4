package game

import (
	"context"
	"fmt"
	"time"

	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

// DefaultPollInterval is how often the guard re-checks elapsed playback.
const DefaultPollInterval = 50 * time.Millisecond

// Cue tells the guard which track is up and how much of it may be heard.
// Token changes whenever the session moves to another track.
type Cue struct {
	Token    uint64 `json:"token"`
	URI      string `json:"uri"`
	WindowMs int    `json:"window_ms"`
}

// RevealGuard pauses and rewinds playback once the reveal window of the
// current cue has elapsed. It keeps its own start timestamp, taken from the
// first unpaused update, because position reports arrive irregularly.
// A RevealGuard is owned by one goroutine.
type RevealGuard struct {
	player ports.Player
	now    func() time.Time

	cue     Cue
	started time.Time
	lastPos int
	stopped bool
}

// NewRevealGuard builds a guard. A nil now uses time.Now.
func NewRevealGuard(player ports.Player, now func() time.Time) *RevealGuard {
	if now == nil {
		now = time.Now
	}
	return &RevealGuard{player: player, now: now}
}

// Current returns the active cue.
func (g *RevealGuard) Current() Cue { return g.cue }

// SetCue switches to c. A new token discards all timing of the previous
// track so a pending cutoff cannot hit the new one; a new URI is loaded.
func (g *RevealGuard) SetCue(ctx context.Context, c Cue) error {
	prev := g.cue
	g.cue = c
	if c.Token != prev.Token {
		g.reset()
	} else if c.WindowMs > prev.WindowMs {
		g.stopped = false
	}
	if c.URI != "" && c.URI != prev.URI {
		if err := g.player.LoadURI(ctx, c.URI); err != nil {
			return fmt.Errorf("reveal guard: load %s: %w", c.URI, err)
		}
	}
	return nil
}

func (g *RevealGuard) reset() {
	g.started = time.Time{}
	g.lastPos = 0
	g.stopped = false
}

// Observe records a playback update for the cue identified by token and
// checks the window. Updates for other tokens are ignored.
func (g *RevealGuard) Observe(ctx context.Context, token uint64, u ports.PlaybackUpdate) (bool, error) {
	if token != g.cue.Token {
		return false, nil
	}
	if u.IsPaused {
		g.started = time.Time{}
		g.lastPos = u.Position
		return false, nil
	}
	if g.started.IsZero() {
		g.started = g.now().Add(-time.Duration(u.Position) * time.Millisecond)
		g.stopped = false
	}
	g.lastPos = u.Position
	return g.Poll(ctx)
}

// Elapsed is the locally computed playback position in ms.
func (g *RevealGuard) Elapsed() int {
	if g.started.IsZero() {
		return g.lastPos
	}
	elapsed := int(g.now().Sub(g.started) / time.Millisecond)
	return max(elapsed, g.lastPos)
}

// Poll pauses and rewinds once playback passed the window. It reports whether
// it cut playback on this call.
func (g *RevealGuard) Poll(ctx context.Context) (bool, error) {
	if g.stopped || g.started.IsZero() || g.cue.WindowMs <= 0 {
		return false, nil
	}
	if g.Elapsed() < g.cue.WindowMs {
		return false, nil
	}

	g.stopped = true
	g.started = time.Time{}
	g.lastPos = 0
	if err := g.player.Pause(ctx); err != nil {
		return true, fmt.Errorf("reveal guard: pause: %w", err)
	}
	if err := g.player.Seek(ctx, 0); err != nil {
		return true, fmt.Errorf("reveal guard: rewind: %w", err)
	}
	return true, nil
}

// Run drives the guard from cue and update channels plus a ticker until ctx
// is done or updates is closed. Player errors go to onErr when it is set.
func (g *RevealGuard) Run(ctx context.Context, interval time.Duration, cues <-chan Cue, updates <-chan ports.PlaybackUpdate, onErr func(error)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	report := func(err error) {
		if err != nil && onErr != nil {
			onErr(err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-cues:
			if !ok {
				cues = nil
				continue
			}
			report(g.SetCue(ctx, c))
		case u, ok := <-updates:
			if !ok {
				return
			}
			_, err := g.Observe(ctx, g.cue.Token, u)
			report(err)
		case <-ticker.C:
			_, err := g.Poll(ctx)
			report(err)
		}
	}
}
