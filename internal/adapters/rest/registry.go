package rest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/game"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

// playerCommand is an instruction for the client's audio player.
type playerCommand struct {
	Action     string `json:"action"` // load, play, pause, seek
	URI        string `json:"uri,omitempty"`
	PositionMs int    `json:"position_ms,omitempty"`
}

// commandRecorder is the Player behind a game's RevealGuard. The HTTP client
// owns the real player, so commands are queued and handed out with the next
// playback response.
type commandRecorder struct {
	pending []playerCommand
}

var _ ports.Player = (*commandRecorder)(nil)

func (c *commandRecorder) LoadURI(_ context.Context, uri string) error {
	c.pending = append(c.pending, playerCommand{Action: "load", URI: uri})
	return nil
}

func (c *commandRecorder) Play(context.Context) error {
	c.pending = append(c.pending, playerCommand{Action: "play"})
	return nil
}

func (c *commandRecorder) Pause(context.Context) error {
	c.pending = append(c.pending, playerCommand{Action: "pause"})
	return nil
}

func (c *commandRecorder) Seek(_ context.Context, ms int) error {
	c.pending = append(c.pending, playerCommand{Action: "seek", PositionMs: ms})
	return nil
}

func (c *commandRecorder) drain() []playerCommand {
	out := c.pending
	c.pending = nil
	if out == nil {
		out = []playerCommand{}
	}
	return out
}

// gameEntry serializes all access to one session.
type gameEntry struct {
	mu       sync.Mutex
	session  *game.Session
	guard    *game.RevealGuard
	recorder *commandRecorder
	created  time.Time
	finished time.Time // zero while the session is still running
}

// markFinished records when the session first reached its end. Callers hold mu.
func (e *gameEntry) markFinished(now time.Time) {
	if e.finished.IsZero() && e.session.Phase() == game.PhaseOver {
		e.finished = now
	}
}

// expired reports whether the entry should be dropped. Callers hold mu.
func (e *gameEntry) expired(now time.Time, maxAge, finishedGrace time.Duration) bool {
	if maxAge > 0 && now.Sub(e.created) >= maxAge {
		return true
	}
	return !e.finished.IsZero() && now.Sub(e.finished) >= finishedGrace
}

// syncCue points the guard at the session's current track.
func (e *gameEntry) syncCue(ctx context.Context) error {
	cue, ok := e.session.Cue()
	if !ok {
		return nil
	}
	return e.guard.SetCue(ctx, cue)
}

type registry struct {
	mu    sync.RWMutex
	games map[string]*gameEntry
}

func newRegistry() *registry {
	return &registry{games: make(map[string]*gameEntry)}
}

func (r *registry) add(s *game.Session, now func() time.Time) (string, *gameEntry) {
	rec := &commandRecorder{}
	e := &gameEntry{
		session:  s,
		guard:    game.NewRevealGuard(rec, now),
		recorder: rec,
		created:  now(),
	}
	id := uuid.NewString()
	r.mu.Lock()
	r.games[id] = e
	r.mu.Unlock()
	return id, e
}

func (r *registry) get(id string) (*gameEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return false
	}
	delete(r.games, id)
	return true
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// sweep removes games that are older than maxAge or finished more than
// finishedGrace ago, and returns how many were removed.
func (r *registry) sweep(now time.Time, maxAge, finishedGrace time.Duration) int {
	r.mu.RLock()
	entries := make(map[string]*gameEntry, len(r.games))
	for id, e := range r.games {
		entries[id] = e
	}
	r.mu.RUnlock()

	var stale []string
	for id, e := range entries {
		e.mu.Lock()
		if e.expired(now, maxAge, finishedGrace) {
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range stale {
		delete(r.games, id)
	}
	return len(stale)
}
