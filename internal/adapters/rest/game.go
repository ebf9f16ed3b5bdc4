package rest

import (
	"errors"
	"net/http"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/game"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
	"github.com/ewilliams-labs/earworm/internal/core/services"
)

type createGameRequest struct {
	PlaylistID       string   `json:"playlist_id"`
	Mode             string   `json:"mode"`
	Difficulty       string   `json:"difficulty"`
	Songs            int      `json:"songs"`
	Skips            *int     `json:"skips"` // negative means unlimited
	EvenDistribution *bool    `json:"even_distribution"`
	SelectedUsers    []string `json:"selected_users"`
}

type guessRequest struct {
	Guess string `json:"guess"`
}

type playbackRequest struct {
	Token      uint64 `json:"token"`
	IsPaused   bool   `json:"is_paused"`
	PositionMs int    `json:"position_ms"`
}

type gameResponse struct {
	ID    string     `json:"id"`
	State game.State `json:"state"`
	Cue   *game.Cue  `json:"cue,omitempty"`
}

type outcomeResponse struct {
	Correct bool       `json:"correct"`
	Status  string     `json:"status"`
	Points  int        `json:"points"`
	State   game.State `json:"state"`
	Cue     *game.Cue  `json:"cue,omitempty"`
}

type playbackResponse struct {
	Cut       bool            `json:"cut"`
	ElapsedMs int             `json:"elapsed_ms"`
	Cue       *game.Cue       `json:"cue,omitempty"`
	Commands  []playerCommand `json:"commands"`
}

func cueOf(s *game.Session) *game.Cue {
	if c, ok := s.Cue(); ok {
		return &c
	}
	return nil
}

func (h *Handler) options(req createGameRequest) (services.GameOptions, error) {
	mode := h.defaults.Mode
	if req.Mode != "" {
		m, err := domain.ParseGuessMode(req.Mode)
		if err != nil {
			return services.GameOptions{}, err
		}
		mode = m
	}
	difficulty := h.defaults.Difficulty
	if req.Difficulty != "" {
		d, err := domain.ParseDifficulty(req.Difficulty)
		if err != nil {
			return services.GameOptions{}, err
		}
		difficulty = d
	}

	opts := services.GameOptions{
		Mode:             mode,
		Difficulty:       difficulty,
		Songs:            req.Songs,
		Skips:            h.defaults.Skips,
		EvenDistribution: h.defaults.EvenDistribution,
		SelectedUsers:    req.SelectedUsers,
	}
	if opts.Songs <= 0 {
		opts.Songs = h.defaults.Songs
	}
	if req.Skips != nil {
		opts.Skips = nil
		if *req.Skips >= 0 {
			opts.Skips = game.Budget(*req.Skips)
		}
	}
	if req.EvenDistribution != nil {
		opts.EvenDistribution = *req.EvenDistribution
	}
	return opts, nil
}

// CreateGame handles POST /games
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !decodeJSON(r, &req) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	opts, err := h.options(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.svc.NewGame(r.Context(), req.PlaylistID, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	id, entry := h.games.add(session, h.now)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.syncCue(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("rest: game started", "game", id, "tracks", session.TrackCount())
	writeJSON(w, http.StatusCreated, gameResponse{ID: id, State: session.Snapshot(), Cue: cueOf(session)})
}

// withGame runs fn with the game's lock held.
func (h *Handler) withGame(w http.ResponseWriter, r *http.Request, fn func(id string, e *gameEntry)) {
	id := r.PathValue("id")
	entry, err := h.games.get(id)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(id, entry)
	entry.markFinished(h.now())
}

// GetGame handles GET /games/{id}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	h.withGame(w, r, func(id string, e *gameEntry) {
		writeJSON(w, http.StatusOK, gameResponse{ID: id, State: e.session.Snapshot(), Cue: cueOf(e.session)})
	})
}

// DeleteGame handles DELETE /games/{id}
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if !h.games.remove(r.PathValue("id")) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondOutcome(w http.ResponseWriter, r *http.Request, e *gameEntry, out game.Outcome) {
	if err := e.syncCue(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse{
		Correct: out.Correct,
		Status:  out.Status.String(),
		Points:  out.Points,
		State:   e.session.Snapshot(),
		Cue:     cueOf(e.session),
	})
}

// Guess handles POST /games/{id}/guesses
func (h *Handler) Guess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if !decodeJSON(r, &req) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.withGame(w, r, func(id string, e *gameEntry) {
		out, err := e.session.Guess(req.Guess)
		if errors.Is(err, domain.ErrUnresolvedUser) {
			h.logger.Warn("rest: guess compared against unresolved contributor", "game", id, "error", err)
			err = nil
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.respondOutcome(w, r, e, out)
	})
}

// Skip handles POST /games/{id}/skip
func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	h.withGame(w, r, func(_ string, e *gameEntry) {
		out, err := e.session.Skip()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.respondOutcome(w, r, e, out)
	})
}

// Next handles POST /games/{id}/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.withGame(w, r, func(_ string, e *gameEntry) {
		points, err := e.session.Next()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := e.syncCue(r.Context()); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"points": points,
			"state":  e.session.Snapshot(),
			"cue":    cueOf(e.session),
		})
	})
}

// End handles POST /games/{id}/end
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	h.withGame(w, r, func(id string, e *gameEntry) {
		if err := e.session.ForceEnd(); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, gameResponse{ID: id, State: e.session.Snapshot()})
	})
}

// Suggestions handles GET /games/{id}/suggestions?q=
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	h.withGame(w, r, func(_ string, e *gameEntry) {
		labels := e.session.Suggestions(query)
		if labels == nil {
			labels = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": labels})
	})
}

// Playback handles POST /games/{id}/playback. The client reports its player
// state; the answer carries the commands it has to run, such as the pause
// and rewind once the reveal window is used up.
func (h *Handler) Playback(w http.ResponseWriter, r *http.Request) {
	var req playbackRequest
	if !decodeJSON(r, &req) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.withGame(w, r, func(_ string, e *gameEntry) {
		if err := e.syncCue(r.Context()); err != nil {
			h.fail(w, r, err)
			return
		}
		cut, err := e.guard.Observe(r.Context(), req.Token, ports.PlaybackUpdate{
			IsPaused: req.IsPaused,
			Position: req.PositionMs,
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, playbackResponse{
			Cut:       cut,
			ElapsedMs: e.guard.Elapsed(),
			Cue:       cueOf(e.session),
			Commands:  e.recorder.drain(),
		})
	})
}
