// Package rest exposes the game over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/services"
)

// Defaults fill in fields a POST /games body leaves out.
type Defaults struct {
	Mode             domain.GuessMode
	Difficulty       domain.Difficulty
	Songs            int
	Skips            *int // nil means unlimited
	EvenDistribution bool
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc      *services.Orchestrator
	router   *http.ServeMux
	games    *registry
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator, defaults Defaults, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		svc:      svc,
		router:   http.NewServeMux(),
		games:    newRegistry(),
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	h.router.HandleFunc("GET /playlists/last", h.LastPlaylist)
	h.router.HandleFunc("GET /playlists/{id}", h.GetPlaylist)

	h.router.HandleFunc("POST /games", h.CreateGame)
	h.router.HandleFunc("GET /games/{id}", h.GetGame)
	h.router.HandleFunc("DELETE /games/{id}", h.DeleteGame)
	h.router.HandleFunc("POST /games/{id}/guesses", h.Guess)
	h.router.HandleFunc("POST /games/{id}/skip", h.Skip)
	h.router.HandleFunc("POST /games/{id}/next", h.Next)
	h.router.HandleFunc("POST /games/{id}/end", h.End)
	h.router.HandleFunc("GET /games/{id}/suggestions", h.Suggestions)
	h.router.HandleFunc("POST /games/{id}/playback", h.Playback)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "games": h.games.len()})
}

// RunJanitor drops stale games every interval until ctx is done. A game is
// stale once it is older than maxAge (zero disables the limit) or has been
// over for finishedGrace.
func (h *Handler) RunJanitor(ctx context.Context, interval, maxAge, finishedGrace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweepGames(maxAge, finishedGrace)
		}
	}
}

func (h *Handler) sweepGames(maxAge, finishedGrace time.Duration) int {
	n := h.games.sweep(h.now(), maxAge, finishedGrace)
	if n > 0 {
		h.logger.Debug("rest: stale games removed", "count", n, "remaining", h.games.len())
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	return json.NewDecoder(r.Body).Decode(v) == nil
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownMode),
		errors.Is(err, domain.ErrUnknownDifficulty),
		errors.Is(err, domain.ErrEmptyGuess):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoundOver),
		errors.Is(err, domain.ErrRoundNotSolved),
		errors.Is(err, domain.ErrSkipNotAllowed),
		errors.Is(err, domain.ErrNoSkipsLeft),
		errors.Is(err, domain.ErrCannotEnd),
		errors.Is(err, domain.ErrSessionOver),
		errors.Is(err, domain.ErrNoTracks):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("rest: request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, err.Error(), status)
}
