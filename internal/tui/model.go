// Package tui is the terminal front end: a bubbletea program that runs a
// game session against a local player.
package tui

import (
	"context"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ewilliams-labs/earworm/internal/core/game"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

const maxSuggestions = 6

// Player is a ports.Player that can also report its state.
type Player interface {
	ports.Player
	Status() (ports.PlaybackUpdate, error)
}

type playbackMsg struct {
	update ports.PlaybackUpdate
	err    error
}

type Model struct {
	ctx          context.Context
	session      *game.Session
	guard        *game.RevealGuard
	player       Player
	pollInterval time.Duration
	httpClient   *http.Client

	// cover of the last solution; artURL is set as soon as the fetch starts
	artURL string
	thumb  []string
	accent string

	input       string
	suggestions []string
	selected    int
	message     string
	err         error
	quitting    bool
	width       int
	height      int
}

type ModelConfig struct {
	Session      *game.Session
	Player       Player
	PollInterval time.Duration
	// HTTPClient fetches cover art; nil uses http.DefaultClient.
	HTTPClient *http.Client
	// Now is the guard's clock; nil uses time.Now.
	Now func() time.Time
}

func NewModel(ctx context.Context, cfg ModelConfig) Model {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = game.DefaultPollInterval
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	m := Model{
		ctx:          ctx,
		session:      cfg.Session,
		guard:        game.NewRevealGuard(cfg.Player, cfg.Now),
		player:       cfg.Player,
		pollInterval: cfg.PollInterval,
		httpClient:   cfg.HTTPClient,
	}
	m.refreshSuggestions()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startTrack(), m.pollCmd())
}

func (m Model) pollCmd() tea.Cmd {
	player := m.player
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		u, err := player.Status()
		return playbackMsg{update: u, err: err}
	})
}

// syncCue points the guard at the session's current track.
func (m *Model) syncCue() error {
	cue, ok := m.session.Cue()
	if !ok {
		return nil
	}
	return m.guard.SetCue(m.ctx, cue)
}

// startTrack loads the current track and plays it from the top.
func (m *Model) startTrack() tea.Cmd {
	if err := m.syncCue(); err != nil {
		m.err = err
		return nil
	}
	m.replay()
	return nil
}

func (m *Model) replay() {
	if m.session.Round() == nil {
		return
	}
	if err := m.player.Seek(m.ctx, 0); err != nil {
		m.err = err
		return
	}
	if err := m.player.Play(m.ctx); err != nil {
		m.err = err
	}
}

func (m *Model) refreshSuggestions() {
	if m.input == "" {
		m.suggestions = nil
		m.selected = 0
		return
	}
	all := m.session.Suggestions(m.input)
	if len(all) > maxSuggestions {
		all = all[:maxSuggestions]
	}
	m.suggestions = all
	if m.selected >= len(all) {
		m.selected = 0
	}
}

// artworkCmd starts fetching the cover of a newly revealed solution.
func (m *Model) artworkCmd() tea.Cmd {
	sol := m.session.Snapshot().Solution
	if sol == nil || sol.ArtworkURL == "" || sol.ArtworkURL == m.artURL {
		return nil
	}
	m.artURL = sol.ArtworkURL
	m.thumb = nil
	m.accent = ""
	return fetchArtwork(m.ctx, m.httpClient, sol.ArtworkURL)
}
