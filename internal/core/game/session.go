package game

import (
	"errors"
	"slices"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// Phase is the coarse lifecycle state of a Session.
type Phase string

const (
	PhaseWaiting Phase = "waiting" // no tracks loaded yet
	PhasePlaying Phase = "playing"
	PhaseOver    Phase = "over"
)

// Budget returns a finite skip budget of n.
func Budget(n int) *int { return &n }

// Config is the game setup committed when a session starts.
type Config struct {
	Mode         domain.GuessMode
	Difficulty   domain.Difficulty
	Skips        *int // nil means unlimited
	PlaylistName string
}

// Session strings rounds together over a queue of tracks and tracks the
// running score and the shared skip budget.
type Session struct {
	cfg     Config
	tracks  []domain.Track
	pool    []domain.Track
	names   Usernames
	artwork map[string]string

	skips      *int
	score      int
	index      int
	round      *Round
	solution   *domain.Track
	lastPoints int
	token      uint64
}

// NewSession starts a session over tracks. pool feeds the suggestion catalog;
// artwork maps track ids to cover URLs. Both maps are owned by the session
// afterwards and must not be modified. Empty mode and difficulty take their
// defaults; unknown ones are rejected.
func NewSession(cfg Config, tracks, pool []domain.Track, names Usernames, artwork map[string]string) (*Session, error) {
	mode, err := domain.ParseGuessMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	difficulty, err := domain.ParseDifficulty(string(cfg.Difficulty))
	if err != nil {
		return nil, err
	}
	cfg.Mode, cfg.Difficulty = mode, difficulty

	s := &Session{
		cfg:     cfg,
		tracks:  slices.Clone(tracks),
		pool:    slices.Clone(pool),
		names:   names,
		artwork: artwork,
		token:   1,
	}
	if cfg.Skips != nil {
		s.skips = Budget(*cfg.Skips)
	}
	if len(s.tracks) > 0 {
		s.round = NewRound(s.tracks[0], cfg.Mode, cfg.Difficulty, names)
	}
	return s, nil
}

// Phase derives the lifecycle state.
func (s *Session) Phase() Phase {
	switch {
	case len(s.tracks) == 0:
		return PhaseWaiting
	case s.IsTerminal():
		return PhaseOver
	default:
		return PhasePlaying
	}
}

// IsTerminal reports whether the queue is exhausted or the skip budget has
// dropped below zero. A session without tracks is waiting, not terminal.
func (s *Session) IsTerminal() bool {
	if len(s.tracks) == 0 {
		return false
	}
	return s.index >= len(s.tracks) || (s.skips != nil && *s.skips < 0)
}

func (s *Session) Config() Config                 { return s.cfg }
func (s *Session) Score() int                     { return s.score }
func (s *Session) TrackIndex() int                { return s.index }
func (s *Session) TrackCount() int                { return len(s.tracks) }
func (s *Session) Usernames() Usernames           { return s.names }
func (s *Session) Token() uint64                  { return s.token }
func (s *Session) LastPoints() int                { return s.lastPoints }
func (s *Session) SuggestionPool() []domain.Track { return s.pool }

// SkipsLeft returns the remaining budget, or nil when unlimited.
func (s *Session) SkipsLeft() *int {
	if s.skips == nil {
		return nil
	}
	return Budget(*s.skips)
}

// Round returns the active round, or nil when waiting or over.
func (s *Session) Round() *Round {
	if s.Phase() != PhasePlaying {
		return nil
	}
	return s.round
}

// Solution returns the last finished track.
func (s *Session) Solution() (domain.Track, bool) {
	if s.solution == nil {
		return domain.Track{}, false
	}
	return *s.solution, true
}

// Artwork returns the cover URL of a track, if resolved.
func (s *Session) Artwork(trackID string) string {
	return s.artwork[trackID]
}

func (s *Session) active() (*Round, error) {
	switch s.Phase() {
	case PhaseWaiting:
		return nil, domain.ErrNoTracks
	case PhaseOver:
		return nil, domain.ErrSessionOver
	}
	return s.round, nil
}

// Guess submits text for the current track. Wrong guesses spend one unit of a
// finite budget; the last wrong guess of a round moves on with zero points.
func (s *Session) Guess(text string) (Outcome, error) {
	r, err := s.active()
	if err != nil {
		return Outcome{}, err
	}
	out, err := r.SubmitGuess(text)
	if errors.Is(err, domain.ErrEmptyGuess) || errors.Is(err, domain.ErrRoundOver) {
		return out, err
	}
	if out.Correct {
		return out, nil
	}

	s.spend()
	if out.Status == Exhausted || s.budgetBroken() {
		r.GiveUp()
		s.advance(0)
	}
	return out, err
}

// Skip fills the current slot and spends one unit of a finite budget. It is
// refused on the last slot and when the budget is already zero.
func (s *Session) Skip() (Outcome, error) {
	r, err := s.active()
	if err != nil {
		return Outcome{}, err
	}
	if s.skips != nil && *s.skips == 0 {
		return Outcome{Status: r.Status()}, domain.ErrNoSkipsLeft
	}
	out, err := r.Skip()
	if err != nil {
		return out, err
	}
	s.spend()
	return out, nil
}

// Next moves on after a solved round, scoring its points, or gives up the
// current track when its last slot is reached. Giving up is refused once a
// finite budget is at zero; only a last guess or ForceEnd remain then.
func (s *Session) Next() (int, error) {
	r, err := s.active()
	if err != nil {
		return 0, err
	}
	switch {
	case r.Status() == Solved:
		points := r.Points()
		s.advance(points)
		return points, nil
	case !r.CanSkip():
		if s.skips != nil && *s.skips == 0 {
			return 0, domain.ErrNoSkipsLeft
		}
		r.GiveUp()
		s.advance(0)
		return 0, nil
	default:
		return 0, domain.ErrRoundNotSolved
	}
}

// ForceEnd ends the game once a finite budget reaches zero.
func (s *Session) ForceEnd() error {
	r, err := s.active()
	if err != nil {
		return err
	}
	if s.skips == nil || *s.skips != 0 {
		return domain.ErrCannotEnd
	}
	*s.skips = -1
	r.GiveUp()
	s.advance(0)
	return nil
}

func (s *Session) spend() {
	if s.skips != nil {
		*s.skips--
	}
}

func (s *Session) budgetBroken() bool {
	return s.skips != nil && *s.skips < 0
}

// advance records the finished track and moves to the next one. Bumping the
// token invalidates reveal cues issued for the previous track.
func (s *Session) advance(points int) {
	finished := s.tracks[s.index]
	s.solution = &finished
	s.score += points
	s.lastPoints = points
	s.index++
	s.token++
	if s.index < len(s.tracks) {
		s.round = NewRound(s.tracks[s.index], s.cfg.Mode, s.cfg.Difficulty, s.names)
	}
}

// Cue describes what the playback surface should expose for the current track.
func (s *Session) Cue() (Cue, bool) {
	r := s.Round()
	if r == nil {
		return Cue{}, false
	}
	return Cue{Token: s.token, URI: r.Track().URI, WindowMs: r.RevealWindow()}, true
}

// Suggestions returns the autocomplete labels for the session's mode.
func (s *Session) Suggestions(query string) []string {
	return SuggestionLabels(s.pool, s.cfg.Mode, s.names, query)
}

// State is a read-only view of a session.
type State struct {
	Phase        Phase             `json:"phase"`
	Mode         domain.GuessMode  `json:"mode"`
	Difficulty   domain.Difficulty `json:"difficulty"`
	PlaylistName string            `json:"playlist_name"`
	TrackIndex   int               `json:"track_index"`
	TrackCount   int               `json:"track_count"`
	Score        int               `json:"score"`
	LastPoints   int               `json:"last_points"`
	SkipsLeft    *int              `json:"skips_left"`
	Token        uint64            `json:"token"`
	Round        *RoundState       `json:"round,omitempty"`
	Solution     *SolutionView     `json:"solution,omitempty"`
	Placeholder  string            `json:"placeholder"`
}

// RoundState describes the active round.
type RoundState struct {
	URI            string   `json:"uri"`
	Guesses        []string `json:"guesses"`
	Status         string   `json:"status"`
	RevealWindowMs int      `json:"reveal_window_ms"`
	NextSkipGainMs int      `json:"next_skip_gain_ms"`
	CanSkip        bool     `json:"can_skip"`
	Points         int      `json:"points"`
}

// SolutionView describes the last finished track.
type SolutionView struct {
	Track      domain.Track `json:"track"`
	Text       string       `json:"text"`
	ArtworkURL string       `json:"artwork_url,omitempty"`
}

// Snapshot renders the current State.
func (s *Session) Snapshot() State {
	st := State{
		Phase:        s.Phase(),
		Mode:         s.cfg.Mode,
		Difficulty:   s.cfg.Difficulty,
		PlaylistName: s.cfg.PlaylistName,
		TrackIndex:   s.index,
		TrackCount:   len(s.tracks),
		Score:        s.score,
		LastPoints:   s.lastPoints,
		SkipsLeft:    s.SkipsLeft(),
		Token:        s.token,
		Placeholder:  s.cfg.Mode.Placeholder(),
	}
	if r := s.Round(); r != nil {
		st.Round = &RoundState{
			URI:            r.Track().URI,
			Guesses:        r.Guesses(),
			Status:         r.Status().String(),
			RevealWindowMs: r.RevealWindow(),
			NextSkipGainMs: r.NextSkipGainMs(),
			CanSkip:        r.CanSkip(),
			Points:         r.Points(),
		}
	}
	if sol, ok := s.Solution(); ok {
		st.Solution = &SolutionView{
			Track:      sol,
			Text:       SolutionText(sol, s.cfg.Mode, s.names),
			ArtworkURL: s.Artwork(sol.ID),
		}
	}
	return st
}
