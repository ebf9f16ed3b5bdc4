package game

import (
	"strings"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// SkippedGuess occupies a guess slot for a skipped attempt. It is never
// evaluated against the track.
const SkippedGuess = "skipped"

// RoundStatus is the state of a Round.
type RoundStatus int

const (
	Guessing RoundStatus = iota
	Solved
	Exhausted
)

func (s RoundStatus) String() string {
	switch s {
	case Guessing:
		return "guessing"
	case Solved:
		return "solved"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Outcome is the result of a guess or skip.
type Outcome struct {
	Correct bool
	Status  RoundStatus
	Points  int
}

// Round is the guess cycle for one track.
type Round struct {
	track   domain.Track
	mode    domain.GuessMode
	windows [domain.MaxGuesses]int
	names   Usernames

	guesses []string
	status  RoundStatus
	points  int
}

// NewRound starts a round in Guessing with no guesses.
func NewRound(track domain.Track, mode domain.GuessMode, difficulty domain.Difficulty, names Usernames) *Round {
	return &Round{
		track:   track,
		mode:    mode,
		windows: difficulty.RevealWindows(),
		names:   names,
		guesses: make([]string, 0, domain.MaxGuesses),
	}
}

func (r *Round) Track() domain.Track { return r.track }
func (r *Round) Status() RoundStatus { return r.status }
func (r *Round) Points() int         { return r.points }

// Attempt is the number of guesses submitted so far.
func (r *Round) Attempt() int { return len(r.guesses) }

// Guesses returns a copy of the submitted guesses.
func (r *Round) Guesses() []string {
	out := make([]string, len(r.guesses))
	copy(out, r.guesses)
	return out
}

// Done reports whether the round is Solved or Exhausted.
func (r *Round) Done() bool { return r.status != Guessing }

// RevealWindow is the audio exposure in ms for the current attempt. Finished
// rounds expose the full preview.
func (r *Round) RevealWindow() int {
	if r.Done() || len(r.guesses) >= domain.MaxGuesses {
		return r.windows[domain.MaxGuesses-1]
	}
	return r.windows[len(r.guesses)]
}

// NextSkipGainMs is how much more audio a skip unlocks, or 0 on the last slot.
func (r *Round) NextSkipGainMs() int {
	k := len(r.guesses)
	if r.Done() || k >= domain.MaxGuesses-1 {
		return 0
	}
	return r.windows[k+1] - r.windows[k]
}

// CanSkip reports whether another guess slot remains after the current one.
func (r *Round) CanSkip() bool {
	return !r.Done() && len(r.guesses) < domain.MaxGuesses-1
}

// SubmitGuess appends text and evaluates it. A correct guess on attempt k
// solves the round for PointsForGuess(mode, k). A wrong guess on the last slot
// exhausts it with zero points. The returned error is ErrUnresolvedUser when the
// guess was judged wrong because the contributor could not be named.
func (r *Round) SubmitGuess(text string) (Outcome, error) {
	if r.Done() {
		return Outcome{Status: r.status}, domain.ErrRoundOver
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{Status: r.status}, domain.ErrEmptyGuess
	}

	r.guesses = append(r.guesses, text)
	k := len(r.guesses) - 1

	ok, matchErr := Match(text, r.track, r.mode, r.names)
	if ok {
		r.status = Solved
		r.points = PointsForGuess(r.mode, k)
		return Outcome{Correct: true, Status: r.status, Points: r.points}, nil
	}
	if k == domain.MaxGuesses-1 {
		r.status = Exhausted
		r.points = 0
	}
	return Outcome{Status: r.status}, matchErr
}

// Skip fills the current slot with SkippedGuess.
func (r *Round) Skip() (Outcome, error) {
	if r.Done() {
		return Outcome{Status: r.status}, domain.ErrRoundOver
	}
	if !r.CanSkip() {
		return Outcome{Status: r.status}, domain.ErrSkipNotAllowed
	}
	r.guesses = append(r.guesses, SkippedGuess)
	return Outcome{Status: r.status}, nil
}

// GiveUp finishes an unsolved round with zero points.
func (r *Round) GiveUp() {
	if r.Done() {
		return
	}
	r.status = Exhausted
	r.points = 0
}
