package domain

import (
	"fmt"
	"strings"
)

// GuessMode selects which track fields a guess is compared against.
type GuessMode string

const (
	ModeTitle  GuessMode = "title"
	ModeArtist GuessMode = "artist"
	ModeBoth   GuessMode = "both"
	ModeAlbum  GuessMode = "album"
	ModeUser   GuessMode = "user"
	ModeYear   GuessMode = "year"
)

// DefaultMode is used when a game is created without an explicit mode.
const DefaultMode = ModeBoth

var modes = []GuessMode{ModeTitle, ModeArtist, ModeBoth, ModeAlbum, ModeUser, ModeYear}

// Modes lists every guess mode.
func Modes() []GuessMode {
	out := make([]GuessMode, len(modes))
	copy(out, modes)
	return out
}

func ParseGuessMode(s string) (GuessMode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	m := GuessMode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Placeholder is the input hint shown for a mode.
func (m GuessMode) Placeholder() string {
	switch m {
	case ModeTitle:
		return "search for song title"
	case ModeArtist:
		return "search for artist"
	case ModeAlbum:
		return "search for album"
	case ModeUser:
		return "search for user"
	case ModeYear:
		return "search for year"
	default:
		return "search for artist / song title"
	}
}

// MaxGuesses is the number of guess slots in a round.
const MaxGuesses = 6

// Difficulty selects the reveal windows of a round.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

const DefaultDifficulty = Easy

var revealWindows = map[Difficulty][MaxGuesses]int{
	Easy:   {3000, 4000, 6000, 9000, 13000, 18000},
	Medium: {1500, 2500, 4500, 7500, 11500, 16500},
	Hard:   {1000, 2000, 4000, 7000, 11000, 16000},
}

func ParseDifficulty(s string) (Difficulty, error) {
	if s == "" {
		return DefaultDifficulty, nil
	}
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := revealWindows[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

// RevealWindows returns the cumulative milliseconds of audio exposed at each
// guess attempt. Unknown difficulties fall back to Easy.
func (d Difficulty) RevealWindows() [MaxGuesses]int {
	if w, ok := revealWindows[d]; ok {
		return w
	}
	return revealWindows[Easy]
}
