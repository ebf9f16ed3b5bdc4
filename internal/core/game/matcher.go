package game

import (
	"strings"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// Usernames maps contributor ids to display names. It is built once per
// playlist and never mutated afterwards.
type Usernames map[string]string

// Name returns the display name for id and whether it was resolved.
func (u Usernames) Name(id string) (string, bool) {
	name, ok := u[id]
	return name, ok
}

// Names returns the sorted, distinct display names.
func (u Usernames) Names() []string {
	seen := make(map[string]struct{}, len(u))
	out := make([]string, 0, len(u))
	for _, n := range u {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sortStrings(out)
	return out
}

func contains(input, field string) bool {
	return strings.Contains(strings.ToLower(input), strings.ToLower(field))
}

// Match reports whether input identifies track under mode. The guess has to
// contain the relevant field, except in year mode where the release date has to
// contain the guess. An unresolved contributor in user mode yields
// domain.ErrUnresolvedUser and no match.
func Match(input string, track domain.Track, mode domain.GuessMode, names Usernames) (bool, error) {
	switch mode {
	case domain.ModeTitle:
		return contains(input, track.Title), nil
	case domain.ModeArtist:
		return anyArtist(input, track), nil
	case domain.ModeBoth:
		return contains(input, track.Title) && anyArtist(input, track), nil
	case domain.ModeAlbum:
		return contains(input, track.Album), nil
	case domain.ModeUser:
		name, ok := names.Name(track.AddedBy)
		if !ok {
			return false, domain.ErrUnresolvedUser
		}
		return contains(input, name), nil
	case domain.ModeYear:
		return strings.Contains(track.ReleaseDate, input), nil
	default:
		return false, domain.ErrUnknownMode
	}
}

// IsCorrect is Match without the error.
func IsCorrect(input string, track domain.Track, mode domain.GuessMode, names Usernames) bool {
	ok, _ := Match(input, track, mode, names)
	return ok
}

func anyArtist(input string, track domain.Track) bool {
	for _, a := range track.Artists {
		if contains(input, a) {
			return true
		}
	}
	return false
}
