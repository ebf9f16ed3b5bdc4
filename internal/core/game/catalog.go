package game

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// Collators keep per-call buffers, so every sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}

func sortStrings(s []string) {
	c := newCollator()
	slices.SortStableFunc(s, c.CompareString)
}

// SortTracks returns a copy ordered by primary artist, then title.
func SortTracks(tracks []domain.Track) []domain.Track {
	out := slices.Clone(tracks)
	c := newCollator()
	slices.SortStableFunc(out, func(a, b domain.Track) int {
		if r := c.CompareString(a.PrimaryArtist(), b.PrimaryArtist()); r != 0 {
			return r
		}
		return c.CompareString(a.Title, b.Title)
	})
	return out
}

// DedupeByTitleArtist sorts tracks and drops adjacent entries sharing the
// same primary artist and title.
func DedupeByTitleArtist(tracks []domain.Track) []domain.Track {
	sorted := SortTracks(tracks)
	out := make([]domain.Track, 0, len(sorted))
	for i, t := range sorted {
		if i > 0 && t.Title == sorted[i-1].Title && t.PrimaryArtist() == sorted[i-1].PrimaryArtist() {
			continue
		}
		out = append(out, t)
	}
	return out
}

func dedupeBy(tracks []domain.Track, key func(domain.Track) string) []domain.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]domain.Track, 0, len(tracks))
	for _, t := range tracks {
		k := key(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// DedupeByArtist keeps the first track of every distinct artist line-up.
func DedupeByArtist(tracks []domain.Track) []domain.Track {
	return dedupeBy(tracks, domain.Track.ArtistKey)
}

// DedupeByAlbum keeps the first track of every album.
func DedupeByAlbum(tracks []domain.Track) []domain.Track {
	return dedupeBy(tracks, func(t domain.Track) string { return t.Album })
}

// DedupeByUser keeps the first track of every contributor.
func DedupeByUser(tracks []domain.Track) []domain.Track {
	return dedupeBy(tracks, func(t domain.Track) string { return t.AddedBy })
}

// DedupeByYear keeps the first track of every release date and orders the
// result by release date.
func DedupeByYear(tracks []domain.Track) []domain.Track {
	out := dedupeBy(tracks, func(t domain.Track) string { return t.ReleaseDate })
	slices.SortStableFunc(out, func(a, b domain.Track) int {
		return strings.Compare(a.ReleaseDate, b.ReleaseDate)
	})
	return out
}

// Suggestions returns the candidate tracks offered while guessing in mode.
func Suggestions(all []domain.Track, mode domain.GuessMode) []domain.Track {
	switch mode {
	case domain.ModeTitle, domain.ModeBoth:
		return DedupeByTitleArtist(all)
	case domain.ModeArtist:
		return DedupeByArtist(DedupeByTitleArtist(all))
	case domain.ModeAlbum:
		return DedupeByAlbum(DedupeByTitleArtist(all))
	case domain.ModeUser:
		return DedupeByUser(DedupeByTitleArtist(all))
	case domain.ModeYear:
		return DedupeByYear(DedupeByTitleArtist(all))
	default:
		return SortTracks(all)
	}
}

// SuggestionLabel renders the autocomplete entry for t. Submitting the label
// as a guess matches t in the same mode.
func SuggestionLabel(t domain.Track, mode domain.GuessMode, names Usernames) string {
	artists := strings.Join(t.Artists, ", ")
	switch mode {
	case domain.ModeTitle:
		if name, ok := names.Name(t.AddedBy); ok {
			return fmt.Sprintf("%s - %s added by %s", t.Title, artists, name)
		}
		return fmt.Sprintf("%s - %s", t.Title, artists)
	case domain.ModeArtist:
		return artists
	case domain.ModeBoth:
		return fmt.Sprintf("%s by %s", t.Title, artists)
	case domain.ModeUser:
		name, _ := names.Name(t.AddedBy)
		return name
	case domain.ModeAlbum:
		return fmt.Sprintf("%s - %s by %s", t.Album, t.Title, artists)
	case domain.ModeYear:
		return t.ReleaseDate
	default:
		return fmt.Sprintf("%s - %s", t.PrimaryArtist(), t.Title)
	}
}

// SuggestionLabels returns the labels for mode whose text contains query,
// ignoring case. Empty labels are dropped.
func SuggestionLabels(all []domain.Track, mode domain.GuessMode, names Usernames, query string) []string {
	tracks := Suggestions(all, mode)
	out := make([]string, 0, len(tracks))
	for _, t := range tracks {
		label := SuggestionLabel(t, mode, names)
		if label == "" || !contains(label, query) {
			continue
		}
		out = append(out, label)
	}
	return out
}

// SolutionText describes a finished track for the reveal screen.
func SolutionText(t domain.Track, mode domain.GuessMode, names Usernames) string {
	by, ok := names.Name(t.AddedBy)
	if !ok {
		by = "unknown"
	}
	artists := strings.Join(t.Artists, " & ")
	switch mode {
	case domain.ModeAlbum:
		return fmt.Sprintf("The album was %s from %s and the title was %s, added by %s", t.Album, artists, t.Title, by)
	case domain.ModeYear:
		return fmt.Sprintf("The release date was %s and the title was %s, added by %s", t.ReleaseDate, t.Title, by)
	default:
		return fmt.Sprintf("The title was %s and the artist was %s, added by %s", t.Title, artists, by)
	}
}
