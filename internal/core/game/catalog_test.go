package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

func tr(id, artist, title, album, user, date string) domain.Track {
	return domain.Track{ID: id, URI: "spotify:track:" + id, Title: title, Artists: []string{artist}, Album: album, AddedBy: user, ReleaseDate: date}
}

func ids(tracks []domain.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

var catalog = []domain.Track{
	tr("1", "Muse", "Uprising", "The Resistance", "u1", "2009-09-07"),
	tr("2", "Adele", "Hello", "25", "u2", "2015-10-23"),
	tr("3", "Muse", "Uprising", "The Resistance", "u2", "2009-09-07"),
	tr("4", "Muse", "Madness", "The 2nd Law", "u1", "2012-09-24"),
	tr("5", "Adele", "Skyfall", "Skyfall", "u3", "2012-10-05"),
	tr("6", "Björk", "Hyperballad", "Post", "u1", "1996-02-19"),
}

func TestSortTracks(t *testing.T) {
	got := SortTracks(catalog)
	assert.Equal(t, []string{"2", "5", "6", "4", "1", "3"}, ids(got))
	assert.Equal(t, "1", catalog[0].ID, "input must not be reordered")
}

func TestDedupeByTitleArtist(t *testing.T) {
	got := DedupeByTitleArtist(catalog)
	assert.Equal(t, []string{"2", "5", "6", "4", "1"}, ids(got))
	assert.Equal(t, got, DedupeByTitleArtist(got), "dedupe must be idempotent")
}

func TestDedupeFirstOccurrenceWins(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "4", "5", "6"}, ids(DedupeByAlbum(catalog)))
	assert.Equal(t, []string{"1", "2", "5"}, ids(DedupeByUser(catalog)))
	assert.Equal(t, []string{"1", "2", "6"}, ids(DedupeByArtist(catalog)))
}

func TestDedupeByArtist_UsesFullLineUp(t *testing.T) {
	solo := domain.Track{ID: "a", Artists: []string{"Daft Punk"}}
	feat := domain.Track{ID: "b", Artists: []string{"Daft Punk", "Pharrell Williams"}}
	again := domain.Track{ID: "c", Artists: []string{"Daft Punk"}}
	assert.Equal(t, []string{"a", "b"}, ids(DedupeByArtist([]domain.Track{solo, feat, again})))
}

func TestDedupeByYear_Resorts(t *testing.T) {
	got := DedupeByYear(catalog)
	assert.Equal(t, []string{"6", "1", "4", "5", "2"}, ids(got))
}

func TestSuggestions_PerMode(t *testing.T) {
	tests := []struct {
		mode domain.GuessMode
		want []string
	}{
		{domain.ModeTitle, []string{"2", "5", "6", "4", "1"}},
		{domain.ModeBoth, []string{"2", "5", "6", "4", "1"}},
		{domain.ModeArtist, []string{"2", "6", "4"}},
		{domain.ModeAlbum, []string{"2", "5", "6", "4", "1"}},
		{domain.ModeUser, []string{"2", "5", "6"}},
		{domain.ModeYear, []string{"6", "1", "4", "5", "2"}},
		{domain.GuessMode("other"), []string{"2", "5", "6", "4", "1", "3"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Suggestions(catalog, tt.mode)))
		})
	}
}

func TestSuggestionLabel_IsAcceptedAsGuess(t *testing.T) {
	names := Usernames{"u1": "Marta", "u2": "Jonas", "u3": "Ines"}
	for _, mode := range domain.Modes() {
		for _, track := range catalog {
			label := SuggestionLabel(track, mode, names)
			assert.True(t, IsCorrect(label, track, mode, names), "%s: %q should match %s", mode, label, track.ID)
		}
	}
}

func TestSuggestionLabels_FiltersByQuery(t *testing.T) {
	got := SuggestionLabels(catalog, domain.ModeBoth, nil, "MUSE")
	assert.Equal(t, []string{"Madness by Muse", "Uprising by Muse"}, got)

	users := SuggestionLabels(catalog, domain.ModeUser, Usernames{"u1": "Marta"}, "")
	assert.Equal(t, []string{"Marta"}, users, "unresolved contributors are not offered")
}

func TestSolutionText(t *testing.T) {
	names := Usernames{"u1": "Marta"}
	assert.Equal(t,
		"The album was The Resistance from Muse and the title was Uprising, added by Marta",
		SolutionText(catalog[0], domain.ModeAlbum, names))
	assert.Equal(t,
		"The release date was 2009-09-07 and the title was Uprising, added by Marta",
		SolutionText(catalog[0], domain.ModeYear, names))
	assert.Equal(t,
		"The title was Hello and the artist was Adele, added by unknown",
		SolutionText(catalog[1], domain.ModeTitle, names))
}
