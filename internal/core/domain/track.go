package domain

import "strings"

// Track represents a single playlist entry in the domain layer.
type Track struct {
	ID          string
	URI         string
	Title       string
	Artists     []string // ordered as credited
	Album       string
	AddedBy     string // contributor user id
	ReleaseDate string // as reported by the source, e.g. "2015-04-01" or "2015"
	Popularity  int
}

// PrimaryArtist returns the first credited artist or "".
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ArtistKey joins all artists with a comma.
func (t Track) ArtistKey() string {
	return strings.Join(t.Artists, ",")
}

// Year returns the leading four characters of the release date.
func (t Track) Year() string {
	if len(t.ReleaseDate) < 4 {
		return t.ReleaseDate
	}
	return t.ReleaseDate[:4]
}
