package spotify

// spotifyImage is an entry of an album's image list, largest first.
type spotifyImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type spotifyAlbum struct {
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []spotifyImage `json:"images"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyTrack represents the Spotify API response for a track.
type spotifyTrack struct {
	ID         string          `json:"id"`
	URI        string          `json:"uri"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	Popularity int             `json:"popularity"`
	IsLocal    bool            `json:"is_local"`
}

type spotifyUserRef struct {
	ID string `json:"id"`
}

// spotifyPlaylistItem wraps a track inside a playlist. Track is nil for
// entries that are no longer available.
type spotifyPlaylistItem struct {
	AddedBy *spotifyUserRef `json:"added_by"`
	Track   *spotifyTrack   `json:"track"`
}

// spotifyTrackPage is one page of playlist items.
type spotifyTrackPage struct {
	Items []spotifyPlaylistItem `json:"items"`
	Next  string                `json:"next"`
	Total int                   `json:"total"`
}

// spotifyPlaylist represents the Spotify API response for a playlist.
type spotifyPlaylist struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	SnapshotID string           `json:"snapshot_id"`
	Tracks     spotifyTrackPage `json:"tracks"`
}

type spotifySnapshot struct {
	SnapshotID string `json:"snapshot_id"`
}

type spotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
