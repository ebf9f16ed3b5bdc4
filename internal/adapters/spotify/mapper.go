package spotify

import (
	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track to a domain track.
func mapTrackToDomain(st spotifyTrack, addedBy string) domain.Track {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}
	return domain.Track{
		ID:          st.ID,
		URI:         st.URI,
		Title:       st.Name,
		Artists:     artists,
		Album:       st.Album.Name,
		AddedBy:     addedBy,
		ReleaseDate: st.Album.ReleaseDate,
		Popularity:  st.Popularity,
	}
}

// appendItems maps the playable items of a page onto p.
func appendItems(p *domain.Playlist, items []spotifyPlaylistItem) {
	for _, item := range items {
		if item.Track == nil || item.Track.IsLocal {
			continue
		}
		addedBy := ""
		if item.AddedBy != nil {
			addedBy = item.AddedBy.ID
		}
		// Removed tracks come back without an id and are skipped.
		_ = p.AddTrack(mapTrackToDomain(*item.Track, addedBy))
	}
}

// coverURL returns the first (largest) image URL.
func coverURL(album spotifyAlbum) string {
	if len(album.Images) == 0 {
		return ""
	}
	return album.Images[0].URL
}
