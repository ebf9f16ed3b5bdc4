package rest

import (
	"net/http"
)

type contributor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type playlistResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	SnapshotID   string        `json:"snapshot_id"`
	TrackCount   int           `json:"track_count"`
	Standard     bool          `json:"standard"`
	Contributors []contributor `json:"contributors"`
}

// LastPlaylist handles GET /playlists/last
func (h *Handler) LastPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.ResolvePlaylistID(r.Context(), "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlist_id": id, "standard": h.svc.IsStandard(id)})
}

// GetPlaylist handles GET /playlists/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.svc.LoadPlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	names := h.svc.ResolveUsernames(r.Context(), playlist)

	resp := playlistResponse{
		ID:           playlist.ID,
		Name:         playlist.Name,
		SnapshotID:   playlist.SnapshotID,
		TrackCount:   len(playlist.Tracks),
		Standard:     h.svc.IsStandard(playlist.ID),
		Contributors: []contributor{},
	}
	for _, id := range playlist.Contributors() {
		name, _ := names.Name(id)
		resp.Contributors = append(resp.Contributors, contributor{ID: id, Name: name})
	}
	writeJSON(w, http.StatusOK, resp)
}
