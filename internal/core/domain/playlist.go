package domain

import "errors"

var ErrInvalidTrack = errors.New("domain: track has no id")

// Playlist is a snapshot of a source playlist. SnapshotID identifies the
// revision the tracks were read from and is used to validate cached copies.
type Playlist struct {
	ID         string
	Name       string
	SnapshotID string
	Tracks     []Track
}

func NewPlaylist(id, name, snapshotID string) (*Playlist, error) {
	if id == "" {
		return nil, errors.New("domain: invalid argument")
	}
	return &Playlist{
		ID:         id,
		Name:       name,
		SnapshotID: snapshotID,
		Tracks:     []Track{},
	}, nil
}

// AddTrack appends a track, preserving source order. Entries without an id
// (local files, removed tracks) are rejected with ErrInvalidTrack.
func (p *Playlist) AddTrack(t Track) error {
	if t.ID == "" {
		return ErrInvalidTrack
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

// Contributors returns the distinct non-empty AddedBy ids in first-seen order.
func (p Playlist) Contributors() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range p.Tracks {
		if t.AddedBy == "" {
			continue
		}
		if _, ok := seen[t.AddedBy]; ok {
			continue
		}
		seen[t.AddedBy] = struct{}{}
		ids = append(ids, t.AddedBy)
	}
	return ids
}

// IsFresh reports whether the cached snapshot matches the given source revision.
func (p Playlist) IsFresh(snapshotID string) bool {
	return p.SnapshotID != "" && p.SnapshotID == snapshotID
}
