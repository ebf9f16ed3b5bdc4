package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestPlaylist_AddTrack(t *testing.T) {
	tests := []struct {
		name          string
		initialTracks []Track
		toAdd         Track
		wantErr       error
		wantLen       int
	}{
		{
			name:          "adds new track successfully",
			initialTracks: []Track{},
			toAdd:         Track{ID: "t1", Title: "Song One", Artists: []string{"Artist A"}},
			wantErr:       nil,
			wantLen:       1,
		},
		{
			name: "keeps duplicate entries in source order",
			initialTracks: []Track{
				{ID: "t1", Title: "Song One", Artists: []string{"Artist A"}},
			},
			toAdd:   Track{ID: "t1", Title: "Song One", Artists: []string{"Artist A"}},
			wantErr: nil,
			wantLen: 2,
		},
		{
			name: "rejects track without id",
			initialTracks: []Track{
				{ID: "t1", Title: "Song One"},
			},
			toAdd:   Track{Title: "local file"},
			wantErr: ErrInvalidTrack,
			wantLen: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPlaylist("pl-1", "Test Playlist", "snap-1")
			if err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
			p.Tracks = append(p.Tracks, tc.initialTracks...)

			err = p.AddTrack(tc.toAdd)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
			} else if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}

			if got := len(p.Tracks); got != tc.wantLen {
				t.Fatalf("expected %d tracks, got %d", tc.wantLen, got)
			}
		})
	}
}

func TestNewPlaylist_RequiresID(t *testing.T) {
	if _, err := NewPlaylist("", "name", ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestPlaylist_Contributors(t *testing.T) {
	p := Playlist{Tracks: []Track{
		{ID: "1", AddedBy: "bob"},
		{ID: "2", AddedBy: "alice"},
		{ID: "3", AddedBy: ""},
		{ID: "4", AddedBy: "bob"},
	}}
	got := p.Contributors()
	want := []string{"bob", "alice"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("contributors: got %v, want %v", got, want)
	}
}

func TestPlaylist_IsFresh(t *testing.T) {
	tests := []struct {
		name     string
		cached   string
		upstream string
		want     bool
	}{
		{name: "same snapshot", cached: "abc", upstream: "abc", want: true},
		{name: "changed snapshot", cached: "abc", upstream: "def", want: false},
		{name: "unknown cached snapshot", cached: "", upstream: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Playlist{ID: "pl", SnapshotID: tt.cached}
			if got := p.IsFresh(tt.upstream); got != tt.want {
				t.Fatalf("IsFresh: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrack_Helpers(t *testing.T) {
	tr := Track{Artists: []string{"Daft Punk", "Pharrell Williams"}, ReleaseDate: "2013-05-17"}
	if got := tr.PrimaryArtist(); got != "Daft Punk" {
		t.Errorf("PrimaryArtist: got %q", got)
	}
	if got := tr.ArtistKey(); got != "Daft Punk,Pharrell Williams" {
		t.Errorf("ArtistKey: got %q", got)
	}
	if got := tr.Year(); got != "2013" {
		t.Errorf("Year: got %q", got)
	}
	if got := (Track{}).PrimaryArtist(); got != "" {
		t.Errorf("PrimaryArtist of empty track: got %q", got)
	}
}

func TestFetchError_Is(t *testing.T) {
	err := error(FetchError{Resource: "playlist", Status: 404})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatal("expected FetchError to match ErrFetchFailed")
	}
	if err.Error() != "fetch playlist failed: status 404" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
