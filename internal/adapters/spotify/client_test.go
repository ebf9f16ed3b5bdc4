package spotify_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ewilliams-labs/earworm/internal/adapters/spotify"
	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// --- Helpers ---

func compareTracks(t *testing.T, got, want domain.Track) {
	t.Helper()

	if got.ID != want.ID {
		t.Errorf("ID: got %v, want %v", got.ID, want.ID)
	}
	if got.URI != want.URI {
		t.Errorf("URI: got %v, want %v", got.URI, want.URI)
	}
	if got.Title != want.Title {
		t.Errorf("Title: got %v, want %v", got.Title, want.Title)
	}
	if !reflect.DeepEqual(got.Artists, want.Artists) {
		t.Errorf("Artists: got %v, want %v", got.Artists, want.Artists)
	}
	if got.Album != want.Album {
		t.Errorf("Album: got %v, want %v", got.Album, want.Album)
	}
	if got.AddedBy != want.AddedBy {
		t.Errorf("AddedBy: got %v, want %v", got.AddedBy, want.AddedBy)
	}
	if got.ReleaseDate != want.ReleaseDate {
		t.Errorf("ReleaseDate: got %v, want %v", got.ReleaseDate, want.ReleaseDate)
	}
	if got.Popularity != want.Popularity {
		t.Errorf("Popularity: got %v, want %v", got.Popularity, want.Popularity)
	}
}

func item(id, user string) string {
	return fmt.Sprintf(`{
		"added_by": {"id": %q},
		"track": {
			"id": %q,
			"uri": "spotify:track:%s",
			"name": "Song %s",
			"popularity": 42,
			"artists": [{"name": "Artist %s"}, {"name": "Guest"}],
			"album": {"name": "Album %s", "release_date": "2001-02-03", "images": [{"url": "https://img/%s.jpg"}]}
		}
	}`, user, id, id, id, id, id, id)
}

// pagedServer serves a playlist whose items are split over pages of one.
func pagedServer(t *testing.T, ids []string, failPage int) (*httptest.Server, *int32) {
	t.Helper()
	var requests int32
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		page := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		if failPage > 0 && page == failPage {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		next := "null"
		if page+1 < len(ids) {
			next = fmt.Sprintf("%q", fmt.Sprintf("%s/playlists/pl-1/tracks?page=%d", ts.URL, page+1))
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/playlists/pl-1" {
			fmt.Fprintf(w, `{"id":"pl-1","name":"Road Trip","snapshot_id":"snap-7","tracks":{"items":[%s],"next":%s}}`, item(ids[0], "u-"+ids[0]), next)
			return
		}
		fmt.Fprintf(w, `{"items":[%s],"next":%s}`, item(ids[page], "u-"+ids[page]), next)
	}))
	return ts, &requests
}

// --- Tests ---

func TestFetchPlaylist(t *testing.T) {
	tests := []struct {
		name         string
		ids          []string
		maxExtra     int
		failPage     int
		wantIDs      []string
		wantRequests int32
		wantErr      bool
	}{
		{
			name:         "single page",
			ids:          []string{"a"},
			maxExtra:     10,
			wantIDs:      []string{"a"},
			wantRequests: 1,
		},
		{
			name:         "follows next links in order",
			ids:          []string{"a", "b", "c"},
			maxExtra:     10,
			wantIDs:      []string{"a", "b", "c"},
			wantRequests: 3,
		},
		{
			name:         "stops at the extra page cap",
			ids:          []string{"a", "b", "c", "d", "e"},
			maxExtra:     2,
			wantIDs:      []string{"a", "b", "c"},
			wantRequests: 3,
		},
		{
			name:     "non-2xx page fails the fetch",
			ids:      []string{"a", "b", "c"},
			maxExtra: 10,
			failPage: 2,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, requests := pagedServer(t, tt.ids, tt.failPage)
			defer ts.Close()

			client := spotify.NewClient(ts.Client(), ts.URL, spotify.WithMaxExtraPages(tt.maxExtra))
			got, err := client.FetchPlaylist(context.Background(), "pl-1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error: %v, got: %v", tt.wantErr, err)
			}
			if tt.wantErr {
				if !errors.Is(err, domain.ErrFetchFailed) {
					t.Fatalf("expected FetchError, got %v", err)
				}
				return
			}

			if got.Name != "Road Trip" || got.SnapshotID != "snap-7" {
				t.Fatalf("playlist metadata: got %q / %q", got.Name, got.SnapshotID)
			}
			var gotIDs []string
			for _, tr := range got.Tracks {
				gotIDs = append(gotIDs, tr.ID)
			}
			if !reflect.DeepEqual(gotIDs, tt.wantIDs) {
				t.Fatalf("track ids: got %v, want %v", gotIDs, tt.wantIDs)
			}
			if n := atomic.LoadInt32(requests); n != tt.wantRequests {
				t.Fatalf("requests: got %d, want %d", n, tt.wantRequests)
			}
			compareTracks(t, got.Tracks[0], domain.Track{
				ID:          "a",
				URI:         "spotify:track:a",
				Title:       "Song a",
				Artists:     []string{"Artist a", "Guest"},
				Album:       "Album a",
				AddedBy:     "u-a",
				ReleaseDate: "2001-02-03",
				Popularity:  42,
			})
		})
	}
}

func TestFetchPlaylist_SkipsUnavailableItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"pl","name":"Mixed","snapshot_id":"s","tracks":{"items":[
			{"added_by":{"id":"u"},"track":null},
			{"added_by":{"id":"u"},"track":{"id":null,"name":"local","is_local":true}},
			%s
		],"next":null}}`, item("ok", "u"))
	}))
	defer ts.Close()

	got, err := spotify.NewClient(ts.Client(), ts.URL).FetchPlaylist(context.Background(), "pl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Tracks) != 1 || got.Tracks[0].ID != "ok" {
		t.Fatalf("expected only the playable track, got %+v", got.Tracks)
	}
}

func TestFetchPlaylist_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := spotify.NewClient(ts.Client(), ts.URL).FetchPlaylist(context.Background(), "missing")
	var fe domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Fatalf("status: got %d", fe.Status)
	}
}

func TestFetchSnapshotID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fields"); got != "snapshot_id" {
			t.Errorf("fields: got %q", got)
		}
		fmt.Fprint(w, `{"snapshot_id":"snap-9"}`)
	}))
	defer ts.Close()

	got, err := spotify.NewClient(ts.Client(), ts.URL).FetchSnapshotID(context.Background(), "pl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "snap-9" {
		t.Fatalf("snapshot: got %q", got)
	}
}

func TestFetchUsernames(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		failID  string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "resolves every id once",
			ids:  []string{"u1", "u2", "u1"},
			want: map[string]string{"u1": "Display u1", "u2": "Display u2"},
		},
		{
			name: "falls back to the id without display name",
			ids:  []string{"anon"},
			want: map[string]string{"anon": "anon"},
		},
		{
			name:    "one failure aborts the batch",
			ids:     []string{"u1", "broken", "u2"},
			failID:  "broken",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				id := strings.TrimPrefix(r.URL.Path, "/users/")
				switch id {
				case tt.failID:
					w.WriteHeader(http.StatusInternalServerError)
				case "anon":
					fmt.Fprintf(w, `{"id":%q,"display_name":null}`, id)
				default:
					fmt.Fprintf(w, `{"id":%q,"display_name":"Display %s"}`, id, id)
				}
			}))
			defer ts.Close()

			got, err := spotify.NewClient(ts.Client(), ts.URL).FetchUsernames(context.Background(), tt.ids)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error: %v, got: %v", tt.wantErr, err)
			}
			if tt.wantErr {
				if got != nil {
					t.Fatalf("expected no partial result, got %v", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("names: got %v, want %v", got, tt.want)
			}
			if int(calls) != len(tt.want) {
				t.Fatalf("calls: got %d, want %d", calls, len(tt.want))
			}
		})
	}
}

func TestFetchAlbumImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tracks/t1":
			fmt.Fprint(w, `{"id":"t1","album":{"images":[{"url":"https://img/large.jpg"},{"url":"https://img/small.jpg"}]}}`)
		case "/tracks/bare":
			fmt.Fprint(w, `{"id":"bare","album":{"images":[]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()
	client := spotify.NewClient(ts.Client(), ts.URL)

	got, err := client.FetchAlbumImage(context.Background(), "t1")
	if err != nil || got != "https://img/large.jpg" {
		t.Fatalf("t1: got %q, %v", got, err)
	}
	got, err = client.FetchAlbumImage(context.Background(), "bare")
	if err != nil || got != "" {
		t.Fatalf("bare: got %q, %v", got, err)
	}
	if _, err := client.FetchAlbumImage(context.Background(), "nope"); !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("nope: expected FetchError, got %v", err)
	}
}

func TestNewAuthenticatedHTTPClient(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			t.Errorf("unexpected credentials %q/%q", user, pass)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization: got %q", got)
		}
		fmt.Fprint(w, `{"snapshot_id":"s"}`)
	}))
	defer api.Close()

	hc := spotify.NewAuthenticatedHTTPClient(context.Background(), "id", "secret", tokenSrv.URL, 0)
	client := spotify.NewClient(hc, api.URL)
	for i := 0; i < 2; i++ {
		if _, err := client.FetchSnapshotID(context.Background(), "pl"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Fatalf("token should be cached, fetched %d times", tokenCalls)
	}
}
