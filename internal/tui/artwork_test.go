package tui

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{R: 200, G: 30, B: 40, A: 255}
			if x >= 48 {
				c = color.RGBA{R: 20, G: 40, B: 180, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cover.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchArtwork(t *testing.T) {
	srv := coverServer(t)
	url := srv.URL + "/cover.png"

	msg := fetchArtwork(context.Background(), srv.Client(), url)().(artworkMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, url, msg.url)
	assert.Len(t, msg.thumb, thumbHeight)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, msg.accent)
}

func TestFetchArtwork_NotFound(t *testing.T) {
	srv := coverServer(t)

	msg := fetchArtwork(context.Background(), srv.Client(), srv.URL+"/missing.png")().(artworkMsg)
	assert.ErrorContains(t, msg.err, "status 404")
	assert.Nil(t, msg.thumb)
}
