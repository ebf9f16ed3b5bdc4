package tui

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
)

const (
	thumbWidth    = 16
	thumbHeight   = 8 // terminal rows, two pixels each
	defaultAccent = "#1DB954"
)

type artworkMsg struct {
	url    string
	thumb  []string
	accent string
	err    error
}

// fetchArtwork downloads the cover at url and renders it for the reveal panel.
func fetchArtwork(ctx context.Context, client *http.Client, url string) tea.Cmd {
	return func() tea.Msg {
		img, err := downloadImage(ctx, client, url)
		if err != nil {
			return artworkMsg{url: url, err: err}
		}
		return artworkMsg{
			url:    url,
			thumb:  halfBlocks(img, thumbWidth, thumbHeight),
			accent: accentColor(img),
		}
	}
}

func downloadImage(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("artwork: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("artwork: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork: fetch returned status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("artwork: decode: %w", err)
	}
	return img, nil
}

// accentColor picks the most common saturated color of img.
func accentColor(img image.Image) string {
	items, err := prominentcolor.KmeansWithAll(3, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(items) == 0 {
		return defaultAccent
	}
	c := items[0].Color
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// halfBlocks renders img as rows of upper half blocks, colored by the pixel
// above (foreground) and below (background).
func halfBlocks(img image.Image, width, rows int) []string {
	small := resize.Resize(uint(width), uint(rows*2), img, resize.Bilinear)
	b := small.Bounds()

	lines := make([]string, rows)
	for y := 0; y < rows; y++ {
		var line strings.Builder
		for x := 0; x < b.Dx(); x++ {
			top := hex(small.At(b.Min.X+x, b.Min.Y+2*y).RGBA())
			bottom := hex(small.At(b.Min.X+x, b.Min.Y+2*y+1).RGBA())
			line.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		lines[y] = line.String()
	}
	return lines
}

func hex(r, g, b, _ uint32) string {
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
