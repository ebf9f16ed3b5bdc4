package ports

import "context"

// PlaybackUpdate is a position report from the playback surface.
type PlaybackUpdate struct {
	IsPaused bool
	Position int // milliseconds
}

// Player controls the audio playback surface.
type Player interface {
	LoadURI(ctx context.Context, uri string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, positionMs int) error
}
