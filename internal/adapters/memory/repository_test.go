package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

func TestRepository_CopiesOnSaveAndGet(t *testing.T) {
	r := NewRepository()
	ctx := context.Background()

	p := domain.Playlist{ID: "pl", Name: "n", SnapshotID: "s", Tracks: []domain.Track{{ID: "a", Artists: []string{"x"}}}}
	require.NoError(t, r.Save(ctx, p))
	p.Tracks[0].Artists[0] = "mutated"

	got, err := r.GetByID(ctx, "pl")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Tracks[0].Artists[0])

	got.Tracks[0].Title = "changed"
	again, err := r.GetByID(ctx, "pl")
	require.NoError(t, err)
	assert.Empty(t, again.Tracks[0].Title)
}

func TestRepository_NotFound(t *testing.T) {
	_, err := NewRepository().GetByID(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_LastPlaylistID(t *testing.T) {
	r := NewRepository()
	ctx := context.Background()
	require.NoError(t, r.SetLastPlaylistID(ctx, "pl"))
	id, _ := r.LastPlaylistID(ctx)
	assert.Equal(t, "pl", id)
	require.NoError(t, r.SetLastPlaylistID(ctx, ""))
	id, _ = r.LastPlaylistID(ctx)
	assert.Empty(t, id)
}
