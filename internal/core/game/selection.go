package game

import (
	"math/rand/v2"
	"slices"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// Shuffle returns a shuffled copy of tracks. A nil rng uses the global source.
func Shuffle(tracks []domain.Track, rng *rand.Rand) []domain.Track {
	out := slices.Clone(tracks)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
	} else {
		rng.Shuffle(len(out), swap)
	}
	return out
}

// SelectTracks picks up to count tracks for a game.
//
// Without even distribution, or with at most one contributor, it returns the
// first count tracks. Otherwise it draws at random without replacement in
// passes: within a pass every contributor supplies at most one track, and a new
// pass starts once no unused contributor has tracks left. When selectedUsers is
// non-empty only tracks whose contributor's display name is listed are drawn.
// Selection stops early when the eligible tracks run out.
func SelectTracks(all []domain.Track, count int, even bool, selectedUsers []string, names Usernames, rng *rand.Rand) []domain.Track {
	if count <= 0 || len(all) == 0 {
		return []domain.Track{}
	}
	if !even || len((domain.Playlist{Tracks: all}).Contributors()) <= 1 {
		return slices.Clone(all[:min(count, len(all))])
	}

	allowed := make(map[string]struct{}, len(selectedUsers))
	for _, u := range selectedUsers {
		allowed[u] = struct{}{}
	}

	pool := make([]domain.Track, 0, len(all))
	for _, t := range all {
		if t.AddedBy == "" {
			continue
		}
		if len(allowed) > 0 {
			name, ok := names.Name(t.AddedBy)
			if !ok {
				continue
			}
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		pool = append(pool, t)
	}

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	out := make([]domain.Track, 0, min(count, len(pool)))
	used := make(map[string]struct{})
	candidates := make([]int, 0, len(pool))
	for len(out) < count && len(pool) > 0 {
		candidates = candidates[:0]
		for i, t := range pool {
			if _, ok := used[t.AddedBy]; !ok {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			clear(used)
			continue
		}

		pick := candidates[intN(len(candidates))]
		t := pool[pick]
		out = append(out, t)
		used[t.AddedBy] = struct{}{}
		pool = slices.Delete(pool, pick, pick+1)
	}
	return out
}
