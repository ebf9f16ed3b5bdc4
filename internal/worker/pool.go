// Package worker provides background processing for track-related jobs.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

// Job represents one artwork lookup.
type Job struct {
	TrackID string
}

type result struct {
	trackID string
	url     string
}

// Pool resolves album artwork with a fixed number of workers.
type Pool struct {
	resolver ports.ArtworkResolver
	workers  int
	logger   *slog.Logger
	// OnDone, when set, is called after each finished job.
	OnDone func()
}

// NewPool creates a pool with the given worker count.
func NewPool(resolver ports.ArtworkResolver, workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{resolver: resolver, workers: workers, logger: logger}
}

// Resolve looks up the cover of every distinct track id and returns the
// complete map once all jobs finished. Failed or empty lookups are left out.
// The returned map is not shared with the workers.
func (p *Pool) Resolve(ctx context.Context, trackIDs []string) map[string]string {
	jobs := make(chan Job)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- p.processJob(ctx, job)
			}
		}()
	}

	go func() {
		defer close(jobs)
		seen := make(map[string]struct{}, len(trackIDs))
		for _, id := range trackIDs {
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			select {
			case jobs <- Job{TrackID: id}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	artwork := make(map[string]string, len(trackIDs))
	for r := range results {
		if p.OnDone != nil {
			p.OnDone()
		}
		if r.url != "" {
			artwork[r.trackID] = r.url
		}
	}
	return artwork
}

func (p *Pool) processJob(ctx context.Context, job Job) result {
	if err := ctx.Err(); err != nil {
		return result{trackID: job.TrackID}
	}
	url, err := p.resolver.FetchAlbumImage(ctx, job.TrackID)
	if err != nil {
		p.logger.Warn("worker: artwork lookup failed", "track", job.TrackID, "error", err)
		return result{trackID: job.TrackID}
	}
	return result{trackID: job.TrackID, url: url}
}
