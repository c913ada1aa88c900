// Package worker runs background jobs of the slug service.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Registry answers whether a file is still bound to some slug.
type Registry interface {
	FileInUse(ctx context.Context, fileURL string) (bool, error)
}

// Blobs is the part of the blob store the reaper needs.
type Blobs interface {
	Owns(fileURL string) bool
	Delete(ctx context.Context, fileURL string) error
}

const (
	maxBatch  = 25
	queueSize = 100
)

// BlobReaper deletes files that no slug record points to any more. URLs are
// collected from the in channel and handled in batches. It is best effort:
// anything still queued when the process dies is left on disk.
type BlobReaper struct {
	in       chan string
	logger   *zap.Logger
	repo     Registry
	blobs    Blobs
	interval time.Duration
}

func NewBlobReaper(logger *zap.Logger, repo Registry, blobs Blobs, interval time.Duration) *BlobReaper {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &BlobReaper{
		in:       make(chan string, queueSize),
		logger:   logger,
		repo:     repo,
		blobs:    blobs,
		interval: interval,
	}
}

func (r *BlobReaper) GetInChannel() chan<- string {
	return r.in
}

// FlushBlobs runs until ctx is done, then flushes what is pending.
func (r *BlobReaper) FlushBlobs(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var pending []string

	flush := func() {
		if len(pending) == 0 {
			return
		}
		fctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		deleted := r.reap(fctx, pending)
		r.logger.Info("blob batch reaped", zap.Int("queued", len(pending)), zap.Int("deleted", deleted))
		pending = pending[:0]
	}

	for {
		select {
		case url := <-r.in:
			pending = append(pending, url)
			if len(pending) > maxBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			for drained := false; !drained; {
				select {
				case url := <-r.in:
					pending = append(pending, url)
				default:
					drained = true
				}
			}
			flush()
			return
		}
	}
}

func (r *BlobReaper) reap(ctx context.Context, urls []string) int {
	seen := make(map[string]struct{}, len(urls))
	deleted := 0

	for _, url := range urls {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		if !r.blobs.Owns(url) {
			r.logger.Debug("skip foreign blob", zap.String("url", url))
			continue
		}

		inUse, err := r.repo.FileInUse(ctx, url)
		if err != nil {
			r.logger.Error("cannot check blob usage", zap.String("url", url), zap.Error(err))
			continue
		}
		if inUse {
			continue
		}

		if err := r.blobs.Delete(ctx, url); err != nil {
			r.logger.Error("cannot delete blob", zap.String("url", url), zap.Error(err))
			continue
		}
		deleted++
	}

	return deleted
}
