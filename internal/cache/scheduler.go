package cache

import (
	"context"
	"time"

	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/bassista/studio_calendar/internal/repository"
)

// StartPersistenceScheduler runs a goroutine that periodically flushes dirty cache to disk.
// On ctx.Done, it performs a final flush before returning.
// Returns a channel that is closed when the scheduler has completed shutdown.
func StartPersistenceScheduler(
	ctx context.Context,
	store PersistableStore,
	repo repository.Saver,
	interval time.Duration,
) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("persist").Debugf("starting persistence scheduler with interval: %v", interval)
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("persist").Debugf("persistence scheduler received context cancellation, performing final flush")
				// Final flush on shutdown, with a fresh context so it completes.
				flushCache(context.Background(), store, repo)
				logger.WithComponent("persist").Info("persistence scheduler stopped after final flush")
				return
			case <-ticker.C:
				flushCache(ctx, store, repo)
			}
		}
	}()
	return done
}

// flushCache persists the cache to disk if dirty.
func flushCache(ctx context.Context, store PersistableStore, repo repository.Saver) {
	if !store.IsDirty() {
		logger.WithComponent("persist").Tracef("cache is clean, skipping flush")
		return
	}

	if err := ctx.Err(); err != nil {
		logger.WithComponent("persist").Debugf("flush cancelled: %v", err)
		return
	}

	snapshot, revision, err := store.PersistSnapshot()
	if err != nil {
		logger.WithComponent("persist").Errorf("persist error: failed to get snapshot: %v", err)
		return
	}

	snapshot.Metadata.LastUpdate = time.Now().UnixMilli()

	if err := repo.Save(ctx, &snapshot); err != nil {
		logger.WithComponent("persist").Errorf("persist error: failed to save: %v", err)
		return
	}

	store.MarkPersisted(revision, snapshot.Metadata.LastUpdate)
	logger.WithComponent("persist").Infof("cache persisted to disk (%d records)", len(snapshot.Availability))
}
