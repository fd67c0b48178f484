package cache

import (
	"context"

	"github.com/bassista/studio_calendar/internal/repository"
)

// AvailabilityStore is the storage contract of the availability service.
type AvailabilityStore interface {
	Get(ctx context.Context, key repository.DateKey) (repository.Status, error)
	GetAll(ctx context.Context) ([]repository.Record, error)
	Upsert(ctx context.Context, key repository.DateKey, status repository.Status) (repository.Record, error)
}

// PersistableStore is the cache API needed by the persistence scheduler.
type PersistableStore interface {
	IsDirty() bool
	PersistSnapshot() (repository.DataDocument, uint64, error)
	MarkPersisted(revision uint64, ts int64)
}

// AppStore is the cache contract the application container exposes.
// It supports the service, the persistence scheduler and the repository watcher.
type AppStore interface {
	AvailabilityStore
	repository.CacheStore
	PersistableStore
}

var _ AppStore = (*Store)(nil)
