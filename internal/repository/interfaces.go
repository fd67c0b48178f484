package repository

import "context"

// Saver persists a DataDocument.
// Small interface used by background jobs like the persistence scheduler.
type Saver interface {
	Save(ctx context.Context, doc *DataDocument) error
}

// Repository abstracts persistence and watching of the data file.
// JSONRepository implements this interface.
type Repository interface {
	Saver
	Load(ctx context.Context) (*DataDocument, error)
	StartWatcher(ctx context.Context, cacheStore CacheStore) error
}

// CacheStore defines the cache operations needed by the watcher callback.
// ReplaceIfUnchanged must refuse the swap when the store is dirty or its
// revision moved past the one read by the caller.
type CacheStore interface {
	GetLastUpdate() int64
	IsDirty() bool
	Revision() uint64
	Snapshot() (DataDocument, error)
	ReplaceIfUnchanged(doc DataDocument, revision uint64) (bool, error)
}
