package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/bassista/studio_calendar/internal/repository"
)

// Store keeps the authoritative in-memory availability map.
// It is the file engine's Store: reads and upserts never touch the disk,
// the persistence scheduler flushes dirty state in the background.
type Store struct {
	mu         sync.RWMutex
	data       map[repository.DateKey]repository.Status
	dirty      bool   // true if cache changed since last persist
	revision   uint64 // bumped on every mutation
	lastUpdate int64  // cache's metadata.lastUpdate
}

// NewStore creates a store seeded with the given document.
func NewStore(doc repository.DataDocument) *Store {
	s := &Store{}
	s.load(doc)
	return s
}

func (s *Store) load(doc repository.DataDocument) {
	s.data = make(map[repository.DateKey]repository.Status, len(doc.Availability))
	for _, r := range doc.Availability {
		s.data[r.Date] = r.Status
	}
	s.lastUpdate = doc.Metadata.LastUpdate
}

// Get returns the stored status, or the default when the day has no record.
func (s *Store) Get(_ context.Context, key repository.DateKey) (repository.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.data[key]; ok {
		return st, nil
	}
	return repository.DefaultStatus, nil
}

// GetAll returns every explicit record, sorted by date.
func (s *Store) GetAll(_ context.Context) ([]repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordsUnlocked(), nil
}

// Upsert inserts or overwrites the record for key. Last write wins.
func (s *Store) Upsert(_ context.Context, key repository.DateKey, status repository.Status) (repository.Record, error) {
	if !status.Valid() {
		return repository.Record{}, fmt.Errorf("%w: %q", repository.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.data[key]; !ok || prev != status {
		s.data[key] = status
		s.revision++
		s.dirty = true
	}
	return repository.Record{Date: key, Status: status}, nil
}

// MarkDirty sets the dirty flag to true.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	s.revision++
}

// IsDirty returns true if cache has uncommitted changes.
func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// GetLastUpdate returns the cache's last update timestamp.
func (s *Store) GetLastUpdate() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Snapshot returns a copy of the cached data as a document.
func (s *Store) Snapshot() (repository.DataDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentUnlocked(), nil
}

// PersistSnapshot returns a copy of the data together with the revision it
// was taken at, for use with MarkPersisted.
func (s *Store) PersistSnapshot() (repository.DataDocument, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentUnlocked(), s.revision, nil
}

// MarkPersisted records a successful flush. The dirty flag is cleared only if
// no mutation happened since the snapshot at revision was taken.
func (s *Store) MarkPersisted(revision uint64, ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = ts
	if s.revision == revision {
		s.dirty = false
	}
}

// Revision returns the current mutation counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// ReplaceIfUnchanged swaps the cached data for doc, typically after an
// out-of-band file edit. The swap is refused when the store is dirty or was
// mutated after revision was read; it reports whether the swap happened.
func (s *Store) ReplaceIfUnchanged(doc repository.DataDocument, revision uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty || s.revision != revision {
		return false, nil
	}
	s.load(doc)
	s.revision++
	return true, nil
}

func (s *Store) recordsUnlocked() []repository.Record {
	records := make([]repository.Record, 0, len(s.data))
	for k, st := range s.data {
		records = append(records, repository.Record{Date: k, Status: st})
	}
	repository.SortRecords(records)
	return records
}

func (s *Store) documentUnlocked() repository.DataDocument {
	return repository.DataDocument{
		Metadata:     repository.Metadata{LastUpdate: s.lastUpdate},
		Availability: s.recordsUnlocked(),
	}
}
