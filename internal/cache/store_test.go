package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bassista/studio_calendar/internal/repository"
)

func createTestDocument() repository.DataDocument {
	return repository.DataDocument{
		Metadata: repository.Metadata{LastUpdate: 1000},
		Availability: []repository.Record{
			{Date: "2025-12-25", Status: repository.StatusUnavailable},
			{Date: "2025-12-24", Status: repository.StatusPending},
		},
	}
}

func TestNewStore(t *testing.T) {
	doc := createTestDocument()
	store := NewStore(doc)

	if store.GetLastUpdate() != doc.Metadata.LastUpdate {
		t.Errorf("expected lastUpdate %d, got %d", doc.Metadata.LastUpdate, store.GetLastUpdate())
	}
	if store.IsDirty() {
		t.Error("expected new store to be clean")
	}
}

func TestStore_Get_DefaultsToAvailable(t *testing.T) {
	store := NewStore(repository.DataDocument{})

	status, err := store.Get(context.Background(), "2025-12-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != repository.StatusAvailable {
		t.Errorf("expected available, got %s", status)
	}
}

func TestStore_Get_Stored(t *testing.T) {
	store := NewStore(createTestDocument())

	status, _ := store.Get(context.Background(), "2025-12-24")
	if status != repository.StatusPending {
		t.Errorf("expected pending, got %s", status)
	}
}

func TestStore_GetAll_SortedAndExplicitOnly(t *testing.T) {
	store := NewStore(createTestDocument())

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Date != "2025-12-24" || records[1].Date != "2025-12-25" {
		t.Errorf("expected records sorted by date, got %v", records)
	}
}

func TestStore_GetAll_EmptyIsNotNil(t *testing.T) {
	store := NewStore(repository.DataDocument{})

	records, _ := store.GetAll(context.Background())
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", records)
	}
}

func TestStore_Upsert_InsertAndOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewStore(repository.DataDocument{})

	rec, err := store.Upsert(ctx, "2025-12-25", repository.StatusPending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Date != "2025-12-25" || rec.Status != repository.StatusPending {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !store.IsDirty() {
		t.Error("expected store to be dirty after upsert")
	}

	if _, err := store.Upsert(ctx, "2025-12-25", repository.StatusAvailable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, _ := store.GetAll(ctx)
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	// Resetting to available keeps an explicit record.
	if records[0].Status != repository.StatusAvailable {
		t.Errorf("expected available, got %s", records[0].Status)
	}
}

func TestStore_Upsert_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(repository.DataDocument{})

	_, _ = store.Upsert(ctx, "2025-12-25", repository.StatusUnavailable)
	_, rev1, _ := store.PersistSnapshot()
	_, _ = store.Upsert(ctx, "2025-12-25", repository.StatusUnavailable)
	_, rev2, _ := store.PersistSnapshot()

	if rev1 != rev2 {
		t.Error("expected repeated upsert with the same status not to change the revision")
	}
	records, _ := store.GetAll(ctx)
	if len(records) != 1 {
		t.Errorf("expected one record, got %d", len(records))
	}
}

func TestStore_Upsert_InvalidStatus(t *testing.T) {
	store := NewStore(repository.DataDocument{})

	_, err := store.Upsert(context.Background(), "2025-12-25", "maybe")
	if !errors.Is(err, repository.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	records, _ := store.GetAll(context.Background())
	if len(records) != 0 {
		t.Error("expected store to be unchanged")
	}
}

func TestStore_DirtyFlag(t *testing.T) {
	store := NewStore(createTestDocument())

	store.MarkDirty()
	if !store.IsDirty() {
		t.Error("expected store to be dirty after MarkDirty")
	}

	_, rev, _ := store.PersistSnapshot()
	store.MarkPersisted(rev, 2000)
	if store.IsDirty() {
		t.Error("expected store to be clean after MarkPersisted")
	}
	if store.GetLastUpdate() != 2000 {
		t.Errorf("expected lastUpdate 2000, got %d", store.GetLastUpdate())
	}
}

func TestStore_MarkPersisted_StaleRevisionKeepsDirty(t *testing.T) {
	ctx := context.Background()
	store := NewStore(repository.DataDocument{})

	_, _ = store.Upsert(ctx, "2025-12-25", repository.StatusPending)
	_, rev, _ := store.PersistSnapshot()

	// A write lands between snapshot and flush completion.
	_, _ = store.Upsert(ctx, "2025-12-26", repository.StatusPending)
	store.MarkPersisted(rev, 3000)

	if !store.IsDirty() {
		t.Error("expected store to stay dirty when written after the snapshot")
	}
}

func TestStore_Snapshot_IsCopy(t *testing.T) {
	store := NewStore(createTestDocument())

	snapshot, err := store.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot.Availability[0].Status = repository.StatusAvailable
	snapshot.Availability = append(snapshot.Availability, repository.Record{Date: "2030-01-01", Status: repository.StatusPending})

	snapshot2, _ := store.Snapshot()
	if len(snapshot2.Availability) != 2 {
		t.Error("modifying snapshot should not affect store")
	}
	if snapshot2.Availability[0].Status != repository.StatusPending {
		t.Error("modifying snapshot records should not affect store")
	}
}

func TestStore_ReplaceIfUnchanged(t *testing.T) {
	store := NewStore(createTestDocument())

	newDoc := repository.DataDocument{
		Metadata:     repository.Metadata{LastUpdate: 3000},
		Availability: []repository.Record{{Date: "2026-01-01", Status: repository.StatusUnavailable}},
	}
	replaced, err := store.ReplaceIfUnchanged(newDoc, store.Revision())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !replaced {
		t.Fatal("expected clean store to be replaced")
	}

	if store.IsDirty() {
		t.Error("expected store to be clean after replace")
	}
	if store.GetLastUpdate() != 3000 {
		t.Errorf("expected lastUpdate 3000, got %d", store.GetLastUpdate())
	}
	status, _ := store.Get(context.Background(), "2025-12-25")
	if status != repository.StatusAvailable {
		t.Errorf("expected replaced-away record to read as available, got %s", status)
	}
}

func TestStore_ReplaceIfUnchanged_Refused(t *testing.T) {
	ctx := context.Background()
	newDoc := repository.DataDocument{Metadata: repository.Metadata{LastUpdate: 3000}}

	tests := []struct {
		name   string
		mutate func(s *Store) uint64
	}{
		{"dirty store", func(s *Store) uint64 {
			_, _ = s.Upsert(ctx, "2025-12-31", repository.StatusPending)
			return s.Revision()
		}},
		{"write after revision read", func(s *Store) uint64 {
			rev := s.Revision()
			_, _ = s.Upsert(ctx, "2025-12-31", repository.StatusPending)
			s.MarkPersisted(s.Revision(), 2000)
			return rev
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(createTestDocument())
			rev := tt.mutate(store)

			replaced, err := store.ReplaceIfUnchanged(newDoc, rev)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if replaced {
				t.Fatal("expected replace to be refused")
			}
			status, _ := store.Get(ctx, "2025-12-31")
			if status != repository.StatusPending {
				t.Errorf("expected write to survive, got %s", status)
			}
		})
	}
}

// racingStore performs a service write right after the watcher checked the
// dirty flag.
type racingStore struct {
	*Store
	once sync.Once
}

func (r *racingStore) IsDirty() bool {
	dirty := r.Store.IsDirty()
	r.once.Do(func() {
		_, _ = r.Store.Upsert(context.Background(), "2025-12-25", repository.StatusUnavailable)
	})
	return dirty
}

func TestWatcherReload_KeepsWriteBetweenCheckAndSwap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availability.json")
	repo, err := repository.NewJSONRepository(path)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	disk := repository.DataDocument{
		Metadata:     repository.Metadata{LastUpdate: 100},
		Availability: []repository.Record{{Date: "2025-12-24", Status: repository.StatusPending}},
	}
	if err := repo.Save(context.Background(), &disk); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	store := &racingStore{Store: NewStore(repository.DataDocument{Metadata: repository.Metadata{LastUpdate: 50}})}
	repo.(*repository.JSONRepository).MakeWatcherCallback(store)()

	status, _ := store.Get(context.Background(), "2025-12-25")
	if status != repository.StatusUnavailable {
		t.Errorf("expected write to survive reload, got %s", status)
	}
	if !store.Store.IsDirty() {
		t.Error("expected store to stay dirty so the write is flushed")
	}
}

func TestStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	store := NewStore(createTestDocument())

	var wg sync.WaitGroup
	numGoroutines := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.GetAll(ctx)
			_, _ = store.Get(ctx, "2025-12-25")
			_, _ = store.Snapshot()
			_ = store.IsDirty()
		}()
		go func(idx int) {
			defer wg.Done()
			key := repository.DateKey(fmt.Sprintf("2026-01-%02d", idx%28+1))
			_, _ = store.Upsert(ctx, key, repository.Statuses[idx%3])
		}(i)
	}

	wg.Wait()

	records, _ := store.GetAll(ctx)
	seen := map[repository.DateKey]bool{}
	for _, r := range records {
		if seen[r.Date] {
			t.Fatalf("duplicate record for %s", r.Date)
		}
		seen[r.Date] = true
	}
}
