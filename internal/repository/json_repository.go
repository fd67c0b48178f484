package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
)

const watchDebounce = 200 * time.Millisecond

// JSONRepository handles disk persistence and watching of the availability file.
type JSONRepository struct {
	path      string
	dir       string
	base      string
	validator *validator.Validate
	mu        sync.Mutex
}

// NewJSONRepository creates a repository for the given JSON file path.
// It returns the repository interface to avoid leaking implementation details.
func NewJSONRepository(path string) (Repository, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "" {
		dir = "."
	}

	return &JSONRepository{path: path, dir: dir, base: base, validator: validator.New()}, nil
}

// Load reads the JSON file, parses and validates it.
func (r *JSONRepository) Load(ctx context.Context) (*DataDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadUnlocked()
}

// loadUnlocked reads the JSON file without acquiring the lock (caller must hold it).
func (r *JSONRepository) loadUnlocked() (*DataDocument, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	var doc DataDocument
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}

	doc.ApplyDefaults()

	if err := r.validator.Struct(&doc); err != nil {
		return nil, fmt.Errorf("validate data file: %w", err)
	}

	return &doc, nil
}

// Save validates and writes the document atomically to disk.
func (r *JSONRepository) Save(ctx context.Context, doc *DataDocument) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.validator.Struct(doc); err != nil {
		return fmt.Errorf("validate before save: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveUnlocked(doc)
}

// saveUnlocked writes the document without acquiring the lock (caller must hold it).
func (r *JSONRepository) saveUnlocked(doc *DataDocument) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	tmpFile, err := os.CreateTemp(r.dir, r.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}

	return nil
}

// StartWatcher reloads the cache when the data file is edited out of band.
// It watches the parent directory (not the file) so atomic replace sequences
// (temp+rename) are still observed. Events are filtered by basename and
// debounced. Cancel ctx to stop the goroutine and close the watcher.
func (r *JSONRepository) StartWatcher(ctx context.Context, cacheStore CacheStore) error {
	if cacheStore == nil {
		return errors.New("cache store is required")
	}
	onChange := r.MakeWatcherCallback(cacheStore)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()
		schedule := func() {
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, onChange)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != r.base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Rename|fsnotify.Remove) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithComponent("json-repo").Errorf("watcher error: %v", err)
			}
		}
	}()

	return nil
}

// MakeWatcherCallback returns a callback that reloads the cache from disk if needed.
func (r *JSONRepository) MakeWatcherCallback(cacheStore CacheStore) func() {
	log := logger.WithComponent("json-repo")
	return func() {
		// Any write after this point makes the final swap a no-op.
		revision := cacheStore.Revision()

		diskDoc, err := r.Load(context.Background())
		if err != nil {
			log.Warnf("watch reload failed: %v", err)
			return
		}
		cacheLastUpdate := cacheStore.GetLastUpdate()
		diskLastUpdate := diskDoc.Metadata.LastUpdate

		if diskLastUpdate < cacheLastUpdate {
			log.Debugf("disk version is not newer than cache: disk=%d cache=%d", diskLastUpdate, cacheLastUpdate)
			return
		}

		if cacheStore.IsDirty() {
			// the cache content will be written to file soon anyway
			log.Warn("disk data is newer but cache is dirty; skipping reload")
			return
		}

		if diskLastUpdate == cacheLastUpdate {
			snapshot, err := cacheStore.Snapshot()
			if err != nil {
				log.Errorf("cache reload error: failed to get snapshot: %v", err)
				return
			}
			if AreDataDocumentsEqual(&snapshot, diskDoc) {
				return
			}
		}

		replaced, err := cacheStore.ReplaceIfUnchanged(*diskDoc, revision)
		if err != nil {
			log.Errorf("cache reload error: %v", err)
			return
		}
		if !replaced {
			log.Warn("cache changed during reload; keeping in-memory data")
			return
		}
		log.Info("cache reloaded from newer disk version")
	}
}
