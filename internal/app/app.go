package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bassista/studio_calendar/internal/auth"
	"github.com/bassista/studio_calendar/internal/cache"
	"github.com/bassista/studio_calendar/internal/config"
	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/bassista/studio_calendar/internal/repository"
	"github.com/bassista/studio_calendar/internal/service"
)

// storeCloser is implemented by engines holding a connection.
type storeCloser interface {
	Close(ctx context.Context) error
}

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config  *config.Config
	Store   cache.AvailabilityStore
	Service *service.AvailabilityService
	Auth    auth.Authenticator

	// Set only for the file engine.
	Repo  repository.Repository
	Cache cache.AppStore

	BaseCtx context.Context
	Cancel  context.CancelFunc

	persistDone  <-chan struct{}
	shutdownOnce sync.Once
}

// New builds an App around any availability store engine.
func New(cfg *config.Config, store cache.AvailabilityStore, authenticator auth.Authenticator) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if authenticator == nil {
		return nil, errors.New("authenticator is nil")
	}

	svc, err := service.NewAvailabilityService(store)
	if err != nil {
		return nil, fmt.Errorf("cannot init service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:  cfg,
		Store:   store,
		Service: svc,
		Auth:    authenticator,
		BaseCtx: ctx,
		Cancel:  cancel,
	}, nil
}

// NewWithFileStore builds an App on the in-memory cache backed by a data file.
func NewWithFileStore(cfg *config.Config, repo repository.Repository, store cache.AppStore, authenticator auth.Authenticator) (*App, error) {
	if repo == nil {
		return nil, errors.New("repo is nil")
	}
	if store == nil {
		return nil, errors.New("cache store is nil")
	}

	a, err := New(cfg, store, authenticator)
	if err != nil {
		return nil, err
	}
	a.Repo = repo
	a.Cache = store
	return a, nil
}

// StartWatchers starts the background work of the file engine: the data file
// watcher (when enabled) and the persistence scheduler. It is a no-op for
// other engines.
func (a *App) StartWatchers() error {
	if a.Repo == nil || a.Cache == nil {
		return nil
	}

	// Started first so Shutdown flushes even when the watcher fails.
	a.persistDone = cache.StartPersistenceScheduler(a.BaseCtx, a.Cache, a.Repo, a.Config.Data.PersistInterval)

	if a.Config.Data.WatchFile {
		if err := a.Repo.StartWatcher(a.BaseCtx, a.Cache); err != nil {
			return fmt.Errorf("cannot start data file watcher: %w", err)
		}
	}
	return nil
}

// Shutdown cancels the base context, waits for the final flush and closes
// the store connection. Safe to call more than once.
func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}

	a.shutdownOnce.Do(func() {
		a.Cancel()

		wait := a.Config.Server.ShutDownTimeout
		if wait <= 0 {
			wait = 5 * time.Second
		}

		if a.persistDone != nil {
			select {
			case <-a.persistDone:
			case <-time.After(wait):
				logger.WithComponent("app").Warnf("final flush did not complete within %v", wait)
			}
		}

		if c, ok := a.Store.(storeCloser); ok {
			ctx, cancel := context.WithTimeout(context.Background(), wait)
			defer cancel()
			if err := c.Close(ctx); err != nil {
				logger.WithComponent("app").Errorf("cannot close store: %v", err)
			}
		}
	})
}
