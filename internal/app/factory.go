package app

import (
	"context"
	"fmt"

	"github.com/bassista/studio_calendar/internal/auth"
	"github.com/bassista/studio_calendar/internal/cache"
	"github.com/bassista/studio_calendar/internal/config"
	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/bassista/studio_calendar/internal/repository"
)

// NewFromConfig creates the App for the configured storage backend.
// "file" loads the data file into the in-memory cache, "surrealdb" connects
// to the database.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	verifier, err := auth.NewVerifier(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("cannot init credentials: %w", err)
	}
	if !verifier.Enabled() {
		logger.WithComponent("app").Warn("no admin credential configured, every status change will be rejected")
	}

	switch cfg.Data.Backend {
	case config.BackendFile, "":
		repo, err := repository.NewJSONRepository(cfg.Data.FilePath)
		if err != nil {
			return nil, fmt.Errorf("cannot init repository: %w", err)
		}
		doc, err := repo.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot load data file: %w", err)
		}
		logger.WithComponent("app").Infof("loaded %d records from %s", len(doc.Availability), cfg.Data.FilePath)
		return NewWithFileStore(cfg, repo, cache.NewStore(*doc), verifier)

	case config.BackendSurreal:
		store, err := repository.NewSurrealStore(ctx, repository.SurrealConfig{
			Endpoint:  cfg.Surreal.Endpoint,
			Namespace: cfg.Surreal.Namespace,
			Database:  cfg.Surreal.Database,
			User:      cfg.Surreal.User,
			Password:  cfg.Surreal.Password,
		})
		if err != nil {
			return nil, err
		}
		a, err := New(cfg, store, verifier)
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return a, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: %s, %s)", cfg.Data.Backend, config.BackendFile, config.BackendSurreal)
	}
}
