package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/surrealdb/surrealdb.go"
)

// Standard errors for the SurrealDB engine. Use errors.Is to check them.
var (
	ErrConnection = errors.New("database connection error")
	ErrQuery      = errors.New("query execution error")
)

const (
	surrealSelectAll = "SELECT date, status FROM availability ORDER BY date ASC"
	surrealSelectOne = "SELECT date, status FROM type::thing('availability', $date)"
	surrealUpsert    = "UPSERT type::thing('availability', $date) SET date = $date, status = $status RETURN date, status"
)

// SurrealConfig holds the connection settings of the SurrealDB engine.
type SurrealConfig struct {
	Endpoint  string
	Namespace string
	Database  string
	User      string
	Password  string
}

// RecordQuerier runs a SurrealQL statement and decodes its rows as records.
type RecordQuerier interface {
	QueryRecords(ctx context.Context, query string, vars map[string]any) ([]Record, error)
	Close(ctx context.Context) error
}

// SurrealStore keeps one row per day in the "availability" table, using the
// date key as record id so uniqueness is enforced by the database.
type SurrealStore struct {
	q RecordQuerier
}

// NewSurrealStore connects, signs in and selects namespace and database.
func NewSurrealStore(ctx context.Context, cfg SurrealConfig) (*SurrealStore, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if cfg.User != "" {
		if _, err := db.SignIn(ctx, &surrealdb.Auth{Username: cfg.User, Password: cfg.Password}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	logger.WithComponent("surreal-store").Infof("connected to %s (%s/%s)", cfg.Endpoint, cfg.Namespace, cfg.Database)
	return NewSurrealStoreWithQuerier(&surrealConn{db: db}), nil
}

// NewSurrealStoreWithQuerier wraps an existing querier.
func NewSurrealStoreWithQuerier(q RecordQuerier) *SurrealStore {
	return &SurrealStore{q: q}
}

func (s *SurrealStore) Get(ctx context.Context, key DateKey) (Status, error) {
	rows, err := s.q.QueryRecords(ctx, surrealSelectOne, map[string]any{"date": string(key)})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return DefaultStatus, nil
	}
	return rows[0].Status, nil
}

func (s *SurrealStore) GetAll(ctx context.Context) ([]Record, error) {
	rows, err := s.q.QueryRecords(ctx, surrealSelectAll, nil)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Record{}
	}
	return rows, nil
}

func (s *SurrealStore) Upsert(ctx context.Context, key DateKey, status Status) (Record, error) {
	rows, err := s.q.QueryRecords(ctx, surrealUpsert, map[string]any{
		"date":   string(key),
		"status": string(status),
	})
	if err != nil {
		return Record{}, err
	}
	if len(rows) == 0 {
		return Record{}, fmt.Errorf("%w: upsert of %s returned no row", ErrQuery, key)
	}
	return rows[0], nil
}

func (s *SurrealStore) Close(ctx context.Context) error {
	return s.q.Close(ctx)
}

// surrealConn adapts *surrealdb.DB to RecordQuerier.
type surrealConn struct {
	db *surrealdb.DB
}

func (c *surrealConn) QueryRecords(ctx context.Context, query string, vars map[string]any) ([]Record, error) {
	if c.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[[]Record](ctx, c.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	var rows []Record
	for _, r := range *results {
		if r.Status != "OK" {
			if r.Error != nil {
				return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
			}
			return nil, ErrQuery
		}
		rows = append(rows, r.Result...)
	}
	return rows, nil
}

func (c *surrealConn) Close(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close(ctx)
}
