package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bassista/studio_calendar/internal/api/route"
	"github.com/bassista/studio_calendar/internal/app"
	"github.com/bassista/studio_calendar/internal/auth"
	"github.com/bassista/studio_calendar/internal/cache"
	"github.com/bassista/studio_calendar/internal/calendar"
	"github.com/bassista/studio_calendar/internal/config"
	"github.com/bassista/studio_calendar/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func june15() time.Time {
	return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
}

func newServer(t *testing.T) (*httptest.Server, *cache.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewVerifier("admin", "s3cret", "")
	require.NoError(t, err)

	store := cache.NewStore(repository.DataDocument{})
	cfg := &config.Config{Server: config.ServerConfig{
		RequestTimeout:     time.Second,
		ShutDownTimeout:    time.Second,
		CORSAllowedOrigins: "*",
	}}
	a, err := app.New(cfg, store, verifier)
	require.NoError(t, err)

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	srv := httptest.NewServer(route.SetupRoutes(a, quiet))
	t.Cleanup(func() {
		srv.Close()
		a.Shutdown()
	})
	return srv, store
}

func TestRun_EditAppliesModeAndRenders(t *testing.T) {
	srv, store := newServer(t)
	var out bytes.Buffer

	err := run(context.Background(), []string{
		"--server", srv.URL,
		"--edit",
		"--user", "admin", "--password", "s3cret",
		"--mode", "force-pending",
		"--click", "2025-06-20",
		"--drag", "2025-06-21,2025-06-22",
	}, &out, june15)
	require.NoError(t, err)

	ctx := context.Background()
	for _, key := range []repository.DateKey{"2025-06-20", "2025-06-21", "2025-06-22"} {
		status, _ := store.Get(ctx, key)
		assert.Equal(t, repository.StatusPending, status, string(key))
	}

	text := out.String()
	assert.Contains(t, text, "Juin 2025 / Juillet 2025")
	assert.Contains(t, text, "DI   LU   MA")
	assert.Contains(t, text, "20?")
	assert.Contains(t, text, "15.*")
}

func TestRun_CycleModeIgnoresDrag(t *testing.T) {
	srv, store := newServer(t)

	err := run(context.Background(), []string{
		"--server", srv.URL, "--edit", "--password", "s3cret",
		"--click", "2025-06-20",
		"--drag", "2025-06-21",
	}, io.Discard, june15)
	require.NoError(t, err)

	records, _ := store.GetAll(context.Background())
	assert.Equal(t, []repository.Record{{Date: "2025-06-20", Status: repository.StatusUnavailable}}, records)
}

func TestRun_ReadOnlyView(t *testing.T) {
	srv, store := newServer(t)
	_, err := store.Upsert(context.Background(), "2025-06-20", repository.StatusUnavailable)
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(context.Background(), []string{"--server", srv.URL, "--locale", "en", "--offset", "-1"}, &out, june15)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "May 2025 / June 2025")
	assert.Contains(t, text, "SU   MO   TU")
	assert.Contains(t, text, "20x")
	assert.NotContains(t, text, "14.")
}

func TestRun_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"click without edit", []string{"--click", "2025-06-20"}, "need --edit"},
		{"unknown locale", []string{"--locale", "de"}, "unknown locale"},
		{"unknown mode", []string{"--mode", "paint"}, "unknown mode"},
		{"unknown flag", []string{"--colour"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, io.Discard, june15)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_InvalidClickDate(t *testing.T) {
	srv, _ := newServer(t)

	err := run(context.Background(), []string{"--server", srv.URL, "--edit", "--click", "20-06-2025"}, io.Discard, june15)
	assert.ErrorIs(t, err, repository.ErrInvalidDateKey)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "     ", formatCell(calendar.Cell{Empty: true}))
	assert.Equal(t, " 5x  ", formatCell(calendar.Cell{Day: 5, Status: repository.StatusUnavailable}))
	assert.Equal(t, "15.* ", formatCell(calendar.Cell{Day: 15, Status: repository.StatusAvailable, Today: true}))
	assert.Equal(t, " 3   ", formatCell(calendar.Cell{Day: 3, Past: true}))
	assert.True(t, strings.HasPrefix(formatCell(calendar.Cell{Day: 20, Status: repository.StatusPending}), "20?"))
}
