package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	route "github.com/bassista/studio_calendar/internal/api/route"
	appctx "github.com/bassista/studio_calendar/internal/app"
	"github.com/bassista/studio_calendar/internal/config"
	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/gin-gonic/gin"

	"github.com/enrichman/httpgrace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	if err := logger.SetLevel(cfg.Misc.LogLevel); err != nil {
		logger.WithComponent("main").Warnf("invalid log level '%s', keeping '%s': %v", cfg.Misc.LogLevel, logger.Logger.GetLevel(), err)
	}
	logger.WithComponent("main").Infof("App will run on port: %d (storage backend: %s)", cfg.Server.Port, cfg.Data.Backend)

	app, err := startApp(context.Background(), cfg, appctx.NewFromConfig)
	if err != nil {
		logger.WithComponent("main").Fatal(err)
	}
	defer app.Shutdown()

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := route.SetupRoutes(app, logger.Logger)
	srv := createGraceHttpServer(app.BaseCtx, "main-server", app.Config.Server, r)

	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Error(err)
	}
}

type appFactory func(ctx context.Context, cfg *config.Config) (*appctx.App, error)

// startApp builds the app and starts its background work. When it fails the
// app has already been shut down: store closed, pending writes flushed.
func startApp(ctx context.Context, cfg *config.Config, newApp appFactory) (*appctx.App, error) {
	app, err := newApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot init app: %w", err)
	}

	if err := app.StartWatchers(); err != nil {
		app.Shutdown()
		return nil, fmt.Errorf("cannot start background workers: %w", err)
	}
	return app, nil
}

func createGraceHttpServer(ctx context.Context, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	return httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
}
