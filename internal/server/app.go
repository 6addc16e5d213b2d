// Package server initializes and runs the inventory server: it opens the
// database, runs migrations, wires services to the HTTP API and handles
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minventory/internal/logging"
	"minventory/internal/server/blobstore"
	"minventory/internal/server/config"
	"minventory/internal/server/httpapi"
	"minventory/internal/server/repositories/repomanager"
	"minventory/internal/server/services"
	"minventory/internal/server/session"
)

// purgeInterval controls how often abandoned sessions have their keys
// zeroed without waiting for the next lookup.
const purgeInterval = 5 * time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	sessions *session.Manager
	handler  http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		return nil, err
	}

	blobs, err := blobstore.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// a typed nil must not reach the interface field
	var store blobstore.BlobStore
	if blobs != nil {
		store = blobs
		logger.Info(ctx, "image originals go to object storage", "bucket", cfg.S3Bucket)
	}

	sessions := session.NewManager(cfg.SessionTTL)
	db := repos.Conn()

	api := httpapi.New(
		services.NewAuthService(db, repos, sessions, cfg, logger),
		services.NewCategoryService(db, repos, cfg, logger),
		services.NewItemService(db, repos, store, logger),
		services.NewLoanService(db, repos, logger),
		services.NewQuestionService(db, repos, logger),
		logger,
	)

	return &App{
		config:   cfg,
		logger:   logger,
		repos:    repos,
		sessions: sessions,
		handler:  api.Router(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// startSessionPurger zeroes the keys of expired sessions on a timer.
func (app *App) startSessionPurger(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := app.sessions.PurgeExpired(); n > 0 {
					app.logger.Debug(ctx, "purged expired sessions", "count", n)
				}
			}
		}
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)
	app.startSessionPurger(ctx)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, release := context.WithTimeout(context.Background(), 10*time.Second)
	defer release()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}
	return nil
}
