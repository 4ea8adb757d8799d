// Package server initializes and runs the ModuleForge API server: it opens
// the database, applies migrations, wires the services and serves the REST
// endpoint until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/moduleforge/moduleforge/internal/logging"
	"github.com/moduleforge/moduleforge/internal/server/config"
	"github.com/moduleforge/moduleforge/internal/server/httpapi"
	"github.com/moduleforge/moduleforge/internal/server/repositories/repomanager"
	"github.com/moduleforge/moduleforge/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	guard := services.NewGuard(db, repos)

	server := httpapi.NewServer(
		cfg.EndpointAddrHTTP,
		logger,
		[]byte(cfg.SecretKey),
		services.NewUserService(db, repos, cfg),
		services.NewWorldService(db, repos, guard),
		services.NewEntryService(db, repos, guard),
		services.NewRelationshipService(db, repos, guard, logger),
		services.NewLoreService(db, repos, guard),
		services.NewTimelineService(db, repos, guard),
		services.NewUploadService(cfg),
	)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
