// Package server assembles the storage, cache, session and item services and
// runs the REST and gRPC front ends until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/dmitrijs2005/itemkeeper/internal/server/auth"
	"github.com/dmitrijs2005/itemkeeper/internal/server/cache"
	"github.com/dmitrijs2005/itemkeeper/internal/server/config"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/itemkeeper/internal/server/rest"
	"github.com/dmitrijs2005/itemkeeper/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/itemkeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	closers     []func() error

	sessionService *services.SessionService
	itemService    *services.ItemService
}

// openRepositories picks Postgres when a DSN is configured and process
// memory otherwise.
var openRepositories = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
	if dsn == "" {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}
	return repomanager.OpenPostgres(ctx, dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if c.IsProduction() && c.SecretKey == config.DefaultSecretKey {
		logger.Warn(ctx, "JWT secret is the built-in default")
	}

	rm, err := openRepositories(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, repomanager: rm}
	app.closers = append(app.closers, rm.Close)

	var userCache cache.UserCache
	if c.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, c.RedisAddr, c.RedisPassword)
		if err != nil {
			// The cache is an optimisation; serve without it.
			logger.Warn(ctx, "redis unavailable, user cache disabled", "error", err)
		} else {
			userCache = cache.NewRedisUserCache(rdb, c.UserCacheTTL)
			app.closers = append(app.closers, rdb.Close)
		}
	}

	issuer := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	app.sessionService = services.NewSessionService(rm, issuer, userCache, c, logger)
	app.itemService = services.NewItemService(rm)

	return app, nil
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.close(ctx)

	app.logger.Info(ctx, "Starting app...")

	httpServer := rest.NewHTTPServer(app.config, app.logger, app.sessionService, app.itemService)
	grpcServer := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.sessionService)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(ctx) })
	g.Go(func() error { return grpcServer.Run(ctx) })

	if err := g.Wait(); err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(ctx, "close failed", "error", err)
		}
	}
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
