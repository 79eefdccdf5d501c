package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bug-tracker/internal/api/http"
	"github.com/spec-kit/bug-tracker/internal/api/http/handlers"
	"github.com/spec-kit/bug-tracker/internal/cache"
	"github.com/spec-kit/bug-tracker/internal/config"
	"github.com/spec-kit/bug-tracker/internal/events"
	"github.com/spec-kit/bug-tracker/internal/observability"
	"github.com/spec-kit/bug-tracker/internal/persistence"
	"github.com/spec-kit/bug-tracker/internal/repository"
	"github.com/spec-kit/bug-tracker/internal/service"
	"github.com/spec-kit/bug-tracker/internal/worker"
)

const (
	demoUserName     = "Demo User"
	demoUserEmail    = "demo@test.com"
	demoUserPassword = "password123"
)

type stores struct {
	bugs    repository.BugRepository
	users   repository.UserRepository
	checks  map[string]handlers.Pinger
	cleanup func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.cleanup()

	var bugCache cache.BugCache
	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	if redis != nil {
		bugCache = cache.NewRedisBugCache(redis.Client, cfg.Redis.BugCacheTTL(), logger)
		st.checks["redis"] = redis
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.StartNotificationWorker(cfg, dispatcher, logger)
	defer notifications.Stop()

	if cfg.Auth.SeedDemoUser {
		seeder := service.NewAuthService(cfg.Auth, st.users)
		if err := seeder.EnsureUser(ctx, demoUserName, demoUserEmail, demoUserPassword); err != nil {
			logger.Warn("demo user seed failed", zap.Error(err))
		} else {
			logger.Info("demo user available", zap.String("email", demoUserEmail))
		}
	}

	app := httptransport.NewApp(httptransport.ServerDependencies{
		Config:       cfg,
		Logger:       logger,
		Metrics:      observability.NewMetrics(),
		BugRepo:      st.bugs,
		UserRepo:     st.users,
		Cache:        bugCache,
		Dispatcher:   dispatcher,
		HealthChecks: st.checks,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// openStores builds the bug and user repositories for the configured driver.
// The postgres driver falls back to memory when no DSN is set.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	st := &stores{checks: map[string]handlers.Pinger{}, cleanup: func() {}}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if pg.PoolHandle() == nil {
			logger.Warn("falling back to in-memory store")
			break
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		st.bugs = repository.NewBugRepository(pg.PoolHandle())
		st.users = repository.NewUserRepository(pg.PoolHandle())
		st.checks["postgres"] = pg
		st.cleanup = pg.Close
		return st, nil

	case config.StoreDriverMongo:
		mg, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		users, err := repository.NewMongoUserRepository(ctx, mg.Database)
		if err != nil {
			mg.Close(ctx)
			return nil, err
		}
		st.bugs = repository.NewMongoBugRepository(mg.Database)
		st.users = users
		st.checks["mongo"] = mg
		st.cleanup = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mg.Close(closeCtx)
		}
		return st, nil
	}

	st.bugs = repository.NewMemoryBugRepository()
	st.users = repository.NewMemoryUserRepository()
	return st, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
