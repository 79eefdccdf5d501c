package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/bug-tracker/internal/api/http/handlers"
	"github.com/spec-kit/bug-tracker/internal/auth"
	"github.com/spec-kit/bug-tracker/internal/cache"
	"github.com/spec-kit/bug-tracker/internal/config"
	"github.com/spec-kit/bug-tracker/internal/events"
	"github.com/spec-kit/bug-tracker/internal/observability"
	"github.com/spec-kit/bug-tracker/internal/repository"
	"github.com/spec-kit/bug-tracker/internal/service"
)

// ServerDependencies bundles what NewApp needs. Cache, Dispatcher, Metrics and
// HealthChecks are optional.
type ServerDependencies struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	BugRepo      repository.BugRepository
	UserRepo     repository.UserRepository
	Cache        cache.BugCache
	Dispatcher   events.Dispatcher
	HealthChecks map[string]handlers.Pinger
}

// NewApp builds the fiber application with middlewares and routes registered.
func NewApp(deps ServerDependencies) *fiber.App {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bugService := service.NewBugService(service.BugDependencies{
		BugRepo:    deps.BugRepo,
		Cache:      deps.Cache,
		Dispatcher: deps.Dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg.Auth, deps.UserRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), deps.UserRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, cfg.App.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:              handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.HealthChecks, deps.Metrics),
		Bugs:                handlers.NewBugsHandler(bugService),
		Users:               handlers.NewUsersHandler(authService),
		AuthMiddleware:      authMiddleware,
		ProtectBugMutations: cfg.Auth.RequireForBugMutations,
	})
	return app
}
