package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/library-service/internal/api/http"
	"github.com/spec-kit/library-service/internal/api/http/handlers"
	"github.com/spec-kit/library-service/internal/auth"
	"github.com/spec-kit/library-service/internal/config"
	"github.com/spec-kit/library-service/internal/events"
	"github.com/spec-kit/library-service/internal/observability"
	"github.com/spec-kit/library-service/internal/persistence"
	"github.com/spec-kit/library-service/internal/repository"
	"github.com/spec-kit/library-service/internal/service"
	"github.com/spec-kit/library-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("security alert: JWT_SECRET is not set; logins and authenticated requests will be rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	librarianRepo := repository.NewLibrarianRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	if _, err := tokens.Lifetime(); err != nil {
		logger.Warn("security alert: JWT_EXPIRES_IN is invalid; token issuance will fail", zap.Error(err))
	}

	authDeps := service.AuthDependencies{
		LibrarianRepo: librarianRepo,
		Tokens:        tokens,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		BcryptCost:    cfg.Auth.BcryptCost,
	}
	if throttle := auth.NewLoginThrottle(redis.Client, cfg.Auth.LoginMaxAttempts, loginLockout(cfg.Auth.LoginLockout, logger)); throttle != nil {
		authDeps.Limiter = throttle
	}
	authService := service.NewAuthService(authDeps)

	librarianService := service.NewLibrarianService(*cfg, service.LibrarianDependencies{
		LibrarianRepo: librarianRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		AuthorRepo:    repository.NewAuthorRepository(pool),
		PublisherRepo: repository.NewPublisherRepository(pool),
		CategoryRepo:  repository.NewCategoryRepository(pool),
		BookRepo:      repository.NewBookRepository(pool),
	})

	authMiddleware := auth.NewAuthMiddleware(tokens, logger, metrics)

	checks := []handlers.DependencyCheck{{Name: "postgres", Ping: pg.Ping}}
	if redis.Configured() {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:            handlers.NewAuthHandler(authService),
		Librarians:      handlers.NewLibrariansHandler(librarianService),
		Authors:         handlers.NewAuthorsHandler(catalogService),
		Publishers:      handlers.NewPublishersHandler(catalogService),
		Categories:      handlers.NewCategoriesHandler(catalogService),
		Books:           handlers.NewBooksHandler(catalogService),
		AuthMiddleware:  authMiddleware,
		BootstrapGuard:  auth.NewBootstrapGuard(librarianRepo, authMiddleware, logger),
		MetricsGatherer: metrics.Registry(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// loginLockout parses the throttle window, falling back to fifteen minutes.
func loginLockout(spec string, logger *zap.Logger) time.Duration {
	seconds, err := auth.ParseDuration(spec)
	if err != nil || seconds <= 0 {
		logger.Warn("invalid AUTH_LOGIN_LOCKOUT, using 15m", zap.String("value", spec))
		return 15 * time.Minute
	}
	return auth.Seconds(seconds)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
