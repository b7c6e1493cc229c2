package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/commerce-kit/backoffice-core/internal/api/http"
	"github.com/commerce-kit/backoffice-core/internal/api/http/handlers"
	"github.com/commerce-kit/backoffice-core/internal/config"
	"github.com/commerce-kit/backoffice-core/internal/events"
	"github.com/commerce-kit/backoffice-core/internal/observability"
	"github.com/commerce-kit/backoffice-core/internal/persistence"
	"github.com/commerce-kit/backoffice-core/internal/remote"
	"github.com/commerce-kit/backoffice-core/internal/repository"
	"github.com/commerce-kit/backoffice-core/internal/service"
	"github.com/commerce-kit/backoffice-core/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var credRepo repository.CredentialRepository
	healthDeps := map[string]handlers.Pinger{}

	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		redisConn := persistence.NewRedis(cfg.Redis, logger)
		defer redisConn.Close()
		credRepo = repository.NewRedisCredentialRepository(redisConn.Client)
		healthDeps["redis"] = redisConn
	case config.StoreBackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		credRepo = repository.NewPostgresCredentialRepository(pg.PoolHandle())
		healthDeps["postgres"] = pg
	default:
		credRepo = repository.NewFileCredentialRepository(cfg.Store.FilePath)
	}

	apiClient := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout(), logger)

	sessionManager := service.NewSessionManager(cfg.Session, service.SessionDependencies{
		APIClient:      apiClient,
		CredentialRepo: credRepo,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
	}, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	ordersClient := remote.NewOrdersClient(sessionManager.Pipeline())
	workflowService := service.NewOrderWorkflowService(ordersClient, dispatcher, logger)

	if identity := sessionManager.CheckSession(ctx); identity != nil {
		logger.Info("restored persisted session", zap.String("operator_id", identity.ID))
	} else {
		logger.Info("no persisted session; login required")
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthDeps)
	sessionHandler := handlers.NewSessionHandler(sessionManager)
	ordersHandler := handlers.NewOrdersHandler(workflowService, sessionManager)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   healthHandler,
		Session:  sessionHandler,
		Orders:   ordersHandler,
		Sessions: sessionManager,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
