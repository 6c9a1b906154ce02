package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/request-service/internal/api/http"
	"github.com/spec-kit/request-service/internal/api/http/handlers"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/events"
	"github.com/spec-kit/request-service/internal/observability"
	"github.com/spec-kit/request-service/internal/persistence"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/schedule"
	"github.com/spec-kit/request-service/internal/service"
	"github.com/spec-kit/request-service/internal/worker"
)

const eventBufferSize = 256

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

	calendar, err := schedule.FromConfig(cfg.Calendar)
	if err != nil {
		logger.Fatal("invalid work calendar", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	customerRepo := repository.NewCustomerRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	kindRepo := repository.NewServiceKindRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	eventRepo := repository.NewLifecycleEventRepository(pool)
	profileRepo := repository.NewCachedSLAProfileRepository(
		repository.NewSLAProfileRepository(pool), redis.Client, cfg.SLA.ProfileCacheTTL())

	dispatcher := events.NewDispatcher(eventBufferSize)
	defer dispatcher.Close()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		CustomerRepo: customerRepo,
		StaffRepo:    staffRepo,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		RequestRepo: requestRepo,
		EventRepo:   eventRepo,
		ProfileRepo: profileRepo,
		KindRepo:    kindRepo,
		Dispatcher:  dispatcher,
		Calendar:    calendar,
		SLA:         cfg.SLA,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		RequestRepo: requestRepo,
		ProfileRepo: profileRepo,
		Cache:       redis.Client,
		Calendar:    calendar,
		SLA:         cfg.SLA,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), customerRepo, staffRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Customers:      handlers.NewCustomersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService, staffRepo),
		Requests:       handlers.NewRequestsHandler(lifecycleService),
		ServiceKinds:   handlers.NewServiceKindsHandler(kindRepo),
		StaffRequests:  handlers.NewStaffRequestsHandler(lifecycleService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
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
