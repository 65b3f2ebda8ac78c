package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civic-stack/complaint-service/internal/api/http"
	"github.com/civic-stack/complaint-service/internal/api/http/handlers"
	"github.com/civic-stack/complaint-service/internal/auth"
	"github.com/civic-stack/complaint-service/internal/config"
	"github.com/civic-stack/complaint-service/internal/domain"
	"github.com/civic-stack/complaint-service/internal/events"
	"github.com/civic-stack/complaint-service/internal/observability"
	"github.com/civic-stack/complaint-service/internal/persistence"
	"github.com/civic-stack/complaint-service/internal/repository"
	"github.com/civic-stack/complaint-service/internal/service"
	"github.com/civic-stack/complaint-service/internal/settings"
	"github.com/civic-stack/complaint-service/internal/worker"
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

	store := repository.NewStore(pg.PoolHandle())
	settingsStore := settings.NewStore(redis.Client, settings.Defaults{
		AssignmentMethod:  domain.AssignmentMethod(cfg.Assignment.DefaultMethod),
		AutoAssignEnabled: cfg.Assignment.AutoAssignEnabled,
	}, logger)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(store, cfg.Auth)
	complaintService := service.NewComplaintService(store)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Store:               store,
		Settings:            settingsStore,
		Dispatcher:          dispatcher,
		Logger:              logger,
		MaxSelectionRetries: cfg.Assignment.MaxSelectionRetries,
	})
	slaService := service.NewSLAService(store, dispatcher, logger)
	statusService := service.NewStatusService(store, dispatcher, logger)
	workloadService := service.NewWorkloadService(store)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	auditService := service.NewAuditService(store, dispatcher, logger)

	worker.StartNotificationWorker(notificationService, auditService)

	slaWorker := worker.NewSLAWorker(slaService, cfg.SLAMonitor, logger)
	slaWorker.Start(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Staff())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Staff:          handlers.NewStaffHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService, assignmentService, slaService, statusService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		Workload:       handlers.NewWorkloadHandler(workloadService),
		Settings:       handlers.NewSettingsHandler(settingsStore),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	slaWorker.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
