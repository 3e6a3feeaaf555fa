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

	httptransport "github.com/telesales/callops-service/internal/api/http"
	"github.com/telesales/callops-service/internal/api/http/handlers"
	"github.com/telesales/callops-service/internal/auth"
	"github.com/telesales/callops-service/internal/config"
	"github.com/telesales/callops-service/internal/events"
	"github.com/telesales/callops-service/internal/observability"
	"github.com/telesales/callops-service/internal/persistence"
	"github.com/telesales/callops-service/internal/reporting"
	"github.com/telesales/callops-service/internal/repository"
	"github.com/telesales/callops-service/internal/service"
	"github.com/telesales/callops-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	callRepo := repository.NewCallRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	protocolRepo := repository.NewProtocolRepository(pool)
	protocolEventRepo := repository.NewProtocolEventRepository(pool)
	operatorEventRepo := repository.NewOperatorEventRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	protocolService := service.NewProtocolService(service.ProtocolDependencies{
		ProtocolRepo: protocolRepo,
		EventRepo:    protocolEventRepo,
		QuestionRepo: questionRepo,
		ClientRepo:   clientRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})
	queueService := service.NewQueueService(service.QueueDependencies{
		TaskRepo:          taskRepo,
		ClientRepo:        clientRepo,
		CallRepo:          callRepo,
		OperatorEventRepo: operatorEventRepo,
		Protocols:         protocolService,
		Dispatcher:        dispatcher,
		SuppressionWindow: cfg.Queue.SuppressionWindow(),
	})
	reportingService := reporting.NewService(reporting.Dependencies{
		CallRepo:          callRepo,
		TaskRepo:          taskRepo,
		QuestionRepo:      questionRepo,
		OperatorEventRepo: operatorEventRepo,
		ProtocolRepo:      protocolRepo,
		UserRepo:          userRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	dashboardWorker := worker.NewDashboardWorker(
		reportingService,
		redis,
		logger,
		time.Duration(cfg.Queue.DashboardRefreshSec)*time.Second,
		time.Duration(cfg.Queue.DashboardCacheTTLSec)*time.Second,
	)
	go dashboardWorker.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Queue:          handlers.NewQueueHandler(queueService),
		TasksAdmin:     handlers.NewTasksAdminHandler(queueService),
		Clients:        handlers.NewClientsHandler(clientRepo, callRepo),
		Questions:      handlers.NewQuestionsHandler(questionRepo),
		Protocols:      handlers.NewProtocolsHandler(protocolService),
		Reports:        handlers.NewReportsHandler(reportingService, redis),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
