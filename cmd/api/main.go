package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/civic-reports/backend/internal/config"
	"github.com/civic-reports/backend/internal/db"
	"github.com/civic-reports/backend/internal/events"
	apphttp "github.com/civic-reports/backend/internal/http"
	"github.com/civic-reports/backend/internal/http/handlers"
	"github.com/civic-reports/backend/internal/repositories"
	"github.com/civic-reports/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	reportRepo := repositories.NewReportRepo(pool)
	staffRepo := repositories.NewStaffRepo(pool)
	assignmentRepo := repositories.NewAssignmentRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	worklogRepo := repositories.NewWorkLogRepo(pool)
	draftRepo := repositories.NewDraftRepo(pool)
	closureRepo := repositories.NewClosureRepo(pool)
	txManager := repositories.NewTxManager(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	stores := services.Stores{Reports: reportRepo, Staff: staffRepo, Assignments: assignmentRepo, Audit: auditRepo}
	authService := services.NewAuthService(staffRepo, cfg.JWTSecret, cfg.JWTExpiration, log)
	reportService := services.NewReportService(reportRepo, assignmentRepo, auditRepo, log)
	assignmentService := services.NewAssignmentService(stores, txManager, publisher, log)
	worklogService := services.NewWorkLogService(reportRepo, assignmentRepo, worklogRepo, draftRepo, auditRepo, publisher, log)
	closureService := services.NewClosureService(reportRepo, staffRepo, assignmentRepo, closureRepo, auditRepo, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	reportHandler := handlers.NewReportHandler(reportService, log)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, log)
	worklogHandler := handlers.NewWorkLogHandler(worklogService, log)
	closureHandler := handlers.NewClosureHandler(closureService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: apphttp.ErrorHandler(log),
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, reportHandler, assignmentHandler, worklogHandler, closureHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
