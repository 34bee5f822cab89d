package http

import (
	"time"

	"github.com/civic-reports/backend/internal/config"
	"github.com/civic-reports/backend/internal/http/handlers"
	"github.com/civic-reports/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	assignmentHandler *handlers.AssignmentHandler,
	worklogHandler *handlers.WorkLogHandler,
	closureHandler *handlers.ClosureHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/login", authHandler.Login)

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Meta (public, no auth required)
	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/taxonomy", metaHandler.GetTaxonomy)
	api.Get("/meta/note-categories", metaHandler.GetNoteCategories)

	// Citizen submission (public)
	api.Post("/reports", reportHandler.CreateReport)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Reports
	protected.Get("/reports", reportHandler.ListReports)
	protected.Get("/reports/:id", reportHandler.GetReport)
	protected.Get("/reports/:id/history", reportHandler.GetHistory)

	// Assignments
	protected.Get("/reports/:id/assignments", assignmentHandler.ListAssignments)
	protected.Post("/reports/:id/assignments", assignmentHandler.Assign)
	protected.Delete("/reports/:id/assignments/:staffId", assignmentHandler.Unassign)
	protected.Put("/reports/:id/notes-meta", assignmentHandler.UpdateNote)
	protected.Post("/reports/:id/reassign", middleware.SupervisorMiddleware(), assignmentHandler.Reassign)

	// Work log
	protected.Get("/reports/:id/work-log", worklogHandler.ListNotes)
	protected.Post("/reports/:id/work-log", worklogHandler.AddNote)
	protected.Delete("/reports/:id/work-log/:noteId", worklogHandler.DeleteNote)
	protected.Get("/reports/:id/work-log/summary", worklogHandler.GetSummary)
	protected.Get("/reports/:id/work-log-draft", worklogHandler.GetDraft)
	protected.Post("/reports/:id/work-log-draft", worklogHandler.SaveDraft)

	// Closure workflow
	protected.Post("/reports/:id/request-closure", closureHandler.RequestClosure)
	protected.Get("/closures/pending", middleware.SupervisorMiddleware(), closureHandler.ListPending)
	protected.Post("/closures/:id/approve", middleware.SupervisorMiddleware(), closureHandler.Approve)
	protected.Post("/closures/:id/reject", middleware.SupervisorMiddleware(), closureHandler.Reject)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
