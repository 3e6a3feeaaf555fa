package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telesales/callops-service/internal/api/http/handlers"
	"github.com/telesales/callops-service/internal/auth"
	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Queue          *handlers.QueueHandler
	TasksAdmin     *handlers.TasksAdminHandler
	Clients        *handlers.ClientsHandler
	Questions      *handlers.QuestionsHandler
	Protocols      *handlers.ProtocolsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(observability.Registry, promhttp.HandlerOpts{})))

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	users.Get("/", cfg.Users.ListUsers)
	users.Post("/", cfg.Users.CreateUser)
	users.Patch("/:id", cfg.Users.UpdateUser)

	queue := app.Group("/queue", cfg.AuthMiddleware.Handle)
	queue.Post("/import", cfg.Queue.Import)
	queue.Get("/next", cfg.Queue.Next)
	queue.Get("/skip-reasons", cfg.Queue.SkipReasons)
	queue.Post("/tasks/:id/start", cfg.Queue.Start)
	queue.Post("/tasks/:id/complete", cfg.Queue.Complete)
	queue.Post("/tasks/:id/skip", cfg.Queue.Skip)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle, auth.RequireManager())
	tasks.Get("/", cfg.TasksAdmin.List)
	tasks.Post("/deduplicate", cfg.TasksAdmin.RemoveDuplicates)
	tasks.Post("/:id/recover", cfg.TasksAdmin.Recover)
	tasks.Delete("/operator/:operatorId", cfg.TasksAdmin.ClearQueue)
	tasks.Delete("/:id", cfg.TasksAdmin.Delete)

	clients := app.Group("/clients", cfg.AuthMiddleware.Handle)
	clients.Get("/", cfg.Clients.List)
	clients.Post("/", cfg.Clients.Save)
	clients.Get("/:id", cfg.Clients.Get)

	app.Get("/calls", cfg.AuthMiddleware.Handle, auth.RequireManager(), cfg.Clients.Calls)

	questions := app.Group("/questions", cfg.AuthMiddleware.Handle)
	questions.Get("/", cfg.Questions.List)
	questions.Put("/:id", auth.RequireManager(), cfg.Questions.Save)
	questions.Delete("/:id", auth.RequireManager(), cfg.Questions.Delete)

	protocols := app.Group("/protocols", cfg.AuthMiddleware.Handle)
	protocols.Get("/", cfg.Protocols.List)
	protocols.Post("/", cfg.Protocols.Create)
	protocols.Get("/urgent", cfg.Protocols.Urgent)
	protocols.Get("/departments", cfg.Protocols.Departments)
	protocols.Get("/:id", cfg.Protocols.Get)
	protocols.Get("/:id/history", cfg.Protocols.History)
	protocols.Post("/:id/status", cfg.Protocols.ChangeStatus)
	protocols.Post("/:id/resolution", cfg.Protocols.SubmitResolution)
	protocols.Post("/:id/notes", cfg.Protocols.AddNote)
	protocols.Post("/:id/approve", auth.RequireManager(), cfg.Protocols.Approve)
	protocols.Post("/:id/reject", auth.RequireManager(), cfg.Protocols.Reject)
	protocols.Post("/:id/reassign", auth.RequireManager(), cfg.Protocols.Reassign)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle)
	reports.Get("/dashboard", cfg.Reports.Dashboard)
	reports.Get("/satisfaction", cfg.Reports.Satisfaction)
	reports.Get("/detailed", auth.RequireManager(), cfg.Reports.Detailed)
	reports.Get("/ranking", auth.RequireManager(), cfg.Reports.Ranking)
}
