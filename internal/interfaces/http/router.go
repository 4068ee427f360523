package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/agenda"
	"github.com/jhoicas/Agenda-api/internal/application/auth"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *usecase.UserUseCase
	SectorUC  *usecase.SectorUseCase
	AuditUC   *usecase.AuditUseCase
	EventUC   *agenda.EventUseCase
	Health    HealthChecker
	JWTSecret string
	AppName   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", NewHealthHandler(deps.AppName, deps.Health, 2*time.Second).Check)

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.AuthUC, deps.AuthUC))
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)

	// Usuarios
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
	users.Post("/:id/reset-password", RequirePermission(access.ResetPasswords), userHandler.ResetPassword)

	// Sectores
	sectors := protected.Group("/sectors")
	sectorHandler := NewSectorHandler(deps.SectorUC)
	sectors.Get("/", sectorHandler.List)
	sectors.Post("/", sectorHandler.Create)
	sectors.Get("/:id", sectorHandler.GetByID)
	sectors.Get("/:id/accessible", sectorHandler.Accessible)
	sectors.Put("/:id", sectorHandler.Update)
	sectors.Delete("/:id", sectorHandler.Delete)

	// Eventos (las rutas fijas antes de /:id)
	events := protected.Group("/events")
	eventHandler := NewEventHandler(deps.EventUC)
	events.Get("/", eventHandler.List)
	events.Get("/board", eventHandler.Board)
	events.Get("/calendar", eventHandler.Calendar)
	events.Get("/export.pdf", eventHandler.ExportPDF)
	events.Post("/conflicts", eventHandler.CheckConflicts)
	events.Post("/", eventHandler.Create)
	events.Get("/:id", eventHandler.GetByID)
	events.Put("/:id", eventHandler.Update)
	events.Patch("/:id/status", eventHandler.ChangeStatus)
	events.Delete("/:id", eventHandler.Delete)
	protected.Get("/event-types", eventHandler.EventTypes)

	// Bitácora
	protected.Get("/audit", RequirePermission(access.ViewLogs), NewAuditHandler(deps.AuditUC).List)
}
