package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker lo implementa *pgxpool.Pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler estado del servicio y de la base de datos.
type HealthHandler struct {
	app     string
	db      HealthChecker
	timeout time.Duration
}

// NewHealthHandler construye el handler. db nil omite el chequeo de base de datos.
func NewHealthHandler(app string, db HealthChecker, timeout time.Duration) *HealthHandler {
	return &HealthHandler{app: app, db: db, timeout: timeout}
}

// Check GET /health: 200 si la base responde, 503 si no.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if h.db == nil {
		return c.JSON(fiber.Map{"status": "ok", "service": h.app})
	}
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": h.app, "database": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "service": h.app, "database": "ok"})
}
