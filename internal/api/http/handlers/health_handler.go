package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pg    *persistence.Postgres
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	healthy := true

	if err := h.pg.Ping(c.Context()); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(c.Context()); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
