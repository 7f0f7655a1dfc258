package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvisor/pkg/health"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc      health.ReadinessUseCase
	provider string
}

func NewHealthHandler(svc health.ReadinessUseCase, provider string) *HealthHandler {
	return &HealthHandler{svc: svc, provider: provider}
}

// Health: basic liveness check.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok", "llm_provider": h.provider})
}

// Ready: readiness check with dependency pings.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	components := fiber.Map{}
	ready := true
	for name, err := range h.svc.Components(ctx) {
		if err != nil {
			ready = false
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}
	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":     "not_ready",
			"components": components,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ready", "components": components})
}
