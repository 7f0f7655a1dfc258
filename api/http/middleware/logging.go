package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvisor/pkg/metrics"
)

// RequestLogger logs one line per request and records it in m (which may be nil).
// The user is read from c.Locals("userId") after the handler ran.
func RequestLogger(log *slog.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app error handler write the response so the status is final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", elapsed,
		}
		if user, ok := c.Locals("userId").(string); ok && user != "" {
			attrs = append(attrs, "user_id", user)
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request", attrs...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
		m.ObserveRequest(c.Method(), route, status, elapsed)
		return nil
	}
}
