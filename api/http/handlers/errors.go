package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/auth"
	"github.com/artem13815/finadvisor/pkg/chat"
	"github.com/artem13815/finadvisor/pkg/document"
	"github.com/artem13815/finadvisor/pkg/financial"
	"github.com/artem13815/finadvisor/pkg/metaprompt"
	"github.com/artem13815/finadvisor/pkg/onboarding"
	"github.com/artem13815/finadvisor/pkg/recommendation"
)

// writeDomainError maps use-case errors onto HTTP statuses. Anything not
// recognised is logged and reported as a generic 500.
func writeDomainError(c *fiber.Ctx, err error) error {
	var (
		finValidation  financial.ErrValidation
		authValidation auth.ErrValidation
	)
	switch {
	case errors.Is(err, chat.ErrNotFound),
		errors.Is(err, document.ErrNotFound),
		errors.Is(err, financial.ErrNotFound),
		errors.Is(err, metaprompt.ErrNotFound),
		errors.Is(err, onboarding.ErrNotFound),
		errors.Is(err, recommendation.ErrNotFound),
		errors.Is(err, auth.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrForbidden),
		errors.Is(err, document.ErrForbidden),
		errors.Is(err, financial.ErrForbidden),
		errors.Is(err, onboarding.ErrForbidden),
		errors.Is(err, auth.ErrInactive):
		return presenter.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return presenter.Error(c, http.StatusUnauthorized, "incorrect user ID or password")
	case errors.Is(err, auth.ErrUserAlreadyExists):
		return presenter.Error(c, http.StatusConflict, "user already exists")
	case errors.Is(err, document.ErrTooLarge):
		return presenter.Error(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, document.ErrUnsupported):
		return presenter.Error(c, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, chat.ErrEmpty),
		errors.Is(err, onboarding.ErrEmpty),
		errors.Is(err, document.ErrEmptyFile),
		errors.Is(err, recommendation.ErrInvalidRating),
		errors.Is(err, recommendation.ErrProductName),
		errors.As(err, &finValidation),
		errors.As(err, &authValidation):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return presenter.Error(c, http.StatusInternalServerError, "internal server error")
	}
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals("userId").(string)
	return id
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
