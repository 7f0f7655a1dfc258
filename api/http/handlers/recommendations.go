package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/recommendation"
)

type RecommendationHandler struct {
	svc recommendation.UseCase
}

func NewRecommendationHandler(svc recommendation.UseCase) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Recommend generates and stores a fresh set of product recommendations.
// @Summary Get recommendations
// @Tags    recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} recommendation.Record
// @Router  /recommendations [get]
func (h *RecommendationHandler) Recommend(c *fiber.Ctx) error {
	rec, err := h.svc.Recommend(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, rec)
}

// History
// @Summary Past recommendations
// @Tags    recommendations
// @Produce json
// @Security BearerAuth
// @Param   limit  query int false "page size (default 5)"
// @Param   offset query int false "offset"
// @Success 200 {array} recommendation.Record
// @Router  /recommendations/history [get]
func (h *RecommendationHandler) History(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 5)
	items, err := h.svc.History(c.UserContext(), currentUser(c), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Feedback rates a recommended product.
// @Summary Recommendation feedback
// @Tags    recommendations
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body recommendation.FeedbackInput true "feedback"
// @Success 200 {object} map[string]string
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /recommendations/feedback [post]
func (h *RecommendationHandler) Feedback(c *fiber.Ctx) error {
	var req recommendation.FeedbackInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if _, err := h.svc.Feedback(c.UserContext(), currentUser(c), req); err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"status": "success", "message": "Feedback recorded successfully"})
}
