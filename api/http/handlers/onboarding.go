package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/onboarding"
)

type OnboardingHandler struct {
	svc onboarding.UseCase
}

func NewOnboardingHandler(svc onboarding.UseCase) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

type onboardingRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (r onboardingRequest) session() (uuid.UUID, bool) {
	id, err := uuid.Parse(r.SessionID)
	return id, err == nil
}

// Start opens a session and returns the first question.
// @Summary Start onboarding
// @Tags    onboarding
// @Produce json
// @Security BearerAuth
// @Success 200 {object} onboarding.Reply
// @Router  /onboard/start [post]
func (h *OnboardingHandler) Start(c *fiber.Ctx) error {
	reply, err := h.svc.Start(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, reply)
}

// Update records an answer and returns the next question.
// @Summary Answer onboarding question
// @Tags    onboarding
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body onboardingRequest true "answer"
// @Success 200 {object} onboarding.Reply
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /onboard/update [post]
func (h *OnboardingHandler) Update(c *fiber.Ctx) error {
	var req onboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	id, ok := req.session()
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid session_id")
	}
	reply, err := h.svc.Update(c.UserContext(), currentUser(c), id, req.Message)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, reply)
}

// Complete closes the session.
// @Summary Complete onboarding
// @Tags    onboarding
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body onboardingRequest true "session"
// @Success 200 {object} onboarding.Reply
// @Router  /onboard/complete [post]
func (h *OnboardingHandler) Complete(c *fiber.Ctx) error {
	var req onboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	id, ok := req.session()
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid session_id")
	}
	reply, err := h.svc.Complete(c.UserContext(), currentUser(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, reply)
}
