package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/metaprompt"
)

// MetaPromptSource is satisfied by *metaprompt.Builder.
type MetaPromptSource interface {
	Cached(ctx context.Context, userID string) (metaprompt.MetaPrompt, error)
	Generate(ctx context.Context, userID string) (metaprompt.MetaPrompt, error)
}

type MetaPromptHandler struct {
	src MetaPromptSource
}

func NewMetaPromptHandler(src MetaPromptSource) *MetaPromptHandler {
	return &MetaPromptHandler{src: src}
}

// Get returns the stored prompt, building it on first use.
// @Summary Current meta-prompt
// @Tags    meta-prompt
// @Produce json
// @Security BearerAuth
// @Success 200 {object} metaprompt.MetaPrompt
// @Router  /meta-prompt [get]
func (h *MetaPromptHandler) Get(c *fiber.Ctx) error {
	mp, err := h.src.Cached(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, mp)
}

// Generate rebuilds the prompt from the latest financial records.
// @Summary Regenerate meta-prompt
// @Tags    meta-prompt
// @Produce json
// @Security BearerAuth
// @Success 200 {object} metaprompt.MetaPrompt
// @Router  /meta-prompt/generate [post]
func (h *MetaPromptHandler) Generate(c *fiber.Ctx) error {
	mp, err := h.src.Generate(c.UserContext(), currentUser(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, mp)
}
