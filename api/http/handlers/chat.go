package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/chat"
)

type ChatHandler struct {
	svc chat.UseCase
}

func NewChatHandler(svc chat.UseCase) *ChatHandler { return &ChatHandler{svc: svc} }

// CreateConversation opens a conversation, optionally with a first user message.
// @Summary Create conversation
// @Tags    chat
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body chat.CreateInput true "conversation"
// @Success 201 {object} chat.Detail
// @Router  /chat/conversations [post]
func (h *ChatHandler) CreateConversation(c *fiber.Ctx) error {
	var req chat.CreateInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
		}
	}
	detail, err := h.svc.Create(c.UserContext(), currentUser(c), req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, detail)
}

// ListConversations
// @Summary List conversations
// @Tags    chat
// @Produce json
// @Security BearerAuth
// @Param   limit  query int false "page size"
// @Param   offset query int false "offset"
// @Success 200 {array} chat.Conversation
// @Router  /chat/conversations [get]
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, chat.DefaultListLimit)
	items, err := h.svc.List(c.UserContext(), currentUser(c), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// GetConversation returns a conversation with its messages.
// @Summary Get conversation
// @Tags    chat
// @Produce json
// @Security BearerAuth
// @Param   id path string true "conversation id"
// @Success 200 {object} chat.Detail
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /chat/conversations/{id} [get]
func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid conversation id")
	}
	detail, err := h.svc.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, detail)
}

// UpdateConversation
// @Summary Rename, deactivate or annotate a conversation
// @Tags    chat
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id    path string           true "conversation id"
// @Param   input body chat.UpdateInput true "changes"
// @Success 200 {object} chat.Conversation
// @Router  /chat/conversations/{id} [put]
func (h *ChatHandler) UpdateConversation(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid conversation id")
	}
	var req chat.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	conv, err := h.svc.Update(c.UserContext(), currentUser(c), id, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, conv)
}

// DeleteConversation
// @Summary Delete conversation
// @Tags    chat
// @Security BearerAuth
// @Param   id path string true "conversation id"
// @Success 204
// @Router  /chat/conversations/{id} [delete]
func (h *ChatHandler) DeleteConversation(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid conversation id")
	}
	if err := h.svc.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return writeDomainError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Messages lists messages oldest first.
// @Summary List messages
// @Tags    chat
// @Produce json
// @Security BearerAuth
// @Param   id     path  string true  "conversation id"
// @Param   limit  query int    false "page size"
// @Param   offset query int    false "offset"
// @Success 200 {array} chat.Message
// @Router  /chat/conversations/{id}/messages [get]
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid conversation id")
	}
	limit, offset := parseLimitOffset(c, 50)
	msgs, err := h.svc.Messages(c.UserContext(), currentUser(c), id, limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, msgs)
}

type sendRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// Send posts a user message and returns the assistant reply.
// @Summary Send message
// @Tags    chat
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body sendRequest true "message"
// @Success 200 {object} chat.Message
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /chat/chat [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if raw := c.Params("id"); raw != "" {
		req.ConversationID = raw
	}
	id, err := uuid.Parse(req.ConversationID)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid conversation id")
	}
	msg, err := h.svc.Send(c.UserContext(), currentUser(c), id, req.Content)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, msg)
}
