package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvisor/api/http/presenter"
	"github.com/artem13815/finadvisor/pkg/document"
)

type DocumentHandler struct {
	svc      document.UseCase
	maxBytes int64
}

func NewDocumentHandler(svc document.UseCase, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = document.DefaultMaxBytes
	}
	return &DocumentHandler{svc: svc, maxBytes: maxBytes}
}

// Upload stores a file and schedules text extraction.
// @Summary Upload document
// @Tags    documents
// @Accept  multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param   file          formData file   true  "pdf, docx, txt, csv or md"
// @Param   document_type formData string false "bank_statement, tax_document, investment_statement, ..."
// @Param   metadata      formData string false "JSON object"
// @Success 201 {object} document.Document
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 413 {object} presenter.ErrorResponse
// @Failure 415 {object} presenter.ErrorResponse
// @Router  /documents/upload [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required")
	}
	if !document.Supported(fh.Filename) {
		return writeDomainError(c, document.ErrUnsupported)
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		return writeDomainError(c, err)
	}
	var meta map[string]any
	if raw := strings.TrimSpace(c.FormValue("metadata")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "metadata must be a JSON object")
		}
	}
	doc, err := h.svc.Upload(c.UserContext(), currentUser(c), document.UploadInput{
		FileName:     fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		DocumentType: c.FormValue("document_type"),
		Metadata:     meta,
		Data:         data,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, doc)
}

// List
// @Summary List documents
// @Tags    documents
// @Produce json
// @Security BearerAuth
// @Param   limit  query int false "page size"
// @Param   offset query int false "offset"
// @Success 200 {array} document.Document
// @Router  /documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, document.DefaultListLimit)
	docs, err := h.svc.List(c.UserContext(), currentUser(c), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, docs)
}

// Get
// @Summary Get document metadata and extraction result
// @Tags    documents
// @Produce json
// @Security BearerAuth
// @Param   id path string true "document id"
// @Success 200 {object} document.Document
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	doc, err := h.svc.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, doc)
}

// Content streams the stored file back.
// @Summary Download document
// @Tags    documents
// @Produce octet-stream
// @Security BearerAuth
// @Param   id path string true "document id"
// @Success 200 {file} file
// @Router  /documents/{id}/content [get]
func (h *DocumentHandler) Content(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	doc, data, err := h.svc.Content(c.UserContext(), currentUser(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	if doc.MimeType != "" {
		c.Set(fiber.HeaderContentType, doc.MimeType)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Status(http.StatusOK).Send(data)
}

// Update
// @Summary Update document type or metadata
// @Tags    documents
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id    path string               true "document id"
// @Param   input body document.UpdateInput true "changes"
// @Success 200 {object} document.Document
// @Router  /documents/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	var req document.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	doc, err := h.svc.Update(c.UserContext(), currentUser(c), id, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, doc)
}

// Delete removes the record and the stored file.
// @Summary Delete document
// @Tags    documents
// @Security BearerAuth
// @Param   id path string true "document id"
// @Success 204
// @Router  /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	if err := h.svc.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return writeDomainError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%w: limit is %d bytes", document.ErrTooLarge, max)
	}
	return b, nil
}
