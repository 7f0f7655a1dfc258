package document

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrForbidden   = errors.New("not authorized to access this document")
	ErrTooLarge    = errors.New("file too large")
	ErrUnsupported = errors.New("unsupported file format")
	ErrEmptyFile   = errors.New("file is empty")
)

type Type string

const (
	TypeBankStatement    Type = "bank_statement"
	TypeInvestmentReport Type = "investment_report"
	TypeTaxDocument      Type = "tax_document"
	TypeReceipt          Type = "receipt"
	TypeOther            Type = "other"
)

// ParseType maps unknown values to TypeOther.
func ParseType(s string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeBankStatement, TypeInvestmentReport, TypeTaxDocument, TypeReceipt:
		return t
	default:
		return TypeOther
	}
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type Document struct {
	ID            uuid.UUID      `json:"id"`
	UserID        string         `json:"user_id"`
	FileName      string         `json:"file_name"`
	StorageKey    string         `json:"-"`
	DocumentType  Type           `json:"document_type"`
	MimeType      string         `json:"mime_type"`
	FileSize      int64          `json:"file_size"`
	UploadedAt    time.Time      `json:"uploaded_at"`
	Status        Status         `json:"processing_status"`
	ExtractedData map[string]any `json:"extracted_data"`
	Metadata      map[string]any `json:"metadata"`
}

type Repository interface {
	Create(ctx context.Context, d Document) error
	Get(ctx context.Context, id uuid.UUID) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	Update(ctx context.Context, d Document) error
	// SetStatus records a processing transition; data replaces extracted_data when non-nil.
	SetStatus(ctx context.Context, id uuid.UUID, status Status, data map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}
