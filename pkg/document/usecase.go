package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/pkg/storage/blob"
)

const (
	DefaultMaxBytes     = 10 << 20
	DefaultListLimit    = 20
	processTimeout      = 2 * time.Minute
	storageKeyTimestamp = "20060102_150405"
)

type UploadInput struct {
	FileName     string
	ContentType  string
	DocumentType string
	Metadata     map[string]any
	Data         []byte
}

type UpdateInput struct {
	DocumentType *string       `json:"document_type"`
	Metadata     map[string]any `json:"metadata"`
}

type UseCase interface {
	Upload(ctx context.Context, userID string, in UploadInput) (Document, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (Document, error)
	Content(ctx context.Context, userID string, id uuid.UUID) (Document, []byte, error)
	Update(ctx context.Context, userID string, id uuid.UUID, in UpdateInput) (Document, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	Process(ctx context.Context, id uuid.UUID) error
	// Wait blocks until background processing started so far has finished.
	Wait()
}

type service struct {
	repo     Repository
	blobs    blob.Store
	maxBytes int64
	log      *slog.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

type Option func(*service)

func WithMaxBytes(n int64) Option {
	return func(s *service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func NewService(repo Repository, blobs blob.Store, opts ...Option) UseCase {
	s := &service{
		repo:     repo,
		blobs:    blobs,
		maxBytes: DefaultMaxBytes,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// storageKey is unique per document; the id keeps same-second uploads of one file name apart.
func storageKey(userID string, id uuid.UUID, at time.Time, fileName string) string {
	name := unsafeName.ReplaceAllString(filepath.Base(fileName), "_")
	name = strings.Trim(name, ".")
	if name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s_%s_%s", unsafeName.ReplaceAllString(userID, "_"), at.Format(storageKeyTimestamp), id, name)
}

func (s *service) Upload(ctx context.Context, userID string, in UploadInput) (Document, error) {
	size := int64(len(in.Data))
	switch {
	case size == 0:
		return Document{}, ErrEmptyFile
	case size > s.maxBytes:
		return Document{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	case !Supported(in.FileName):
		return Document{}, fmt.Errorf("%w: only pdf, docx, txt, csv and md are allowed", ErrUnsupported)
	}

	now := s.now()
	id := uuid.New()
	doc := Document{
		ID:            id,
		UserID:        userID,
		FileName:      filepath.Base(in.FileName),
		StorageKey:    storageKey(userID, id, now, in.FileName),
		DocumentType:  ParseType(in.DocumentType),
		MimeType:      in.ContentType,
		FileSize:      size,
		UploadedAt:    now,
		Status:        StatusPending,
		ExtractedData: map[string]any{},
		Metadata:      in.Metadata,
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}

	if err := s.blobs.Put(ctx, doc.StorageKey, in.Data, in.ContentType); err != nil {
		return Document{}, fmt.Errorf("store file: %w", err)
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if delErr := s.blobs.Delete(ctx, doc.StorageKey); delErr != nil {
			s.log.Warn("remove orphaned blob", "key", doc.StorageKey, "error", delErr)
		}
		return Document{}, fmt.Errorf("save document: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if err := s.Process(pctx, doc.ID); err != nil {
			s.log.Error("document processing failed", "document_id", doc.ID, "error", err)
		}
	}()
	return doc, nil
}

// Process extracts text from a stored document and records the outcome.
// Extraction problems mark the document failed and are returned.
func (s *service) Process(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, id, StatusProcessing, nil); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	extracted, err := s.extract(ctx, doc)
	if err != nil {
		if setErr := s.repo.SetStatus(ctx, id, StatusFailed, map[string]any{"error": err.Error()}); setErr != nil {
			return errors.Join(err, setErr)
		}
		return err
	}
	data := extracted.Map()
	data["processing_completed"] = s.now().Format(time.RFC3339)
	if err := s.repo.SetStatus(ctx, id, StatusCompleted, data); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	s.log.Info("document processed", "document_id", id, "characters", extracted.Characters, "amounts", len(extracted.Amounts))
	return nil
}

func (s *service) extract(ctx context.Context, doc Document) (Extracted, error) {
	data, err := s.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		return Extracted{}, fmt.Errorf("read file: %w", err)
	}
	text, err := ExtractText(doc.FileName, data)
	if err != nil {
		return Extracted{}, fmt.Errorf("extract text: %w", err)
	}
	return Analyze(text), nil
}

func (s *service) Wait() { s.wg.Wait() }

func (s *service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) Get(ctx context.Context, userID string, id uuid.UUID) (Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

func (s *service) Content(ctx context.Context, userID string, id uuid.UUID) (Document, []byte, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return Document{}, nil, err
	}
	data, err := s.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return Document{}, nil, ErrNotFound
		}
		return Document{}, nil, err
	}
	return doc, data, nil
}

func (s *service) Update(ctx context.Context, userID string, id uuid.UUID, in UpdateInput) (Document, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if in.DocumentType != nil {
		doc.DocumentType = ParseType(*in.DocumentType)
	}
	if in.Metadata != nil {
		doc.Metadata = in.Metadata
	}
	if err := s.repo.Update(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

func (s *service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
