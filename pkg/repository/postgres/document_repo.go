package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/finadvisor/pkg/document"
)

// DocumentRepository implements document.Repository.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id, user_id, file_name, storage_key, document_type, mime_type, file_size, uploaded_at,
	processing_status, extracted_data, metadata`

func scanDocument(row pgx.Row) (document.Document, error) {
	var d document.Document
	var docType, status string
	if err := row.Scan(&d.ID, &d.UserID, &d.FileName, &d.StorageKey, &docType, &d.MimeType, &d.FileSize,
		&d.UploadedAt, &status, &d.ExtractedData, &d.Metadata); err != nil {
		return document.Document{}, err
	}
	d.DocumentType = document.Type(docType)
	d.Status = document.Status(status)
	d.UploadedAt = d.UploadedAt.UTC()
	return d, nil
}

func (r *DocumentRepository) Create(ctx context.Context, d document.Document) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO documents (id, user_id, file_name, storage_key, document_type, mime_type, file_size, uploaded_at,
	processing_status, extracted_data, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, d.ID, d.UserID, d.FileName, d.StorageKey, string(d.DocumentType), d.MimeType, d.FileSize, d.UploadedAt,
		string(d.Status), jsonObject(d.ExtractedData), jsonObject(d.Metadata))
	return err
}

func (r *DocumentRepository) Get(ctx context.Context, id uuid.UUID) (document.Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, err
	}
	return d, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]document.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1
ORDER BY uploaded_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []document.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) Update(ctx context.Context, d document.Document) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE documents SET document_type = $2, metadata = $3 WHERE id = $1
`, d.ID, string(d.DocumentType), jsonObject(d.Metadata))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) SetStatus(ctx context.Context, id uuid.UUID, status document.Status, data map[string]any) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE documents
SET processing_status = $2, extracted_data = COALESCE($3, extracted_data)
WHERE id = $1
`, id, string(status), data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}
