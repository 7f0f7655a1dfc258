package document

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/storage/blob"
)

type memRepo struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]Document
	statuses map[uuid.UUID][]Status
}

func newMemRepo() *memRepo {
	return &memRepo{docs: map[uuid.UUID]Document{}, statuses: map[uuid.UUID][]Status{}}
}

func (m *memRepo) Create(_ context.Context, d Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[d.ID] = d
	m.statuses[d.ID] = []Status{d.Status}
	return nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Document
	for _, d := range m.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, d Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[d.ID] = d
	return nil
}

func (m *memRepo) SetStatus(_ context.Context, id uuid.UUID, st Status, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = st
	if data != nil {
		d.ExtractedData = data
	}
	m.docs[id] = d
	m.statuses[id] = append(m.statuses[id], st)
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func newTestService(t *testing.T, opts ...Option) (UseCase, *memRepo, *blob.Local) {
	t.Helper()
	store, err := blob.NewLocal(t.TempDir())
	require.NoError(t, err)
	repo := newMemRepo()
	opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewService(repo, store, opts...), repo, store
}

func TestUploadProcessesInBackground(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "u1", UploadInput{
		FileName:     "march statement.txt",
		ContentType:  "text/plain",
		DocumentType: "bank_statement",
		Data:         []byte("Opening $100.00\nGroceries -42.10"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, doc.Status)
	assert.Equal(t, TypeBankStatement, doc.DocumentType)
	assert.Regexp(t, `^u1/\d{8}_\d{6}_[0-9a-f-]{36}_march_statement\.txt$`, doc.StorageKey)

	svc.Wait()

	got, err := svc.Get(ctx, "u1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 2, got.ExtractedData["lines"])
	assert.InDelta(t, 57.90, got.ExtractedData["total"], 1e-9)
	assert.Equal(t, []Status{StatusPending, StatusProcessing, StatusCompleted}, repo.statuses[doc.ID])

	stored, err := store.Get(ctx, doc.StorageKey)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stored), "Opening"))
}

func TestSameSecondUploadsKeepSeparateBlobs(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	svc, _, store := newTestService(t, WithClock(func() time.Time { return at }))
	ctx := context.Background()

	first, err := svc.Upload(ctx, "u1", UploadInput{FileName: "notes.txt", Data: []byte("first")})
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "u1", UploadInput{FileName: "notes.txt", Data: []byte("second")})
	require.NoError(t, err)
	svc.Wait()
	require.NotEqual(t, first.StorageKey, second.StorageKey)

	require.NoError(t, svc.Delete(ctx, "u1", first.ID))
	stored, err := store.Get(ctx, second.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "second", string(stored))
}

func TestProcessMarksFailedOnBadContent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "u1", UploadInput{FileName: "scan.pdf", Data: []byte("garbage")})
	require.NoError(t, err)
	svc.Wait()

	got, err := svc.Get(ctx, "u1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.ExtractedData, "error")
}

func TestUploadValidation(t *testing.T) {
	svc, _, _ := newTestService(t, WithMaxBytes(8))
	ctx := context.Background()

	_, err := svc.Upload(ctx, "u1", UploadInput{FileName: "a.txt"})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Upload(ctx, "u1", UploadInput{FileName: "a.txt", Data: []byte("123456789")})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = svc.Upload(ctx, "u1", UploadInput{FileName: "a.exe", Data: []byte("MZ")})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDocumentOwnership(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "owner", UploadInput{FileName: "r.txt", Data: []byte("$5.00")})
	require.NoError(t, err)
	svc.Wait()

	_, err = svc.Get(ctx, "intruder", doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.Content(ctx, "intruder", doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "intruder", doc.ID), ErrForbidden)

	receipt := "receipt"
	updated, err := svc.Update(ctx, "owner", doc.ID, UpdateInput{DocumentType: &receipt})
	require.NoError(t, err)
	assert.Equal(t, TypeReceipt, updated.DocumentType)

	require.NoError(t, svc.Delete(ctx, "owner", doc.ID))
	_, err = store.Get(ctx, doc.StorageKey)
	assert.ErrorIs(t, err, blob.ErrNotFound)
	_, err = svc.Get(ctx, "owner", doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
