package services_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"kouji-photo-backend/internal/models"
	"kouji-photo-backend/internal/supabase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jpegBytes(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(x * 30), B: uint8(y * 30), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

type fakeCatalog struct {
	project *models.ConstructionProject
	err     error
	calls   int
}

func (f *fakeCatalog) GetProject(projectID string) (*models.ConstructionProject, error) {
	f.calls++
	return f.project, f.err
}

type fakeRepo struct {
	mu        sync.Mutex
	photos    []models.ProjectPhoto
	exports   []models.ExportRecord
	createErr error
}

func (f *fakeRepo) CreatePhoto(ctx context.Context, p *models.ProjectPhoto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	p.CreatedAt = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	f.photos = append(f.photos, *p)
	return nil
}

func (f *fakeRepo) FindPhotoByHash(ctx context.Context, projectID uuid.UUID, hash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.photos {
		if p.ProjectID == projectID && p.ContentHash == hash {
			return p.ID, nil
		}
	}
	return uuid.Nil, nil
}

func (f *fakeRepo) ListPhotos(ctx context.Context, projectID uuid.UUID) ([]models.ProjectPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProjectPhoto
	for _, p := range f.photos {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateExportRecord(ctx context.Context, r *models.ExportRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.CreatedAt = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	f.exports = append(f.exports, *r)
	return nil
}

func (f *fakeRepo) ListExportRecords(ctx context.Context, projectID uuid.UUID) ([]models.ExportRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ExportRecord
	for _, r := range f.exports {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetExportRecord(ctx context.Context, projectID, exportID uuid.UUID) (*models.ExportRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.exports {
		if r.ProjectID == projectID && r.ID == exportID {
			rec := r
			return &rec, nil
		}
	}
	return nil, supabase.ErrExportNotFound
}

type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	archives map[string][]byte
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, archives: map[string][]byte{}}
}

func (f *fakeStore) UploadPhoto(path, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = data
	return nil
}

func (f *fakeStore) DownloadPhoto(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return b, nil
}

func (f *fakeStore) DeletePhoto(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeStore) UploadExport(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archives[path] = data
	return nil
}

func (f *fakeStore) SignedExportURL(path string, expiresIn int) (string, error) {
	return "https://storage.example/" + path + "?token=signed", nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeEvents) PublishProjectEvent(ctx context.Context, projectID uuid.UUID, event string, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}
