package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"kouji-photo-backend/internal/config"
	"kouji-photo-backend/internal/handlers"
	"kouji-photo-backend/internal/middleware"
	"kouji-photo-backend/internal/models"
	"kouji-photo-backend/internal/services"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

var testUserID = uuid.MustParse("33333333-3333-3333-3333-333333333333")

type memoryBackend struct {
	mu      sync.Mutex
	photos  []models.ProjectPhoto
	objects map[string][]byte
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: map[string][]byte{}}
}

func (m *memoryBackend) CreatePhoto(ctx context.Context, p *models.ProjectPhoto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	m.photos = append(m.photos, *p)
	return nil
}

func (m *memoryBackend) FindPhotoByHash(ctx context.Context, projectID uuid.UUID, hash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.photos {
		if p.ProjectID == projectID && p.ContentHash == hash {
			return p.ID, nil
		}
	}
	return uuid.Nil, nil
}

func (m *memoryBackend) ListPhotos(ctx context.Context, projectID uuid.UUID) ([]models.ProjectPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProjectPhoto
	for _, p := range m.photos {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryBackend) UploadPhoto(path, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return nil
}

func (m *memoryBackend) DownloadPhoto(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[path], nil
}

func (m *memoryBackend) DeletePhoto(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

// newRouter mirrors the /api routes registered by cmd/server.
func newRouter(t *testing.T, backend *memoryBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	exportDeps := services.ExportServiceDeps{}
	var photoSvc *services.PhotoService
	if backend != nil {
		exportDeps.Photos = backend
		exportDeps.Store = backend
		photoSvc = services.NewPhotoService(backend, backend, nil, logger)
	} else {
		photoSvc = services.NewPhotoService(nil, nil, nil, logger)
	}
	exportSvc := services.NewExportService(nil, exportDeps, services.ExportOptions{FetchMissingPhotos: true}, logger)

	exportHandler := handlers.NewExportHandler(exportSvc, logger)
	photosHandler := handlers.NewPhotosHandler(photoSvc, 1<<20, logger)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(&config.Config{SupabaseJWTSecret: testSecret}))
	api.POST("/projects/:project_id/export/electronic-delivery", exportHandler.Export)
	api.PUT("/projects/:project_id/export/electronic-delivery", exportHandler.Validate)
	api.GET("/projects/:project_id/exports", exportHandler.ListExports)
	api.GET("/projects/:project_id/exports/:export_id/download", exportHandler.DownloadExport)
	api.POST("/projects/:project_id/photos", photosHandler.Upload)
	api.GET("/projects/:project_id/photos", photosHandler.List)
	return router
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUserID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
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
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
