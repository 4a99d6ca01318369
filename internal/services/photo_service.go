package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"kouji-photo-backend/internal/delivery"
	"kouji-photo-backend/internal/models"
	"kouji-photo-backend/internal/supabase"
)

var (
	ErrDuplicatePhoto   = errors.New("duplicate")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrEmptyUpload      = errors.New("empty upload")
)

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type PhotoService struct {
	repo   PhotoRepository
	store  PhotoStore
	events EventPublisher
	logger *slog.Logger
}

func NewPhotoService(repo PhotoRepository, store PhotoStore, events EventPublisher, logger *slog.Logger) *PhotoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhotoService{repo: repo, store: store, events: events, logger: logger}
}

type UploadPhotoInput struct {
	ProjectID    uuid.UUID
	UserID       uuid.UUID
	FileName     string
	Category     string
	ShootingDate string
	Title        string
	Data         []byte
}

// Upload stores the bytes and catalogs them. Identical content already in
// the project returns ErrDuplicatePhoto.
func (s *PhotoService) Upload(ctx context.Context, in UploadPhotoInput) (*models.ProjectPhoto, error) {
	if s.repo == nil || s.store == nil {
		return nil, ErrNotConfigured
	}
	if len(in.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	mimeType := http.DetectContentType(in.Data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}

	sum := sha256.Sum256(in.Data)
	hash := hex.EncodeToString(sum[:])
	existing, err := s.repo.FindPhotoByHash(ctx, in.ProjectID, hash)
	if err != nil {
		return nil, err
	}
	if existing != uuid.Nil {
		return nil, ErrDuplicatePhoto
	}

	photo := &models.ProjectPhoto{
		ID:           uuid.New(),
		ProjectID:    in.ProjectID,
		UserID:       in.UserID,
		FileName:     filepath.Base(in.FileName),
		Category:     normalizeCategory(in.Category),
		ShootingDate: nullString(in.ShootingDate),
		Title:        nullString(in.Title),
		ContentHash:  hash,
		MimeType:     mimeType,
		FileSize:     int64(len(in.Data)),
	}
	photo.StoragePath = supabase.PhotoPath(in.ProjectID, photo.ID, photoExtension(photo.FileName, mimeType))

	if err := s.store.UploadPhoto(photo.StoragePath, mimeType, in.Data); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePhoto(ctx, photo); err != nil {
		if delErr := s.store.DeletePhoto(photo.StoragePath); delErr != nil {
			s.logger.Warn("failed to remove orphaned photo", "path", photo.StoragePath, "error", delErr)
		}
		if errors.Is(err, supabase.ErrPhotoExists) {
			return nil, ErrDuplicatePhoto
		}
		return nil, err
	}

	s.logger.Info("photo uploaded", "project_id", in.ProjectID, "photo_id", photo.ID, "size", photo.FileSize)
	if s.events != nil {
		payload := supabase.PhotoUploadedPayload(in.ProjectID, photo.ID, photo.FileName)
		if err := s.events.PublishProjectEvent(ctx, in.ProjectID, supabase.EventPhotoUploaded, payload); err != nil {
			s.logger.Debug("failed to publish photo event", "error", err)
		}
	}
	return photo, nil
}

func (s *PhotoService) List(ctx context.Context, projectID uuid.UUID) ([]models.PhotoResponse, error) {
	if s.repo == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.repo.ListPhotos(ctx, projectID)
	if err != nil {
		return nil, err
	}
	photos := make([]models.PhotoResponse, 0, len(rows))
	for _, row := range rows {
		photos = append(photos, models.PhotoResponse{
			ProjectPhoto: row.Delivery(),
			ContentHash:  row.ContentHash,
			FileSize:     row.FileSize,
			MimeType:     row.MimeType,
			CreatedAt:    row.CreatedAt,
		})
	}
	return photos, nil
}

// normalizeCategory stores known categories by their label. Unknown values
// are kept as given and reported when exported.
func normalizeCategory(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return delivery.CategoryOther.Label
	}
	if c, ok := delivery.LookupCategory(v); ok {
		return c.Label
	}
	return v
}

func photoExtension(fileName, mimeType string) string {
	if ext := filepath.Ext(fileName); ext != "" {
		return ext
	}
	return extensionsByType[mimeType]
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
