package services

import (
	"context"

	"github.com/google/uuid"
	"kouji-photo-backend/internal/models"
)

// The services depend on these narrow views of the Supabase clients. Any of
// them may be nil when the corresponding backend is not configured.

type ProjectCatalog interface {
	GetProject(projectID string) (*models.ConstructionProject, error)
}

type PhotoRepository interface {
	CreatePhoto(ctx context.Context, p *models.ProjectPhoto) error
	FindPhotoByHash(ctx context.Context, projectID uuid.UUID, hash string) (uuid.UUID, error)
	ListPhotos(ctx context.Context, projectID uuid.UUID) ([]models.ProjectPhoto, error)
}

type ExportRepository interface {
	CreateExportRecord(ctx context.Context, r *models.ExportRecord) error
	ListExportRecords(ctx context.Context, projectID uuid.UUID) ([]models.ExportRecord, error)
	GetExportRecord(ctx context.Context, projectID, exportID uuid.UUID) (*models.ExportRecord, error)
}

type PhotoStore interface {
	UploadPhoto(storagePath, contentType string, data []byte) error
	DownloadPhoto(storagePath string) ([]byte, error)
	DeletePhoto(storagePath string) error
}

type ArchiveStore interface {
	UploadExport(storagePath string, data []byte) error
	SignedExportURL(storagePath string, expiresIn int) (string, error)
}

type EventPublisher interface {
	PublishProjectEvent(ctx context.Context, projectID uuid.UUID, event string, payload map[string]any) error
}
