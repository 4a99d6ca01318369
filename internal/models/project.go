package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"kouji-photo-backend/internal/delivery"
)

// ProjectPhoto is a row of project_photos.
type ProjectPhoto struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	UserID       uuid.UUID
	FileName     string
	StoragePath  string
	Category     string
	ShootingDate sql.NullString
	Title        sql.NullString
	ContentHash  string
	MimeType     string
	FileSize     int64
	CreatedAt    time.Time
}

// ExportRecord is a row of export_history.
type ExportRecord struct {
	ID              uuid.UUID
	ProjectID       uuid.UUID
	UserID          uuid.UUID
	OutputFormat    string
	StandardVersion string
	PhotoCount      int
	SkippedCount    int
	FileSize        sql.NullInt64
	Checksum        sql.NullString
	StoragePath     sql.NullString
	IsValid         bool
	ErrorCount      int
	WarningCount    int
	ProcessingMs    int64
	CreatedAt       time.Time
}

// ConstructionProject carries the contract fields used to default export metadata.
type ConstructionProject struct {
	ID                    string `json:"id"`
	ConstructionName      string `json:"construction_name"`
	ContractorName        string `json:"contractor_name"`
	OrdererName           string `json:"orderer_name"`
	ConstructionStartDate string `json:"construction_start_date"`
	ConstructionEndDate   string `json:"construction_end_date"`
}

// Delivery converts a catalog row into the export pipeline's photo shape.
// FilePath carries the storage path so missing bytes can be fetched.
func (p ProjectPhoto) Delivery() delivery.ProjectPhoto {
	return delivery.ProjectPhoto{
		ID:           p.ID.String(),
		FileName:     p.FileName,
		FilePath:     p.StoragePath,
		Category:     p.Category,
		ShootingDate: p.ShootingDate.String,
		Title:        p.Title.String,
	}
}
