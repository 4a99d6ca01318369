package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"kouji-photo-backend/internal/database"
	"kouji-photo-backend/internal/models"
)

var (
	ErrPhotoExists    = errors.New("photo with identical content already exists")
	ErrExportNotFound = errors.New("export not found")
)

const uniqueViolation = "23505"

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

// CreatePhoto inserts a catalog row. A second upload of the same bytes into
// the same project returns ErrPhotoExists.
func (d *DatabaseClient) CreatePhoto(ctx context.Context, p *models.ProjectPhoto) error {
	err := d.db.QueryRowContext(ctx, database.InsertPhoto,
		p.ID, p.ProjectID, p.UserID, p.FileName, p.StoragePath, p.Category,
		p.ShootingDate, p.Title, p.ContentHash, p.MimeType, p.FileSize,
	).Scan(&p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrPhotoExists
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// FindPhotoByHash returns the id of an existing photo with the given content
// hash, or uuid.Nil when there is none.
func (d *DatabaseClient) FindPhotoByHash(ctx context.Context, projectID uuid.UUID, hash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := d.db.QueryRowContext(ctx, database.SelectPhotoByHash, projectID, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up photo hash: %w", err)
	}
	return id, nil
}

func (d *DatabaseClient) ListPhotos(ctx context.Context, projectID uuid.UUID) ([]models.ProjectPhoto, error) {
	rows, err := d.db.QueryContext(ctx, database.SelectPhotos, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []models.ProjectPhoto
	for rows.Next() {
		var p models.ProjectPhoto
		if err := rows.Scan(
			&p.ID, &p.ProjectID, &p.UserID, &p.FileName, &p.StoragePath, &p.Category,
			&p.ShootingDate, &p.Title, &p.ContentHash, &p.MimeType, &p.FileSize, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (d *DatabaseClient) CreateExportRecord(ctx context.Context, r *models.ExportRecord) error {
	err := d.db.QueryRowContext(ctx, database.InsertExport,
		r.ID, r.ProjectID, r.UserID, r.OutputFormat, r.StandardVersion, r.PhotoCount, r.SkippedCount,
		r.FileSize, r.Checksum, r.StoragePath, r.IsValid, r.ErrorCount, r.WarningCount, r.ProcessingMs,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListExportRecords(ctx context.Context, projectID uuid.UUID) ([]models.ExportRecord, error) {
	rows, err := d.db.QueryContext(ctx, database.SelectExports, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var records []models.ExportRecord
	for rows.Next() {
		r, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func (d *DatabaseClient) GetExportRecord(ctx context.Context, projectID, exportID uuid.UUID) (*models.ExportRecord, error) {
	r, err := scanExport(d.db.QueryRowContext(ctx, database.SelectExport, projectID, exportID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExportNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*models.ExportRecord, error) {
	var r models.ExportRecord
	err := s.Scan(
		&r.ID, &r.ProjectID, &r.UserID, &r.OutputFormat, &r.StandardVersion, &r.PhotoCount, &r.SkippedCount,
		&r.FileSize, &r.Checksum, &r.StoragePath, &r.IsValid, &r.ErrorCount, &r.WarningCount, &r.ProcessingMs,
		&r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}
	return &r, nil
}
