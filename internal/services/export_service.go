package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"kouji-photo-backend/internal/delivery"
	"kouji-photo-backend/internal/models"
	"kouji-photo-backend/internal/supabase"
)

var (
	ErrNotConfigured    = errors.New("backend not configured")
	ErrArchiveNotStored = errors.New("export archive was not stored")
)

const (
	fetchConcurrency = 4
	signedURLExpiry  = 3600
)

type ExportOptions struct {
	FetchMissingPhotos bool
	ArchiveUpload      bool
}

type ExportService struct {
	pipeline  *delivery.Pipeline
	validator *delivery.Validator
	catalog   ProjectCatalog
	photos    PhotoRepository
	exports   ExportRepository
	store     PhotoStore
	archives  ArchiveStore
	events    EventPublisher
	opts      ExportOptions
	logger    *slog.Logger
}

type ExportServiceDeps struct {
	Catalog  ProjectCatalog
	Photos   PhotoRepository
	Exports  ExportRepository
	Store    PhotoStore
	Archives ArchiveStore
	Events   EventPublisher
}

func NewExportService(validator *delivery.Validator, deps ExportServiceDeps, opts ExportOptions, logger *slog.Logger) *ExportService {
	if validator == nil {
		validator = delivery.NewValidator(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		pipeline:  delivery.NewPipeline(validator, logger),
		validator: validator,
		catalog:   deps.Catalog,
		photos:    deps.Photos,
		exports:   deps.Exports,
		store:     deps.Store,
		archives:  deps.Archives,
		events:    deps.Events,
		opts:      opts,
		logger:    logger,
	}
}

type ExportOutcome struct {
	Result   *delivery.Result
	ExportID string
}

// Export resolves catalog defaults and missing photo bytes, then runs the
// delivery pipeline. The returned error is the pipeline's: a
// *delivery.ValidationError, delivery.ErrDeliveryInvalid, or an internal failure.
func (s *ExportService) Export(ctx context.Context, projectID, userID string, req models.ExportRequest) (*ExportOutcome, error) {
	log := s.logger.With("project_id", projectID)
	pid, pidErr := uuid.Parse(projectID)

	s.applyProjectDefaults(log, projectID, &req.Metadata)

	if len(req.Photos) == 0 && s.photos != nil && pidErr == nil {
		rows, err := s.photos.ListPhotos(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("failed to load project photos: %w", err)
		}
		for _, row := range rows {
			req.Photos = append(req.Photos, row.Delivery())
		}
	}

	if req.Config.OutputFormat == delivery.OutputZip && s.opts.FetchMissingPhotos && s.store != nil {
		data, err := s.fetchMissingPhotos(ctx, log, req)
		if err != nil {
			return nil, err
		}
		req.PhotoData = data
	}

	var progress delivery.ProgressFunc
	if s.events != nil && pidErr == nil {
		progress = func(p delivery.Progress) {
			payload := supabase.ExportProgressPayload(pid, string(p.Step), p.Percent, p.Message)
			if err := s.events.PublishProjectEvent(ctx, pid, supabase.EventExportProgress, payload); err != nil {
				log.Debug("failed to publish export progress", "error", err)
			}
		}
	}

	res, err := s.pipeline.Run(ctx, delivery.Input{
		ProjectID: projectID,
		Metadata:  req.Metadata,
		Config:    req.Config,
		Photos:    req.Photos,
		PhotoData: req.PhotoData,
	}, progress)

	outcome := &ExportOutcome{Result: res}
	if err != nil {
		s.publish(ctx, pid, pidErr, supabase.EventExportFailed, supabase.ExportFailedPayload(pid, err.Error()))
		return outcome, err
	}

	if res.Format == delivery.OutputPreview || pidErr != nil {
		return outcome, nil
	}

	exportID := uuid.New()
	outcome.ExportID = exportID.String()
	if err := s.record(ctx, log, exportID, pid, userID, res); err != nil {
		log.Error("failed to record export", "export_id", exportID, "error", err)
	}
	s.publish(ctx, pid, pidErr, supabase.EventExportCompleted, supabase.ExportCompletedPayload(
		pid, exportID, string(res.Format), deliveredPhotos(res), res.ValidationResult != nil && res.ValidationResult.IsValid,
	))
	return outcome, nil
}

func (s *ExportService) applyProjectDefaults(log *slog.Logger, projectID string, meta *delivery.ExportMetadata) {
	if s.catalog == nil {
		return
	}
	if meta.ConstructionName != "" && meta.ContractorName != "" && meta.OrdererName != "" &&
		meta.ConstructionStartDate != "" && meta.ConstructionEndDate != "" {
		return
	}
	project, err := s.catalog.GetProject(projectID)
	if err != nil {
		log.Warn("failed to load project defaults", "error", err)
		return
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&meta.ConstructionName, project.ConstructionName)
	fill(&meta.ContractorName, project.ContractorName)
	fill(&meta.OrdererName, project.OrdererName)
	fill(&meta.ConstructionStartDate, project.ConstructionStartDate)
	fill(&meta.ConstructionEndDate, project.ConstructionEndDate)
}

// fetchMissingPhotos downloads the selected photos whose bytes the caller did
// not send. Download failures are logged and left for the pipeline to report
// as missing data.
func (s *ExportService) fetchMissingPhotos(ctx context.Context, log *slog.Logger, req models.ExportRequest) (map[string]string, error) {
	data := make(map[string]string, len(req.PhotoData))
	for k, v := range req.PhotoData {
		data[k] = v
	}

	var selected map[string]bool
	if req.Config.PhotoIDs != nil {
		selected = make(map[string]bool, len(req.Config.PhotoIDs))
		for _, id := range req.Config.PhotoIDs {
			selected[id] = true
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, p := range req.Photos {
		if selected != nil && !selected[p.ID] {
			continue
		}
		if _, ok := data[p.FileName]; ok || p.FilePath == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := s.store.DownloadPhoto(p.FilePath)
			if err != nil {
				log.Warn("failed to fetch photo", "photo_id", p.ID, "path", p.FilePath, "error", err)
				return nil
			}
			mu.Lock()
			data[p.FileName] = base64.StdEncoding.EncodeToString(b)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch photos: %w", err)
	}
	return data, nil
}

func (s *ExportService) record(ctx context.Context, log *slog.Logger, exportID, projectID uuid.UUID, userID string, res *delivery.Result) error {
	if s.exports == nil {
		return nil
	}
	uid, _ := uuid.Parse(userID)

	rec := &models.ExportRecord{
		ID:              exportID,
		ProjectID:       projectID,
		UserID:          uid,
		OutputFormat:    string(res.Format),
		PhotoCount:      deliveredPhotos(res),
		SkippedCount:    len(res.SkippedFiles),
		ProcessingMs:    res.ProcessingTime.Milliseconds(),
		IsValid:         res.ValidationResult != nil && res.ValidationResult.IsValid,
		StandardVersion: string(delivery.LatestStandard),
	}
	if res.ValidationReport != nil {
		rec.StandardVersion = res.ValidationReport.StandardVersion
	}
	if res.ValidationResult != nil {
		rec.ErrorCount = len(res.ValidationResult.Errors)
		rec.WarningCount = len(res.ValidationResult.Warnings)
	}

	if res.Archive != nil {
		sum := sha256.Sum256(res.Archive)
		rec.FileSize = sql.NullInt64{Int64: res.FileSize, Valid: true}
		rec.Checksum = sql.NullString{String: hex.EncodeToString(sum[:]), Valid: true}

		if s.opts.ArchiveUpload && s.archives != nil {
			path := supabase.ExportPath(projectID, exportID, res.ArchiveName)
			if err := s.archives.UploadExport(path, res.Archive); err != nil {
				log.Error("failed to upload export archive", "export_id", exportID, "error", err)
			} else {
				rec.StoragePath = sql.NullString{String: path, Valid: true}
			}
		}
	}

	return s.exports.CreateExportRecord(ctx, rec)
}

func deliveredPhotos(res *delivery.Result) int {
	if res.FolderStructure == nil {
		return 0
	}
	return len(res.FolderStructure.PhotoFiles)
}

func (s *ExportService) publish(ctx context.Context, pid uuid.UUID, pidErr error, event string, payload map[string]any) {
	if s.events == nil || pidErr != nil {
		return
	}
	if err := s.events.PublishProjectEvent(ctx, pid, event, payload); err != nil {
		s.logger.Debug("failed to publish event", "event", event, "error", err)
	}
}

// Validate checks a photo list without generating descriptors.
func (s *ExportService) Validate(req models.ValidateRequest) (delivery.ValidationResult, error) {
	std, err := delivery.LookupStandard(req.StandardVersion)
	if err != nil {
		return delivery.ValidationResult{}, err
	}
	return s.validator.ValidatePhotos(req.Photos, std), nil
}

func (s *ExportService) ListExports(ctx context.Context, projectID uuid.UUID) ([]models.ExportSummary, error) {
	if s.exports == nil {
		return nil, ErrNotConfigured
	}
	records, err := s.exports.ListExportRecords(ctx, projectID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.ExportSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, models.ExportSummary{
			ID:              r.ID.String(),
			OutputFormat:    r.OutputFormat,
			StandardVersion: r.StandardVersion,
			PhotoCount:      r.PhotoCount,
			SkippedCount:    r.SkippedCount,
			FileSize:        r.FileSize.Int64,
			Checksum:        r.Checksum.String,
			Archived:        r.StoragePath.Valid,
			IsValid:         r.IsValid,
			ErrorCount:      r.ErrorCount,
			WarningCount:    r.WarningCount,
			ProcessingMs:    r.ProcessingMs,
			CreatedAt:       r.CreatedAt,
		})
	}
	return summaries, nil
}

// DownloadURL signs the stored archive of a past zip export.
func (s *ExportService) DownloadURL(ctx context.Context, projectID, exportID uuid.UUID) (*models.DownloadURLResponse, error) {
	if s.exports == nil || s.archives == nil {
		return nil, ErrNotConfigured
	}
	rec, err := s.exports.GetExportRecord(ctx, projectID, exportID)
	if err != nil {
		return nil, err
	}
	if !rec.StoragePath.Valid {
		return nil, ErrArchiveNotStored
	}
	url, err := s.archives.SignedExportURL(rec.StoragePath.String, signedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &models.DownloadURLResponse{URL: url, ExpiresIn: signedURLExpiry}, nil
}
