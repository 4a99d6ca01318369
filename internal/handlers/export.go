package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kouji-photo-backend/internal/delivery"
	"kouji-photo-backend/internal/middleware"
	"kouji-photo-backend/internal/models"
	"kouji-photo-backend/internal/services"
	"kouji-photo-backend/internal/supabase"
)

type ExportHandler struct {
	service *services.ExportService
	logger  *slog.Logger
}

func NewExportHandler(service *services.ExportService, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{service: service, logger: logger}
}

// Export godoc
// @Summary     Generate an electronic delivery package
// @Description Builds PHOTO.XML and INDEX_D.XML for the selected photos and validates them.
// @Description
// @Description **Output formats:**
// @Description - `preview` (default): JSON with descriptors, folder structure and validation result
// @Description - `folder`: as preview, plus the delivery file mapping
// @Description - `zip`: binary archive `<root>/INDEX_D.XML`, `<root>/PHOTO.XML`, `<root>/PIC/*`
// @Description
// @Description Photo bytes for zip output come from `photoData` (base64 keyed by file name).
// @Description Photos missing there are fetched from storage when the server allows it.
// @Tags        export
// @Accept      json
// @Produce     json
// @Produce     application/zip
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.ExportRequest true "Export request"
// @Success     200 {object} models.ExportResponse
// @Header      200 {string} X-Skipped-Files "zip only: percent-encoded original names of photos left out, comma separated"
// @Header      200 {integer} X-Validation-Warnings "zip only: number of validation warnings"
// @Failure     400 {object} models.ExportResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     422 {object} models.ExportResponse
// @Failure     500 {object} models.ExportResponse
// @Router      /projects/{project_id}/export/electronic-delivery [post]
func (h *ExportHandler) Export(c *gin.Context) {
	started := time.Now()
	projectID := c.Param("project_id")

	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ExportResponse{
			Success:     false,
			Error:       fmt.Sprintf("invalid request body: %v", err),
			CurrentStep: string(delivery.StepFailed),
		})
		return
	}

	out, err := h.service.Export(c.Request.Context(), projectID, middleware.UserID(c), req)
	elapsed := time.Since(started).Milliseconds()

	var verr *delivery.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ExportResponse{
			Success:          false,
			ProcessingTimeMs: elapsed,
			Error:            verr.Error(),
			Code:             verr.Code,
			Field:            verr.Field,
			CurrentStep:      string(delivery.StepFailed),
		})
		return
	case errors.Is(err, delivery.ErrDeliveryInvalid):
		c.JSON(http.StatusUnprocessableEntity, models.ExportResponse{
			Success:          false,
			Data:             exportData(out),
			ProcessingTimeMs: elapsed,
			Error:            err.Error(),
			CurrentStep:      string(delivery.StepFailed),
		})
		return
	case err != nil:
		h.logger.Error("export failed", "project_id", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, models.ExportResponse{
			Success:          false,
			ProcessingTimeMs: elapsed,
			Error:            err.Error(),
			CurrentStep:      string(delivery.StepFailed),
		})
		return
	}

	res := out.Result
	h.logger.Info("export completed",
		"project_id", projectID,
		"format", res.Format,
		"export_id", out.ExportID,
		"valid", res.ValidationResult != nil && res.ValidationResult.IsValid,
		"skipped", len(res.SkippedFiles),
		"duration_ms", elapsed,
	)

	if res.Format == delivery.OutputZip {
		c.Header("Content-Disposition", contentDisposition(projectID, res.ArchiveName))
		c.Header("X-Processing-Time-Ms", strconv.FormatInt(elapsed, 10))
		if out.ExportID != "" {
			c.Header("X-Export-Id", out.ExportID)
		}
		if v := res.ValidationResult; v != nil {
			c.Header("X-Validation-Warnings", strconv.Itoa(len(v.Warnings)))
		}
		if len(res.SkippedFiles) > 0 {
			c.Header("X-Skipped-Files", skippedFilesHeader(res.SkippedFiles))
		}
		c.Data(http.StatusOK, "application/zip", res.Archive)
		return
	}

	c.JSON(http.StatusOK, models.ExportResponse{
		Success:          true,
		Data:             exportData(out),
		ProcessingTimeMs: elapsed,
	})
}

// contentDisposition carries an ASCII fallback plus the UTF-8 archive name,
// which usually contains the Japanese construction name.
func contentDisposition(projectID, archiveName string) string {
	fallback := "electronic_delivery.zip"
	if projectID != "" {
		fallback = fmt.Sprintf("electronic_delivery_%s.zip", url.PathEscape(projectID))
	}
	if archiveName == "" {
		return fmt.Sprintf("attachment; filename=%q", fallback)
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, encodeAttrChars(archiveName))
}

// skippedFilesHeader joins percent-encoded names with commas.
func skippedFilesHeader(names []string) string {
	encoded := make([]string, 0, len(names))
	for _, n := range names {
		encoded = append(encoded, encodeAttrChars(n))
	}
	return strings.Join(encoded, ",")
}

// encodeAttrChars percent-encodes every byte outside the RFC 5987 attr-char set.
func encodeAttrChars(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isAttrChar(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0F])
	}
	return b.String()
}

func isAttrChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", ch) >= 0
}

func exportData(out *services.ExportOutcome) *models.ExportData {
	if out == nil || out.Result == nil {
		return nil
	}
	res := out.Result
	return &models.ExportData{
		FolderStructure:  res.FolderStructure,
		PhotoXML:         res.PhotoXML,
		IndexDXML:        res.IndexXML,
		ValidationResult: res.ValidationResult,
		ValidationReport: res.ValidationReport,
		ReportText:       res.ReportText,
		FileMappings:     res.FileMappings,
		SkippedFiles:     res.SkippedFiles,
		ExportID:         out.ExportID,
	}
}

// Validate godoc
// @Summary     Validate photos for delivery
// @Description Runs photo-level validation only. No descriptors or archive are produced.
// @Tags        export
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.ValidateRequest true "Photos to validate"
// @Success     200 {object} models.ValidateResponse
// @Failure     400 {object} models.ValidateResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /projects/{project_id}/export/electronic-delivery [put]
func (h *ExportHandler) Validate(c *gin.Context) {
	var req models.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ValidateResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	result, err := h.service.Validate(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ValidateResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.ValidateResponse{
		Success: true,
		Data:    models.ValidateData{ValidationResult: result},
	})
}

// ListExports godoc
// @Summary     List export history
// @Description Returns past zip and folder exports of a project, newest first.
// @Tags        export
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.ExportHistoryResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/exports [get]
func (h *ExportHandler) ListExports(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	exports, err := h.service.ListExports(c.Request.Context(), projectID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ExportHistoryResponse{Exports: exports})
}

// DownloadExport godoc
// @Summary     Get a download link for an archived export
// @Description Returns a signed storage URL for a zip export that was archived on the server.
// @Tags        export
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       export_id path string true "Export ID (UUID)"
// @Success     200 {object} models.DownloadURLResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/exports/{export_id}/download [get]
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}
	exportID, err := uuid.Parse(c.Param("export_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid export id"})
		return
	}

	link, err := h.service.DownloadURL(c.Request.Context(), projectID, exportID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *ExportHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "database not available"})
	case errors.Is(err, supabase.ErrExportNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "export not found"})
	case errors.Is(err, services.ErrArchiveNotStored):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "archive not stored", Message: err.Error()})
	default:
		h.logger.Error("export request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}
