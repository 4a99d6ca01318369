package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kouji-photo-backend/internal/middleware"
	"kouji-photo-backend/internal/models"
	"kouji-photo-backend/internal/services"
)

type PhotosHandler struct {
	service        *services.PhotoService
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewPhotosHandler(service *services.PhotoService, maxUploadBytes int64, logger *slog.Logger) *PhotosHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhotosHandler{service: service, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Upload godoc
// @Summary     Upload a project photo
// @Description Stores one photo and adds it to the project's catalog.
// @Description Uploading bytes already present in the project returns 409.
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       file formData file true "Photo file"
// @Param       category formData string false "写真区分 label or alias (e.g. safety)"
// @Param       shootingDate formData string false "撮影年月日 (YYYY-MM-DD)"
// @Param       title formData string false "写真タイトル"
// @Success     201 {object} models.PhotoResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Failure     415 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/photos [post]
func (h *PhotosHandler) Upload(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}
	userID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing file", Message: err.Error()})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
		return
	}

	photo, err := h.service.Upload(c.Request.Context(), services.UploadPhotoInput{
		ProjectID:    projectID,
		UserID:       userID,
		FileName:     header.Filename,
		Category:     c.PostForm("category"),
		ShootingDate: c.PostForm("shootingDate"),
		Title:        c.PostForm("title"),
		Data:         data,
	})
	switch {
	case errors.Is(err, services.ErrDuplicatePhoto):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "duplicate", Message: header.Filename})
		return
	case errors.Is(err, services.ErrUnsupportedMedia):
		c.JSON(http.StatusUnsupportedMediaType, models.ErrorResponse{Error: "unsupported media type", Message: err.Error()})
		return
	case errors.Is(err, services.ErrEmptyUpload):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "empty file"})
		return
	case errors.Is(err, services.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "photo storage not available"})
		return
	case err != nil:
		h.logger.Error("photo upload failed", "project_id", projectID, "file", header.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to upload photo", Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.PhotoResponse{
		ProjectPhoto: photo.Delivery(),
		ContentHash:  photo.ContentHash,
		FileSize:     photo.FileSize,
		MimeType:     photo.MimeType,
		CreatedAt:    photo.CreatedAt,
	})
}

// List godoc
// @Summary     List project photos
// @Description Returns the project's photos in upload order, shaped for the export request.
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.PhotosResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/photos [get]
func (h *PhotosHandler) List(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	photos, err := h.service.List(c.Request.Context(), projectID)
	if errors.Is(err, services.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "database not available"})
		return
	}
	if err != nil {
		h.logger.Error("photo list failed", "project_id", projectID, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list photos", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.PhotosResponse{Photos: photos})
}
