package models

import (
	"time"

	"kouji-photo-backend/internal/delivery"
)

type ExportData struct {
	FolderStructure  *delivery.FolderStructure  `json:"folderStructure,omitempty"`
	PhotoXML         string                     `json:"photoXml,omitempty"`
	IndexDXML        string                     `json:"indexDXml,omitempty"`
	ValidationResult *delivery.ValidationResult `json:"validationResult,omitempty"`
	ValidationReport *delivery.ValidationReport `json:"validationReport,omitempty"`
	ReportText       string                     `json:"reportText,omitempty"`
	FileMappings     []delivery.FileMapping     `json:"fileMappings,omitempty"`
	SkippedFiles     []string                   `json:"skippedFiles,omitempty"`
	ExportID         string                     `json:"exportId,omitempty"`
}

type ExportResponse struct {
	Success          bool        `json:"success"`
	Data             *ExportData `json:"data,omitempty"`
	ProcessingTimeMs int64       `json:"processingTimeMs"`
	Error            string      `json:"error,omitempty"`
	Code             string      `json:"code,omitempty"`
	Field            string      `json:"field,omitempty"`
	CurrentStep      string      `json:"currentStep,omitempty"`
}

type ValidateData struct {
	ValidationResult delivery.ValidationResult `json:"validationResult"`
}

type ValidateResponse struct {
	Success bool         `json:"success"`
	Data    ValidateData `json:"data"`
	Error   string       `json:"error,omitempty"`
}

type PhotoResponse struct {
	delivery.ProjectPhoto
	ContentHash string    `json:"contentHash"`
	FileSize    int64     `json:"fileSize"`
	MimeType    string    `json:"mimeType"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PhotosResponse struct {
	Photos []PhotoResponse `json:"photos"`
}

type ExportSummary struct {
	ID              string    `json:"id"`
	OutputFormat    string    `json:"outputFormat"`
	StandardVersion string    `json:"standardVersion"`
	PhotoCount      int       `json:"photoCount"`
	SkippedCount    int       `json:"skippedCount"`
	FileSize        int64     `json:"fileSize,omitempty"`
	Checksum        string    `json:"checksum,omitempty"`
	Archived        bool      `json:"archived"`
	IsValid         bool      `json:"isValid"`
	ErrorCount      int       `json:"errorCount"`
	WarningCount    int       `json:"warningCount"`
	ProcessingMs    int64     `json:"processingTimeMs"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ExportHistoryResponse struct {
	Exports []ExportSummary `json:"exports"`
}

type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
