package models

import "kouji-photo-backend/internal/delivery"

type ExportRequest struct {
	Config    delivery.ExportConfig   `json:"config"`
	Metadata  delivery.ExportMetadata `json:"metadata"`
	Photos    []delivery.ProjectPhoto `json:"photos"`
	PhotoData map[string]string       `json:"photoData,omitempty"`
}

type ValidateRequest struct {
	Photos          []delivery.ProjectPhoto `json:"photos"`
	StandardVersion string                  `json:"standardVersion,omitempty"`
}
