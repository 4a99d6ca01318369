package delivery

import "time"

type OutputFormat string

const (
	OutputZip     OutputFormat = "zip"
	OutputFolder  OutputFormat = "folder"
	OutputPreview OutputFormat = "preview"
)

// ExportMetadata describes the construction contract being delivered.
type ExportMetadata struct {
	ConstructionName      string `json:"constructionName"`
	ContractorName        string `json:"contractorName"`
	OrdererName           string `json:"ordererName,omitempty"`
	ConstructionStartDate string `json:"constructionStartDate,omitempty"`
	ConstructionEndDate   string `json:"constructionEndDate,omitempty"`
}

// ProjectPhoto is a photo record supplied by the caller. The pipeline never mutates it.
type ProjectPhoto struct {
	ID           string `json:"id"`
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath,omitempty"`
	Category     string `json:"category"`
	ShootingDate string `json:"shootingDate,omitempty"`
	Title        string `json:"title,omitempty"`
}

type PhotoQuality struct {
	JPEGQuality        *int `json:"jpegQuality,omitempty"`
	CompressionEnabled bool `json:"compressionEnabled"`
}

// ExportConfig selects the output format, standard revision and photo subset.
// A nil PhotoIDs selects every supplied photo; an empty non-nil slice selects none.
type ExportConfig struct {
	OutputFormat    OutputFormat `json:"outputFormat"`
	StandardVersion string       `json:"standardVersion,omitempty"`
	PhotoQuality    PhotoQuality `json:"photoQuality"`
	PhotoIDs        []string     `json:"photoIds,omitempty"`
	IncludeReport   bool         `json:"includeReport"`
}

// FileMapping ties one selected photo to its place in the delivery package.
type FileMapping struct {
	PhotoID          string `json:"photoId"`
	OriginalFileName string `json:"originalFileName"`
	DeliveryFileName string `json:"deliveryFileName"`
	FolderPath       string `json:"folderPath"`
	SerialNumber     int    `json:"serialNumber"`
}

// Path returns the mapping's location relative to the archive root.
func (m FileMapping) Path() string {
	return m.FolderPath + "/" + m.DeliveryFileName
}

type Issue struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	TargetFile  string         `json:"targetFile,omitempty"`
	TargetField string         `json:"targetField,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

type ValidationResult struct {
	IsValid     bool      `json:"isValid"`
	Errors      []Issue   `json:"errors"`
	Warnings    []Issue   `json:"warnings"`
	ValidatedAt time.Time `json:"validatedAt"`
}

// NewValidationResult is the only constructor for ValidationResult; IsValid
// is derived from the error list and nothing else.
func NewValidationResult(errs, warnings []Issue, at time.Time) ValidationResult {
	if errs == nil {
		errs = []Issue{}
	}
	if warnings == nil {
		warnings = []Issue{}
	}
	return ValidationResult{
		IsValid:     len(errs) == 0,
		Errors:      errs,
		Warnings:    warnings,
		ValidatedAt: at,
	}
}

type FolderStructure struct {
	RootFolder   string   `json:"rootFolder"`
	IndexFile    string   `json:"indexFile"`
	PhotoXMLFile string   `json:"photoXmlFile"`
	PhotoFolder  string   `json:"photoFolder"`
	PhotoFiles   []string `json:"photoFiles"`
}
