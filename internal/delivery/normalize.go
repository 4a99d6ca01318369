package delivery

import (
	"strings"
	"time"
)

const (
	DefaultJPEGQuality = 85
	minJPEGQuality     = 1
	maxJPEGQuality     = 100
)

const dateLayout = "2006-01-02"

// Date is an optional calendar date parsed from caller input. Raw keeps the
// original text so unparsable values can be reported by the validator.
type Date struct {
	Raw   string
	Value time.Time
	Valid bool
}

func (d Date) Present() bool { return d.Raw != "" }

func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Value.Format(dateLayout)
}

func parseDate(raw string) Date {
	raw = strings.TrimSpace(raw)
	d := Date{Raw: raw}
	if raw == "" {
		return d
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		d.Value, d.Valid = t, true
		return d
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		d.Value = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		d.Valid = true
	}
	return d
}

type Metadata struct {
	ConstructionName string
	ContractorName   string
	OrdererName      string
	StartDate        Date
	EndDate          Date
}

// Photo is a selected photo with its category and date resolved.
type Photo struct {
	Source        ProjectPhoto
	Category      Category
	KnownCategory bool
	ShootingDate  Date
	Title         string
}

// Request is the canonical, fully defaulted form of an export request.
type Request struct {
	Metadata           Metadata
	Photos             []Photo
	Format             OutputFormat
	Standard           Standard
	JPEGQuality        int
	RequestedQuality   int
	QualityClamped     bool
	CompressionEnabled bool
	IncludeReport      bool
}

// Normalize checks the hard preconditions of an export and returns the
// canonical request. Every failure is a *ValidationError.
func Normalize(meta ExportMetadata, cfg ExportConfig, photos []ProjectPhoto) (*Request, error) {
	m := Metadata{
		ConstructionName: strings.TrimSpace(meta.ConstructionName),
		ContractorName:   strings.TrimSpace(meta.ContractorName),
		OrdererName:      strings.TrimSpace(meta.OrdererName),
		StartDate:        parseDate(meta.ConstructionStartDate),
		EndDate:          parseDate(meta.ConstructionEndDate),
	}
	if m.ConstructionName == "" {
		return nil, newValidationError(CodeMissingRequiredField, "constructionName", "constructionName is required")
	}
	if m.ContractorName == "" {
		return nil, newValidationError(CodeMissingRequiredField, "contractorName", "contractorName is required")
	}

	std, err := LookupStandard(cfg.StandardVersion)
	if err != nil {
		return nil, err
	}

	format := cfg.OutputFormat
	switch format {
	case "":
		format = OutputPreview
	case OutputZip, OutputFolder, OutputPreview:
	default:
		return nil, newValidationError(CodeInvalidOutputFormat, "outputFormat", "output format %q is not supported", format)
	}

	selected, err := selectPhotos(photos, cfg.PhotoIDs)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Metadata:           m,
		Format:             format,
		Standard:           std,
		JPEGQuality:        DefaultJPEGQuality,
		RequestedQuality:   DefaultJPEGQuality,
		CompressionEnabled: cfg.PhotoQuality.CompressionEnabled,
		IncludeReport:      cfg.IncludeReport,
	}
	if q := cfg.PhotoQuality.JPEGQuality; q != nil {
		req.RequestedQuality = *q
		req.JPEGQuality = clampQuality(*q)
		req.QualityClamped = req.JPEGQuality != *q
	}

	req.Photos = make([]Photo, 0, len(selected))
	for _, p := range selected {
		cat, known := LookupCategory(p.Category)
		req.Photos = append(req.Photos, Photo{
			Source:        p,
			Category:      cat,
			KnownCategory: known,
			ShootingDate:  parseDate(p.ShootingDate),
			Title:         strings.TrimSpace(p.Title),
		})
	}
	return req, nil
}

func selectPhotos(photos []ProjectPhoto, ids []string) ([]ProjectPhoto, error) {
	if ids == nil {
		return photos, nil
	}
	byID := make(map[string]ProjectPhoto, len(photos))
	for _, p := range photos {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}
	seen := make(map[string]bool, len(ids))
	out := make([]ProjectPhoto, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, newValidationError(CodeUnknownPhotoID, "photoIds", "photo id %q is not in the photo list", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out, nil
}

func clampQuality(q int) int {
	if q < minJPEGQuality {
		return minJPEGQuality
	}
	if q > maxJPEGQuality {
		return maxJPEGQuality
	}
	return q
}
