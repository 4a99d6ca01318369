package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Step string

const (
	StepIdle            Step = "idle"
	StepPreparing       Step = "preparing"
	StepCopyingPhotos   Step = "copying-photos"
	StepGeneratingXML   Step = "generating-xml"
	StepValidating      Step = "validating"
	StepCreatingArchive Step = "creating-archive"
	StepCompleted       Step = "completed"
	StepFailed          Step = "failed"
)

var stepPercent = map[Step]int{
	StepIdle:            0,
	StepPreparing:       10,
	StepCopyingPhotos:   30,
	StepGeneratingXML:   50,
	StepValidating:      70,
	StepCreatingArchive: 85,
	StepCompleted:       100,
	StepFailed:          100,
}

// ErrDeliveryInvalid is returned with a populated Result when a zip or folder
// export has blocking validation errors.
var ErrDeliveryInvalid = errors.New("delivery has blocking validation errors")

type Progress struct {
	Step    Step   `json:"step"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

type ProgressFunc func(Progress)

// Input is one export request. PhotoData holds base64 payloads keyed by the
// photo's original file name and is only read for zip output.
type Input struct {
	ProjectID string
	Metadata  ExportMetadata
	Config    ExportConfig
	Photos    []ProjectPhoto
	PhotoData map[string]string
}

type Result struct {
	Success          bool
	CurrentStep      Step
	Format           OutputFormat
	FolderStructure  *FolderStructure
	FileMappings     []FileMapping
	PhotoXML         string
	IndexXML         string
	ValidationResult *ValidationResult
	ValidationReport *ValidationReport
	ReportText       string
	Archive          []byte
	ArchiveName      string
	FileSize         int64
	SkippedFiles     []string
	ProcessingTime   time.Duration
}

// Pipeline runs exports. It keeps no per-request state, so one Pipeline
// serves concurrent requests.
type Pipeline struct {
	validator *Validator
	logger    *slog.Logger
	now       func() time.Time
}

func NewPipeline(validator *Validator, logger *slog.Logger) *Pipeline {
	if validator == nil {
		validator = NewValidator(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{validator: validator, logger: logger, now: time.Now}
}

type run struct {
	p        *Pipeline
	res      *Result
	progress ProgressFunc
	log      *slog.Logger
	started  time.Time
}

func (r *run) enter(step Step, msg string) {
	r.res.CurrentStep = step
	r.log.Debug("export step", "step", step, "message", msg)
	if r.progress != nil {
		r.progress(Progress{Step: step, Percent: stepPercent[step], Message: msg})
	}
}

func (r *run) fail(err error) (*Result, error) {
	r.res.Success = false
	r.res.ProcessingTime = r.p.now().Sub(r.started)
	r.enter(StepFailed, err.Error())
	return r.res, err
}

// Run executes idle → preparing → (copying-photos) → generating-xml →
// validating → (creating-archive) → completed. Input errors are returned as
// *ValidationError with CurrentStep "failed".
func (p *Pipeline) Run(ctx context.Context, in Input, progress ProgressFunc) (*Result, error) {
	r := &run{
		p:        p,
		res:      &Result{CurrentStep: StepIdle},
		progress: progress,
		log:      p.logger.With("project_id", in.ProjectID),
		started:  p.now(),
	}

	r.enter(StepPreparing, "normalizing request")
	req, err := Normalize(in.Metadata, in.Config, in.Photos)
	if err != nil {
		return r.fail(err)
	}
	r.res.Format = req.Format
	root, truncated, err := RootFolderName(req.Metadata.ConstructionName)
	if err != nil {
		return r.fail(err)
	}
	var notices []Issue
	if truncated {
		notices = append(notices, Issue{
			Code:        CodeFolderNameTruncated,
			Message:     fmt.Sprintf("フォルダ名を%d文字に切り詰めました", MaxFolderNameRunes),
			TargetField: "constructionName",
			Details:     map[string]any{"folderName": root},
		})
	}
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	var payloads map[string][]byte
	if req.Format == OutputZip {
		r.enter(StepCopyingPhotos, fmt.Sprintf("resolving %d photos", len(req.Photos)))
		var kept []Photo
		var issues []Issue
		kept, payloads, issues = r.resolvePayloads(req, in.PhotoData)
		req.Photos = kept
		notices = append(notices, issues...)
		if err := ctx.Err(); err != nil {
			return r.fail(err)
		}
	}

	mappings, err := MapFiles(root, req.Standard, req.Photos)
	if err != nil {
		return r.fail(err)
	}
	folder := NewFolderStructure(root, req.Standard, mappings)
	r.res.FolderStructure = &folder

	r.enter(StepGeneratingXML, "generating descriptors")
	desc, err := GenerateDescriptors(req, mappings)
	if err != nil {
		return r.fail(fmt.Errorf("failed to generate descriptors: %w", err))
	}
	r.res.PhotoXML = desc.PhotoXML
	r.res.IndexXML = desc.IndexXML

	r.enter(StepValidating, "validating delivery")
	result := p.validator.Validate(ValidationInput{
		Request:     req,
		Mappings:    mappings,
		Descriptors: desc,
		Notices:     notices,
	})
	report := BuildReport(result, req, mappings)
	r.res.ValidationResult = &result
	r.res.ValidationReport = &report
	if req.IncludeReport {
		r.res.ReportText = RenderReportText(result, req, mappings)
	}
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	switch req.Format {
	case OutputZip:
		if !result.IsValid {
			return r.fail(ErrDeliveryInvalid)
		}
		r.enter(StepCreatingArchive, fmt.Sprintf("archiving %d photos", len(mappings)))
		archive, err := BuildArchive(root, desc, mappings, payloads, p.now())
		if err != nil {
			return r.fail(fmt.Errorf("failed to build archive: %w", err))
		}
		r.res.Archive = archive
		r.res.FileSize = int64(len(archive))
		r.res.ArchiveName = ArchiveFileName(root, in.ProjectID)
	case OutputFolder:
		if !result.IsValid {
			r.res.FileMappings = mappings
			return r.fail(ErrDeliveryInvalid)
		}
		r.res.FileMappings = mappings
	}

	r.res.Success = true
	r.res.ProcessingTime = p.now().Sub(r.started)
	r.enter(StepCompleted, "export completed")
	return r.res, nil
}

// resolvePayloads decodes caller-supplied bytes. Photos without usable bytes
// are dropped from the selection and reported as warnings.
func (r *run) resolvePayloads(req *Request, data map[string]string) ([]Photo, map[string][]byte, []Issue) {
	kept := make([]Photo, 0, len(req.Photos))
	payloads := make(map[string][]byte, len(req.Photos))
	var issues []Issue
	for _, ph := range req.Photos {
		name := ph.Source.FileName
		raw, err := decodePayload(data[name])
		if err != nil {
			r.log.Warn("skipping photo without payload", "file", name, "photo_id", ph.Source.ID, "error", err)
			r.res.SkippedFiles = append(r.res.SkippedFiles, name)
			issues = append(issues, Issue{
				Code:       CodePhotoDataMissing,
				Message:    fmt.Sprintf("写真データがないため %s を納品対象から除外しました", name),
				TargetFile: name,
				Details:    map[string]any{"photoId": ph.Source.ID, "reason": err.Error()},
			})
			continue
		}
		if req.CompressionEnabled {
			recompressed, err := recompressJPEG(raw, req.JPEGQuality)
			if err != nil {
				r.log.Warn("keeping original photo bytes", "file", name, "error", err)
				issues = append(issues, Issue{
					Code:       CodePhotoRecompressFailed,
					Message:    fmt.Sprintf("%s を再圧縮できなかったため元のデータを使用します", name),
					TargetFile: name,
				})
			} else {
				raw = recompressed
			}
		}
		kept = append(kept, ph)
		payloads[ph.Source.ID] = raw
	}
	return kept, payloads, issues
}

var errNoPayload = errors.New("no photo data supplied")

func decodePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	if s == "" {
		return nil, errNoPayload
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if b, err = base64.RawStdEncoding.DecodeString(s); err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
	}
	if len(b) == 0 {
		return nil, errNoPayload
	}
	return b, nil
}

var errNotJPEG = errors.New("payload is not a JPEG image")

func recompressJPEG(data []byte, quality int) ([]byte, error) {
	if http.DetectContentType(data) != "image/jpeg" {
		return nil, errNotJPEG
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
