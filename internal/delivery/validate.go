package delivery

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Blocking finding codes.
const (
	CodeNoPhotosSelected            = "NO_PHOTOS_SELECTED"
	CodeInvalidDateFormat           = "INVALID_DATE_FORMAT"
	CodeInvalidDateRange            = "INVALID_DATE_RANGE"
	CodeDuplicateDeliveryFilename   = "DUPLICATE_DELIVERY_FILENAME"
	CodeFilenameMismatch            = "FILENAME_MISMATCH"
	CodePhotoCountMismatch          = "PHOTO_COUNT_MISMATCH"
	CodeMalformedDescriptor         = "MALFORMED_DESCRIPTOR"
	CodeMissingShootingDateRequired = "MISSING_SHOOTING_DATE_REQUIRED"
)

// Warning codes.
const (
	CodeMissingOrdererName        = "MISSING_ORDERER_NAME"
	CodeMissingShootingDate       = "MISSING_SHOOTING_DATE"
	CodeMissingPhotoTitle         = "MISSING_PHOTO_TITLE"
	CodePhotoCountHigh            = "PHOTO_COUNT_HIGH"
	CodeLowJPEGQuality            = "LOW_JPEG_QUALITY"
	CodeJPEGQualityClamped        = "JPEG_QUALITY_CLAMPED"
	CodeUnknownCategory           = "UNKNOWN_CATEGORY"
	CodeFolderNameTruncated       = "FOLDER_NAME_TRUNCATED"
	CodeUnrepresentableCharacter  = "UNREPRESENTABLE_CHARACTER"
	CodePhotoDataMissing          = "PHOTO_DATA_MISSING"
	CodeEmptyDelivery             = "EMPTY_DELIVERY"
	CodePhotoRecompressFailed     = "PHOTO_RECOMPRESS_FAILED"
	CodeDuplicateOriginalFilename = "DUPLICATE_ORIGINAL_FILENAME"
)

const (
	DefaultMaxPhotosWarning = 3000
	DefaultMinJPEGQuality   = 70
)

var deliveryNamePattern = regexp.MustCompile(`^[A-Z0-9_]{1,8}\.[A-Z0-9]{1,3}$`)

// Validator runs the rule set over a normalized request. It holds only
// thresholds and is safe for concurrent use.
type Validator struct {
	MaxPhotos      int
	MinJPEGQuality int
	Now            func() time.Time
}

func NewValidator(maxPhotos, minQuality int) *Validator {
	if maxPhotos <= 0 {
		maxPhotos = DefaultMaxPhotosWarning
	}
	if minQuality <= 0 {
		minQuality = DefaultMinJPEGQuality
	}
	return &Validator{MaxPhotos: maxPhotos, MinJPEGQuality: minQuality, Now: time.Now}
}

// ValidationInput is everything the validator may inspect. Descriptors is nil
// when only the photo selection is being checked; Notices carries findings
// recorded earlier in the pipeline.
type ValidationInput struct {
	Request     *Request
	Mappings    []FileMapping
	Descriptors *Descriptors
	Notices     []Issue
}

type findings struct {
	errors   []Issue
	warnings []Issue
}

func (f *findings) fail(i Issue) { f.errors = append(f.errors, i) }
func (f *findings) warn(i Issue) { f.warnings = append(f.warnings, i) }

func (v *Validator) Validate(in ValidationInput) ValidationResult {
	var f findings
	req := in.Request

	v.checkRequired(&f, req)
	v.checkDates(&f, req)
	v.checkPhotos(&f, req)
	v.checkQuality(&f, req)
	v.checkMappings(&f, in.Mappings)
	if in.Descriptors != nil {
		v.checkDescriptors(&f, in.Descriptors, in.Mappings)
	}
	v.checkCharacters(&f, req)

	for _, n := range in.Notices {
		f.warn(n)
	}
	return NewValidationResult(f.errors, f.warnings, v.now())
}

// ValidatePhotos checks a photo list on its own, without metadata or descriptors.
func (v *Validator) ValidatePhotos(photos []ProjectPhoto, std Standard) ValidationResult {
	req := &Request{Standard: std, Format: OutputPreview, JPEGQuality: DefaultJPEGQuality}
	for _, p := range photos {
		cat, known := LookupCategory(p.Category)
		req.Photos = append(req.Photos, Photo{
			Source:        p,
			Category:      cat,
			KnownCategory: known,
			ShootingDate:  parseDate(p.ShootingDate),
			Title:         p.Title,
		})
	}
	var f findings
	if len(req.Photos) == 0 {
		f.warn(Issue{Code: CodeEmptyDelivery, Message: "納品する写真がありません", TargetField: "photos"})
	}
	v.checkPhotos(&f, req)
	for _, p := range req.Photos {
		v.checkText(&f, p.Title, "title", p.Source.FileName)
	}
	if mappings, err := MapFiles("PHOTO", std, req.Photos); err == nil {
		v.checkMappings(&f, mappings)
	} else {
		f.fail(Issue{Code: CodeInvalidDeliveryFilename, Message: err.Error()})
	}
	return NewValidationResult(f.errors, f.warnings, v.now())
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now().UTC()
	}
	return v.Now().UTC()
}

func (v *Validator) checkRequired(f *findings, req *Request) {
	if req.Metadata.ConstructionName == "" {
		f.fail(Issue{Code: CodeMissingRequiredField, Message: "工事名称が未入力です", TargetField: "constructionName"})
	}
	if req.Metadata.ContractorName == "" {
		f.fail(Issue{Code: CodeMissingRequiredField, Message: "受注者名が未入力です", TargetField: "contractorName"})
	}
	if req.Metadata.OrdererName == "" {
		f.warn(Issue{Code: CodeMissingOrdererName, Message: "発注者名が未入力です", TargetField: "ordererName"})
	}
	if len(req.Photos) == 0 {
		if req.Format == OutputZip || req.IncludeReport {
			f.fail(Issue{Code: CodeNoPhotosSelected, Message: "納品する写真が選択されていません", TargetField: "photos"})
		} else {
			f.warn(Issue{Code: CodeEmptyDelivery, Message: "納品する写真がありません", TargetField: "photos"})
		}
	}
}

func (v *Validator) checkDates(f *findings, req *Request) {
	start, end := req.Metadata.StartDate, req.Metadata.EndDate
	for _, d := range []struct {
		field string
		date  Date
	}{{"constructionStartDate", start}, {"constructionEndDate", end}} {
		if d.date.Present() && !d.date.Valid {
			f.fail(Issue{
				Code:        CodeInvalidDateFormat,
				Message:     fmt.Sprintf("日付の形式が不正です: %s", d.date.Raw),
				TargetField: d.field,
			})
		}
	}
	if start.Valid && end.Valid && end.Value.Before(start.Value) {
		f.fail(Issue{
			Code:        CodeInvalidDateRange,
			Message:     "工期終了日が工期開始日より前です",
			TargetField: "constructionEndDate",
			Details:     map[string]any{"start": start.String(), "end": end.String()},
		})
	}
}

func (v *Validator) checkPhotos(f *findings, req *Request) {
	if n := len(req.Photos); n > v.MaxPhotos {
		f.warn(Issue{
			Code:        CodePhotoCountHigh,
			Message:     fmt.Sprintf("写真枚数が多すぎます (%d枚)", n),
			TargetField: "photos",
			Details:     map[string]any{"count": n, "threshold": v.MaxPhotos},
		})
	}
	originals := make(map[string]string, len(req.Photos))
	for _, p := range req.Photos {
		name := p.Source.FileName
		if !p.KnownCategory {
			f.warn(Issue{
				Code:        CodeUnknownCategory,
				Message:     fmt.Sprintf("写真区分 %q は不明のため「%s」として扱います", p.Source.Category, CategoryOther.Label),
				TargetFile:  name,
				TargetField: "category",
			})
		}
		switch {
		case p.ShootingDate.Present() && !p.ShootingDate.Valid:
			f.fail(Issue{
				Code:        CodeInvalidDateFormat,
				Message:     fmt.Sprintf("撮影年月日の形式が不正です: %s", p.ShootingDate.Raw),
				TargetFile:  name,
				TargetField: "shootingDate",
			})
		case !p.ShootingDate.Present() && req.Standard.RequiresDate:
			f.fail(Issue{
				Code:        CodeMissingShootingDateRequired,
				Message:     fmt.Sprintf("%s では撮影年月日が必須です", req.Standard.Version),
				TargetFile:  name,
				TargetField: "shootingDate",
			})
		case !p.ShootingDate.Present():
			f.warn(Issue{Code: CodeMissingShootingDate, Message: "撮影年月日が未設定です", TargetFile: name, TargetField: "shootingDate"})
		}
		if p.Title == "" {
			f.warn(Issue{Code: CodeMissingPhotoTitle, Message: "写真タイトルが未設定のためファイル名を使用します", TargetFile: name, TargetField: "title"})
		}
		if prev, ok := originals[name]; ok {
			f.warn(Issue{
				Code:       CodeDuplicateOriginalFilename,
				Message:    "同じファイル名の写真が複数選択されています",
				TargetFile: name,
				Details:    map[string]any{"photoIds": []string{prev, p.Source.ID}},
			})
		} else {
			originals[name] = p.Source.ID
		}
	}
}

func (v *Validator) checkQuality(f *findings, req *Request) {
	if req.QualityClamped {
		f.warn(Issue{
			Code:        CodeJPEGQualityClamped,
			Message:     fmt.Sprintf("JPEG品質 %d を %d に補正しました", req.RequestedQuality, req.JPEGQuality),
			TargetField: "photoQuality.jpegQuality",
			Details:     map[string]any{"requested": req.RequestedQuality, "applied": req.JPEGQuality},
		})
	}
	if req.JPEGQuality < v.MinJPEGQuality {
		f.warn(Issue{
			Code:        CodeLowJPEGQuality,
			Message:     fmt.Sprintf("JPEG品質 %d は推奨値 %d 未満です", req.JPEGQuality, v.MinJPEGQuality),
			TargetField: "photoQuality.jpegQuality",
		})
	}
}

func (v *Validator) checkMappings(f *findings, mappings []FileMapping) {
	seen := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if seen[m.DeliveryFileName] {
			f.fail(Issue{
				Code:       CodeDuplicateDeliveryFilename,
				Message:    "納品ファイル名が重複しています",
				TargetFile: m.DeliveryFileName,
			})
		}
		seen[m.DeliveryFileName] = true
		if !deliveryNamePattern.MatchString(m.DeliveryFileName) {
			f.fail(Issue{
				Code:       CodeInvalidDeliveryFilename,
				Message:    "納品ファイル名が8.3形式ではありません",
				TargetFile: m.DeliveryFileName,
				Details:    map[string]any{"originalFileName": m.OriginalFileName},
			})
		}
	}
}

func (v *Validator) checkDescriptors(f *findings, d *Descriptors, mappings []FileMapping) {
	photoRefs, err := parseDescriptor([]byte(d.PhotoXML), false)
	if err != nil {
		f.fail(Issue{Code: CodeMalformedDescriptor, Message: err.Error(), TargetFile: PhotoFileName})
	}
	indexRefs, err := parseDescriptor([]byte(d.IndexXML), false)
	if err != nil {
		f.fail(Issue{Code: CodeMalformedDescriptor, Message: err.Error(), TargetFile: IndexFileName})
	}

	if photoRefs != nil {
		compareFiles(f, PhotoFileName, photoRefs.Files, mappings)
	}
	if indexRefs != nil {
		compareFiles(f, IndexFileName, indexRefs.Files, mappings)
		count, err := strconv.Atoi(indexRefs.PhotoCount)
		if err != nil || count != len(mappings) {
			f.fail(Issue{
				Code:       CodePhotoCountMismatch,
				Message:    "INDEX_D.XML の写真枚数が納品ファイル数と一致しません",
				TargetFile: IndexFileName,
				Details:    map[string]any{"declared": indexRefs.PhotoCount, "mapped": len(mappings)},
			})
		}
	}
	if photoRefs != nil && indexRefs != nil && len(photoRefs.Files) != len(indexRefs.Files) {
		f.fail(Issue{
			Code:    CodePhotoCountMismatch,
			Message: "PHOTO.XML と INDEX_D.XML の写真数が一致しません",
			Details: map[string]any{"photoXml": len(photoRefs.Files), "indexDXml": len(indexRefs.Files)},
		})
	}
}

// compareFiles reports every filename present on one side only, plus any
// ordering divergence.
func compareFiles(f *findings, descriptor string, referenced []string, mappings []FileMapping) {
	mapped := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		mapped[m.DeliveryFileName] = true
	}
	refs := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		refs[name] = true
		if !mapped[name] {
			f.fail(Issue{
				Code:       CodeFilenameMismatch,
				Message:    fmt.Sprintf("%s が参照するファイルが納品対象にありません", descriptor),
				TargetFile: name,
				Details:    map[string]any{"descriptor": descriptor},
			})
		}
	}
	for _, m := range mappings {
		if !refs[m.DeliveryFileName] {
			f.fail(Issue{
				Code:       CodeFilenameMismatch,
				Message:    fmt.Sprintf("%s に納品ファイルの記載がありません", descriptor),
				TargetFile: m.DeliveryFileName,
				Details:    map[string]any{"descriptor": descriptor},
			})
		}
	}
	if len(referenced) != len(mappings) {
		return
	}
	for i, m := range mappings {
		if referenced[i] != m.DeliveryFileName && mapped[referenced[i]] {
			f.fail(Issue{
				Code:       CodeFilenameMismatch,
				Message:    fmt.Sprintf("%s の記載順が納品ファイルの順序と一致しません", descriptor),
				TargetFile: m.DeliveryFileName,
				Details:    map[string]any{"descriptor": descriptor, "position": i + 1, "found": referenced[i]},
			})
			return
		}
	}
}

func (v *Validator) checkCharacters(f *findings, req *Request) {
	m := req.Metadata
	v.checkText(f, m.ConstructionName, "constructionName", "")
	v.checkText(f, m.ContractorName, "contractorName", "")
	v.checkText(f, m.OrdererName, "ordererName", "")
	for _, p := range req.Photos {
		v.checkText(f, p.Title, "title", p.Source.FileName)
		v.checkText(f, p.Source.FileName, "fileName", p.Source.FileName)
	}
}

func (v *Validator) checkText(f *findings, text, field, file string) {
	bad := unrepresentable(text)
	if len(bad) == 0 {
		return
	}
	f.warn(Issue{
		Code:        CodeUnrepresentableCharacter,
		Message:     fmt.Sprintf("Shift_JIS または XML で使用できない文字 %q は「?」に置換されます", string(bad)),
		TargetFile:  file,
		TargetField: field,
	})
}
