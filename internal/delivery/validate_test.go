package delivery

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	v := NewValidator(0, 0)
	v.Now = func() time.Time { return fixedNow }
	return v
}

func codes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func validate(t *testing.T, meta ExportMetadata, cfg ExportConfig, photos []ProjectPhoto) ValidationResult {
	t.Helper()
	req, mappings, desc := generate(t, meta, cfg, photos)
	return testValidator().Validate(ValidationInput{Request: req, Mappings: mappings, Descriptors: desc})
}

func TestValidate_WarningsDoNotBlock(t *testing.T) {
	photos := samplePhotos()
	photos[0].ShootingDate = ""
	photos[1].Title = ""
	photos[2].Category = "drone"

	result := validate(t, sampleMetadata(), ExportConfig{PhotoQuality: PhotoQuality{JPEGQuality: intPtr(40)}}, photos)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.ElementsMatch(t, []string{
		CodeMissingOrdererName,
		CodeMissingShootingDate,
		CodeMissingPhotoTitle,
		CodeUnknownCategory,
		CodeLowJPEGQuality,
	}, codes(result.Warnings))
	assert.Equal(t, fixedNow, result.ValidatedAt)
}

func TestValidate_IsValidMatchesErrors(t *testing.T) {
	cases := []ValidationResult{
		NewValidationResult(nil, nil, fixedNow),
		NewValidationResult(nil, []Issue{{Code: CodeMissingOrdererName}}, fixedNow),
		NewValidationResult([]Issue{{Code: CodeInvalidDateRange}}, nil, fixedNow),
		NewValidationResult([]Issue{{Code: CodeInvalidDateRange}}, []Issue{{Code: CodeMissingOrdererName}}, fixedNow),
	}
	for _, r := range cases {
		assert.Equal(t, len(r.Errors) == 0, r.IsValid)
		assert.NotNil(t, r.Errors)
		assert.NotNil(t, r.Warnings)
	}
}

func TestValidate_Dates(t *testing.T) {
	t.Run("end before start", func(t *testing.T) {
		meta := sampleMetadata()
		meta.ConstructionStartDate = "2023-09-30"
		meta.ConstructionEndDate = "2023-04-01"
		result := validate(t, meta, ExportConfig{}, samplePhotos())
		assert.False(t, result.IsValid)
		assert.Contains(t, codes(result.Errors), CodeInvalidDateRange)
	})

	t.Run("unparsable start", func(t *testing.T) {
		meta := sampleMetadata()
		meta.ConstructionStartDate = "next spring"
		result := validate(t, meta, ExportConfig{}, samplePhotos())
		require.Len(t, result.Errors, 1)
		assert.Equal(t, CodeInvalidDateFormat, result.Errors[0].Code)
		assert.Equal(t, "constructionStartDate", result.Errors[0].TargetField)
	})

	t.Run("unparsable shooting date", func(t *testing.T) {
		photos := samplePhotos()
		photos[1].ShootingDate = "2023/13/45"
		result := validate(t, sampleMetadata(), ExportConfig{}, photos)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "IMG_0002.jpg", result.Errors[0].TargetFile)
	})

	t.Run("H28 requires shooting dates", func(t *testing.T) {
		photos := samplePhotos()
		photos[0].ShootingDate = ""
		result := validate(t, sampleMetadata(), ExportConfig{StandardVersion: string(StandardH28)}, photos)
		assert.Equal(t, []string{CodeMissingShootingDateRequired}, codes(result.Errors))
	})
}

func TestValidate_EmptySelection(t *testing.T) {
	empty := ExportConfig{PhotoIDs: []string{}}

	result := validate(t, sampleMetadata(), empty, samplePhotos())
	assert.True(t, result.IsValid)
	assert.Contains(t, codes(result.Warnings), CodeEmptyDelivery)

	zip := empty
	zip.OutputFormat = OutputZip
	result = validate(t, sampleMetadata(), zip, samplePhotos())
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{CodeNoPhotosSelected}, codes(result.Errors))

	report := empty
	report.IncludeReport = true
	result = validate(t, sampleMetadata(), report, samplePhotos())
	assert.Equal(t, []string{CodeNoPhotosSelected}, codes(result.Errors))
}

func TestValidate_CatchesDescriptorDivergence(t *testing.T) {
	req, mappings, desc := generate(t, sampleMetadata(), ExportConfig{}, samplePhotos())
	v := testValidator()

	t.Run("renamed file in PHOTO.XML", func(t *testing.T) {
		tampered := *desc
		tampered.PhotoXML = strings.Replace(desc.PhotoXML, mappings[1].DeliveryFileName, "P0999999.JPG", 1)
		result := v.Validate(ValidationInput{Request: req, Mappings: mappings, Descriptors: &tampered})
		assert.False(t, result.IsValid)
		assert.Contains(t, codes(result.Errors), CodeFilenameMismatch)
	})

	t.Run("wrong count in INDEX_D.XML", func(t *testing.T) {
		tampered := *desc
		tampered.IndexXML = strings.Replace(desc.IndexXML, "<写真枚数>3</写真枚数>", "<写真枚数>4</写真枚数>", 1)
		result := v.Validate(ValidationInput{Request: req, Mappings: mappings, Descriptors: &tampered})
		assert.Equal(t, []string{CodePhotoCountMismatch}, codes(result.Errors))
	})

	t.Run("mapping entry missing from descriptors", func(t *testing.T) {
		extra := append(append([]FileMapping(nil), mappings...), FileMapping{PhotoID: "ghost", DeliveryFileName: "P0900009.JPG"})
		result := v.Validate(ValidationInput{Request: req, Mappings: extra, Descriptors: desc})
		assert.Contains(t, codes(result.Errors), CodeFilenameMismatch)
		assert.Contains(t, codes(result.Errors), CodePhotoCountMismatch)
	})

	t.Run("malformed XML", func(t *testing.T) {
		tampered := *desc
		tampered.PhotoXML = strings.Replace(desc.PhotoXML, "</photodata>", "", 1)
		result := v.Validate(ValidationInput{Request: req, Mappings: mappings, Descriptors: &tampered})
		assert.Contains(t, codes(result.Errors), CodeMalformedDescriptor)
	})
}

func TestValidate_DuplicateDeliveryNames(t *testing.T) {
	req, mappings, _ := generate(t, sampleMetadata(), ExportConfig{}, samplePhotos())
	mappings[2].DeliveryFileName = mappings[0].DeliveryFileName
	result := testValidator().Validate(ValidationInput{Request: req, Mappings: mappings})
	assert.Equal(t, []string{CodeDuplicateDeliveryFilename}, codes(result.Errors))
}

func TestValidate_Notices(t *testing.T) {
	req, mappings, desc := generate(t, sampleMetadata(), ExportConfig{}, samplePhotos())
	result := testValidator().Validate(ValidationInput{
		Request:     req,
		Mappings:    mappings,
		Descriptors: desc,
		Notices:     []Issue{{Code: CodePhotoDataMissing, TargetFile: "IMG_0009.jpg"}},
	})
	assert.True(t, result.IsValid)
	assert.Contains(t, codes(result.Warnings), CodePhotoDataMissing)
}

func TestValidate_Thresholds(t *testing.T) {
	v := testValidator()
	v.MaxPhotos = 2
	req, mappings, desc := generate(t, sampleMetadata(), ExportConfig{PhotoQuality: PhotoQuality{JPEGQuality: intPtr(150)}}, samplePhotos())
	result := v.Validate(ValidationInput{Request: req, Mappings: mappings, Descriptors: desc})
	assert.True(t, result.IsValid)
	assert.Contains(t, codes(result.Warnings), CodePhotoCountHigh)
	assert.Contains(t, codes(result.Warnings), CodeJPEGQualityClamped)
	assert.NotContains(t, codes(result.Warnings), CodeLowJPEGQuality)
}

func TestValidate_UnrepresentableAndDuplicateOriginals(t *testing.T) {
	photos := samplePhotos()
	photos[0].Title = "足場🏗点検"
	photos[2].FileName = photos[1].FileName
	result := validate(t, sampleMetadata(), ExportConfig{}, photos)
	assert.True(t, result.IsValid)
	assert.Contains(t, codes(result.Warnings), CodeUnrepresentableCharacter)
	assert.Contains(t, codes(result.Warnings), CodeDuplicateOriginalFilename)
}

func TestValidate_ControlCharactersAreFlagged(t *testing.T) {
	photos := samplePhotos()
	photos[0].Title = "pier\x01 \"A\" & <B>"
	result := validate(t, sampleMetadata(), ExportConfig{}, photos)
	assert.True(t, result.IsValid)

	var found bool
	for _, w := range result.Warnings {
		if w.Code == CodeUnrepresentableCharacter && w.TargetField == "title" {
			found = true
		}
	}
	assert.True(t, found, "control character in title should be reported")
}

func TestReplaceUnrepresentable(t *testing.T) {
	clean, bad := replaceUnrepresentable("a\x01b\tc\r\n橋🏗")
	assert.Equal(t, "a?b\tc\r\n橋?", clean)
	assert.Equal(t, []rune{0x01, '🏗'}, bad)

	clean, bad = replaceUnrepresentable(`"A" & <B>`)
	assert.Equal(t, `"A" & <B>`, clean)
	assert.Empty(t, bad)
}

func TestValidatePhotos(t *testing.T) {
	v := testValidator()

	result := v.ValidatePhotos(samplePhotos(), standards[LatestStandard])
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)

	photos := samplePhotos()
	photos[0].ShootingDate = "yesterday"
	photos[1].ShootingDate = ""
	result = v.ValidatePhotos(photos, standards[LatestStandard])
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{CodeInvalidDateFormat}, codes(result.Errors))
	assert.Equal(t, []string{CodeMissingShootingDate}, codes(result.Warnings))

	result = v.ValidatePhotos(nil, standards[LatestStandard])
	assert.True(t, result.IsValid)
	assert.Equal(t, []string{CodeEmptyDelivery}, codes(result.Warnings))
}
