package delivery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePhotos() []ProjectPhoto {
	return []ProjectPhoto{
		{ID: "p1", FileName: "IMG_0001.jpg", Category: "施工状況写真", ShootingDate: "2023-04-01", Title: "基礎配筋"},
		{ID: "p2", FileName: "IMG_0002.jpg", Category: "safety", ShootingDate: "2023-04-02", Title: "朝礼"},
		{ID: "p3", FileName: "IMG_0003.JPEG", Category: "施工状況写真", ShootingDate: "2023-04-03", Title: "型枠"},
	}
}

func sampleMetadata() ExportMetadata {
	return ExportMetadata{ConstructionName: "Bridge A", ContractorName: "Acme"}
}

func intPtr(v int) *int { return &v }

func requireCode(t *testing.T, err error, code string) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	assert.Equal(t, code, verr.Code)
	return verr
}

func TestNormalize_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		meta  ExportMetadata
		field string
	}{
		{"empty construction name", ExportMetadata{ConstructionName: "", ContractorName: "Acme"}, "constructionName"},
		{"blank construction name", ExportMetadata{ConstructionName: "   ", ContractorName: "Acme"}, "constructionName"},
		{"empty contractor", ExportMetadata{ConstructionName: "Bridge A", ContractorName: "\t"}, "contractorName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Normalize(tt.meta, ExportConfig{}, samplePhotos())
			assert.Nil(t, req)
			verr := requireCode(t, err, CodeMissingRequiredField)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNormalize_UnknownPhotoID(t *testing.T) {
	req, err := Normalize(sampleMetadata(), ExportConfig{PhotoIDs: []string{"does-not-exist"}}, samplePhotos())
	assert.Nil(t, req)
	requireCode(t, err, CodeUnknownPhotoID)
}

func TestNormalize_Selection(t *testing.T) {
	t.Run("nil ids selects every photo in order", func(t *testing.T) {
		req, err := Normalize(sampleMetadata(), ExportConfig{}, samplePhotos())
		require.NoError(t, err)
		require.Len(t, req.Photos, 3)
		assert.Equal(t, "p1", req.Photos[0].Source.ID)
		assert.Equal(t, "p3", req.Photos[2].Source.ID)
	})

	t.Run("explicit ids keep request order and drop repeats", func(t *testing.T) {
		req, err := Normalize(sampleMetadata(), ExportConfig{PhotoIDs: []string{"p3", "p1", "p3"}}, samplePhotos())
		require.NoError(t, err)
		require.Len(t, req.Photos, 2)
		assert.Equal(t, "p3", req.Photos[0].Source.ID)
		assert.Equal(t, "p1", req.Photos[1].Source.ID)
	})

	t.Run("empty ids selects nothing", func(t *testing.T) {
		req, err := Normalize(sampleMetadata(), ExportConfig{PhotoIDs: []string{}}, samplePhotos())
		require.NoError(t, err)
		assert.Empty(t, req.Photos)
	})
}

func TestNormalize_JPEGQuality(t *testing.T) {
	tests := []struct {
		name    string
		quality *int
		applied int
		clamped bool
	}{
		{"absent uses default", nil, DefaultJPEGQuality, false},
		{"in range", intPtr(90), 90, false},
		{"above range", intPtr(150), 100, true},
		{"below range", intPtr(0), 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ExportConfig{PhotoQuality: PhotoQuality{JPEGQuality: tt.quality}}
			req, err := Normalize(sampleMetadata(), cfg, samplePhotos())
			require.NoError(t, err)
			assert.Equal(t, tt.applied, req.JPEGQuality)
			assert.Equal(t, tt.clamped, req.QualityClamped)
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	req, err := Normalize(sampleMetadata(), ExportConfig{}, samplePhotos())
	require.NoError(t, err)
	assert.Equal(t, OutputPreview, req.Format)
	assert.Equal(t, StandardR05, req.Standard.Version)

	_, err = Normalize(sampleMetadata(), ExportConfig{StandardVersion: "昭和60年"}, samplePhotos())
	requireCode(t, err, CodeUnsupportedStandardVersion)

	_, err = Normalize(sampleMetadata(), ExportConfig{OutputFormat: "tarball"}, samplePhotos())
	requireCode(t, err, CodeInvalidOutputFormat)
}

func TestNormalize_CategoriesAndDates(t *testing.T) {
	photos := []ProjectPhoto{
		{ID: "a", FileName: "a.jpg", Category: "QUALITY", ShootingDate: "2023-05-01T09:30:00+09:00"},
		{ID: "b", FileName: "b.jpg", Category: "drone", ShootingDate: "05/01/2023"},
	}
	req, err := Normalize(sampleMetadata(), ExportConfig{}, photos)
	require.NoError(t, err)

	assert.Equal(t, "05", req.Photos[0].Category.Code)
	assert.True(t, req.Photos[0].KnownCategory)
	assert.Equal(t, "2023-05-01", req.Photos[0].ShootingDate.String())

	assert.Equal(t, CategoryOther, req.Photos[1].Category)
	assert.False(t, req.Photos[1].KnownCategory)
	assert.True(t, req.Photos[1].ShootingDate.Present())
	assert.False(t, req.Photos[1].ShootingDate.Valid)
}
