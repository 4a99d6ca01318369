package delivery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedPhotos(n int) []ProjectPhoto {
	aliases := []string{"construction", "safety", "quality", "as_built", "unknown-kind"}
	exts := []string{".jpg", ".JPG", ".jpeg", ".tif", ""}
	photos := make([]ProjectPhoto, 0, n)
	for i := 0; i < n; i++ {
		photos = append(photos, ProjectPhoto{
			ID:           fmt.Sprintf("id-%03d", i),
			FileName:     fmt.Sprintf("photo_%03d%s", i, exts[i%len(exts)]),
			Category:     aliases[i%len(aliases)],
			ShootingDate: "2023-06-01",
		})
	}
	return photos
}

func mapPhotos(t *testing.T, photos []ProjectPhoto) []FileMapping {
	t.Helper()
	req, err := Normalize(sampleMetadata(), ExportConfig{}, photos)
	require.NoError(t, err)
	mappings, err := MapFiles("Bridge_A", req.Standard, req.Photos)
	require.NoError(t, err)
	return mappings
}

func TestMapFiles_UniqueNames(t *testing.T) {
	mappings := mapPhotos(t, mixedPhotos(250))
	require.Len(t, mappings, 250)

	seen := map[string]bool{}
	for _, m := range mappings {
		assert.False(t, seen[m.DeliveryFileName], "duplicate %s", m.DeliveryFileName)
		seen[m.DeliveryFileName] = true
		assert.Regexp(t, deliveryNamePattern, m.DeliveryFileName)
	}
}

func TestMapFiles_Deterministic(t *testing.T) {
	first := mapPhotos(t, mixedPhotos(40))
	second := mapPhotos(t, mixedPhotos(40))
	assert.Equal(t, first, second)
}

func TestMapFiles_NamingConvention(t *testing.T) {
	mappings := mapPhotos(t, samplePhotos())
	require.Len(t, mappings, 3)

	assert.Equal(t, "P0200001.JPG", mappings[0].DeliveryFileName)
	assert.Equal(t, "P0300001.JPG", mappings[1].DeliveryFileName)
	assert.Equal(t, "P0200002.JPG", mappings[2].DeliveryFileName)

	for i, m := range mappings {
		assert.Equal(t, i+1, m.SerialNumber)
		assert.Equal(t, "Bridge_A/PIC", m.FolderPath)
	}
	assert.Equal(t, "IMG_0003.JPEG", mappings[2].OriginalFileName)
	assert.Equal(t, "Bridge_A/PIC/P0200002.JPG", mappings[2].Path())
}

func TestMapFiles_Empty(t *testing.T) {
	mappings, err := MapFiles("Bridge_A", standards[LatestStandard], nil)
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestDeliveryExtension(t *testing.T) {
	tests := map[string]string{
		"a.jpg":  ".JPG",
		"a.jpeg": ".JPG",
		"a.JPG":  ".JPG",
		"a":      ".JPG",
		"a.tiff": ".TIF",
		"a.png":  ".PNG",
	}
	for in, want := range tests {
		assert.Equal(t, want, deliveryExtension(in), in)
	}
}

func TestRootFolderName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Bridge A", "Bridge_A"},
		{"japanese", "〇〇橋 補修工事", "〇〇橋_補修工事"},
		{"illegal characters", `A:B/C\D*E?F"G<H>I|J`, "ABCDEFGHIJ"},
		{"collapsed whitespace", "  Road \t  Works  ", "Road_Works"},
		{"trailing dots", "Tunnel...", "Tunnel"},
		{"control characters", "Dam\x00\x07 Repair", "Dam_Repair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated, err := RootFolderName(tt.in)
			require.NoError(t, err)
			assert.False(t, truncated)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootFolderName_Truncates(t *testing.T) {
	long := strings.Repeat("橋", MaxFolderNameRunes+10)
	got, truncated, err := RootFolderName(long)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, MaxFolderNameRunes, len([]rune(got)))
}

func TestRootFolderName_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", `\/:*?"<>|`, "..."} {
		_, _, err := RootFolderName(in)
		requireCode(t, err, CodeInvalidFolderName)
	}
}

func TestNewFolderStructure(t *testing.T) {
	mappings := mapPhotos(t, samplePhotos())
	fs := NewFolderStructure("Bridge_A", standards[LatestStandard], mappings)
	assert.Equal(t, "Bridge_A", fs.RootFolder)
	assert.Equal(t, "Bridge_A/INDEX_D.XML", fs.IndexFile)
	assert.Equal(t, "Bridge_A/PHOTO.XML", fs.PhotoXMLFile)
	assert.Equal(t, "Bridge_A/PIC", fs.PhotoFolder)
	assert.Equal(t, []string{"Bridge_A/PIC/P0200001.JPG", "Bridge_A/PIC/P0300001.JPG", "Bridge_A/PIC/P0200002.JPG"}, fs.PhotoFiles)
}
