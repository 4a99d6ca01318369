package supabase_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"kouji-photo-backend/internal/supabase"
)

func TestPhotoPathFormat(t *testing.T) {
	projectID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	photoID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	path := supabase.PhotoPath(projectID, photoID, ".JPG")

	assert.Equal(t, "projects/11111111-1111-1111-1111-111111111111/photos/22222222-2222-2222-2222-222222222222.jpg", path)
}

func TestExportPathFormat(t *testing.T) {
	projectID := uuid.New()
	exportID := uuid.New()

	path := supabase.ExportPath(projectID, exportID, "ROOT_1.zip")

	assert.True(t, strings.HasPrefix(path, "projects/"+projectID.String()+"/exports/"))
	assert.Contains(t, path, exportID.String())
	assert.True(t, strings.HasSuffix(path, "/ROOT_1.zip"))
}
