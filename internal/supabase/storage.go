package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client       *storage.Client
	photoBucket  string
	exportBucket string
	baseURL      string
}

func NewStorageClient(supabaseURL, serviceRoleKey, photoBucket, exportBucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &StorageClient{
		client:       storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		photoBucket:  photoBucket,
		exportBucket: exportBucket,
		baseURL:      baseURL,
	}
}

// PhotoPath is projects/{project_id}/photos/{photo_id}{ext}.
func PhotoPath(projectID, photoID uuid.UUID, ext string) string {
	return fmt.Sprintf("projects/%s/photos/%s%s", projectID, photoID, strings.ToLower(ext))
}

// ExportPath is projects/{project_id}/exports/{export_id}/{file_name}.
func ExportPath(projectID, exportID uuid.UUID, fileName string) string {
	return fmt.Sprintf("projects/%s/exports/%s/%s", projectID, exportID, fileName)
}

func (s *StorageClient) UploadPhoto(storagePath, contentType string, data []byte) error {
	upsert := false
	_, err := s.client.UploadFile(s.photoBucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload photo: %w", err)
	}
	return nil
}

func (s *StorageClient) DownloadPhoto(storagePath string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.photoBucket, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	return data, nil
}

func (s *StorageClient) DeletePhoto(storagePath string) error {
	if _, err := s.client.RemoveFile(s.photoBucket, []string{storagePath}); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func (s *StorageClient) UploadExport(storagePath string, data []byte) error {
	contentType := "application/zip"
	upsert := true
	_, err := s.client.UploadFile(s.exportBucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload export archive: %w", err)
	}
	return nil
}

// SignedExportURL returns a time-limited download link for an archived export.
func (s *StorageClient) SignedExportURL(storagePath string, expiresIn int) (string, error) {
	resp, err := s.client.CreateSignedUrl(s.exportBucket, storagePath, expiresIn)
	if err != nil {
		return "", fmt.Errorf("failed to sign export url: %w", err)
	}
	if strings.HasPrefix(resp.SignedURL, "/") {
		return s.baseURL + "/storage/v1" + resp.SignedURL, nil
	}
	return resp.SignedURL, nil
}
