package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kouji-photo-backend/internal/delivery"
	"kouji-photo-backend/internal/uploadqueue"
)

// Client posts photos to the project photo endpoint. It satisfies
// uploadqueue.Transport.
type Client struct {
	baseURL    string
	token      string
	projectID  string
	httpClient *http.Client
}

type listResponse struct {
	Photos []delivery.ProjectPhoto `json:"photos"`
}

func NewClient(baseURL, token, projectID string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		token:     token,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (c *Client) photosURL() string {
	return fmt.Sprintf("%s/api/projects/%s/photos", c.baseURL, url.PathEscape(c.projectID))
}

// Upload sends one file as multipart/form-data. Metadata entries become
// form fields (category, shootingDate, title).
func (c *Client) Upload(ctx context.Context, f uploadqueue.File) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range f.Metadata {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile("file", f.Name)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.photosURL(), &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %w", f.Name, uploadqueue.ErrDuplicate)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("upload %s failed: status %d, body: %s", f.Name, resp.StatusCode, string(respBody))
	}
	return nil
}

// ListPhotos returns the project's photo catalog.
func (c *Client) ListPhotos(ctx context.Context) ([]delivery.ProjectPhoto, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.photosURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list photos: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result listResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return result.Photos, nil
}
