package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RealtimeClient broadcasts events through the Realtime REST endpoint so
// clients subscribed to project:<id> see export progress.
type RealtimeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type broadcastMessage struct {
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

type broadcastRequest struct {
	Messages []broadcastMessage `json:"messages"`
}

func NewRealtimeClient(supabaseURL, apiKey string) *RealtimeClient {
	return &RealtimeClient{
		baseURL: strings.TrimSuffix(supabaseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *RealtimeClient) PublishEvent(ctx context.Context, channel, event string, payload map[string]any) error {
	body, err := json.Marshal(broadcastRequest{
		Messages: []broadcastMessage{{Topic: channel, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/realtime/v1/api/broadcast", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to publish event: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (r *RealtimeClient) PublishProjectEvent(ctx context.Context, projectID uuid.UUID, event string, payload map[string]any) error {
	return r.PublishEvent(ctx, fmt.Sprintf("project:%s", projectID.String()), event, payload)
}

// Event names
const (
	EventExportProgress  = "export_progress"
	EventExportCompleted = "export_completed"
	EventExportFailed    = "export_failed"
	EventPhotoUploaded   = "photo_uploaded"
)

// Event payloads
func ExportProgressPayload(projectID uuid.UUID, step string, percent int, message string) map[string]any {
	return map[string]any{
		"project_id": projectID.String(),
		"step":       step,
		"progress":   percent,
		"message":    message,
	}
}

func ExportCompletedPayload(projectID, exportID uuid.UUID, format string, photoCount int, isValid bool) map[string]any {
	return map[string]any{
		"project_id":  projectID.String(),
		"export_id":   exportID.String(),
		"status":      "completed",
		"format":      format,
		"photo_count": photoCount,
		"is_valid":    isValid,
	}
}

func ExportFailedPayload(projectID uuid.UUID, errorMsg string) map[string]any {
	return map[string]any{
		"project_id": projectID.String(),
		"status":     "failed",
		"error":      errorMsg,
	}
}

func PhotoUploadedPayload(projectID, photoID uuid.UUID, fileName string) map[string]any {
	return map[string]any{
		"project_id": projectID.String(),
		"photo_id":   photoID.String(),
		"file_name":  fileName,
	}
}
