package attempts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/study-ai/backend/internal/models"
)

// LocalReporter records attempts in-process for a fixed user. It satisfies
// session.Reporter.
type LocalReporter struct {
	service *Service
	userID  int64
}

func NewLocalReporter(service *Service, userID int64) *LocalReporter {
	return &LocalReporter{service: service, userID: userID}
}

func (r *LocalReporter) Report(ctx context.Context, report models.AttemptReport) (*models.AttemptRewards, error) {
	return r.service.Record(ctx, r.userID, report)
}

// HTTPReporter posts attempts to a remote server's /api/v1/quiz-attempts.
type HTTPReporter struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPReporter targets baseURL (scheme and host, optionally a path
// prefix). A nil client gets a 30 second timeout.
func NewHTTPReporter(baseURL, token string, client *http.Client) *HTTPReporter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPReporter{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/v1/quiz-attempts",
		token:    token,
		client:   client,
	}
}

func (r *HTTPReporter) Report(ctx context.Context, report models.AttemptReport) (*models.AttemptRewards, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post attempt: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("attempt rejected (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("attempt rejected (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out models.AttemptResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out.Data, nil
}
