package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// HTTPClient is an Enhancer that calls the enhancement collaborator over HTTP.
// The collaborator shares a filesystem with this process (local sidecar or
// bind-mounted container), so images travel by path, not by payload.
type HTTPClient struct {
	baseURL    string
	client     *http.Client
	maxRetries uint
}

// HTTPConfig configures the enhancement HTTP client.
type HTTPConfig struct {
	BaseURL    string
	Timeout    time.Duration // per-image bound, default 2m
	MaxRetries uint          // transient network retries, default 3
}

// NewHTTPClient creates an enhancement client.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}
}

// Name returns the enhancer identifier.
func (c *HTTPClient) Name() string {
	return "degan-http"
}

type enhanceRequest struct {
	ImagePath string `json:"image_path"`
	Task      string `json:"task"`
}

type enhanceResponse struct {
	EnhancedPath string `json:"enhanced_path"`
	Error        string `json:"error,omitempty"`
}

// Enhance submits one page image for enhancement.
func (c *HTTPClient) Enhance(ctx context.Context, imagePath string, task Task) (string, error) {
	if !task.Valid() {
		return "", &Error{ImagePath: imagePath, Task: task, Err: fmt.Errorf("unknown task")}
	}

	body, err := json.Marshal(enhanceRequest{ImagePath: imagePath, Task: string(task)})
	if err != nil {
		return "", &Error{ImagePath: imagePath, Task: task, Err: err}
	}

	var enhanced string
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/enhance", bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode >= 500 {
				return fmt.Errorf("collaborator error (status %d): %s", resp.StatusCode, respBody)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("collaborator rejected request (status %d): %s", resp.StatusCode, respBody))
			}

			var er enhanceResponse
			if err := json.Unmarshal(respBody, &er); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
			}
			if er.Error != "" {
				return retry.Unrecoverable(fmt.Errorf("collaborator failed: %s", er.Error))
			}
			if er.EnhancedPath == "" {
				return retry.Unrecoverable(fmt.Errorf("collaborator returned no path"))
			}

			enhanced = er.EnhancedPath
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(time.Second),
	)
	if err != nil {
		return "", &Error{ImagePath: imagePath, Task: task, Err: err}
	}

	return enhanced, nil
}

// Verify interface
var _ Enhancer = (*HTTPClient)(nil)
