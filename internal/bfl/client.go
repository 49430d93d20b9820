package bfl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to the BFL REST API. It implements Client.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the BFL API at baseURL, authenticating
// every request with the given API key.
func NewHTTPClient(apiKey, baseURL string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
}

// Submit posts a generation request to the named endpoint and returns the
// task id assigned by the service.
func (c *HTTPClient) Submit(ctx context.Context, endpoint string, payload map[string]interface{}) (string, error) {
	if endpoint == "" {
		return "", &ValidationError{Msg: "endpoint name is required"}
	}
	if payload == nil {
		return "", &ValidationError{Msg: "request payload is required"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/%s", c.baseURL, endpoint)
	c.logger.Debug("Submitting generation request", "url", reqURL, "body_bytes", len(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("x-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var submitResp SubmitResponse
	if err := json.Unmarshal(respBody, &submitResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.logger.Debug("Task submitted", "id", submitResp.ID, "polling_url", submitResp.PollingURL)
	return submitResp.ID, nil
}

// FetchStatus retrieves the current status of a task.
func (c *HTTPClient) FetchStatus(ctx context.Context, id string) (*TaskResult, error) {
	if id == "" {
		return nil, &ValidationError{Msg: "task id is required"}
	}

	reqURL := fmt.Sprintf("%s/v1/get_result?id=%s", c.baseURL, url.QueryEscape(id))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("x-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result TaskResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// AwaitCompletion polls a task until it reaches a terminal status or the
// wall-clock ceiling elapses. Ready results are returned; every other
// terminal status becomes a TaskFailedError. Submission and status-fetch
// errors are not retried; retry policy belongs to the caller.
func (c *HTTPClient) AwaitCompletion(ctx context.Context, id string, opts AwaitOptions) (*TaskResult, error) {
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	start := time.Now()
	pollCount := 0

	for time.Since(start) < maxWait {
		result, err := c.FetchStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		pollCount++

		if opts.OnProgress != nil {
			opts.OnProgress(result)
		}

		if result.Status == StatusReady {
			c.logger.Debug("Task completed", "id", id, "polls", pollCount)
			return result, nil
		}
		if result.Status.Terminal() {
			return nil, &TaskFailedError{Status: result.Status, Details: result.Details}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	c.logger.Debug("Task wait ceiling reached", "id", id, "polls", pollCount, "max_wait", maxWait)
	return nil, &TimeoutError{Waited: maxWait}
}
