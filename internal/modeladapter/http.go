package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAdapter is a generic JSON-over-HTTP client against a caller-configured
// base URL. It is deliberately provider-agnostic: the spec places "the model
// provider adapter" out of scope (§1), so this adapter never assumes a
// specific provider's request shape — callers that need one wrap HTTPAdapter
// or implement Adapter directly.
type HTTPAdapter struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPAdapter builds an HTTPAdapter with a timeout-bound http.Client,
// grounded on the teacher's provider-client pattern of a single
// http.Client{Timeout: ...} per adapter instance.
func NewHTTPAdapter(baseURL string, timeout time.Duration) *HTTPAdapter {
	return &HTTPAdapter{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type httpRequestBody struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type httpResponseBody struct {
	Text string `json:"text"`
}

// Call posts {model, prompt} to BaseURL and returns the "text" field of the
// JSON response. It retries once when an attempt fails for any reason (a
// transport error, a non-2xx status, or an undecodable body), matching the
// teacher's provider clients' single-retry posture.
func (a *HTTPAdapter) Call(ctx context.Context, modelID, prompt string) (string, error) {
	body, err := json.Marshal(httpRequestBody{Model: modelID, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("modeladapter: marshal request: %w", err)
	}

	text, err := a.post(ctx, body)
	if err != nil {
		// Single retry on any failed attempt.
		text, err = a.post(ctx, body)
	}
	if err != nil {
		return "", fmt.Errorf("modeladapter: call %s: %w", modelID, err)
	}
	return text, nil
}

func (a *HTTPAdapter) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("non-OK response %d: %s", resp.StatusCode, string(respBody))
	}

	var out httpResponseBody
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Text, nil
}
