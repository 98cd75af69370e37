package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout  = 8 * time.Second
	maxErrorBodyLen = 4096
)

// restClient is the shared JSON-over-HTTP plumbing of the gateway clients.
type restClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newRESTClient(baseURL, apiKey string, timeout time.Duration) restClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return restClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// do sends a JSON request and returns the response. The caller closes the body.
func (c restClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// errorPayload is the error body shape returned by the collaborator APIs.
// Either field may carry the message.
type errorPayload struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// readErrorMessage extracts a human-readable message from a failed response.
func readErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	var p errorPayload
	if err := json.Unmarshal(raw, &p); err == nil {
		if msg := strings.TrimSpace(p.Message); msg != "" {
			return msg
		}
		switch e := p.Error.(type) {
		case string:
			if msg := strings.TrimSpace(e); msg != "" {
				return msg
			}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && strings.TrimSpace(msg) != "" {
				return strings.TrimSpace(msg)
			}
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
