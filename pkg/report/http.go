package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize bounds how much of a response body is kept for logging.
const maxBodySize = 64 << 10

// HTTP posts payloads to a fixed URL.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP submitter. A zero timeout keeps the transport default.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// NewHTTPWithClient creates an HTTP submitter using the given client.
func NewHTTPWithClient(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: url, client: client}
}

// URL returns the endpoint.
func (h *HTTP) URL() string {
	return h.url
}

// Submit posts the payload with a JSON content type. Any HTTP status counts as
// a completed submission. At most 64 KiB of the body is kept; longer bodies are
// cut and flagged Truncated.
func (h *HTTP) Submit(ctx context.Context, payload []byte) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return Response{StatusCode: TransportErrorCode}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", ContentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return Response{StatusCode: TransportErrorCode}, fmt.Errorf("failed to post payload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("failed to read response body: %w", err)
	}

	truncated := len(body) > maxBodySize
	if truncated {
		body = body[:maxBodySize]
	}
	return Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Truncated:  truncated,
	}, nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
