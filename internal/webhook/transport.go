package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// maxResponseBody bounds how much of the webhook's reply is kept.
const maxResponseBody = 64 << 10

// Response is what the webhook answered.
type Response struct {
	Status int
	Body   string
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport posts a JSON body to an endpoint. An error means no response arrived.
type Transport interface {
	Post(ctx context.Context, endpoint string, body []byte) (Response, error)
}

// HTTPTransport is the net/http Transport. It adds no auth headers and
// never retries.
type HTTPTransport struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPTransport creates a transport whose requests time out after timeout.
func NewHTTPTransport(timeout time.Duration, logger *zap.Logger) *HTTPTransport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Post sends body to endpoint as JSON.
func (t *HTTPTransport) Post(ctx context.Context, endpoint string, body []byte) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		// *url.Error repeats the URL, and with it the webhook token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return Response{}, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	// The URL embeds the webhook token; log only the outcome
	t.logger.Debug("webhook post",
		zap.Int("status", resp.StatusCode),
		zap.Int("payload_bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	return Response{Status: resp.StatusCode, Body: string(data)}, nil
}
