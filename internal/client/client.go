// Package client talks to the backtest and valuation services. Each call is a
// single attempt; failures are returned as *TransportError.
package client

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
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request when no option overrides it.
const DefaultTimeout = 60 * time.Second

// RequestIDHeader carries a per-request id for correlating logs.
const RequestIDHeader = "X-Request-Id"

// maxBody caps how much of a response is read.
const maxBody = 32 << 20

// Option configures a client.
type Option func(*base)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(b *base) {
		b.http = hc
	}
}

// WithTimeout sets the http.Client timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		b.http.Timeout = d
	}
}

// WithLogger sets the logger for request logging.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(b *base) {
		b.log = l
	}
}

type base struct {
	endpoint string
	http     *http.Client
	log      *zap.SugaredLogger
}

func newBase(endpoint string, opts []Option) base {
	b := base{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Endpoint returns the service base URL.
func (b *base) Endpoint() string {
	return b.endpoint
}

// do sends one request and returns the body of a 2xx response.
func (b *base) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	url := b.endpoint + path
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	resp, err := b.http.Do(req)
	if err != nil {
		b.log.Warnw("request failed", "id", id, "method", method, "url", url, "error", err)
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Status: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	b.log.Debugw("request done",
		"id", id,
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(data),
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Method:  method,
			URL:     url,
			Status:  resp.StatusCode,
			Message: errorMessage(data),
		}
	}
	return data, nil
}

func (b *base) postJSON(ctx context.Context, path string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return b.do(ctx, http.MethodPost, path, "application/json", body)
}

// Ping checks that the service answers at its base URL. Any HTTP response
// counts as reachable.
func (b *base) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"/", nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return 0, &TransportError{Method: http.MethodGet, URL: b.endpoint + "/", Err: err}
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
