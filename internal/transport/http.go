package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxResponseSize caps response bodies; full blocks with traces can be large.
const maxResponseSize = 128 << 20

// StatusError is a non-2xx HTTP reply. JSON-RPC errors arrive with status 200
// and are not reported this way.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// HTTP posts each envelope to a single endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
	opts     options
}

func NewHTTP(endpoint string, opts ...Option) *HTTP {
	o := buildOptions(opts)
	return &HTTP{
		endpoint: endpoint,
		client:   &http.Client{Timeout: o.timeout},
		opts:     o,
	}
}

func (h *HTTP) Send(ctx context.Context, req []byte) ([]byte, error) {
	var out []byte
	attempt := 0
	err := Retry(ctx, h.opts.maxRetries, h.opts.baseDelay, retryable, func(ctx context.Context) error {
		attempt++
		body, err := h.post(ctx, req)
		if err != nil {
			if attempt <= h.opts.maxRetries && retryable(err) {
				h.opts.logger.Warn("rpc post failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
			}
			return err
		}
		out = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *HTTP) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range h.opts.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return body, nil
}

func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

// retryable reports whether a failed post may succeed when repeated. Client
// errors other than rate limiting are final, as is cancellation.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500
	}
	return true
}
