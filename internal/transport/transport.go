// Package transport moves encoded JSON-RPC envelopes to a node and back.
package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Transport sends one request envelope and returns the response envelope.
type Transport interface {
	Send(ctx context.Context, req []byte) ([]byte, error)
	Close() error
}

// PushSource is implemented by transports that receive server pushes.
// Handlers get the raw eth_subscription envelope.
type PushSource interface {
	OnPush(fn func(raw []byte))
}

// Subscriber is implemented by transports that own subscription bookkeeping.
// args are the wire-encoded params that follow the subscription type.
type Subscriber interface {
	Subscribe(ctx context.Context, subType string, args ...any) (string, error)
	Unsubscribe(ctx context.Context, id string) error
}

// Reconnecter is implemented by transports that can lose and re-establish their
// connection. Hooks run after every reconnect.
type Reconnecter interface {
	OnReconnect(fn func())
}

type options struct {
	logger     *zap.Logger
	headers    map[string]string
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHeaders sets extra HTTP headers, e.g. an API key.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetries retries failed HTTP attempts with exponential backoff starting
// at baseDelay.
func WithRetries(maxRetries int, baseDelay time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.baseDelay = baseDelay
	}
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:   30 * time.Second,
		baseDelay: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Dial picks a transport from the endpoint scheme. http and https get the
// plain HTTP transport; ws, wss and IPC paths go through go-ethereum's rpc
// client, which supports subscriptions.
func Dial(ctx context.Context, endpoint string, opts ...Option) (Transport, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty endpoint")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTP(endpoint, opts...), nil
	case "ws", "wss", "":
		return DialGeth(ctx, endpoint, opts...)
	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
}
