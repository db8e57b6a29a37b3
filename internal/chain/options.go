package chain

import (
	"go.uber.org/zap"

	"ethwire/internal/format"
	"ethwire/internal/methods"
	"ethwire/internal/metrics"
	"ethwire/internal/middleware"
	"ethwire/internal/storage"
	"ethwire/internal/transport"
)

// PoAMode selects how blocks with oversized extraData are handled.
type PoAMode int

const (
	PoAOff PoAMode = iota
	// PoAValidate rejects blocks whose extraData exceeds 32 bytes.
	PoAValidate
	// PoATrim trims them and keeps the full value in the block's Extra map.
	PoATrim
)

type settings struct {
	engine        *format.Engine
	table         *methods.Table
	logger        *zap.Logger
	metrics       *metrics.Metrics
	capture       storage.Storage
	endpoint      string
	transportOpts []transport.Option
	cacheSize     int
	cacheMethods  []string
	coalesce      []string
	poa           PoAMode
	fillTx        bool
	strict        bool
	stages        []middleware.Stage
}

type Option func(*settings)

func buildSettings(opts []Option) settings {
	s := settings{coalesce: DefaultCoalesceMethods}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func WithEngine(e *format.Engine) Option {
	return func(s *settings) { s.engine = e }
}

func WithMethods(t *methods.Table) Option {
	return func(s *settings) { s.table = t }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithCapture records every exchange in st.
func WithCapture(st storage.Storage) Option {
	return func(s *settings) { s.capture = st }
}

// WithEndpoint names the node in captures. Dial sets it.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) { s.endpoint = endpoint }
}

func WithTransportOptions(opts ...transport.Option) Option {
	return func(s *settings) { s.transportOpts = append(s.transportOpts, opts...) }
}

// WithCache enables the result cache. Without methods the default set is
// cached.
func WithCache(size int, methods ...string) Option {
	return func(s *settings) {
		s.cacheSize = size
		s.cacheMethods = methods
	}
}

// WithCoalesce replaces the set of methods whose identical in-flight calls
// share one round trip. No methods disables coalescing.
func WithCoalesce(methods ...string) Option {
	return func(s *settings) { s.coalesce = methods }
}

func WithPoA(mode PoAMode) Option {
	return func(s *settings) { s.poa = mode }
}

// WithTxFilling fills fees, nonce and gas of outgoing transactions.
func WithTxFilling() Option {
	return func(s *settings) { s.fillTx = true }
}

// WithStrict rejects methods missing from the method table.
func WithStrict() Option {
	return func(s *settings) { s.strict = true }
}

// WithStages appends stages after the built-in ones.
func WithStages(stages ...middleware.Stage) Option {
	return func(s *settings) { s.stages = append(s.stages, stages...) }
}
