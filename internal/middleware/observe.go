package middleware

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ethwire/internal/format"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/metrics"
	"ethwire/internal/schema"
)

// Logging logs every call that passes through it. Successful calls are logged
// at debug level, failures at warn with the RPC error code when there is one.
type Logging struct {
	Base
	logger *zap.Logger
}

func NewLogging(logger *zap.Logger) *Logging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{logger: logger}
}

func (*Logging) Name() string { return "logging" }

func (l *Logging) OnResponse(_ context.Context, req *Request, result any) (any, error) {
	l.logger.Debug("rpc call",
		zap.String("method", req.Method),
		zap.Int("params", len(req.Params)),
		zap.Duration("duration", time.Since(req.Started)),
	)
	return result, nil
}

func (l *Logging) OnError(_ context.Context, req *Request, err error) {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.Duration("duration", time.Since(req.Started)),
		zap.Error(err),
	}
	var fault *jsonrpc.RPCFault
	if errors.As(err, &fault) {
		fields = append(fields, zap.Int("code", fault.Code))
	}
	l.logger.Warn("rpc call failed", fields...)
}

// Metrics records call counts, durations, in-flight calls, node faults and
// decode failures.
type Metrics struct {
	Base
	m *metrics.Metrics
}

func NewMetrics(m *metrics.Metrics) *Metrics {
	return &Metrics{m: m}
}

func (*Metrics) Name() string { return "metrics" }

func (s *Metrics) OnRequest(_ context.Context, req *Request) (*Request, *ShortCircuit, error) {
	s.m.IncRPCInFlight()
	return req, nil, nil
}

func (s *Metrics) OnResponse(_ context.Context, req *Request, result any) (any, error) {
	s.m.DecRPCInFlight()
	s.m.RecordRPCCall(req.Method, nil, time.Since(req.Started).Seconds())
	return result, nil
}

func (s *Metrics) OnError(_ context.Context, req *Request, err error) {
	s.m.DecRPCInFlight()
	s.m.RecordRPCCall(req.Method, err, time.Since(req.Started).Seconds())

	var fault *jsonrpc.RPCFault
	if errors.As(err, &fault) {
		s.m.RecordFault(req.Method, fault.Code)
	}
	if kind, ok := decodeKind(err); ok {
		s.m.IncDecodeError(string(kind))
	}
}

// decodeKind reports the record kind a decode error refers to.
func decodeKind(err error) (schema.Kind, bool) {
	var missing *schema.MissingFieldError
	if errors.As(err, &missing) {
		return missing.Kind, true
	}
	var unknown *schema.UnknownFieldError
	if errors.As(err, &unknown) {
		return unknown.Kind, true
	}
	var field *format.FieldError
	if errors.As(err, &field) {
		return field.Kind, true
	}
	return "", false
}
