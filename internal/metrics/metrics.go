package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "ethwire"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"

	rpcSubsystem  = "rpc"
	pushSubsystem = "push"
)

// Labels holds constant labels applied to all metrics.
type Labels struct {
	ChainID  uint64 // e.g. 1 for mainnet
	Endpoint string // name of the node the client talks to
}

// toPrometheusLabels drops empty labels.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.ChainID != 0 {
		labels["chain_id"] = strconv.FormatUint(l.ChainID, 10)
	}
	if l.Endpoint != "" {
		labels["endpoint"] = l.Endpoint
	}
	return labels
}

type Metrics struct {
	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	rpcInFlight prometheus.Gauge
	rpcFaults   *prometheus.CounterVec

	decodeErrors *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec

	pushes *prometheus.CounterVec
}

// New creates a Metrics instance and registers it with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels is New with constant labels on every metric.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	if promLabels := labels.toPrometheusLabels(); len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: rpcSubsystem,
			Name:      "calls_total",
			Help:      "Total RPC calls by method and status",
		}, []string{"method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: rpcSubsystem,
			Name:      "duration_seconds",
			Help:      "RPC call duration in seconds, middleware included",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		rpcInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: rpcSubsystem,
			Name:      "in_flight",
			Help:      "Number of RPC calls currently in progress",
		}),
		rpcFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: rpcSubsystem,
			Name:      "faults_total",
			Help:      "JSON-RPC error responses by method and error code",
		}, []string{"method", "code"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "decode_errors_total",
			Help:      "Results that failed to decode, by record kind",
		}, []string{"kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by method and outcome",
		}, []string{"method", "result"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: pushSubsystem,
			Name:      "received_total",
			Help:      "Subscription pushes by subscription type and decode status",
		}, []string{"type", "status"}),
	}

	err := errors.Join(
		reg.Register(m.rpcCalls),
		reg.Register(m.rpcDuration),
		reg.Register(m.rpcInFlight),
		reg.Register(m.rpcFaults),
		reg.Register(m.decodeErrors),
		reg.Register(m.cacheLookups),
		reg.Register(m.pushes),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// IncRPCInFlight increments the in-flight RPC gauge.
func (m *Metrics) IncRPCInFlight() {
	if m == nil {
		return
	}
	m.rpcInFlight.Inc()
}

// DecRPCInFlight decrements the in-flight RPC gauge.
func (m *Metrics) DecRPCInFlight() {
	if m == nil {
		return
	}
	m.rpcInFlight.Dec()
}

// RecordRPCCall records an RPC call outcome.
func (m *Metrics) RecordRPCCall(method string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.rpcCalls.WithLabelValues(method, status).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordFault counts an error response from the node.
func (m *Metrics) RecordFault(method string, code int) {
	if m == nil {
		return
	}
	m.rpcFaults.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// IncDecodeError counts a result or push of the given record kind that failed
// to decode.
func (m *Metrics) IncDecodeError(kind string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordCacheLookup(method string, hit bool) {
	if m == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.cacheLookups.WithLabelValues(method, result).Inc()
}

// RecordPush records a subscription push and whether it decoded.
func (m *Metrics) RecordPush(subType string, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.pushes.WithLabelValues(subType, status).Inc()
}
