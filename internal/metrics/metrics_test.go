package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	require.Equal(t, prometheus.Labels{}, Labels{}.toPrometheusLabels())
	require.Equal(t,
		prometheus.Labels{"chain_id": "1", "endpoint": "mainnet"},
		Labels{ChainID: 1, Endpoint: "mainnet"}.toPrometheusLabels(),
	)
}

func TestNew_RegistrationError(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	m, err := New(reg)
	require.Nil(t, m)
	var alreadyRegistered prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &alreadyRegistered)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.IncRPCInFlight()
		m.DecRPCInFlight()
		m.RecordRPCCall("eth_chainId", nil, 0.1)
		m.RecordFault("eth_call", 3)
		m.IncDecodeError("Block")
		m.RecordCacheLookup("eth_chainId", true)
		m.RecordPush("newHeads", nil)
	})
}

func TestMetrics_Counters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordRPCCall("eth_chainId", nil, 0.01)
	m.RecordRPCCall("eth_chainId", errors.New("boom"), 0.02)
	m.RecordRPCCall("eth_chainId", nil, 0.01)
	require.Equal(t, float64(2), testutil.ToFloat64(m.rpcCalls.WithLabelValues("eth_chainId", StatusSuccess)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.rpcCalls.WithLabelValues("eth_chainId", StatusError)))

	m.RecordFault("eth_call", -32000)
	require.Equal(t, float64(1), testutil.ToFloat64(m.rpcFaults.WithLabelValues("eth_call", "-32000")))

	m.IncRPCInFlight()
	m.IncRPCInFlight()
	m.DecRPCInFlight()
	require.Equal(t, float64(1), testutil.ToFloat64(m.rpcInFlight))

	m.IncDecodeError("Receipt")
	require.Equal(t, float64(1), testutil.ToFloat64(m.decodeErrors.WithLabelValues("Receipt")))

	m.RecordCacheLookup("net_version", false)
	m.RecordCacheLookup("net_version", true)
	require.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues("net_version", CacheHit)))

	m.RecordPush("logs", errors.New("bad log"))
	require.Equal(t, float64(1), testutil.ToFloat64(m.pushes.WithLabelValues("logs", StatusError)))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewWithLabels(reg, Labels{ChainID: 1})
	require.NoError(t, err)
	m.RecordRPCCall("eth_blockNumber", nil, 0.01)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ethwire_rpc_calls_total")
	require.Contains(t, string(body), `chain_id="1"`)

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}
