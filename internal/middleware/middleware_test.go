package middleware

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ethwire/internal/codec"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/metrics"
	"ethwire/internal/model"
	"ethwire/internal/schema"
)

type recorder struct {
	Base
	name  string
	trace *[]string
	short bool
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnRequest(_ context.Context, req *Request) (*Request, *ShortCircuit, error) {
	*r.trace = append(*r.trace, "req:"+r.name)
	if r.short {
		return req, &ShortCircuit{Result: "cached"}, nil
	}
	return req.WithParams(append(req.Params, r.name)), nil, nil
}

func (r *recorder) OnResponse(_ context.Context, _ *Request, result any) (any, error) {
	*r.trace = append(*r.trace, "resp:"+r.name)
	return fmt.Sprintf("%v+%s", result, r.name), nil
}

func (r *recorder) OnError(_ context.Context, _ *Request, err error) {
	*r.trace = append(*r.trace, "err:"+r.name)
}

func TestChainOnionOrder(t *testing.T) {
	var trace []string
	c := NewChain(
		&recorder{name: "a", trace: &trace},
		&recorder{name: "b", trace: &trace},
		&recorder{name: "c", trace: &trace},
	)

	out, err := c.Do(context.Background(), &Request{Method: "eth_chainId"}, func(_ context.Context, req *Request) (any, error) {
		trace = append(trace, "call")
		assert.Equal(t, []any{"a", "b", "c"}, req.Params)
		return "r", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "r+c+b+a", out)
	assert.Equal(t, []string{"req:a", "req:b", "req:c", "call", "resp:c", "resp:b", "resp:a"}, trace)
}

func TestChainShortCircuit(t *testing.T) {
	var trace []string
	c := NewChain(
		&recorder{name: "a", trace: &trace},
		&recorder{name: "b", trace: &trace, short: true},
		&recorder{name: "c", trace: &trace},
	)

	out, err := c.Do(context.Background(), &Request{Method: "eth_chainId"}, func(context.Context, *Request) (any, error) {
		t.Fatal("final handler must not run")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cached+a", out)
	assert.Equal(t, []string{"req:a", "req:b", "resp:a"}, trace)
}

type failing struct {
	Base
}

func (failing) Name() string { return "failing" }

func (failing) OnRequest(context.Context, *Request) (*Request, *ShortCircuit, error) {
	return nil, nil, errors.New("no")
}

func TestChainErrors(t *testing.T) {
	var trace []string
	fault := &jsonrpc.RPCFault{Code: -32000, Message: "header not found"}

	c := NewChain(&recorder{name: "a", trace: &trace}, &recorder{name: "b", trace: &trace})
	_, err := c.Do(context.Background(), &Request{Method: "eth_getBlockByNumber"}, func(context.Context, *Request) (any, error) {
		return nil, fault
	})
	assert.Same(t, fault, err)
	assert.Equal(t, []string{"req:a", "req:b", "err:b", "err:a"}, trace)

	trace = nil
	c = NewChain(&recorder{name: "a", trace: &trace}, failing{})
	_, err = c.Do(context.Background(), &Request{Method: "eth_chainId"}, func(context.Context, *Request) (any, error) {
		t.Fatal("final handler must not run")
		return nil, nil
	})
	require.EqualError(t, err, "failing: no")
	assert.Equal(t, []string{"req:a", "err:a"}, trace)
}

// fakeCaller answers auxiliary calls from a table and records them.
type fakeCaller struct {
	results map[string]any
	errs    map[string]error
	calls   []string
	params  map[string][]any
}

func (f *fakeCaller) Call(_ context.Context, method string, params ...any) (any, error) {
	f.calls = append(f.calls, method)
	if f.params == nil {
		f.params = make(map[string][]any)
	}
	f.params[method] = params
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	res, ok := f.results[method]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s", method)
	}
	return res, nil
}

func send(t *testing.T, s Stage, tx *model.TxParams) (*model.TxParams, error) {
	t.Helper()
	next, short, err := s.OnRequest(context.Background(), &Request{Method: "eth_sendTransaction", Params: []any{tx}})
	if err != nil {
		return nil, err
	}
	require.Nil(t, short)
	out, ok := next.Params[0].(*model.TxParams)
	require.True(t, ok)
	return out, nil
}

func TestFeeNormalizer(t *testing.T) {
	gwei := func(n uint64) *codec.Wei { return codec.GweiFromUint64(n).ToWei() }
	london := &fakeCaller{results: map[string]any{
		"eth_getBlockByNumber":     &model.Block{BaseFeePerGas: gwei(10)},
		"eth_maxPriorityFeePerGas": gwei(2),
	}}

	t.Run("neither style", func(t *testing.T) {
		in := &model.TxParams{}
		out, err := send(t, NewFeeNormalizer(london, nil), in)
		require.NoError(t, err)
		assert.Equal(t, gwei(2), out.MaxPriorityFeePerGas)
		assert.Equal(t, gwei(22), out.MaxFeePerGas)
		assert.Equal(t, uint64(model.DynamicFeeTxType), *out.Type)
		assert.Nil(t, in.MaxFeePerGas, "caller params must not be mutated")
	})

	t.Run("partial dynamic", func(t *testing.T) {
		out, err := send(t, NewFeeNormalizer(london, nil), &model.TxParams{MaxFeePerGas: gwei(50)})
		require.NoError(t, err)
		assert.Equal(t, gwei(50), out.MaxFeePerGas)
		assert.Equal(t, gwei(2), out.MaxPriorityFeePerGas)
	})

	t.Run("legacy kept", func(t *testing.T) {
		out, err := send(t, NewFeeNormalizer(&fakeCaller{}, nil), &model.TxParams{GasPrice: gwei(5)})
		require.NoError(t, err)
		assert.Equal(t, uint64(model.LegacyTxType), *out.Type)
		assert.Nil(t, out.MaxFeePerGas)
	})

	t.Run("pre-london", func(t *testing.T) {
		caller := &fakeCaller{results: map[string]any{
			"eth_getBlockByNumber": &model.Block{},
			"eth_gasPrice":         gwei(3),
		}}
		out, err := send(t, NewFeeNormalizer(caller, nil), &model.TxParams{})
		require.NoError(t, err)
		assert.Equal(t, gwei(3), out.GasPrice)
		assert.False(t, out.HasDynamicFee())
	})

	t.Run("fault aborts", func(t *testing.T) {
		caller := &fakeCaller{
			results: map[string]any{"eth_getBlockByNumber": &model.Block{BaseFeePerGas: gwei(1)}},
			errs:    map[string]error{"eth_maxPriorityFeePerGas": &jsonrpc.RPCFault{Code: -32601, Message: "method not found"}},
		}
		_, err := send(t, NewFeeNormalizer(caller, nil), &model.TxParams{})
		var fault *jsonrpc.RPCFault
		require.ErrorAs(t, err, &fault)
		assert.Equal(t, -32601, fault.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		_, err := send(t, NewFeeNormalizer(london, nil), &model.TxParams{GasPrice: gwei(1), MaxFeePerGas: gwei(1)})
		var conflict *schema.ConflictingFeeFieldsError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("tip above cap", func(t *testing.T) {
		_, err := send(t, NewFeeNormalizer(london, nil), &model.TxParams{MaxFeePerGas: gwei(1), MaxPriorityFeePerGas: gwei(2)})
		require.Error(t, err)
	})

	t.Run("other methods untouched", func(t *testing.T) {
		req := &Request{Method: "eth_call", Params: []any{&model.TxParams{}}}
		next, _, err := NewFeeNormalizer(london, nil).OnRequest(context.Background(), req)
		require.NoError(t, err)
		assert.Same(t, req, next)
	})
}

func TestNonceAndGas(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	caller := &fakeCaller{results: map[string]any{
		"eth_getTransactionCount": codec.Nonce(7),
		"eth_estimateGas":         uint64(21000),
	}}

	out, err := send(t, NewNonceFiller(caller), &model.TxParams{From: &from})
	require.NoError(t, err)
	assert.Equal(t, codec.Nonce(7), *out.Nonce)
	assert.Equal(t, []any{from, codec.TagPending}, caller.params["eth_getTransactionCount"])

	out, err = send(t, NewGasEstimator(caller), out)
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), *out.Gas)

	caller.calls = nil
	gas := uint64(50000)
	_, err = send(t, NewGasEstimator(caller), &model.TxParams{Gas: &gas})
	require.NoError(t, err)
	assert.Empty(t, caller.calls)
}

func poaBlock() *model.Block {
	extra := make(codec.HexBlob, 97)
	for i := range extra {
		extra[i] = byte(i)
	}
	return &model.Block{ExtraData: extra}
}

func TestPoAStages(t *testing.T) {
	req := &Request{Method: "eth_getBlockByNumber"}

	_, err := NewPoAValidator().OnResponse(context.Background(), req, poaBlock())
	var lenErr *ExtraDataLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 97, lenErr.Length)

	c := NewChain(NewPoAValidator(), NewPoATrimmer())
	out, err := c.Do(context.Background(), req, func(context.Context, *Request) (any, error) {
		return poaBlock(), nil
	})
	require.NoError(t, err)
	block := out.(*model.Block)
	assert.Len(t, block.ExtraData, 32)
	assert.Equal(t, `"`+poaBlock().ExtraData.String()+`"`, string(block.Extra[ProofOfAuthorityKey]))

	small := &model.Block{ExtraData: codec.HexBlob{1, 2, 3}}
	out, err = NewPoAValidator().OnResponse(context.Background(), req, small)
	require.NoError(t, err)
	assert.Same(t, small, out)

	out, err = NewPoAValidator().OnResponse(context.Background(), &Request{Method: "eth_getBlockByNumber"}, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	cache, err := NewCache(16, WithCacheMetrics(m))
	require.NoError(t, err)
	c := NewChain(cache)

	calls := 0
	final := func(context.Context, *Request) (any, error) {
		calls++
		return big.NewInt(1), nil
	}

	first, err := c.Do(context.Background(), &Request{Method: "eth_chainId"}, final)
	require.NoError(t, err)
	first.(*big.Int).SetInt64(99)

	second, err := c.Do(context.Background(), &Request{Method: "eth_chainId"}, final)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), second.(*big.Int).Int64())

	_, err = c.Do(context.Background(), &Request{Method: "eth_blockNumber"}, final)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())

	n, err := testutil.GatherAndCount(reg, "ethwire_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoggingAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	c := NewChain(NewLogging(zap.New(core)), NewMetrics(m))
	_, err = c.Do(context.Background(), &Request{Method: "eth_chainId"}, func(context.Context, *Request) (any, error) {
		return big.NewInt(1), nil
	})
	require.NoError(t, err)

	_, err = c.Do(context.Background(), &Request{Method: "eth_call"}, func(context.Context, *Request) (any, error) {
		return nil, fmt.Errorf("send: %w", &jsonrpc.RPCFault{Code: 3, Message: "execution reverted"})
	})
	require.Error(t, err)

	_, err = c.Do(context.Background(), &Request{Method: "eth_getTransactionReceipt"}, func(context.Context, *Request) (any, error) {
		return nil, &schema.MissingFieldError{Kind: schema.Receipt, Fields: []string{"status"}}
	})
	require.Error(t, err)

	require.Equal(t, 3, logs.Len())
	failed := logs.FilterMessage("rpc call failed").All()
	require.Len(t, failed, 2)
	assert.Equal(t, int64(3), failed[0].ContextMap()["code"])

	expected := `
# HELP ethwire_rpc_faults_total JSON-RPC error responses by method and error code
# TYPE ethwire_rpc_faults_total counter
ethwire_rpc_faults_total{code="3",method="eth_call"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ethwire_rpc_faults_total"))

	expected = `
# HELP ethwire_decode_errors_total Results that failed to decode, by record kind
# TYPE ethwire_decode_errors_total counter
ethwire_decode_errors_total{kind="Receipt"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ethwire_decode_errors_total"))

	expected = `
# HELP ethwire_rpc_in_flight Number of RPC calls currently in progress
# TYPE ethwire_rpc_in_flight gauge
ethwire_rpc_in_flight 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ethwire_rpc_in_flight"))
}
