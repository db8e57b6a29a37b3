package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethwire/internal/jsonrpc"
	"ethwire/internal/transport/transporttest"
)

const chainIDRequest = `{"jsonrpc":"2.0","id":7,"method":"eth_chainId","params":[]}`

func TestHTTPSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, chainIDRequest, string(body))
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":7,"result":"0x1"}`))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, WithHeaders(map[string]string{"X-Api-Key": "secret"}))
	defer h.Close()

	out, err := h.Send(context.Background(), []byte(chainIDRequest))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":"0x1"}`, string(out))
}

func TestHTTPRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":7,"result":"0x1"}`))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, WithRetries(3, time.Millisecond))
	_, err := h.Send(context.Background(), []byte(chainIDRequest))
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestHTTPClientErrorIsFinal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, WithRetries(3, time.Millisecond))
	_, err := h.Send(context.Background(), []byte(chainIDRequest))
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusBadRequest, status.StatusCode)
	assert.Equal(t, "bad request", status.Body)
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTP(srv.URL, WithRetries(5, time.Hour)).Send(ctx, []byte(chainIDRequest))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, nil, func(context.Context) error {
		calls++
		return errors.New("down")
	})
	require.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)

	calls = 0
	final := errors.New("final")
	err = Retry(context.Background(), 5, time.Millisecond, func(err error) bool { return err != final }, func(context.Context) error {
		calls++
		return final
	})
	assert.Same(t, final, err)
	assert.Equal(t, 1, calls)
}

func TestDialSchemes(t *testing.T) {
	tr, err := Dial(context.Background(), "http://127.0.0.1:8545")
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, tr)

	_, err = Dial(context.Background(), "ftp://node")
	assert.ErrorContains(t, err, "unsupported endpoint scheme")

	_, err = Dial(context.Background(), "")
	assert.Error(t, err)
}

type ethService struct{}

func (ethService) ChainId() *hexutil.Big { return (*hexutil.Big)(hexutil.MustDecodeBig("0x1")) }

func (ethService) GetBlockByNumber(number string, full bool) (map[string]any, error) {
	if number == "0xdead" {
		return nil, nil
	}
	return map[string]any{"number": number, "full": full}, nil
}

func (ethService) Call() error {
	return &jsonrpc.RPCFault{Code: 3, Message: "execution reverted", Data: json.RawMessage(`"0x08c379a0"`)}
}

func (ethService) NewHeads(ctx context.Context) (*rpc.Subscription, error) {
	notifier, ok := rpc.NotifierFromContext(ctx)
	if !ok {
		return nil, rpc.ErrNotificationsUnsupported
	}
	sub := notifier.CreateSubscription()
	go func() {
		_ = notifier.Notify(sub.ID, map[string]string{"number": "0x1"})
	}()
	return sub, nil
}

func inProc(t *testing.T) *Geth {
	t.Helper()
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", ethService{}))
	t.Cleanup(srv.Stop)
	g := NewGeth(rpc.DialInProc(srv))
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGethSend(t *testing.T) {
	g := inProc(t)
	ctx := context.Background()

	out, err := g.Send(ctx, []byte(chainIDRequest))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":"0x1"}`, string(out))

	out, err = g.Send(ctx, []byte(`{"jsonrpc":"2.0","id":8,"method":"eth_getBlockByNumber","params":["0x10",true]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":8,"result":{"number":"0x10","full":true}}`, string(out))

	out, err = g.Send(ctx, []byte(`{"jsonrpc":"2.0","id":9,"method":"eth_getBlockByNumber","params":["0xdead",false]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":9,"result":null}`, string(out))

	out, err = g.Send(ctx, []byte(`{"jsonrpc":"2.0","id":10,"method":"eth_call","params":[]}`))
	require.NoError(t, err)
	resp, err := jsonrpc.ParseResponse(out)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 3, resp.Error.Code)
	assert.JSONEq(t, `"0x08c379a0"`, string(resp.Error.Data))
}

func TestGethSubscribe(t *testing.T) {
	g := inProc(t)
	pushes := make(chan []byte, 1)
	g.OnPush(func(raw []byte) { pushes <- raw })

	id, err := g.Subscribe(context.Background(), "newHeads")
	require.NoError(t, err)
	assert.Equal(t, "0x1", id)

	select {
	case raw := <-pushes:
		n, err := jsonrpc.ParseNotification(raw)
		require.NoError(t, err)
		assert.Equal(t, id, n.Subscription)
		assert.JSONEq(t, `{"number":"0x1"}`, string(n.Result))
	case <-time.After(5 * time.Second):
		t.Fatal("no push received")
	}

	require.NoError(t, g.Unsubscribe(context.Background(), id))
	assert.Error(t, g.Unsubscribe(context.Background(), id))
}

func TestNodeFake(t *testing.T) {
	n := transporttest.NewNode()
	n.Reply("eth_chainId", "0x1")
	n.Fail("eth_call", 3, "execution reverted")

	out, err := n.Send(context.Background(), []byte(chainIDRequest))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":"0x1"}`, string(out))

	out, err = n.Send(context.Background(), []byte(`{"jsonrpc":"2.0","id":2,"method":"eth_call","params":[{}]}`))
	require.NoError(t, err)
	resp, err := jsonrpc.ParseResponse(out)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Error.Code)

	out, err = n.Send(context.Background(), []byte(`{"jsonrpc":"2.0","id":3,"method":"eth_nope","params":[]}`))
	require.NoError(t, err)
	resp, err = jsonrpc.ParseResponse(out)
	require.NoError(t, err)
	assert.Equal(t, -32601, resp.Error.Code)

	assert.Equal(t, 1, n.Calls("eth_call"))
	assert.Len(t, n.Requests(), 3)

	var got []byte
	n.OnPush(func(raw []byte) { got = raw })
	require.NoError(t, n.Push("0xabc", "0x1"))
	assert.True(t, jsonrpc.IsNotification(got))

	require.NoError(t, n.Close())
	_, err = n.Send(context.Background(), []byte(chainIDRequest))
	assert.Error(t, err)
}
