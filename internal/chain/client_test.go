package chain

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethwire/internal/codec"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/model"
	"ethwire/internal/storage"
	"ethwire/internal/transport/transporttest"
)

var (
	sender = common.HexToAddress("0x1111111111111111111111111111111111111111")
	txHash = common.HexToHash("0x" + strings.Repeat("ab", 32))
)

const headerJSON = `{
	"number": "0x10d4f",
	"hash": "0x` + "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1" + `",
	"timestamp": "0x6553f100",
	"baseFeePerGas": "0x7",
	"extraData": "0xd883010d0e",
	"transactions": []
}`

func newClient(t *testing.T, opts ...Option) (*Client, *transporttest.Node) {
	t.Helper()
	node := transporttest.NewNode()
	c, err := New(node, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, node
}

func TestBlockByNumberRequest(t *testing.T) {
	c, node := newClient(t)
	node.Reply("eth_getBlockByNumber", json.RawMessage(headerJSON))

	block, err := c.BlockByNumber(context.Background(), codec.BlockNumber(0x10d4f), true)
	require.NoError(t, err)
	require.NotNil(t, block)
	assert.Equal(t, codec.BlockNumber(0x10d4f), *block.Number)
	assert.Equal(t, uint64(7), block.BaseFeePerGas.Int().Uint64())

	reqs := node.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `1`, string(reqs[0].ID))
	require.Len(t, reqs[0].Params, 2)
	assert.JSONEq(t, `"0x10d4f"`, string(reqs[0].Params[0]))
	assert.JSONEq(t, `true`, string(reqs[0].Params[1]))
}

func TestMissingBlockIsNil(t *testing.T) {
	c, node := newClient(t)
	node.Reply("eth_getBlockByNumber", nil)

	block, err := c.BlockByNumber(context.Background(), codec.TagLatest, false)
	require.NoError(t, err)
	assert.Nil(t, block)

	_, err = c.BlockTimestamp(context.Background(), 5)
	assert.ErrorContains(t, err, "not found")
}

func TestBlockTimestampCached(t *testing.T) {
	c, node := newClient(t)
	node.Reply("eth_getBlockByNumber", json.RawMessage(headerJSON))

	for i := 0; i < 3; i++ {
		ts, err := c.BlockTimestamp(context.Background(), 0x10d4f)
		require.NoError(t, err)
		assert.Equal(t, codec.Timestamp(0x6553f100), ts)
	}
	assert.Equal(t, 1, node.Calls("eth_getBlockByNumber"))
}

func TestCallFault(t *testing.T) {
	c, node := newClient(t)
	node.Fail("eth_call", 3, "execution reverted")

	_, err := c.CallContract(context.Background(), &model.TxParams{To: &sender}, nil)
	var fault *jsonrpc.RPCFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 3, fault.Code)

	reqs := node.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `"latest"`, string(reqs[0].Params[1]))
}

func TestTransportFailure(t *testing.T) {
	c, node := newClient(t)
	node.Handle("eth_chainId", func([]json.RawMessage) (any, error) {
		return nil, errors.New("connection reset")
	})
	_, err := c.ChainID(context.Background())
	assert.ErrorContains(t, err, "send eth_chainId: connection reset")
}

func TestStrictRejectsUnknownMethods(t *testing.T) {
	c, node := newClient(t, WithStrict())
	_, err := c.Call(context.Background(), "foo_bar")
	var unsupported *jsonrpc.UnsupportedMethodError
	require.ErrorAs(t, err, &unsupported)
	assert.Empty(t, node.Requests())

	c, node = newClient(t)
	node.Reply("foo_bar", map[string]any{"ok": true})
	out, err := c.Call(context.Background(), "foo_bar")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, out)
}

func TestCacheAndReconnect(t *testing.T) {
	c, node := newClient(t, WithCache(8))
	node.Reply("eth_chainId", "0x38")

	for i := 0; i < 3; i++ {
		id, err := c.ChainID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(56), id.Int64())
	}
	assert.Equal(t, 1, node.Calls("eth_chainId"))

	node.Reconnect()
	_, err := c.ChainID(context.Background())
	require.NoError(t, err)

	reqs := node.Requests()
	require.Len(t, reqs, 2)
	assert.JSONEq(t, `1`, string(reqs[1].ID), "ids restart after reconnect")
}

func TestCoalesce(t *testing.T) {
	c, node := newClient(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	node.Handle("eth_blockNumber", func([]json.RawMessage) (any, error) {
		once.Do(func() { close(entered) })
		<-release
		return "0x64", nil
	})

	var wg sync.WaitGroup
	results := make([]codec.BlockNumber, 8)
	call := func(i int) {
		defer wg.Done()
		n, err := c.BlockNumber(context.Background())
		assert.NoError(t, err)
		results[i] = n
	}

	wg.Add(1)
	go call(0)
	<-entered
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go call(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, node.Calls("eth_blockNumber"))
	for _, n := range results {
		assert.Equal(t, codec.BlockNumber(100), n)
	}
}

func TestCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	c, node := newClient(t, WithCapture(storage.NewJsonlStorage(path)), WithEndpoint("test"))
	node.Reply("net_version", "1")

	_, err := c.Call(context.Background(), "net_version")
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []storage.Exchange
	require.NoError(t, storage.ReadExchanges(f, func(_ int, ex *storage.Exchange, err error) error {
		require.NoError(t, err)
		got = append(got, *ex)
		return nil
	}))
	require.Len(t, got, 1)
	assert.Equal(t, "net_version", got[0].Method)
	assert.Equal(t, "test", got[0].Endpoint)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"net_version","params":[]}`, string(got[0].Request))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":"1"}`, string(got[0].Response))
}

func TestSubscribeOverPushes(t *testing.T) {
	c, node := newClient(t)
	node.Reply("eth_subscribe", "0xcafe")
	node.Reply("eth_unsubscribe", true)

	pushes := make(chan *jsonrpc.Notification, 2)
	id, err := c.Subscribe(context.Background(), "newHeads", func(n *jsonrpc.Notification, err error) {
		require.NoError(t, err)
		pushes <- n
	})
	require.NoError(t, err)
	assert.Equal(t, "0xcafe", id)
	assert.Equal(t, map[string]string{"0xcafe": "newHeads"}, c.Subscriptions())

	reqs := node.Requests()
	require.Len(t, reqs[0].Params, 1)
	assert.JSONEq(t, `"newHeads"`, string(reqs[0].Params[0]))

	require.NoError(t, node.Push("0xcafe", json.RawMessage(headerJSON)))
	require.NoError(t, node.Push("0xdead", json.RawMessage(headerJSON)))

	n := <-pushes
	assert.Equal(t, "newHeads", n.Type)
	block, ok := n.Result.(*model.Block)
	require.True(t, ok)
	assert.Equal(t, codec.BlockNumber(0x10d4f), *block.Number)
	assert.Empty(t, pushes, "push for another subscription must not be delivered")

	require.NoError(t, c.Unsubscribe(context.Background(), id))
	assert.Empty(t, c.Subscriptions())

	var unknown *jsonrpc.UnknownSubscriptionError
	assert.ErrorAs(t, c.Unsubscribe(context.Background(), id), &unknown)
}

func TestSubscribeLogsFilter(t *testing.T) {
	c, node := newClient(t)
	node.Reply("eth_subscribe", "0x1")

	_, err := c.Subscribe(context.Background(), "logs", func(*jsonrpc.Notification, error) {}, &model.FilterParams{
		Address: []common.Address{sender},
	})
	require.NoError(t, err)

	reqs := node.Requests()
	require.Len(t, reqs[0].Params, 2)
	assert.JSONEq(t, `{"address":["0x1111111111111111111111111111111111111111"]}`, string(reqs[0].Params[1]))

	node.Reconnect()
	assert.Empty(t, c.Subscriptions())
}

func TestTxFilling(t *testing.T) {
	c, node := newClient(t, WithTxFilling())
	node.Reply("eth_getBlockByNumber", json.RawMessage(headerJSON))
	node.Reply("eth_maxPriorityFeePerGas", "0x2")
	node.Reply("eth_getTransactionCount", "0x9")
	node.Reply("eth_estimateGas", "0x5208")
	node.Reply("eth_sendTransaction", txHash.Hex())

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	out, err := c.Call(context.Background(), "eth_sendTransaction", &model.TxParams{From: &sender, To: &to})
	require.NoError(t, err)
	assert.Equal(t, txHash, out)

	reqs := node.Requests()
	last := reqs[len(reqs)-1]
	require.Equal(t, "eth_sendTransaction", last.Method)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(last.Params[0], &sent))
	assert.Equal(t, "0x2", sent["type"])
	assert.Equal(t, "0x2", sent["maxPriorityFeePerGas"])
	assert.Equal(t, "0x10", sent["maxFeePerGas"])
	assert.Equal(t, "0x9", sent["nonce"])
	assert.Equal(t, "0x5208", sent["gas"])
	assert.NotContains(t, sent, "gasPrice")
}

func TestPoATrim(t *testing.T) {
	poa := `{"number":"0x1","extraData":"0x` + strings.Repeat("00", 32) + strings.Repeat("ee", 65) + `"}`

	c, node := newClient(t, WithPoA(PoAValidate))
	node.Reply("eth_getBlockByNumber", json.RawMessage(poa))
	_, err := c.BlockByNumber(context.Background(), codec.TagLatest, false)
	assert.Error(t, err)

	c, node = newClient(t, WithPoA(PoATrim))
	node.Reply("eth_getBlockByNumber", json.RawMessage(poa))
	block, err := c.BlockByNumber(context.Background(), codec.TagLatest, false)
	require.NoError(t, err)
	assert.Len(t, block.ExtraData, 32)
	assert.Contains(t, block.Extra, "proofOfAuthorityData")
}

func TestLogs(t *testing.T) {
	c, node := newClient(t)
	node.Reply("eth_getLogs", json.RawMessage(`[{
		"address": "0x1111111111111111111111111111111111111111",
		"blockHash": null, "blockNumber": null, "data": "0x", "logIndex": "0x0",
		"removed": false, "topics": [], "transactionHash": "`+txHash.Hex()+`", "transactionIndex": "0x0"
	}]`))

	logs, err := c.Logs(context.Background(), &model.FilterParams{Address: []common.Address{sender}})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, sender, logs[0].Address)
	assert.Nil(t, logs[0].BlockNumber)
}
