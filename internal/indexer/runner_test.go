package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethwire/internal/chain"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/transport/transporttest"
)

type memSink struct {
	mu      sync.Mutex
	records []BlockRecord
}

func (s *memSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, v.(BlockRecord))
	return nil
}

func (s *memSink) numbers() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Summary.Number)
	}
	return out
}

func hashFor(n uint64) string {
	return fmt.Sprintf("0x%064x", n+0xb000)
}

func blockJSON(n uint64) map[string]any {
	return map[string]any{
		"number":        fmt.Sprintf("0x%x", n),
		"hash":          hashFor(n),
		"parentHash":    hashFor(n - 1),
		"miner":         "0x52908400098527886e0f7030069857d2e4169ee7",
		"timestamp":     fmt.Sprintf("0x%x", 1700000000+12*n),
		"gasUsed":       "0x5208",
		"gasLimit":      "0x1c9c380",
		"baseFeePerGas": "0x7",
		"transactions":  []any{strings.Replace(hashFor(n), "0x0", "0xf", 1)},
	}
}

func receiptJSON(n uint64, status string) map[string]any {
	return map[string]any{
		"blockHash":         hashFor(n),
		"blockNumber":       fmt.Sprintf("0x%x", n),
		"contractAddress":   nil,
		"cumulativeGasUsed": "0x5208",
		"effectiveGasPrice": "0x3b9aca00",
		"from":              "0x1111111111111111111111111111111111111111",
		"gasUsed":           "0x5208",
		"logs":              []any{},
		"logsBloom":         "0x00",
		"status":            status,
		"to":                "0x2222222222222222222222222222222222222222",
		"transactionHash":   strings.Replace(hashFor(n), "0x0", "0xf", 1),
		"transactionIndex":  "0x0",
		"type":              "0x2",
	}
}

func paramBlock(t *testing.T, params []json.RawMessage) uint64 {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(params[0], &s))
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	require.NoError(t, err)
	return n
}

func newChain(t *testing.T) (*chain.Client, *transporttest.Node) {
	t.Helper()
	node := transporttest.NewNode()
	node.Reply("eth_chainId", "0x1")
	node.Reply("eth_blockNumber", "0x3")
	node.Handle("eth_getBlockByNumber", func(params []json.RawMessage) (any, error) {
		return blockJSON(paramBlock(t, params)), nil
	})
	node.Handle("eth_getBlockReceipts", func(params []json.RawMessage) (any, error) {
		n := paramBlock(t, params)
		status := "0x1"
		if n%2 == 0 {
			status = "0x0"
		}
		return []any{receiptJSON(n, status)}, nil
	})
	c, err := chain.New(node)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, node
}

func TestRunnerWritesBlocksInOrder(t *testing.T) {
	c, _ := newChain(t)
	sink := &memSink{}
	cpPath := filepath.Join(t.TempDir(), "checkpoint.json")

	r := NewRunner(RunConfig{
		FromBlock:         1,
		ToBlock:           5,
		BatchSize:         2,
		Concurrency:       3,
		Receipts:          true,
		CheckpointPath:    cpPath,
		CheckpointEnabled: true,
	}, c, sink, nil)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, sink.numbers())

	second := sink.records[1]
	assert.Equal(t, uint64(1), second.Summary.ChainID)
	assert.Equal(t, hashFor(2), second.Summary.Hash)
	assert.Equal(t, "0x52908400098527886E0F7030069857D2E4169EE7", second.Summary.Miner)
	assert.Equal(t, "7", second.Summary.BaseFee)
	assert.Equal(t, 1, second.Summary.Transactions)
	require.NotNil(t, second.Summary.FailedTxs)
	assert.Equal(t, 1, *second.Summary.FailedTxs)
	assert.Nil(t, second.Block)

	require.Len(t, second.Receipts, 1)
	wire, err := json.Marshal(second.Receipts[0])
	require.NoError(t, err)
	assert.JSONEq(t, mustJSON(t, receiptJSON(2, "0x0")), string(wire))

	cp, ok, err := NewCheckpointStore(cpPath, true).Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(5), cp.LastProcessedBlock)
	assert.Equal(t, hashFor(5), cp.LastBlockHash)
	assert.Equal(t, uint64(1), cp.ChainID)
}

func TestRunnerFullBlocks(t *testing.T) {
	c, node := newChain(t)
	sink := &memSink{}

	r := NewRunner(RunConfig{FromBlock: 7, ToBlock: 7, BatchSize: 10, Full: true}, c, sink, nil)
	require.NoError(t, r.Run(context.Background()))

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Nil(t, rec.Summary.FailedTxs)
	require.NotNil(t, rec.Block)
	assert.Equal(t, hashFor(7), rec.Block["hash"])
	assert.Equal(t, "0x7", rec.Block["number"])
	assert.Zero(t, node.Calls("eth_getBlockReceipts"))

	for _, req := range node.Requests() {
		if req.Method == "eth_getBlockByNumber" {
			assert.JSONEq(t, `true`, string(req.Params[1]))
		}
	}
}

func TestRunnerDefaultsToLatest(t *testing.T) {
	c, node := newChain(t)
	sink := &memSink{}

	r := NewRunner(RunConfig{FromBlock: 2, BatchSize: 1}, c, sink, nil)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []uint64{2, 3}, sink.numbers())
	assert.Equal(t, 1, node.Calls("eth_blockNumber"))
}

func TestRunnerResume(t *testing.T) {
	tests := []struct {
		name    string
		cp      Checkpoint
		want    []uint64
		wantErr string
	}{
		{
			name: "continues after checkpoint",
			cp:   Checkpoint{ChainID: 1, LastProcessedBlock: 3, LastBlockHash: hashFor(3)},
			want: []uint64{4, 5},
		},
		{
			name: "checkpoint before range is ignored",
			cp:   Checkpoint{ChainID: 1, LastProcessedBlock: 0, LastBlockHash: hashFor(0)},
			want: []uint64{1, 2, 3, 4, 5},
		},
		{
			name: "finished range",
			cp:   Checkpoint{ChainID: 1, LastProcessedBlock: 9, LastBlockHash: hashFor(9)},
			want: []uint64{},
		},
		{
			name:    "reorged block",
			cp:      Checkpoint{ChainID: 1, LastProcessedBlock: 3, LastBlockHash: hashFor(33)},
			wantErr: "hash changed",
		},
		{
			name:    "other chain",
			cp:      Checkpoint{ChainID: 5, LastProcessedBlock: 3},
			wantErr: "chain 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newChain(t)
			sink := &memSink{}
			store := NewCheckpointStore(filepath.Join(t.TempDir(), "cp.json"), true)
			require.NoError(t, store.Save(tt.cp))

			r := NewRunner(RunConfig{
				FromBlock:         1,
				ToBlock:           5,
				BatchSize:         2,
				CheckpointPath:    store.path,
				CheckpointEnabled: true,
			}, c, sink, nil)
			err := r.Run(context.Background())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				if tt.cp.ChainID == 1 {
					var reorg *ReorgError
					assert.ErrorAs(t, err, &reorg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sink.numbers())
		})
	}
}

func TestRunnerRetriesMissingBlock(t *testing.T) {
	c, node := newChain(t)
	var misses atomic.Int32
	node.Handle("eth_getBlockByNumber", func(params []json.RawMessage) (any, error) {
		n := paramBlock(t, params)
		if n == 2 && misses.Add(1) <= 2 {
			return nil, nil
		}
		return blockJSON(n), nil
	})

	sink := &memSink{}
	r := NewRunner(RunConfig{
		FromBlock:    1,
		ToBlock:      2,
		BatchSize:    2,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, c, sink, nil)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []uint64{1, 2}, sink.numbers())
	assert.Equal(t, int32(3), misses.Load())
}

func TestRunnerGivesUpOnMissingBlock(t *testing.T) {
	c, node := newChain(t)
	node.Reply("eth_getBlockByNumber", nil)

	r := NewRunner(RunConfig{FromBlock: 1, ToBlock: 1, BatchSize: 1, MaxRetries: 1, RetryBackoff: time.Millisecond}, c, &memSink{}, nil)
	err := r.Run(context.Background())

	var missing *MissingBlockError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, uint64(1), missing.Number)
	assert.Equal(t, 2, node.Calls("eth_getBlockByNumber"))
}

func TestRunnerFaultIsFinal(t *testing.T) {
	c, node := newChain(t)
	node.Fail("eth_getBlockByNumber", -32000, "header not found")

	r := NewRunner(RunConfig{FromBlock: 1, ToBlock: 1, BatchSize: 1, MaxRetries: 5, RetryBackoff: time.Millisecond}, c, &memSink{}, nil)
	err := r.Run(context.Background())

	var fault *jsonrpc.RPCFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, -32000, fault.Code)
	assert.Equal(t, 1, node.Calls("eth_getBlockByNumber"))
}

func TestRunnerValidation(t *testing.T) {
	c, _ := newChain(t)
	assert.ErrorContains(t, NewRunner(RunConfig{}, c, &memSink{}, nil).Run(context.Background()), "batch size")
	assert.ErrorContains(t, NewRunner(RunConfig{BatchSize: 1}, c, nil, nil).Run(context.Background()), "sink")
}

func TestRunnerReachesTopOfRange(t *testing.T) {
	c, _ := newChain(t)
	sink := &memSink{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := NewRunner(RunConfig{
		FromBlock:   math.MaxUint64 - 2,
		ToBlock:     math.MaxUint64,
		BatchSize:   2,
		Concurrency: 2,
	}, c, sink, nil)
	require.NoError(t, r.Run(ctx))

	assert.Equal(t, []uint64{math.MaxUint64 - 2, math.MaxUint64 - 1, math.MaxUint64}, sink.numbers())
}

func TestCheckpointDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.json")
	store := NewCheckpointStore(path, false)
	require.NoError(t, store.Save(Checkpoint{LastProcessedBlock: 1}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
