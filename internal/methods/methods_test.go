package methods

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethwire/internal/codec"
	"ethwire/internal/format"
	"ethwire/internal/model"
)

func TestDefaultCoverage(t *testing.T) {
	want := []string{
		"eth_blockNumber", "eth_chainId", "eth_gasPrice", "eth_maxPriorityFeePerGas", "eth_blobBaseFee",
		"eth_feeHistory", "eth_getBalance", "eth_getCode", "eth_getStorageAt", "eth_getTransactionCount",
		"eth_getBlockByNumber", "eth_getBlockByHash", "eth_getBlockTransactionCountByNumber",
		"eth_getBlockTransactionCountByHash", "eth_getUncleCountByBlockNumber", "eth_getUncleCountByBlockHash",
		"eth_getUncleByBlockNumberAndIndex", "eth_getUncleByBlockHashAndIndex", "eth_getTransactionByHash",
		"eth_getTransactionByBlockNumberAndIndex", "eth_getTransactionByBlockHashAndIndex",
		"eth_getRawTransactionByHash", "eth_getTransactionReceipt", "eth_getBlockReceipts", "eth_getLogs",
		"eth_newFilter", "eth_newBlockFilter", "eth_newPendingTransactionFilter", "eth_getFilterChanges",
		"eth_getFilterLogs", "eth_uninstallFilter", "eth_call", "eth_estimateGas", "eth_createAccessList",
		"eth_sendTransaction", "eth_sendRawTransaction", "eth_signTransaction", "eth_sign", "eth_getProof",
		"eth_syncing", "eth_accounts", "eth_coinbase", "eth_mining", "eth_hashrate", "eth_protocolVersion",
		"eth_subscribe", "eth_unsubscribe",
		"net_version", "net_listening", "net_peerCount",
		"web3_clientVersion", "web3_sha3",
		"txpool_content", "txpool_inspect", "txpool_status",
		"admin_nodeInfo", "admin_peers", "admin_addPeer", "admin_removePeer", "admin_datadir",
		"debug_traceTransaction", "debug_traceCall", "debug_traceBlockByNumber", "debug_traceBlockByHash",
		"trace_transaction", "trace_block",
	}

	table := Default()
	for _, name := range want {
		_, ok := table.Lookup(name)
		assert.True(t, ok, name)
	}
	assert.ElementsMatch(t, want, table.Names())
}

func TestBlockParamForms(t *testing.T) {
	table := Default()
	e := format.NewEngine()
	hash := codec.BlockByHash(common.Hash{}, true)

	balance, _ := table.Lookup("eth_getBalance")
	wire, err := e.Encode(balance.Params[1].Codec, hash)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"blockHash": common.Hash{}.Hex(), "requireCanonical": true}, wire)
	assert.Equal(t, codec.TagLatest, balance.Params[1].Default)

	byNumber, _ := table.Lookup("eth_getBlockByNumber")
	_, err = e.Encode(byNumber.Params[0].Codec, hash)
	var idErr *codec.InvalidBlockIDError
	assert.ErrorAs(t, err, &idErr)
}

func TestSubscriptions(t *testing.T) {
	table := Default()
	e := format.NewEngine()

	for _, sub := range []string{NewHeads, Logs, NewPendingTransactions, Syncing} {
		_, ok := table.Subscription(sub)
		assert.True(t, ok, sub)
	}

	pending, _ := table.Subscription(NewPendingTransactions)
	out, err := e.Decode(pending, "0xab"+strings.Repeat("00", 31))
	require.NoError(t, err)
	assert.IsType(t, common.Hash{}, out)

	out, err = e.Decode(pending, map[string]any{"type": "0x2", "nonce": "0x1"})
	require.NoError(t, err)
	assert.IsType(t, &model.DynamicFeeTx{}, out)
}

func TestCloneIsolation(t *testing.T) {
	base := Default()
	ext := base.Clone()
	ext.Register(Method{Name: "bor_getAuthor", Params: []Param{{Name: "block", Codec: blockTag}}, Result: format.Address})

	_, ok := ext.Lookup("bor_getAuthor")
	assert.True(t, ok)
	_, ok = base.Lookup("bor_getAuthor")
	assert.False(t, ok)
}
