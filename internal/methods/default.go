package methods

import (
	"ethwire/internal/codec"
	"ethwire/internal/format"
	"ethwire/internal/schema"
)

var (
	blockTag = format.BlockID(codec.NumberOrTag)
	blockRef = format.BlockID(codec.NumberTagOrHash)

	txParams    = format.Record(schema.TxParams)
	traceConfig = format.Record(schema.TraceConfig)
	overrides   = format.Map(format.Address, format.Record(schema.StateOverrideAccount))

	nullBlock    = format.Nullable(format.Record(schema.Block))
	nullTx       = format.Nullable(format.Record(schema.Transaction))
	nullCount    = format.Nullable(format.Uint64)
	logs         = format.List(format.Record(schema.Log))
	parityTraces = format.List(format.Record(schema.ParityTrace))
)

const latest = codec.TagLatest

func p(name string, c format.Codec) Param { return Param{Name: name, Codec: c} }

func withDefault(name string, c format.Codec, def any) Param {
	return Param{Name: name, Codec: c, Default: def}
}

func optional(name string, c format.Codec) Param {
	return Param{Name: name, Codec: c, Optional: true}
}

func noParams(name string, result format.Codec) Method {
	return Method{Name: name, Result: result}
}

// Default returns a table covering the eth, net, web3, txpool, admin, debug and
// trace namespaces, plus the standard subscription types.
func Default() *Table {
	t := NewTable()

	for _, m := range []Method{
		noParams("eth_blockNumber", format.BlockNumber),
		noParams("eth_chainId", format.Quantity),
		noParams("eth_gasPrice", format.Wei),
		noParams("eth_maxPriorityFeePerGas", format.Wei),
		noParams("eth_blobBaseFee", format.Wei),
		{
			Name: "eth_feeHistory",
			Params: []Param{
				p("blockCount", format.Uint64),
				withDefault("newestBlock", blockTag, latest),
				optional("rewardPercentiles", format.List(format.Float)),
			},
			Result: format.Record(schema.FeeHistory),
		},

		{
			Name:   "eth_getBalance",
			Params: []Param{p("address", format.Address), withDefault("block", blockRef, latest)},
			Result: format.Wei,
		},
		{
			Name:   "eth_getCode",
			Params: []Param{p("address", format.Address), withDefault("block", blockRef, latest)},
			Result: format.Hex,
		},
		{
			Name: "eth_getStorageAt",
			Params: []Param{
				p("address", format.Address),
				p("position", format.Quantity),
				withDefault("block", blockRef, latest),
			},
			Result: format.Hex,
		},
		{
			Name:   "eth_getTransactionCount",
			Params: []Param{p("address", format.Address), withDefault("block", blockRef, latest)},
			Result: format.Nonce,
		},
		{
			Name:   "eth_getProof",
			Params: []Param{p("address", format.Address), p("storageKeys", format.List(format.Hash)), withDefault("block", blockRef, latest)},
			Result: format.Record(schema.MerkleProof),
		},

		{
			Name:   "eth_getBlockByNumber",
			Params: []Param{p("block", blockTag), withDefault("fullTransactions", format.Bool, false)},
			Result: nullBlock,
		},
		{
			Name:   "eth_getBlockByHash",
			Params: []Param{p("hash", format.Hash), withDefault("fullTransactions", format.Bool, false)},
			Result: nullBlock,
		},
		{Name: "eth_getBlockTransactionCountByNumber", Params: []Param{p("block", blockTag)}, Result: nullCount},
		{Name: "eth_getBlockTransactionCountByHash", Params: []Param{p("hash", format.Hash)}, Result: nullCount},
		{Name: "eth_getUncleCountByBlockNumber", Params: []Param{p("block", blockTag)}, Result: nullCount},
		{Name: "eth_getUncleCountByBlockHash", Params: []Param{p("hash", format.Hash)}, Result: nullCount},
		{
			Name:   "eth_getUncleByBlockNumberAndIndex",
			Params: []Param{p("block", blockTag), p("index", format.Uint64)},
			Result: nullBlock,
		},
		{
			Name:   "eth_getUncleByBlockHashAndIndex",
			Params: []Param{p("hash", format.Hash), p("index", format.Uint64)},
			Result: nullBlock,
		},
		{
			Name:   "eth_getBlockReceipts",
			Params: []Param{p("block", blockRef)},
			Result: format.Nullable(format.List(format.Record(schema.Receipt))),
		},

		{Name: "eth_getTransactionByHash", Params: []Param{p("hash", format.Hash)}, Result: nullTx},
		{
			Name:   "eth_getTransactionByBlockNumberAndIndex",
			Params: []Param{p("block", blockTag), p("index", format.Uint64)},
			Result: nullTx,
		},
		{
			Name:   "eth_getTransactionByBlockHashAndIndex",
			Params: []Param{p("hash", format.Hash), p("index", format.Uint64)},
			Result: nullTx,
		},
		{
			Name:   "eth_getRawTransactionByHash",
			Params: []Param{p("hash", format.Hash)},
			Result: format.Nullable(format.Hex),
		},
		{
			Name:   "eth_getTransactionReceipt",
			Params: []Param{p("hash", format.Hash)},
			Result: format.Nullable(format.Record(schema.Receipt)),
		},

		{Name: "eth_getLogs", Params: []Param{p("filter", format.Record(schema.FilterParams))}, Result: logs},
		{Name: "eth_newFilter", Params: []Param{p("filter", format.Record(schema.FilterParams))}, Result: format.String},
		noParams("eth_newBlockFilter", format.String),
		noParams("eth_newPendingTransactionFilter", format.String),
		{Name: "eth_getFilterChanges", Params: []Param{p("id", format.String)}, Result: format.FilterChanges},
		{Name: "eth_getFilterLogs", Params: []Param{p("id", format.String)}, Result: logs},
		{Name: "eth_uninstallFilter", Params: []Param{p("id", format.String)}, Result: format.Bool},

		{
			Name: "eth_call",
			Params: []Param{
				p("transaction", txParams),
				withDefault("block", blockRef, latest),
				optional("stateOverrides", overrides),
			},
			Result: format.Hex,
		},
		{
			Name:   "eth_estimateGas",
			Params: []Param{p("transaction", txParams), optional("block", blockRef)},
			Result: format.Uint64,
		},
		{
			Name:   "eth_createAccessList",
			Params: []Param{p("transaction", txParams), withDefault("block", blockRef, latest)},
			Result: format.Record(schema.AccessListResult),
		},
		{Name: "eth_sendTransaction", Params: []Param{p("transaction", txParams)}, Result: format.Hash},
		{Name: "eth_sendRawTransaction", Params: []Param{p("data", format.Hex)}, Result: format.Hash},
		{Name: "eth_signTransaction", Params: []Param{p("transaction", txParams)}, Result: format.Record(schema.SignedTx)},
		{Name: "eth_sign", Params: []Param{p("address", format.Address), p("message", format.Hex)}, Result: format.Hex},

		noParams("eth_syncing", format.Syncing),
		noParams("eth_accounts", format.List(format.Address)),
		noParams("eth_coinbase", format.Address),
		noParams("eth_mining", format.Bool),
		noParams("eth_hashrate", format.Quantity),
		noParams("eth_protocolVersion", format.String),
		{
			Name:   "eth_subscribe",
			Params: []Param{p("subscription", format.String), optional("options", subscribeOptions)},
			Result: format.String,
		},
		{Name: "eth_unsubscribe", Params: []Param{p("id", format.String)}, Result: format.Bool},

		noParams("net_version", format.String),
		noParams("net_listening", format.Bool),
		noParams("net_peerCount", format.Uint64),
		noParams("web3_clientVersion", format.String),
		{Name: "web3_sha3", Params: []Param{p("data", format.Hex)}, Result: format.Hash},

		noParams("txpool_content", format.Record(schema.TxPoolContent)),
		noParams("txpool_inspect", format.Record(schema.TxPoolInspect)),
		noParams("txpool_status", format.Record(schema.TxPoolStatus)),

		noParams("admin_nodeInfo", format.Record(schema.NodeInfo)),
		noParams("admin_peers", format.List(format.Record(schema.PeerInfo))),
		{Name: "admin_addPeer", Params: []Param{p("enode", format.String)}, Result: format.Bool},
		{Name: "admin_removePeer", Params: []Param{p("enode", format.String)}, Result: format.Bool},
		noParams("admin_datadir", format.String),

		{
			Name:   "debug_traceTransaction",
			Params: []Param{p("hash", format.Hash), optional("config", traceConfig)},
			Result: format.TracerOutput,
		},
		{
			Name: "debug_traceCall",
			Params: []Param{
				p("transaction", txParams),
				withDefault("block", blockRef, latest),
				optional("config", traceConfig),
			},
			Result: format.TracerOutput,
		},
		{
			Name:   "debug_traceBlockByNumber",
			Params: []Param{p("block", blockTag), optional("config", traceConfig)},
			Result: format.List(format.Record(schema.BlockTraceEntry)),
		},
		{
			Name:   "debug_traceBlockByHash",
			Params: []Param{p("hash", format.Hash), optional("config", traceConfig)},
			Result: format.List(format.Record(schema.BlockTraceEntry)),
		},
		{Name: "trace_transaction", Params: []Param{p("hash", format.Hash)}, Result: parityTraces},
		{Name: "trace_block", Params: []Param{p("block", blockTag)}, Result: format.Nullable(parityTraces)},
	} {
		t.Register(m)
	}

	t.RegisterSubscription(NewHeads, format.Record(schema.Block))
	t.RegisterSubscription(Logs, format.Record(schema.Log))
	t.RegisterSubscription(NewPendingTransactions, hashOrTx)
	t.RegisterSubscription(Syncing, format.Syncing)
	return t
}
