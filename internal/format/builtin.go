package format

import (
	"ethwire/internal/codec"
	"ethwire/internal/schema"
)

type fieldCodecs map[string]Codec

var txCommonCodecs = fieldCodecs{
	"blockHash":        Hash,
	"blockNumber":      BlockNumber,
	"from":             Address,
	"gas":              Uint64,
	"hash":             Hash,
	"input":            Hex,
	"nonce":            Nonce,
	"to":               Address,
	"transactionIndex": Uint64,
	"value":            Wei,
	"type":             Uint64,
	"v":                Quantity,
	"r":                Quantity,
	"s":                Quantity,
	"chainId":          Quantity,
}

func withTxCommon(extra fieldCodecs) fieldCodecs {
	out := make(fieldCodecs, len(txCommonCodecs)+len(extra))
	for k, c := range txCommonCodecs {
		out[k] = c
	}
	for k, c := range extra {
		out[k] = c
	}
	return out
}

func dynamicFee(extra fieldCodecs) fieldCodecs {
	base := fieldCodecs{
		"maxFeePerGas":         Wei,
		"maxPriorityFeePerGas": Wei,
		"accessList":           List(Record(schema.AccessListEntry)),
		"yParity":              Uint64,
		"gasPrice":             Wei,
	}
	for k, c := range extra {
		base[k] = c
	}
	return withTxCommon(base)
}

// DefaultRegistry returns a fresh registry with the codec chains of every record
// kind. Callers may extend it before handing it to WithRegistry.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	tables := map[schema.Kind]fieldCodecs{
		schema.Block: {
			"number":                BlockNumber,
			"hash":                  Hash,
			"parentHash":            Hash,
			"sha3Uncles":            Hash,
			"logsBloom":             Hex,
			"transactionsRoot":      Hash,
			"stateRoot":             Hash,
			"receiptsRoot":          Hash,
			"miner":                 Address,
			"difficulty":            Quantity,
			"totalDifficulty":       Quantity,
			"extraData":             Hex,
			"size":                  Uint64,
			"gasLimit":              Uint64,
			"gasUsed":               Uint64,
			"timestamp":             Timestamp,
			"transactions":          TxsOrHashes,
			"uncles":                List(Hash),
			"mixHash":               Hash,
			"nonce":                 Hex,
			"baseFeePerGas":         Wei,
			"withdrawalsRoot":       Hash,
			"withdrawals":           List(Record(schema.Withdrawal)),
			"blobGasUsed":           Uint64,
			"excessBlobGas":         Uint64,
			"parentBeaconBlockRoot": Hash,
			"requestsHash":          Hash,
		},

		schema.Transaction: txCommonCodecs,
		schema.LegacyTx:    withTxCommon(fieldCodecs{"gasPrice": Wei}),
		schema.AccessListTx: withTxCommon(fieldCodecs{
			"gasPrice":   Wei,
			"accessList": List(Record(schema.AccessListEntry)),
			"yParity":    Uint64,
		}),
		schema.DynamicFeeTx: dynamicFee(nil),
		schema.BlobTx: dynamicFee(fieldCodecs{
			"maxFeePerBlobGas":    Wei,
			"blobVersionedHashes": List(Hash),
		}),
		schema.SetCodeTx: dynamicFee(fieldCodecs{
			"authorizationList": List(Record(schema.Authorization)),
		}),
		schema.UnknownTx: txCommonCodecs,
		schema.SignedTx: {
			"raw": Hex,
			"tx":  Record(schema.Transaction),
		},

		schema.Receipt: {
			"blockHash":         Hash,
			"blockNumber":       BlockNumber,
			"contractAddress":   Nullable(Address),
			"cumulativeGasUsed": Uint64,
			"effectiveGasPrice": Wei,
			"from":              Address,
			"gasUsed":           Uint64,
			"logs":              List(Record(schema.Log)),
			"logsBloom":         Hex,
			"status":            Uint64,
			"to":                Nullable(Address),
			"transactionHash":   Hash,
			"transactionIndex":  Uint64,
			"type":              Uint64,
			"blobGasUsed":       Uint64,
			"blobGasPrice":      Wei,
		},
		schema.Log: {
			"address":          Address,
			"blockHash":        Hash,
			"blockNumber":      BlockNumber,
			"data":             Hex,
			"logIndex":         Uint64,
			"removed":          Bool,
			"topics":           List(Hash),
			"transactionHash":  Hash,
			"transactionIndex": Uint64,
			"blockTimestamp":   Timestamp,
		},
		schema.Withdrawal: {
			"index":          Uint64,
			"validatorIndex": Uint64,
			"address":        Address,
			"amount":         Gwei,
		},
		schema.AccessListEntry: {
			"address":     Address,
			"storageKeys": List(Hash),
		},
		schema.Authorization: {
			"chainId": Quantity,
			"address": Address,
			"nonce":   Nonce,
			"yParity": Uint64,
			"r":       Quantity,
			"s":       Quantity,
		},
		schema.MerkleProof: {
			"address":      Address,
			"accountProof": List(Hex),
			"balance":      Wei,
			"codeHash":     Hash,
			"nonce":        Nonce,
			"storageHash":  Hash,
			"storageProof": List(Record(schema.StorageProof)),
		},
		schema.StorageProof: {
			"key":   String,
			"value": Quantity,
			"proof": List(Hex),
		},

		schema.TxPoolContent: {
			"pending": Map(Address, Map(DecimalKey, Record(schema.Transaction))),
			"queued":  Map(Address, Map(DecimalKey, Record(schema.Transaction))),
		},
		schema.TxPoolInspect: {
			"pending": Map(Address, Map(DecimalKey, PoolSummary)),
			"queued":  Map(Address, Map(DecimalKey, PoolSummary)),
		},
		schema.TxPoolStatus: {
			"pending": Uint64,
			"queued":  Uint64,
		},

		schema.NodeInfo: {
			"enode":      String,
			"enr":        String,
			"id":         String,
			"ip":         String,
			"listenAddr": String,
			"name":       String,
			"ports":      Record(schema.NodePorts),
			"protocols":  Raw,
		},
		schema.NodePorts: {
			"discovery": Number,
			"listener":  Number,
		},
		schema.PeerInfo: {
			"enode":     String,
			"enr":       String,
			"id":        String,
			"name":      String,
			"caps":      List(String),
			"network":   Record(schema.PeerNetwork),
			"protocols": Raw,
		},
		schema.PeerNetwork: {
			"localAddress":  String,
			"remoteAddress": String,
			"inbound":       Bool,
			"trusted":       Bool,
			"static":        Bool,
		},

		schema.FeeHistory: {
			"oldestBlock":       BlockNumber,
			"baseFeePerGas":     List(Wei),
			"gasUsedRatio":      List(Float),
			"reward":            List(List(Wei)),
			"baseFeePerBlobGas": List(Wei),
			"blobGasUsedRatio":  List(Float),
		},
		schema.SyncStatus: {
			"startingBlock": BlockNumber,
			"currentBlock":  BlockNumber,
			"highestBlock":  BlockNumber,
		},
		schema.SyncingEvent: {
			"syncing": Bool,
			"status":  Record(schema.SyncStatus),
		},

		schema.CallFrame: {
			"type":         String,
			"from":         Address,
			"to":           Address,
			"value":        Wei,
			"gas":          Uint64,
			"gasUsed":      Uint64,
			"input":        Hex,
			"output":       Hex,
			"error":        String,
			"revertReason": String,
			"calls":        List(Record(schema.CallFrame)),
			"logs":         Raw,
		},
		schema.ParityTrace: {
			"action":              Record(schema.TraceAction),
			"result":              Record(schema.TraceResult),
			"error":               String,
			"blockHash":           Hash,
			"blockNumber":         Number,
			"subtraces":           Number,
			"traceAddress":        List(Number),
			"transactionHash":     Hash,
			"transactionPosition": Number,
			"type":                String,
		},
		schema.TraceAction: {
			"callType":      String,
			"from":          Address,
			"to":            Address,
			"value":         Wei,
			"gas":           Uint64,
			"input":         Hex,
			"init":          Hex,
			"address":       Address,
			"refundAddress": Address,
			"balance":       Wei,
			"author":        Address,
			"rewardType":    String,
		},
		schema.TraceResult: {
			"gasUsed": Uint64,
			"output":  Hex,
			"address": Address,
			"code":    Hex,
		},
		schema.OpcodeTrace: {
			"gas":         Number,
			"failed":      Bool,
			"returnValue": String,
			"structLogs":  List(Record(schema.StructLog)),
		},
		schema.StructLog: {
			"pc":      Number,
			"op":      String,
			"gas":     Number,
			"gasCost": Number,
			"depth":   Number,
			"stack":   List(String),
			"memory":  List(String),
			"storage": Raw,
			"refund":  Number,
			"error":   String,
		},
		schema.BlockTraceEntry: {
			"txHash": Hash,
			"result": TracerOutput,
		},

		schema.TxParams: {
			"type":                 Uint64,
			"from":                 Address,
			"to":                   Address,
			"gas":                  Uint64,
			"gasPrice":             Wei,
			"maxFeePerGas":         Wei,
			"maxPriorityFeePerGas": Wei,
			"maxFeePerBlobGas":     Wei,
			"value":                Wei,
			"data":                 Hex,
			"input":                Hex,
			"nonce":                Nonce,
			"chainId":              Quantity,
			"accessList":           List(Record(schema.AccessListEntry)),
			"blobVersionedHashes":  List(Hash),
			"authorizationList":    List(Record(schema.Authorization)),
		},
		schema.FilterParams: {
			"fromBlock": BlockID(codec.NumberOrTag),
			"toBlock":   BlockID(codec.NumberOrTag),
			"blockHash": Hash,
			"address":   AddressOrList,
			"topics":    TopicFilter,
		},
		schema.StateOverrideAccount: {
			"balance":   Wei,
			"nonce":     Nonce,
			"code":      Hex,
			"state":     Map(Hash, Hash),
			"stateDiff": Map(Hash, Hash),
		},
		schema.TraceConfig: {
			"tracer":           String,
			"tracerConfig":     Raw,
			"timeout":          String,
			"reexec":           Number,
			"disableStorage":   Bool,
			"disableStack":     Bool,
			"enableMemory":     Bool,
			"enableReturnData": Bool,
		},
		schema.AccessListResult: {
			"accessList": List(Record(schema.AccessListEntry)),
			"gasUsed":    Uint64,
			"error":      String,
		},
	}

	for kind, fields := range tables {
		for f, c := range fields {
			r.Set(kind, f, c)
		}
	}
	return r
}
