package schema

var txCommonFields = []string{
	"blockHash", "blockNumber", "from", "gas", "hash", "input", "nonce", "to",
	"transactionIndex", "value", "type", "v", "r", "s", "chainId",
}

func txFields(extra ...string) []string {
	out := make([]string, 0, len(txCommonFields)+len(extra))
	out = append(out, txCommonFields...)
	return append(out, extra...)
}

var feeConflict = []Conflict{{
	Field: "gasPrice",
	With:  []string{"maxFeePerGas", "maxPriorityFeePerGas"},
	Err: func(kind Kind, fields []string) error {
		return &ConflictingFeeFieldsError{Kind: kind, Fields: fields}
	},
}}

// blockHash pins a filter to one block, so it excludes a range.
var filterConflict = []Conflict{{Field: "blockHash", With: []string{"fromBlock", "toBlock"}}}

// Default returns the schemas of every record kind the method table refers to.
func Default() *Set {
	return NewSet(
		&Schema{Kind: Block, Presence: AllOptional, Fields: []string{
			"number", "hash", "parentHash", "sha3Uncles", "logsBloom", "transactionsRoot",
			"stateRoot", "receiptsRoot", "miner", "difficulty", "totalDifficulty", "extraData",
			"size", "gasLimit", "gasUsed", "timestamp", "transactions", "uncles", "mixHash",
			"nonce", "baseFeePerGas", "withdrawalsRoot", "withdrawals", "blobGasUsed",
			"excessBlobGas", "parentBeaconBlockRoot", "requestsHash",
		}},

		&Schema{
			Kind:         Transaction,
			Presence:     AllOptional,
			Fields:       txCommonFields,
			Discriminant: "type",
			Variants: map[uint64]Kind{
				0: LegacyTx,
				1: AccessListTx,
				2: DynamicFeeTx,
				3: BlobTx,
				4: SetCodeTx,
			},
			Default:  LegacyTx,
			Fallback: UnknownTx,
		},
		&Schema{Kind: LegacyTx, Presence: AllOptional, Fields: txFields("gasPrice")},
		&Schema{Kind: AccessListTx, Presence: AllOptional, Fields: txFields("gasPrice", "accessList", "yParity")},
		&Schema{Kind: DynamicFeeTx, Presence: AllOptional, Fields: txFields(
			"maxFeePerGas", "maxPriorityFeePerGas", "accessList", "yParity",
		)},
		&Schema{Kind: BlobTx, Presence: AllOptional, Fields: txFields(
			"maxFeePerGas", "maxPriorityFeePerGas", "accessList", "yParity",
			"maxFeePerBlobGas", "blobVersionedHashes",
		)},
		&Schema{Kind: SetCodeTx, Presence: AllOptional, Fields: txFields(
			"maxFeePerGas", "maxPriorityFeePerGas", "accessList", "yParity", "authorizationList",
		)},
		&Schema{Kind: UnknownTx, Presence: AllOptional, Fields: txCommonFields},
		&Schema{Kind: SignedTx, Presence: AllOptional, Fields: []string{"raw", "tx"}},

		&Schema{Kind: Receipt, Presence: AllRequired, Fields: []string{
			"blockHash", "blockNumber", "contractAddress", "cumulativeGasUsed",
			"effectiveGasPrice", "from", "gasUsed", "logs", "logsBloom", "status", "to",
			"transactionHash", "transactionIndex", "type",
		}},
		&Schema{Kind: Log, Presence: AllRequired, Fields: []string{
			"address", "blockHash", "blockNumber", "data", "logIndex", "removed", "topics",
			"transactionHash", "transactionIndex",
		}},
		&Schema{Kind: Withdrawal, Presence: AllRequired, Fields: []string{"index", "validatorIndex", "address", "amount"}},
		&Schema{Kind: AccessListEntry, Presence: AllRequired, Fields: []string{"address", "storageKeys"}},
		&Schema{Kind: Authorization, Presence: AllRequired, Fields: []string{"chainId", "address", "nonce", "yParity", "r", "s"}},
		&Schema{Kind: MerkleProof, Presence: AllRequired, Fields: []string{
			"address", "accountProof", "balance", "codeHash", "nonce", "storageHash", "storageProof",
		}},
		&Schema{Kind: StorageProof, Presence: AllRequired, Fields: []string{"key", "value", "proof"}},

		&Schema{Kind: TxPoolContent, Presence: AllOptional, Fields: []string{"pending", "queued"}},
		&Schema{Kind: TxPoolInspect, Presence: AllOptional, Fields: []string{"pending", "queued"}},
		&Schema{Kind: TxPoolStatus, Presence: AllOptional, Fields: []string{"pending", "queued"}},

		&Schema{Kind: NodeInfo, Presence: AllRequired, Fields: []string{
			"enode", "enr", "id", "ip", "listenAddr", "name", "ports", "protocols",
		}},
		&Schema{Kind: NodePorts, Presence: AllRequired, Fields: []string{"discovery", "listener"}},
		&Schema{Kind: PeerInfo, Presence: AllOptional, Fields: []string{
			"enode", "enr", "id", "name", "caps", "network", "protocols",
		}},
		&Schema{Kind: PeerNetwork, Presence: AllOptional, Fields: []string{
			"localAddress", "remoteAddress", "inbound", "trusted", "static",
		}},

		&Schema{Kind: FeeHistory, Presence: AllOptional, Fields: []string{
			"oldestBlock", "baseFeePerGas", "gasUsedRatio", "reward", "baseFeePerBlobGas", "blobGasUsedRatio",
		}},
		&Schema{Kind: SyncStatus, Presence: AllRequired, Fields: []string{"startingBlock", "currentBlock", "highestBlock"}},
		&Schema{Kind: SyncingEvent, Presence: AllOptional, Fields: []string{"syncing", "status"}},

		&Schema{Kind: CallFrame, Presence: AllOptional, Fields: []string{
			"type", "from", "to", "value", "gas", "gasUsed", "input", "output", "error",
			"revertReason", "calls", "logs",
		}},
		&Schema{Kind: ParityTrace, Presence: AllOptional, Fields: []string{
			"action", "result", "error", "blockHash", "blockNumber", "subtraces", "traceAddress",
			"transactionHash", "transactionPosition", "type",
		}},
		&Schema{Kind: TraceAction, Presence: AllOptional, Fields: []string{
			"callType", "from", "to", "value", "gas", "input", "init", "address",
			"refundAddress", "balance", "author", "rewardType",
		}},
		&Schema{Kind: TraceResult, Presence: AllOptional, Fields: []string{"gasUsed", "output", "address", "code"}},
		&Schema{Kind: OpcodeTrace, Presence: AllOptional, Fields: []string{"gas", "failed", "returnValue", "structLogs"}},
		&Schema{Kind: StructLog, Presence: AllOptional, Fields: []string{
			"pc", "op", "gas", "gasCost", "depth", "stack", "memory", "storage", "refund", "error",
		}},
		&Schema{Kind: BlockTraceEntry, Presence: AllRequired, Fields: []string{"txHash", "result"}},

		&Schema{
			Kind:     TxParams,
			Presence: AllOptional,
			Fields: []string{
				"type", "from", "to", "gas", "gasPrice", "maxFeePerGas", "maxPriorityFeePerGas",
				"maxFeePerBlobGas", "value", "data", "input", "nonce", "chainId", "accessList",
				"blobVersionedHashes", "authorizationList",
			},
			Conflicts: feeConflict,
		},
		&Schema{
			Kind:      FilterParams,
			Presence:  AllOptional,
			Fields:    []string{"fromBlock", "toBlock", "blockHash", "address", "topics"},
			Conflicts: filterConflict,
		},
		&Schema{Kind: StateOverrideAccount, Presence: AllOptional, Fields: []string{"balance", "nonce", "code", "state", "stateDiff"}},
		&Schema{Kind: TraceConfig, Presence: AllOptional, Fields: []string{
			"tracer", "tracerConfig", "timeout", "reexec", "disableStorage", "disableStack",
			"enableMemory", "enableReturnData",
		}},
		&Schema{Kind: AccessListResult, Presence: AllOptional, Fields: []string{"accessList", "gasUsed", "error"}},
	)
}
