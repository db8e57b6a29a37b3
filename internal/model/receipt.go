package model

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// Receipt is a transaction receipt. ContractAddress is nil unless the
// transaction created a contract; To is nil for contract creations.
type Receipt struct {
	BlockHash         common.Hash       `json:"blockHash"`
	BlockNumber       codec.BlockNumber `json:"blockNumber"`
	ContractAddress   *common.Address   `json:"contractAddress"`
	CumulativeGasUsed uint64            `json:"cumulativeGasUsed"`
	EffectiveGasPrice *codec.Wei        `json:"effectiveGasPrice"`
	From              common.Address    `json:"from"`
	GasUsed           uint64            `json:"gasUsed"`
	Logs              []Log             `json:"logs"`
	LogsBloom         codec.HexBlob     `json:"logsBloom"`
	Status            uint64            `json:"status"`
	To                *common.Address   `json:"to"`
	TransactionHash   common.Hash       `json:"transactionHash"`
	TransactionIndex  uint64            `json:"transactionIndex"`
	Type              uint64            `json:"type"`
	BlobGasUsed       *uint64           `json:"blobGasUsed"`
	BlobGasPrice      *codec.Wei        `json:"blobGasPrice"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Succeeded reports a status of 1.
func (r *Receipt) Succeeded() bool { return r.Status == 1 }

// Log is an event log. BlockHash and BlockNumber are nil for pending logs.
type Log struct {
	Address          common.Address     `json:"address"`
	BlockHash        *common.Hash       `json:"blockHash"`
	BlockNumber      *codec.BlockNumber `json:"blockNumber"`
	Data             codec.HexBlob      `json:"data"`
	LogIndex         uint64             `json:"logIndex"`
	Removed          bool               `json:"removed"`
	Topics           []common.Hash      `json:"topics"`
	TransactionHash  common.Hash        `json:"transactionHash"`
	TransactionIndex uint64             `json:"transactionIndex"`
	BlockTimestamp   *codec.Timestamp   `json:"blockTimestamp"`

	Extra map[string]json.RawMessage `json:"-"`
}

// LogMatches reports whether l was emitted by address in transaction txHash of
// block blockHash.
func LogMatches(l Log, blockHash common.Hash, address common.Address, txHash common.Hash) bool {
	if l.BlockHash == nil || *l.BlockHash != blockHash {
		return false
	}
	return l.Address == address && l.TransactionHash == txHash
}

// ContainsLog reports whether any of logs satisfies LogMatches.
func ContainsLog(logs []Log, blockHash common.Hash, address common.Address, txHash common.Hash) bool {
	for _, l := range logs {
		if LogMatches(l, blockHash, address, txHash) {
			return true
		}
	}
	return false
}

// FilterChanges is the eth_getFilterChanges result: block or transaction hashes
// for block and pending filters, logs for log filters. Both are nil when the
// filter had no changes.
type FilterChanges struct {
	Hashes []common.Hash
	Logs   []Log
}
