package indexer

import (
	"time"

	"ethwire/internal/codec"
	"ethwire/internal/model"
)

// BlockSummary is the per-block line the blocks command writes.
type BlockSummary struct {
	ChainID      uint64 `json:"chain_id"`
	Number       uint64 `json:"number"`
	Hash         string `json:"hash"`
	ParentHash   string `json:"parent_hash"`
	Miner        string `json:"miner,omitempty"`
	Timestamp    uint64 `json:"timestamp"`
	Time         string `json:"time"`
	GasUsed      uint64 `json:"gas_used"`
	GasLimit     uint64 `json:"gas_limit"`
	BaseFee      string `json:"base_fee_wei,omitempty"`
	Transactions int    `json:"transactions"`
	Withdrawals  int    `json:"withdrawals"`
	FailedTxs    *int   `json:"failed_txs,omitempty"`
	IngestedAt   string `json:"ingested_at"`
}

// NewBlockSummary flattens a block, and its receipts when fetched, into one line.
func NewBlockSummary(chainID uint64, block *model.Block, receipts []*model.Receipt, ingestedAt time.Time) BlockSummary {
	s := BlockSummary{
		ChainID:     chainID,
		Withdrawals: len(block.Withdrawals),
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}
	if block.Number != nil {
		s.Number = uint64(*block.Number)
	}
	if block.Hash != nil {
		s.Hash = block.Hash.Hex()
	}
	if block.ParentHash != nil {
		s.ParentHash = block.ParentHash.Hex()
	}
	if block.Miner != nil {
		s.Miner = codec.EncodeAddress(*block.Miner)
	}
	if block.Timestamp != nil {
		s.Timestamp = uint64(*block.Timestamp)
		s.Time = time.Unix(int64(s.Timestamp), 0).UTC().Format(time.RFC3339)
	}
	if block.GasUsed != nil {
		s.GasUsed = *block.GasUsed
	}
	if block.GasLimit != nil {
		s.GasLimit = *block.GasLimit
	}
	if block.BaseFeePerGas != nil {
		s.BaseFee = block.BaseFeePerGas.String()
	}
	if block.Transactions != nil {
		s.Transactions = block.Transactions.Len()
	}
	if receipts != nil {
		failed := 0
		for _, r := range receipts {
			if !r.Succeeded() {
				failed++
			}
		}
		s.FailedTxs = &failed
	}
	return s
}
