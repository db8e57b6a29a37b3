package model

import (
	"time"

	"ethwire/internal/codec"
)

// LogRecord is the flat representation of a log written by the subscribe
// command, one JSON line per log.
type LogRecord struct {
	ChainID     uint64   `json:"chain_id"`
	BlockNumber *uint64  `json:"block_number"`
	BlockHash   string   `json:"block_hash,omitempty"`
	TxHash      string   `json:"tx_hash"`
	TxIndex     uint64   `json:"tx_index"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Removed     bool     `json:"removed"`
	Timestamp   *uint64  `json:"timestamp,omitempty"`
	IngestedAt  string   `json:"ingested_at"`
}

// NewLogRecord flattens l. Pending logs keep a nil block number.
func NewLogRecord(chainID uint64, l *Log, ingestedAt time.Time) LogRecord {
	topics := make([]string, 0, len(l.Topics))
	for _, topic := range l.Topics {
		topics = append(topics, topic.Hex())
	}

	rec := LogRecord{
		ChainID:    chainID,
		TxHash:     l.TransactionHash.Hex(),
		TxIndex:    l.TransactionIndex,
		LogIndex:   l.LogIndex,
		Address:    codec.EncodeAddress(l.Address),
		Topics:     topics,
		Data:       l.Data.String(),
		Removed:    l.Removed,
		IngestedAt: ingestedAt.UTC().Format(time.RFC3339Nano),
	}
	if l.BlockNumber != nil {
		n := uint64(*l.BlockNumber)
		rec.BlockNumber = &n
	}
	if l.BlockHash != nil {
		rec.BlockHash = l.BlockHash.Hex()
	}
	if l.BlockTimestamp != nil {
		ts := uint64(*l.BlockTimestamp)
		rec.Timestamp = &ts
	}
	return rec
}
