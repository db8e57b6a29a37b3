package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethwire/internal/codec"
)

func TestNewLogRecord(t *testing.T) {
	block := codec.BlockNumber(36000000)
	ts := codec.Timestamp(1700000000)
	blockHash := common.HexToHash("0xabc123")
	l := &Log{
		Address:          common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
		BlockHash:        &blockHash,
		BlockNumber:      &block,
		BlockTimestamp:   &ts,
		Data:             codec.HexBlob{0xde, 0xad, 0xbe, 0xef},
		LogIndex:         12,
		Topics:           []common.Hash{common.HexToHash("0xaaa")},
		TransactionHash:  common.HexToHash("0xdef456"),
		TransactionIndex: 7,
	}

	rec := NewLogRecord(56, l, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", rec.Address)
	assert.Equal(t, uint64(36000000), *rec.BlockNumber)
	assert.Equal(t, uint64(1700000000), *rec.Timestamp)
	assert.Equal(t, "0xdeadbeef", rec.Data)
	assert.Equal(t, "2024-01-01T00:00:00Z", rec.IngestedAt)
	assert.Equal(t, []string{"0x" + strings.Repeat("0", 61) + "aaa"}, rec.Topics)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	var decoded LogRecord
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, rec, decoded)
}

func TestNewLogRecordPending(t *testing.T) {
	rec := NewLogRecord(1, &Log{}, time.Unix(0, 0))
	assert.Nil(t, rec.BlockNumber)
	assert.Empty(t, rec.BlockHash)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"block_number":null`)
	assert.NotContains(t, string(b), "timestamp")
}
