package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoolSummary(t *testing.T) {
	s := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed: 1000000000000000000 wei + 21000 gas × 2000000000 wei"

	got, err := ParsePoolSummary(s)
	require.NoError(t, err)
	require.NotNil(t, got.To)
	assert.Equal(t, common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), *got.To)
	assert.Equal(t, "1000000000000000000", got.Value.String())
	assert.Equal(t, uint64(21000), got.Gas)
	assert.Equal(t, "2000000000", got.GasPrice.String())
	assert.Equal(t, s, got.String())
}

func TestParsePoolSummaryContractCreation(t *testing.T) {
	got, err := ParsePoolSummary("contract creation: 0 wei + 53000 gas × 1 wei")
	require.NoError(t, err)
	assert.Nil(t, got.To)
	assert.Equal(t, uint64(53000), got.Gas)

	_, err = ParsePoolSummary("garbage")
	require.Error(t, err)
}

func TestContainsLog(t *testing.T) {
	blockHash := common.HexToHash("0x01")
	txHash := common.HexToHash("0x02")
	addr := common.HexToAddress("0x03")

	logs := []Log{
		{Address: addr, TransactionHash: txHash},
		{Address: addr, BlockHash: &blockHash, TransactionHash: txHash},
	}

	assert.False(t, LogMatches(logs[0], blockHash, addr, txHash), "pending log has no block hash")
	assert.True(t, ContainsLog(logs, blockHash, addr, txHash))
	assert.False(t, ContainsLog(logs, blockHash, common.HexToAddress("0x04"), txHash))
}

func TestTransactionVariants(t *testing.T) {
	typ := uint64(0x7e)
	txs := []Transaction{&LegacyTx{}, &AccessListTx{}, &DynamicFeeTx{}, &BlobTx{}, &SetCodeTx{}, &UnknownTx{TxCommon: TxCommon{Type: &typ}}}
	for i, tx := range txs[:5] {
		assert.Equal(t, uint64(i), tx.TxType())
		assert.True(t, tx.Common().Pending())
	}
	assert.Equal(t, uint64(0x7e), txs[5].TxType())
}
