package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// Block is a block header plus body as returned by eth_getBlockBy*. Every field is
// optional; absent fields are nil.
type Block struct {
	Number                *codec.BlockNumber `json:"number"`
	Hash                  *common.Hash       `json:"hash"`
	ParentHash            *common.Hash       `json:"parentHash"`
	Sha3Uncles            *common.Hash       `json:"sha3Uncles"`
	LogsBloom             codec.HexBlob      `json:"logsBloom"`
	TransactionsRoot      *common.Hash       `json:"transactionsRoot"`
	StateRoot             *common.Hash       `json:"stateRoot"`
	ReceiptsRoot          *common.Hash       `json:"receiptsRoot"`
	Miner                 *common.Address    `json:"miner"`
	Difficulty            *big.Int           `json:"difficulty"`
	TotalDifficulty       *big.Int           `json:"totalDifficulty"`
	ExtraData             codec.HexBlob      `json:"extraData"`
	Size                  *uint64            `json:"size"`
	GasLimit              *uint64            `json:"gasLimit"`
	GasUsed               *uint64            `json:"gasUsed"`
	Timestamp             *codec.Timestamp   `json:"timestamp"`
	Transactions          *BlockTransactions `json:"transactions"`
	Uncles                []common.Hash      `json:"uncles"`
	MixHash               *common.Hash       `json:"mixHash"`
	Nonce                 codec.HexBlob      `json:"nonce"`
	BaseFeePerGas         *codec.Wei         `json:"baseFeePerGas"`
	WithdrawalsRoot       *common.Hash       `json:"withdrawalsRoot"`
	Withdrawals           []Withdrawal       `json:"withdrawals"`
	BlobGasUsed           *uint64            `json:"blobGasUsed"`
	ExcessBlobGas         *uint64            `json:"excessBlobGas"`
	ParentBeaconBlockRoot *common.Hash       `json:"parentBeaconBlockRoot"`
	RequestsHash          *common.Hash       `json:"requestsHash"`

	Extra map[string]json.RawMessage `json:"-"`
}

// BlockTransactions holds either transaction hashes or full transactions,
// depending on the fullTx flag of the request.
type BlockTransactions struct {
	Hashes []common.Hash
	Full   []Transaction
}

// IsFull reports whether full transaction objects were returned.
func (t *BlockTransactions) IsFull() bool {
	return t != nil && t.Full != nil
}

func (t *BlockTransactions) Len() int {
	if t == nil {
		return 0
	}
	if t.Full != nil {
		return len(t.Full)
	}
	return len(t.Hashes)
}

// Withdrawal is a beacon chain withdrawal. Amount is denominated in gwei.
type Withdrawal struct {
	Index          uint64         `json:"index"`
	ValidatorIndex uint64         `json:"validatorIndex"`
	Address        common.Address `json:"address"`
	Amount         *codec.Gwei    `json:"amount"`

	Extra map[string]json.RawMessage `json:"-"`
}
