package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// Transaction types by EIP.
const (
	LegacyTxType     = 0
	AccessListTxType = 1
	DynamicFeeTxType = 2
	BlobTxType       = 3
	SetCodeTxType    = 4
)

// Transaction is one of LegacyTx, AccessListTx, DynamicFeeTx, BlobTx, SetCodeTx or
// UnknownTx.
type Transaction interface {
	TxType() uint64
	Common() *TxCommon
}

// TxCommon carries the fields shared by every transaction variant. BlockHash,
// BlockNumber and TransactionIndex are nil for pending transactions.
type TxCommon struct {
	BlockHash        *common.Hash       `json:"blockHash"`
	BlockNumber      *codec.BlockNumber `json:"blockNumber"`
	From             *common.Address    `json:"from"`
	Gas              *uint64            `json:"gas"`
	Hash             *common.Hash       `json:"hash"`
	Input            codec.HexBlob      `json:"input"`
	Nonce            *codec.Nonce       `json:"nonce"`
	To               *common.Address    `json:"to"`
	TransactionIndex *uint64            `json:"transactionIndex"`
	Value            *codec.Wei         `json:"value"`
	Type             *uint64            `json:"type"`
	V                *big.Int           `json:"v"`
	R                *big.Int           `json:"r"`
	S                *big.Int           `json:"s"`
	ChainID          *big.Int           `json:"chainId"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (c *TxCommon) Common() *TxCommon { return c }

// Pending reports whether the transaction is not yet included in a block.
func (c *TxCommon) Pending() bool { return c.BlockNumber == nil }

type LegacyTx struct {
	TxCommon
	GasPrice *codec.Wei `json:"gasPrice"`
}

func (*LegacyTx) TxType() uint64 { return LegacyTxType }

// AccessListTx is an EIP-2930 transaction.
type AccessListTx struct {
	TxCommon
	GasPrice   *codec.Wei        `json:"gasPrice"`
	AccessList []AccessListEntry `json:"accessList"`
	YParity    *uint64           `json:"yParity"`
}

func (*AccessListTx) TxType() uint64 { return AccessListTxType }

// DynamicFeeTx is an EIP-1559 transaction. GasPrice, when present, is the
// effective price a node reports for an included transaction.
type DynamicFeeTx struct {
	TxCommon
	MaxFeePerGas         *codec.Wei        `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *codec.Wei        `json:"maxPriorityFeePerGas"`
	AccessList           []AccessListEntry `json:"accessList"`
	YParity              *uint64           `json:"yParity"`
	GasPrice             *codec.Wei        `json:"gasPrice"`
}

func (*DynamicFeeTx) TxType() uint64 { return DynamicFeeTxType }

// BlobTx is an EIP-4844 transaction.
type BlobTx struct {
	TxCommon
	MaxFeePerGas         *codec.Wei        `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *codec.Wei        `json:"maxPriorityFeePerGas"`
	AccessList           []AccessListEntry `json:"accessList"`
	YParity              *uint64           `json:"yParity"`
	GasPrice             *codec.Wei        `json:"gasPrice"`
	MaxFeePerBlobGas     *codec.Wei        `json:"maxFeePerBlobGas"`
	BlobVersionedHashes  []common.Hash     `json:"blobVersionedHashes"`
}

func (*BlobTx) TxType() uint64 { return BlobTxType }

// SetCodeTx is an EIP-7702 transaction.
type SetCodeTx struct {
	TxCommon
	MaxFeePerGas         *codec.Wei        `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *codec.Wei        `json:"maxPriorityFeePerGas"`
	AccessList           []AccessListEntry `json:"accessList"`
	YParity              *uint64           `json:"yParity"`
	GasPrice             *codec.Wei        `json:"gasPrice"`
	AuthorizationList    []Authorization   `json:"authorizationList"`
}

func (*SetCodeTx) TxType() uint64 { return SetCodeTxType }

// UnknownTx keeps the common fields of a transaction whose type is not recognized.
// Everything else is left in Extra.
type UnknownTx struct {
	TxCommon
}

func (t *UnknownTx) TxType() uint64 {
	if t.Type == nil {
		return 0
	}
	return *t.Type
}

// AccessListEntry is one EIP-2930 access list item.
type AccessListEntry struct {
	Address     common.Address `json:"address"`
	StorageKeys []common.Hash  `json:"storageKeys"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Authorization is an EIP-7702 signed delegation.
type Authorization struct {
	ChainID *big.Int       `json:"chainId"`
	Address common.Address `json:"address"`
	Nonce   codec.Nonce    `json:"nonce"`
	YParity uint64         `json:"yParity"`
	R       *big.Int       `json:"r"`
	S       *big.Int       `json:"s"`

	Extra map[string]json.RawMessage `json:"-"`
}

// SignedTx is the result of eth_signTransaction.
type SignedTx struct {
	Raw codec.HexBlob `json:"raw"`
	Tx  Transaction   `json:"tx"`

	Extra map[string]json.RawMessage `json:"-"`
}
