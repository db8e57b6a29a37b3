package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// MerkleProof is the eth_getProof result.
type MerkleProof struct {
	Address      common.Address  `json:"address"`
	AccountProof []codec.HexBlob `json:"accountProof"`
	Balance      *codec.Wei      `json:"balance"`
	CodeHash     common.Hash     `json:"codeHash"`
	Nonce        codec.Nonce     `json:"nonce"`
	StorageHash  common.Hash     `json:"storageHash"`
	StorageProof []StorageProof  `json:"storageProof"`

	Extra map[string]json.RawMessage `json:"-"`
}

// StorageProof proves one storage slot. Key is kept as the node echoed it.
type StorageProof struct {
	Key   string          `json:"key"`
	Value *big.Int        `json:"value"`
	Proof []codec.HexBlob `json:"proof"`

	Extra map[string]json.RawMessage `json:"-"`
}
