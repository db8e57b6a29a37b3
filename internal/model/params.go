package model

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// TxParams are the transaction parameters for eth_call, eth_estimateGas,
// eth_sendTransaction and friends. Nil fields are omitted from the request.
type TxParams struct {
	Type                 *uint64           `json:"type"`
	From                 *common.Address   `json:"from"`
	To                   *common.Address   `json:"to"`
	Gas                  *uint64           `json:"gas"`
	GasPrice             *codec.Wei        `json:"gasPrice"`
	MaxFeePerGas         *codec.Wei        `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *codec.Wei        `json:"maxPriorityFeePerGas"`
	MaxFeePerBlobGas     *codec.Wei        `json:"maxFeePerBlobGas"`
	Value                *codec.Wei        `json:"value"`
	Data                 codec.HexBlob     `json:"data"`
	Input                codec.HexBlob     `json:"input"`
	Nonce                *codec.Nonce      `json:"nonce"`
	ChainID              *big.Int          `json:"chainId"`
	AccessList           []AccessListEntry `json:"accessList"`
	BlobVersionedHashes  []common.Hash     `json:"blobVersionedHashes"`
	AuthorizationList    []Authorization   `json:"authorizationList"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Clone returns a shallow copy with its own Extra map.
func (p *TxParams) Clone() *TxParams {
	out := *p
	if p.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

// HasLegacyFee reports whether gasPrice is set.
func (p *TxParams) HasLegacyFee() bool { return p.GasPrice != nil }

// HasDynamicFee reports whether either EIP-1559 fee cap is set.
func (p *TxParams) HasDynamicFee() bool {
	return p.MaxFeePerGas != nil || p.MaxPriorityFeePerGas != nil
}

// FilterParams is the filter object of eth_getLogs and eth_newFilter. BlockHash
// excludes FromBlock and ToBlock.
type FilterParams struct {
	FromBlock *codec.BlockID   `json:"fromBlock"`
	ToBlock   *codec.BlockID   `json:"toBlock"`
	BlockHash *common.Hash     `json:"blockHash"`
	Address   []common.Address `json:"address"`
	Topics    TopicFilter      `json:"topics"`

	Extra map[string]json.RawMessage `json:"-"`
}

// StateOverrideAccount overrides account state for eth_call and debug_traceCall.
type StateOverrideAccount struct {
	Balance   *codec.Wei                  `json:"balance"`
	Nonce     *codec.Nonce                `json:"nonce"`
	Code      codec.HexBlob               `json:"code"`
	State     map[common.Hash]common.Hash `json:"state"`
	StateDiff map[common.Hash]common.Hash `json:"stateDiff"`

	Extra map[string]json.RawMessage `json:"-"`
}

// TraceConfig selects and configures a debug tracer.
type TraceConfig struct {
	Tracer           *string         `json:"tracer"`
	TracerConfig     json.RawMessage `json:"tracerConfig"`
	Timeout          *string         `json:"timeout"`
	Reexec           *uint64         `json:"reexec"`
	DisableStorage   *bool           `json:"disableStorage"`
	DisableStack     *bool           `json:"disableStack"`
	EnableMemory     *bool           `json:"enableMemory"`
	EnableReturnData *bool           `json:"enableReturnData"`

	Extra map[string]json.RawMessage `json:"-"`
}

// AccessListResult is the eth_createAccessList result.
type AccessListResult struct {
	AccessList []AccessListEntry `json:"accessList"`
	GasUsed    *uint64           `json:"gasUsed"`
	Error      *string           `json:"error"`

	Extra map[string]json.RawMessage `json:"-"`
}
