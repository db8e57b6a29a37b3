package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// TxPoolContent is the txpool_content result, keyed by sender then nonce.
type TxPoolContent struct {
	Pending map[common.Address]map[uint64]Transaction `json:"pending"`
	Queued  map[common.Address]map[uint64]Transaction `json:"queued"`

	Extra map[string]json.RawMessage `json:"-"`
}

// TxPoolInspect is the txpool_inspect result, keyed by sender then nonce.
type TxPoolInspect struct {
	Pending map[common.Address]map[uint64]PoolSummary `json:"pending"`
	Queued  map[common.Address]map[uint64]PoolSummary `json:"queued"`

	Extra map[string]json.RawMessage `json:"-"`
}

type TxPoolStatus struct {
	Pending *uint64 `json:"pending"`
	Queued  *uint64 `json:"queued"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PoolSummary is the one-line description txpool_inspect gives for a pooled
// transaction, e.g. "0xAb..: 1 wei + 21000 gas × 2 wei". To is nil for contract
// creations. Amounts are decimal on the wire.
type PoolSummary struct {
	To       *common.Address
	Value    *codec.Wei
	Gas      uint64
	GasPrice *codec.Wei
}

const contractCreation = "contract creation"

// ParsePoolSummary parses a txpool_inspect summary line.
func ParsePoolSummary(s string) (PoolSummary, error) {
	target, rest, ok := strings.Cut(s, ": ")
	if !ok {
		return PoolSummary{}, fmt.Errorf("pool summary %q: missing recipient", s)
	}

	var out PoolSummary
	if target != contractCreation {
		to, err := codec.DecodeAddress(target, false)
		if err != nil {
			return PoolSummary{}, fmt.Errorf("pool summary recipient: %w", err)
		}
		out.To = &to
	}

	var value, gas, price string
	if _, err := fmt.Sscanf(rest, "%s wei + %s gas × %s wei", &value, &gas, &price); err != nil {
		return PoolSummary{}, fmt.Errorf("pool summary %q: %w", s, err)
	}

	v, err := codec.DecodeQuantity(value, true)
	if err != nil {
		return PoolSummary{}, fmt.Errorf("pool summary value: %w", err)
	}
	g, err := codec.DecodeUint64(gas, true)
	if err != nil {
		return PoolSummary{}, fmt.Errorf("pool summary gas: %w", err)
	}
	p, err := codec.DecodeQuantity(price, true)
	if err != nil {
		return PoolSummary{}, fmt.Errorf("pool summary gas price: %w", err)
	}

	out.Value = (*codec.Wei)(v)
	out.Gas = g
	out.GasPrice = (*codec.Wei)(p)
	return out, nil
}

// String renders the summary in the txpool_inspect format.
func (p PoolSummary) String() string {
	target := contractCreation
	if p.To != nil {
		target = codec.EncodeAddress(*p.To)
	}
	return fmt.Sprintf("%s: %s wei + %d gas × %s wei", target, weiDecimal(p.Value), p.Gas, weiDecimal(p.GasPrice))
}

func weiDecimal(w *codec.Wei) string {
	if w == nil {
		return "0"
	}
	return (*big.Int)(w).String()
}
