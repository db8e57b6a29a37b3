package codec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// BlockTag is a symbolic block reference understood by every node.
type BlockTag string

const (
	TagLatest    BlockTag = "latest"
	TagEarliest  BlockTag = "earliest"
	TagPending   BlockTag = "pending"
	TagSafe      BlockTag = "safe"
	TagFinalized BlockTag = "finalized"
)

func (t BlockTag) valid() bool {
	switch t {
	case TagLatest, TagEarliest, TagPending, TagSafe, TagFinalized:
		return true
	}
	return false
}

// BlockIDForm selects the wire shape a method accepts for a block parameter.
type BlockIDForm int

const (
	// NumberOrTag accepts a hex block number or a tag.
	NumberOrTag BlockIDForm = iota
	// NumberTagOrHash additionally accepts an EIP-1898 {"blockHash": ...} object.
	NumberTagOrHash
)

type blockIDKind uint8

const (
	blockIDNumber blockIDKind = iota + 1
	blockIDTag
	blockIDHash
)

// BlockID identifies a block by number, tag or hash. The zero value is invalid.
type BlockID struct {
	kind             blockIDKind
	number           uint64
	tag              BlockTag
	hash             common.Hash
	requireCanonical bool
}

func BlockByNumber(n uint64) BlockID { return BlockID{kind: blockIDNumber, number: n} }

func BlockByTag(t BlockTag) BlockID { return BlockID{kind: blockIDTag, tag: t} }

func BlockByHash(h common.Hash, requireCanonical bool) BlockID {
	return BlockID{kind: blockIDHash, hash: h, requireCanonical: requireCanonical}
}

// Number returns the block number when b was built from one.
func (b BlockID) Number() (uint64, bool) { return b.number, b.kind == blockIDNumber }

func (b BlockID) Tag() (BlockTag, bool) { return b.tag, b.kind == blockIDTag }

func (b BlockID) Hash() (common.Hash, bool) { return b.hash, b.kind == blockIDHash }

func (b BlockID) IsZero() bool { return b.kind == 0 }

func (b BlockID) String() string {
	switch b.kind {
	case blockIDNumber:
		return EncodeUint64(b.number)
	case blockIDTag:
		return string(b.tag)
	case blockIDHash:
		return b.hash.Hex()
	}
	return "<invalid>"
}

// Encode renders b in the given wire form. Hashes are only representable in the
// NumberTagOrHash form.
func (b BlockID) Encode(form BlockIDForm) (any, error) {
	switch b.kind {
	case blockIDNumber:
		return EncodeUint64(b.number), nil
	case blockIDTag:
		return string(b.tag), nil
	case blockIDHash:
		if form != NumberTagOrHash {
			return nil, &InvalidBlockIDError{Input: b.hash.Hex(), Reason: "method does not accept a block hash"}
		}
		obj := map[string]any{"blockHash": b.hash.Hex()}
		if b.requireCanonical {
			obj["requireCanonical"] = true
		}
		return obj, nil
	}
	return nil, &InvalidBlockIDError{Input: "", Reason: "empty block identifier"}
}

// ParseBlockID accepts the mixed inputs callers and wire payloads use for block
// parameters: integers, tags, hex or decimal strings, 32-byte hashes and EIP-1898
// objects.
func ParseBlockID(v any) (BlockID, error) {
	switch x := v.(type) {
	case BlockID:
		if x.IsZero() {
			return BlockID{}, &InvalidBlockIDError{Input: "", Reason: "empty block identifier"}
		}
		return x, nil
	case *BlockID:
		if x == nil {
			return BlockID{}, &InvalidBlockIDError{Input: "nil", Reason: "nil block identifier"}
		}
		return ParseBlockID(*x)
	case BlockTag:
		return ParseBlockID(string(x))
	case BlockNumber:
		return BlockByNumber(uint64(x)), nil
	case rpc.BlockNumber:
		return ParseBlockID(x.String())
	case common.Hash:
		return BlockByHash(x, false), nil
	case *common.Hash:
		if x == nil {
			return BlockID{}, &InvalidBlockIDError{Input: "nil", Reason: "nil block hash"}
		}
		return BlockByHash(*x, false), nil
	case *big.Int:
		if x == nil || x.Sign() < 0 || !x.IsUint64() {
			return BlockID{}, &InvalidBlockIDError{Input: fmt.Sprint(x), Reason: "block number out of range"}
		}
		return BlockByNumber(x.Uint64()), nil
	case json.Number:
		n, err := DecodeUint64(x, true)
		if err != nil {
			return BlockID{}, &InvalidBlockIDError{Input: x.String(), Reason: err.Error()}
		}
		return BlockByNumber(n), nil
	case string:
		return parseBlockIDString(x)
	case map[string]any:
		return parseBlockIDObject(x)
	case nil:
		return BlockID{}, &InvalidBlockIDError{Input: "null", Reason: "null block identifier"}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return BlockID{}, &InvalidBlockIDError{Input: fmt.Sprint(v), Reason: "negative block number"}
		}
		return BlockByNumber(uint64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return BlockByNumber(rv.Uint()), nil
	}
	return BlockID{}, &InvalidBlockIDError{Input: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("unsupported %T", v)}
}

func parseBlockIDString(s string) (BlockID, error) {
	trimmed := strings.TrimSpace(s)
	if tag := BlockTag(strings.ToLower(trimmed)); tag.valid() {
		return BlockByTag(tag), nil
	}
	if has0xPrefix(trimmed) && len(trimmed) == 2+2*common.HashLength {
		h, err := DecodeHash(trimmed)
		if err != nil {
			return BlockID{}, &InvalidBlockIDError{Input: s, Reason: err.Error()}
		}
		return BlockByHash(h, false), nil
	}
	n, err := DecodeUint64(trimmed, true)
	if err != nil {
		return BlockID{}, &InvalidBlockIDError{Input: s, Reason: "not a block number, tag or hash"}
	}
	return BlockByNumber(n), nil
}

func parseBlockIDObject(obj map[string]any) (BlockID, error) {
	if raw, ok := obj["blockHash"]; ok {
		s, ok := raw.(string)
		if !ok {
			return BlockID{}, &InvalidBlockIDError{Input: fmt.Sprint(raw), Reason: "blockHash must be a string"}
		}
		h, err := DecodeHash(s)
		if err != nil {
			return BlockID{}, &InvalidBlockIDError{Input: s, Reason: err.Error()}
		}
		canonical, _ := obj["requireCanonical"].(bool)
		return BlockByHash(h, canonical), nil
	}
	if raw, ok := obj["blockNumber"]; ok {
		return ParseBlockID(raw)
	}
	return BlockID{}, &InvalidBlockIDError{Input: fmt.Sprint(obj), Reason: "object needs blockHash or blockNumber"}
}
