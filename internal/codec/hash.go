package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// DecodeHash parses a 32-byte 0x-prefixed hash.
func DecodeHash(s string) (common.Hash, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, &MalformedHexError{Input: s, Reason: fmt.Sprintf("hash must be %d bytes, got %d", common.HashLength, len(b))}
	}
	return common.BytesToHash(b), nil
}

// HashOf normalizes caller-supplied hash input.
func HashOf(v any) (common.Hash, error) {
	switch x := v.(type) {
	case common.Hash:
		return x, nil
	case *common.Hash:
		if x == nil {
			return common.Hash{}, &MalformedHexError{Input: "nil", Reason: "nil hash"}
		}
		return *x, nil
	case string:
		return DecodeHash(x)
	case []byte:
		if len(x) != common.HashLength {
			return common.Hash{}, &MalformedHexError{Input: fmt.Sprintf("%x", x), Reason: "hash must be 32 bytes"}
		}
		return common.BytesToHash(x), nil
	default:
		return common.Hash{}, &MalformedHexError{Input: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("unsupported %T", v)}
	}
}
