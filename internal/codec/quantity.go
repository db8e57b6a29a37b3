package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DecodeQuantity parses a wire quantity. Hex strings are always accepted, leading
// zero digits included. Decimal strings and JSON numbers are only accepted when
// allowDecimal is set.
func DecodeQuantity(v any, allowDecimal bool) (*big.Int, error) {
	switch x := v.(type) {
	case string:
		return parseQuantityString(x, allowDecimal)
	case json.Number:
		if !allowDecimal {
			return nil, &InvalidQuantityError{Input: x.String(), Reason: "decimal number where hex is required"}
		}
		return parseDecimal(x.String())
	case float64:
		if !allowDecimal {
			return nil, &InvalidQuantityError{Input: fmt.Sprint(x), Reason: "decimal number where hex is required"}
		}
		if x < 0 || x != math.Trunc(x) || x > math.MaxUint64 {
			return nil, &InvalidQuantityError{Input: fmt.Sprint(x), Reason: "not a non-negative integer"}
		}
		out, _ := new(big.Float).SetFloat64(x).Int(nil)
		return out, nil
	case nil:
		return nil, &InvalidQuantityError{Input: "null", Reason: "null quantity"}
	default:
		return nil, &InvalidQuantityError{Input: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("unexpected %T", v)}
	}
}

// DecodeUint64 parses a quantity that must fit in 64 bits.
func DecodeUint64(v any, allowDecimal bool) (uint64, error) {
	n, err := DecodeQuantity(v, allowDecimal)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, &InvalidQuantityError{Input: n.String(), Reason: "overflows uint64"}
	}
	return n.Uint64(), nil
}

// EncodeQuantity renders a non-negative integer as minimal hex ("0x0" for zero).
// Use QuantityOf to validate untrusted input first.
func EncodeQuantity(x *big.Int) string {
	if x == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(x)
}

// EncodeUint64 renders n as minimal hex.
func EncodeUint64(n uint64) string {
	return hexutil.EncodeUint64(n)
}

func parseQuantityString(s string, allowDecimal bool) (*big.Int, error) {
	raw := s
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return nil, &InvalidQuantityError{Input: raw, Reason: "negative value"}
	}
	if has0xPrefix(s) {
		digits := s[2:]
		if digits == "" {
			return nil, &InvalidQuantityError{Input: raw, Reason: "empty hex quantity"}
		}
		if !isHexDigits(digits) {
			return nil, &InvalidQuantityError{Input: raw, Reason: "non-hex content"}
		}
		out, ok := new(big.Int).SetString(digits, 16)
		if !ok {
			return nil, &InvalidQuantityError{Input: raw, Reason: "non-hex content"}
		}
		return out, nil
	}
	if !allowDecimal {
		return nil, &InvalidQuantityError{Input: raw, Reason: "missing 0x prefix"}
	}
	return parseDecimal(s)
}

func parseDecimal(s string) (*big.Int, error) {
	if s == "" {
		return nil, &InvalidQuantityError{Input: s, Reason: "empty quantity"}
	}
	if strings.HasPrefix(s, "-") {
		return nil, &InvalidQuantityError{Input: s, Reason: "negative value"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, &InvalidQuantityError{Input: s, Reason: "non-numeric content"}
		}
	}
	out, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &InvalidQuantityError{Input: s, Reason: "non-numeric content"}
	}
	return out, nil
}
