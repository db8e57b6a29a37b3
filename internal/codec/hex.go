package codec

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexBlob is an arbitrary byte string carried on the wire as 0x-prefixed hex.
type HexBlob []byte

// DecodeHex parses a 0x-prefixed hex string with an even number of digits.
// Either case is accepted; "0x" decodes to an empty blob.
func DecodeHex(s string) (HexBlob, error) {
	out, err := hexutil.Decode(s)
	switch {
	case err == nil:
		return HexBlob(out), nil
	case errors.Is(err, hexutil.ErrEmptyString), errors.Is(err, hexutil.ErrMissingPrefix):
		return nil, &MalformedHexError{Input: s, Reason: "missing 0x prefix"}
	case errors.Is(err, hexutil.ErrOddLength):
		return nil, &MalformedHexError{Input: s, Reason: "odd number of digits"}
	default:
		return nil, &MalformedHexError{Input: s, Reason: "invalid hex digit"}
	}
}

// NormalizeHex validates s and returns its canonical lowercase form.
func NormalizeHex(s string) (string, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// String returns the canonical lowercase 0x form.
func (b HexBlob) String() string {
	return hexutil.Encode(b)
}

// Bytes returns the underlying bytes.
func (b HexBlob) Bytes() []byte {
	return []byte(b)
}

func (b HexBlob) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *HexBlob) UnmarshalText(text []byte) error {
	out, err := DecodeHex(string(text))
	if err != nil {
		return err
	}
	*b = out
	return nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHexDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !('0' <= r && r <= '9' || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F')
	}) < 0
}
