package codec

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ToChecksum returns the EIP-55 mixed-case form of a 0x-prefixed 20-byte address.
// Input casing is ignored.
func ToChecksum(addr string) (string, error) {
	a, err := DecodeAddress(addr, false)
	if err != nil {
		return "", err
	}
	return EncodeAddress(a), nil
}

// EncodeAddress renders a in checksum form. Every address the pipeline emits goes
// through here.
func EncodeAddress(a common.Address) string {
	return a.Hex()
}

// DecodeAddress parses a 0x-prefixed 40-digit address in any case. All-lower and
// all-upper inputs carry no checksum. Mixed-case input that fails its checksum is
// accepted unless strict is set.
func DecodeAddress(s string, strict bool) (common.Address, error) {
	raw, err := DecodeHex(s)
	if err != nil {
		return common.Address{}, err
	}
	if len(raw) != common.AddressLength {
		return common.Address{}, &MalformedHexError{Input: s, Reason: fmt.Sprintf("address must be %d hex digits", 2*common.AddressLength)}
	}
	a := common.BytesToAddress(raw)
	if digits := s[2:]; strict && isMixedCase(digits) {
		if want := a.Hex(); want[2:] != digits {
			return common.Address{}, &ChecksumMismatchError{Input: s, Want: want}
		}
	}
	return a, nil
}

// IsChecksumAddress reports whether s is exactly the checksum form of itself.
func IsChecksumAddress(s string) bool {
	a, err := DecodeAddress(s, false)
	if err != nil {
		return false
	}
	return EncodeAddress(a) == "0x"+s[2:]
}

// AddressOf normalizes caller-supplied address input.
func AddressOf(v any) (common.Address, error) {
	switch x := v.(type) {
	case common.Address:
		return x, nil
	case *common.Address:
		if x == nil {
			return common.Address{}, &MalformedHexError{Input: "nil", Reason: "nil address"}
		}
		return *x, nil
	case string:
		return DecodeAddress(x, false)
	default:
		return common.Address{}, &MalformedHexError{Input: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("unsupported %T", v)}
	}
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
