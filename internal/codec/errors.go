package codec

import "fmt"

// MalformedHexError reports a byte string that is not 0x-prefixed, even-length hex.
type MalformedHexError struct {
	Input  string
	Reason string
}

func (e *MalformedHexError) Error() string {
	return fmt.Sprintf("malformed hex %q: %s", truncate(e.Input), e.Reason)
}

// InvalidQuantityError reports a value that is not a non-negative integer quantity.
type InvalidQuantityError struct {
	Input  string
	Reason string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %q: %s", truncate(e.Input), e.Reason)
}

// ChecksumMismatchError is returned for mixed-case addresses whose casing does not
// match their EIP-55 checksum. Only raised under strict checksum decoding.
type ChecksumMismatchError struct {
	Input string
	Want  string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("address %s fails checksum, expected %s", e.Input, e.Want)
}

// UnitMismatchError is returned when a value of one denomination is supplied where
// another is required (e.g. Gwei for a Wei field).
type UnitMismatchError struct {
	Got  string
	Want string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit mismatch: got %s, want %s", e.Got, e.Want)
}

func truncate(s string) string {
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}

// InvalidBlockIDError reports a block identifier that is neither a number, a known
// tag nor a block hash, or a form the target method does not accept.
type InvalidBlockIDError struct {
	Input  string
	Reason string
}

func (e *InvalidBlockIDError) Error() string {
	return fmt.Sprintf("invalid block identifier %q: %s", truncate(e.Input), e.Reason)
}
