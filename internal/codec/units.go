package codec

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

var gweiInWei = big.NewInt(1_000_000_000)

// Wei is an amount of the native currency in its smallest denomination.
// The zero value is 0 wei.
type Wei big.Int

// NewWei copies x into a Wei amount.
func NewWei(x *big.Int) *Wei {
	return (*Wei)(new(big.Int).Set(x))
}

// WeiFromUint64 returns n wei.
func WeiFromUint64(n uint64) *Wei {
	return (*Wei)(new(big.Int).SetUint64(n))
}

// Int returns a copy of the amount as a big integer.
func (w *Wei) Int() *big.Int {
	if w == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(w))
}

func (w *Wei) String() string {
	if w == nil {
		return "<nil>"
	}
	return (*big.Int)(w).String()
}

func (w *Wei) Cmp(other *Wei) int {
	return (*big.Int)(w).Cmp((*big.Int)(other))
}

func (w *Wei) MarshalText() ([]byte, error) {
	return []byte(EncodeQuantity((*big.Int)(w))), nil
}

// Gwei is an amount in units of 10^9 wei. It never converts to Wei implicitly.
type Gwei big.Int

// GweiFromUint64 returns n gwei.
func GweiFromUint64(n uint64) *Gwei {
	return (*Gwei)(new(big.Int).SetUint64(n))
}

// ToWei converts the amount to wei.
func (g *Gwei) ToWei() *Wei {
	return (*Wei)(new(big.Int).Mul((*big.Int)(g), gweiInWei))
}

func (g *Gwei) String() string {
	if g == nil {
		return "<nil>"
	}
	return (*big.Int)(g).String()
}

func (g *Gwei) Int() *big.Int {
	if g == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(g))
}

// Nonce is an account transaction counter.
type Nonce uint64

// Timestamp is a block timestamp in unix seconds.
type Timestamp uint64

// BlockNumber is a block height.
type BlockNumber uint64

func (n BlockNumber) String() string {
	return EncodeUint64(uint64(n))
}

// QuantityOf normalizes caller-supplied numeric input for the wire. Gwei values are
// rejected; they must be converted with ToWei first.
func QuantityOf(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, &InvalidQuantityError{Input: "nil", Reason: "nil quantity"}
		}
		return nonNegative(new(big.Int).Set(x))
	case big.Int:
		return nonNegative(new(big.Int).Set(&x))
	case *Wei:
		if x == nil {
			return nil, &InvalidQuantityError{Input: "nil", Reason: "nil quantity"}
		}
		return nonNegative(x.Int())
	case *Gwei, Gwei:
		return nil, &UnitMismatchError{Got: "gwei", Want: "wei"}
	case *hexutil.Big:
		if x == nil {
			return nil, &InvalidQuantityError{Input: "nil", Reason: "nil quantity"}
		}
		return nonNegative(new(big.Int).Set(x.ToInt()))
	case hexutil.Uint64:
		return new(big.Int).SetUint64(uint64(x)), nil
	case Nonce:
		return new(big.Int).SetUint64(uint64(x)), nil
	case Timestamp:
		return new(big.Int).SetUint64(uint64(x)), nil
	case BlockNumber:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), nil
	case int:
		return nonNegative(big.NewInt(int64(x)))
	case int64:
		return nonNegative(big.NewInt(x))
	case int32:
		return nonNegative(big.NewInt(int64(x)))
	case json.Number:
		return parseDecimal(x.String())
	case string:
		return parseQuantityString(x, false)
	default:
		return nil, &InvalidQuantityError{Input: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("unsupported %T", v)}
	}
}

func nonNegative(x *big.Int) (*big.Int, error) {
	if x.Sign() < 0 {
		return nil, &InvalidQuantityError{Input: x.String(), Reason: "negative value"}
	}
	return x, nil
}
