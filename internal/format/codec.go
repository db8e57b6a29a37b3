package format

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"ethwire/internal/codec"
	"ethwire/internal/schema"
)

// Func converts one value. Decode funcs take generic JSON values (numbers as
// json.Number) and return typed values; encode funcs go the other way and accept
// the mixed inputs callers supply.
type Func func(e *Engine, v any) (any, error)

// Codec is a named pair of conversions between wire and typed values.
type Codec struct {
	Name   string
	Decode Func
	Encode Func
}

// Identity passes values through in both directions.
var Identity = Codec{
	Name:   "identity",
	Decode: func(_ *Engine, v any) (any, error) { return v, nil },
	Encode: func(_ *Engine, v any) (any, error) { return v, nil },
}

func quantityCodec(name string, wrap func(*big.Int) any) Codec {
	return Codec{
		Name: name,
		Decode: func(_ *Engine, v any) (any, error) {
			n, err := codec.DecodeQuantity(v, false)
			if err != nil {
				return nil, err
			}
			return wrap(n), nil
		},
		Encode: func(_ *Engine, v any) (any, error) {
			n, err := codec.QuantityOf(v)
			if err != nil {
				return nil, err
			}
			return codec.EncodeQuantity(n), nil
		},
	}
}

func uint64Codec(name string, wrap func(uint64) any) Codec {
	return Codec{
		Name: name,
		Decode: func(_ *Engine, v any) (any, error) {
			n, err := codec.DecodeUint64(v, false)
			if err != nil {
				return nil, err
			}
			return wrap(n), nil
		},
		Encode: func(_ *Engine, v any) (any, error) {
			n, err := codec.QuantityOf(v)
			if err != nil {
				return nil, err
			}
			if !n.IsUint64() {
				return nil, &codec.InvalidQuantityError{Input: n.String(), Reason: "overflows uint64"}
			}
			return codec.EncodeQuantity(n), nil
		},
	}
}

var (
	// Quantity decodes to *big.Int.
	Quantity = quantityCodec("quantity", func(n *big.Int) any { return n })
	// Wei decodes to *codec.Wei and refuses Gwei input.
	Wei = quantityCodec("wei", func(n *big.Int) any { return (*codec.Wei)(n) })

	Uint64      = uint64Codec("uint64", func(n uint64) any { return n })
	Nonce       = uint64Codec("nonce", func(n uint64) any { return codec.Nonce(n) })
	BlockNumber = uint64Codec("blockNumber", func(n uint64) any { return codec.BlockNumber(n) })
	Timestamp   = uint64Codec("timestamp", func(n uint64) any { return codec.Timestamp(n) })
)

// Gwei decodes to *codec.Gwei. Encoding a Wei amount is a unit mismatch.
var Gwei = Codec{
	Name: "gwei",
	Decode: func(_ *Engine, v any) (any, error) {
		n, err := codec.DecodeQuantity(v, false)
		if err != nil {
			return nil, err
		}
		return (*codec.Gwei)(n), nil
	},
	Encode: func(_ *Engine, v any) (any, error) {
		switch x := v.(type) {
		case *codec.Gwei:
			return codec.EncodeQuantity(x.Int()), nil
		case codec.Gwei:
			return codec.EncodeQuantity((*big.Int)(&x)), nil
		case *codec.Wei, codec.Wei:
			return nil, &codec.UnitMismatchError{Got: "wei", Want: "gwei"}
		}
		n, err := codec.QuantityOf(v)
		if err != nil {
			return nil, err
		}
		return codec.EncodeQuantity(n), nil
	},
}

// Number handles integers carried as plain JSON numbers (ports, trace positions).
var Number = Codec{
	Name: "number",
	Decode: func(_ *Engine, v any) (any, error) {
		return codec.DecodeUint64(v, true)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		n, err := codec.QuantityOf(v)
		if err != nil {
			return nil, err
		}
		return json.Number(n.String()), nil
	},
}

// DecimalKey parses decimal object keys such as txpool nonces.
var DecimalKey = Codec{
	Name: "decimalKey",
	Decode: func(_ *Engine, v any) (any, error) {
		return codec.DecodeUint64(v, true)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		n, err := codec.QuantityOf(v)
		if err != nil {
			return nil, err
		}
		return n.String(), nil
	},
}

var Float = Codec{
	Name: "float",
	Decode: func(_ *Engine, v any) (any, error) {
		switch x := v.(type) {
		case json.Number:
			return strconv.ParseFloat(x.String(), 64)
		case float64:
			return x, nil
		}
		return nil, &ShapeError{Codec: "float", Want: "number", Got: v}
	},
	Encode: func(_ *Engine, v any) (any, error) {
		switch x := v.(type) {
		case float64, json.Number:
			return x, nil
		case float32:
			return float64(x), nil
		}
		return nil, &ShapeError{Codec: "float", Want: "number", Got: v}
	},
}

// Hex decodes to codec.HexBlob and always encodes lowercase.
var Hex = Codec{
	Name: "hex",
	Decode: func(_ *Engine, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, &ShapeError{Codec: "hex", Want: "string", Got: v}
		}
		return codec.DecodeHex(s)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		switch x := v.(type) {
		case codec.HexBlob:
			return x.String(), nil
		case hexutil.Bytes:
			return x.String(), nil
		case []byte:
			return hexutil.Encode(x), nil
		case string:
			return codec.NormalizeHex(x)
		}
		return nil, &ShapeError{Codec: "hex", Want: "bytes", Got: v}
	},
}

// Hash decodes to common.Hash.
var Hash = Codec{
	Name: "hash",
	Decode: func(_ *Engine, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, &ShapeError{Codec: "hash", Want: "string", Got: v}
		}
		return codec.DecodeHash(s)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		h, err := codec.HashOf(v)
		if err != nil {
			return nil, err
		}
		return h.Hex(), nil
	},
}

// Address decodes to common.Address, enforcing checksums only on strict engines.
// Encoding always emits the checksum form.
var Address = Codec{
	Name: "address",
	Decode: func(e *Engine, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, &ShapeError{Codec: "address", Want: "string", Got: v}
		}
		return codec.DecodeAddress(s, e.strictChecksum)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		a, err := codec.AddressOf(v)
		if err != nil {
			return nil, err
		}
		return codec.EncodeAddress(a), nil
	},
}

var Bool = Codec{
	Name: "bool",
	Decode: func(_ *Engine, v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, &ShapeError{Codec: "bool", Want: "boolean", Got: v}
		}
		return b, nil
	},
	Encode: func(_ *Engine, v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, &ShapeError{Codec: "bool", Want: "boolean", Got: v}
		}
		return b, nil
	},
}

var String = Codec{
	Name: "string",
	Decode: func(_ *Engine, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, &ShapeError{Codec: "string", Want: "string", Got: v}
		}
		return s, nil
	},
	Encode: func(_ *Engine, v any) (any, error) {
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}
		return nil, &ShapeError{Codec: "string", Want: "string", Got: v}
	},
}

// Raw keeps the value as undecoded JSON.
var Raw = Codec{
	Name: "raw",
	Decode: func(_ *Engine, v any) (any, error) {
		return rawOf(v)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		return v, nil
	},
}

// Nullable lets null through untouched in both directions.
func Nullable(c Codec) Codec {
	return Codec{
		Name: "nullable(" + c.Name + ")",
		Decode: func(e *Engine, v any) (any, error) {
			if v == nil {
				return nil, nil
			}
			return c.Decode(e, v)
		},
		Encode: func(e *Engine, v any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			return encodeWith(e, c, v)
		},
	}
}

// List applies c to every element of an array.
func List(c Codec) Codec {
	return Codec{
		Name: "list(" + c.Name + ")",
		Decode: func(e *Engine, v any) (any, error) {
			items, ok := v.([]any)
			if !ok {
				return nil, &ShapeError{Codec: "list", Want: "array", Got: v}
			}
			out := make([]any, len(items))
			for i, item := range items {
				dec, err := c.Decode(e, item)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", i, err)
				}
				out[i] = dec
			}
			return out, nil
		},
		Encode: func(e *Engine, v any) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return nil, &ShapeError{Codec: "list", Want: "array", Got: v}
			}
			out := make([]any, rv.Len())
			for i := range out {
				enc, err := encodeWith(e, c, rv.Index(i).Interface())
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", i, err)
				}
				out[i] = enc
			}
			return out, nil
		},
	}
}

// Map applies key to every object key and value to every value. Decoded maps are
// map[any]any; the binder converts them to the record's map type.
func Map(key, value Codec) Codec {
	return Codec{
		Name: "map(" + key.Name + "," + value.Name + ")",
		Decode: func(e *Engine, v any) (any, error) {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, &ShapeError{Codec: "map", Want: "object", Got: v}
			}
			out := make(map[any]any, len(obj))
			for k, item := range obj {
				dk, err := key.Decode(e, k)
				if err != nil {
					return nil, fmt.Errorf("key %q: %w", k, err)
				}
				dv, err := value.Decode(e, item)
				if err != nil {
					return nil, fmt.Errorf("%q: %w", k, err)
				}
				out[dk] = dv
			}
			return out, nil
		},
		Encode: func(e *Engine, v any) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Map {
				return nil, &ShapeError{Codec: "map", Want: "object", Got: v}
			}
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				ek, err := encodeWith(e, key, iter.Key().Interface())
				if err != nil {
					return nil, fmt.Errorf("key %v: %w", iter.Key().Interface(), err)
				}
				ks, ok := ek.(string)
				if !ok {
					ks = fmt.Sprint(ek)
				}
				ev, err := encodeWith(e, value, iter.Value().Interface())
				if err != nil {
					return nil, fmt.Errorf("%q: %w", ks, err)
				}
				out[ks] = ev
			}
			return out, nil
		},
	}
}

// Record decodes an object as the given kind through the engine's registry.
func Record(kind schema.Kind) Codec {
	return Codec{
		Name: "record(" + string(kind) + ")",
		Decode: func(e *Engine, v any) (any, error) {
			return e.DecodeRecord(kind, v)
		},
		Encode: func(e *Engine, v any) (any, error) {
			return e.EncodeRecord(kind, v)
		},
	}
}

// encodeWith dereferences pointers to scalars before encoding so codecs see
// uint64 rather than *uint64. Pointers to structs (big.Int, records) are kept.
func encodeWith(e *Engine, c Codec, v any) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() != reflect.Struct {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	if rv.IsValid() {
		v = rv.Interface()
	}
	return c.Encode(e, v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
