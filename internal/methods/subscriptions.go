package methods

import (
	"ethwire/internal/format"
	"ethwire/internal/schema"
)

// Subscription types accepted by eth_subscribe.
const (
	NewHeads               = "newHeads"
	Logs                   = "logs"
	NewPendingTransactions = "newPendingTransactions"
	Syncing                = "syncing"
)

// hashOrTx decodes newPendingTransactions pushes, which carry a hash unless the
// subscription asked for full transactions.
var hashOrTx = format.Codec{
	Name: "hashOrTx",
	Decode: func(e *format.Engine, v any) (any, error) {
		if _, ok := v.(string); ok {
			return e.Decode(format.Hash, v)
		}
		return e.Decode(format.Record(schema.Transaction), v)
	},
	Encode: func(e *format.Engine, v any) (any, error) {
		if _, ok := v.(map[string]any); ok {
			return e.Encode(format.Record(schema.Transaction), v)
		}
		if tx, ok := v.(interface{ TxType() uint64 }); ok {
			return e.Encode(format.Record(schema.Transaction), tx)
		}
		return e.Encode(format.Hash, v)
	},
}

// subscribeOptions encodes the second eth_subscribe param: a log filter for
// "logs", a full-transactions flag for "newPendingTransactions".
var subscribeOptions = format.Codec{
	Name: "subscribeOptions",
	Decode: func(e *format.Engine, v any) (any, error) {
		if _, ok := v.(bool); ok {
			return v, nil
		}
		return e.Decode(format.Record(schema.FilterParams), v)
	},
	Encode: func(e *format.Engine, v any) (any, error) {
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return e.Encode(format.Record(schema.FilterParams), v)
	},
}
