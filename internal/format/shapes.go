package format

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
	"ethwire/internal/model"
	"ethwire/internal/schema"
)

// TxsOrHashes decodes block.transactions, which holds hashes or full
// transactions depending on the request's fullTx flag.
var TxsOrHashes = Codec{
	Name: "txsOrHashes",
	Decode: func(e *Engine, v any) (any, error) {
		items, ok := v.([]any)
		if !ok {
			return nil, &ShapeError{Codec: "txsOrHashes", Want: "array", Got: v}
		}
		if allStrings(items) {
			hashes, err := List(Hash).Decode(e, items)
			if err != nil {
				return nil, err
			}
			out := &model.BlockTransactions{Hashes: make([]common.Hash, 0, len(items))}
			for _, h := range hashes.([]any) {
				out.Hashes = append(out.Hashes, h.(common.Hash))
			}
			return out, nil
		}
		txs, err := List(Record(schema.Transaction)).Decode(e, items)
		if err != nil {
			return nil, err
		}
		out := &model.BlockTransactions{Full: make([]model.Transaction, 0, len(items))}
		for _, tx := range txs.([]any) {
			out.Full = append(out.Full, tx.(model.Transaction))
		}
		return out, nil
	},
	Encode: func(e *Engine, v any) (any, error) {
		if x, ok := v.(model.BlockTransactions); ok {
			v = &x
		}
		x, ok := v.(*model.BlockTransactions)
		if !ok {
			return List(Identity).Encode(e, v)
		}
		if x.IsFull() {
			return List(Record(schema.Transaction)).Encode(e, x.Full)
		}
		if x.Hashes == nil {
			return []any{}, nil
		}
		return List(Hash).Encode(e, x.Hashes)
	},
}

// FilterChanges decodes eth_getFilterChanges, whose element shape depends on the
// kind of filter the id refers to.
var FilterChanges = Codec{
	Name: "filterChanges",
	Decode: func(e *Engine, v any) (any, error) {
		items, ok := v.([]any)
		if !ok {
			return nil, &ShapeError{Codec: "filterChanges", Want: "array", Got: v}
		}
		out := &model.FilterChanges{}
		if len(items) == 0 {
			return out, nil
		}
		if allStrings(items) {
			hashes, err := List(Hash).Decode(e, items)
			if err != nil {
				return nil, err
			}
			for _, h := range hashes.([]any) {
				out.Hashes = append(out.Hashes, h.(common.Hash))
			}
			return out, nil
		}
		logs, err := List(Record(schema.Log)).Decode(e, items)
		if err != nil {
			return nil, err
		}
		for _, l := range logs.([]any) {
			out.Logs = append(out.Logs, *l.(*model.Log))
		}
		return out, nil
	},
	Encode: func(e *Engine, v any) (any, error) {
		x, ok := v.(*model.FilterChanges)
		if !ok {
			return nil, &ShapeError{Codec: "filterChanges", Want: "filter changes", Got: v}
		}
		if x.Logs != nil {
			return List(Record(schema.Log)).Encode(e, x.Logs)
		}
		if x.Hashes == nil {
			return []any{}, nil
		}
		return List(Hash).Encode(e, x.Hashes)
	},
}

// Syncing decodes eth_syncing results and syncing notifications: false, a bare
// progress object, or {"syncing": bool, "status": {...}}.
var Syncing = Codec{
	Name: "syncing",
	Decode: func(e *Engine, v any) (any, error) {
		switch x := v.(type) {
		case bool:
			return &model.SyncingEvent{Syncing: &x}, nil
		case map[string]any:
			if _, wrapped := x["syncing"]; wrapped {
				return e.DecodeRecord(schema.SyncingEvent, x)
			}
			status, err := e.DecodeRecord(schema.SyncStatus, x)
			if err != nil {
				return nil, err
			}
			return &model.SyncingEvent{Status: status.(*model.SyncStatus)}, nil
		}
		return nil, &ShapeError{Codec: "syncing", Want: "boolean or object", Got: v}
	},
	Encode: func(e *Engine, v any) (any, error) {
		x, ok := v.(*model.SyncingEvent)
		if !ok {
			return nil, &ShapeError{Codec: "syncing", Want: "syncing event", Got: v}
		}
		switch {
		case x.Syncing != nil && x.Status == nil && len(x.Extra) == 0:
			return *x.Syncing, nil
		case x.Syncing != nil:
			return e.EncodeRecord(schema.SyncingEvent, x)
		case x.Status != nil:
			return e.EncodeRecord(schema.SyncStatus, x.Status)
		}
		return false, nil
	},
}

// TracerOutput picks the record kind of a debug tracer result from its shape:
// struct logger output, call tracer frames, or raw JSON for anything else.
var TracerOutput = Codec{
	Name: "tracerOutput",
	Decode: func(e *Engine, v any) (any, error) {
		obj, ok := v.(map[string]any)
		if ok {
			if _, ok := obj["structLogs"]; ok {
				return e.DecodeRecord(schema.OpcodeTrace, obj)
			}
			_, hasType := obj["type"]
			_, hasFrom := obj["from"]
			if hasType && hasFrom {
				return e.DecodeRecord(schema.CallFrame, obj)
			}
		}
		return rawOf(v)
	},
	Encode: func(e *Engine, v any) (any, error) {
		switch x := v.(type) {
		case *model.OpcodeTrace:
			return e.EncodeRecord(schema.OpcodeTrace, x)
		case *model.CallFrame:
			return e.EncodeRecord(schema.CallFrame, x)
		case json.RawMessage:
			return x, nil
		}
		return v, nil
	},
}

// PoolSummary decodes txpool_inspect summary lines.
var PoolSummary = Codec{
	Name: "poolSummary",
	Decode: func(_ *Engine, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, &ShapeError{Codec: "poolSummary", Want: "string", Got: v}
		}
		return model.ParsePoolSummary(s)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		switch x := v.(type) {
		case model.PoolSummary:
			return x.String(), nil
		case *model.PoolSummary:
			return x.String(), nil
		case string:
			return x, nil
		}
		return nil, &ShapeError{Codec: "poolSummary", Want: "pool summary", Got: v}
	},
}

// TopicFilter decodes and encodes positional topic filters.
var TopicFilter = Codec{
	Name: "topics",
	Decode: func(_ *Engine, v any) (any, error) {
		return model.ParseTopicFilter(v)
	},
	Encode: func(_ *Engine, v any) (any, error) {
		f, err := model.ParseTopicFilter(v)
		if err != nil {
			return nil, err
		}
		return f.Wire(), nil
	},
}

// AddressOrList accepts a single address or a list and decodes to
// []common.Address. Lists are always emitted on encode, single addresses as given.
var AddressOrList = Codec{
	Name: "addressOrList",
	Decode: func(e *Engine, v any) (any, error) {
		if s, ok := v.(string); ok {
			a, err := Address.Decode(e, s)
			if err != nil {
				return nil, err
			}
			return []common.Address{a.(common.Address)}, nil
		}
		return List(Address).Decode(e, v)
	},
	Encode: func(e *Engine, v any) (any, error) {
		switch v.(type) {
		case string, common.Address, *common.Address:
			return Address.Encode(e, v)
		}
		return List(Address).Encode(e, v)
	},
}

// BlockID normalizes block parameters into the wire form a method accepts.
func BlockID(form codec.BlockIDForm) Codec {
	name := "blockNumberOrTag"
	if form == codec.NumberTagOrHash {
		name = "blockNumberTagOrHash"
	}
	return Codec{
		Name: name,
		Decode: func(_ *Engine, v any) (any, error) {
			return codec.ParseBlockID(v)
		},
		Encode: func(_ *Engine, v any) (any, error) {
			id, err := codec.ParseBlockID(v)
			if err != nil {
				return nil, err
			}
			return id.Encode(form)
		},
	}
}

func allStrings(items []any) bool {
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}
