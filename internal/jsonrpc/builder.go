package jsonrpc

import (
	"errors"

	"ethwire/internal/format"
	"ethwire/internal/methods"
)

var errMissingParam = errors.New("missing required parameter")

// Builder encodes calls into request envelopes. It is safe for concurrent use.
type Builder struct {
	engine *format.Engine
	table  *methods.Table
	ids    *IDAllocator
	strict bool
}

type BuilderOption func(*Builder)

// WithIDs shares an id allocator, typically with a reconnect hook.
func WithIDs(ids *IDAllocator) BuilderOption {
	return func(b *Builder) { b.ids = ids }
}

// WithStrictMethods rejects methods missing from the table instead of passing
// their params through.
func WithStrictMethods() BuilderOption {
	return func(b *Builder) { b.strict = true }
}

func NewBuilder(engine *format.Engine, table *methods.Table, opts ...BuilderOption) *Builder {
	b := &Builder{engine: engine, table: table, ids: &IDAllocator{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) IDs() *IDAllocator { return b.ids }

// Build encodes a call with the next id.
func (b *Builder) Build(method string, params ...any) (*Request, error) {
	wire, err := b.Params(method, params...)
	if err != nil {
		return nil, err
	}
	return &Request{JSONRPC: Version, ID: b.ids.Next(), Method: method, Params: wire}, nil
}

// BuildWithID encodes a call with a caller-chosen id. The allocator is left
// untouched.
func (b *Builder) BuildWithID(id uint64, method string, params ...any) (*Request, error) {
	wire, err := b.Params(method, params...)
	if err != nil {
		return nil, err
	}
	return &Request{JSONRPC: Version, ID: id, Method: method, Params: wire}, nil
}

// Params encodes positional params through the method's codecs. Omitted
// trailing params take their defaults; omitted optional params are dropped
// unless a later param is present, in which case they are sent as null.
func (b *Builder) Params(method string, params ...any) ([]any, error) {
	m, ok := b.table.Lookup(method)
	if !ok {
		if b.strict {
			return nil, &UnsupportedMethodError{Method: method}
		}
		if params == nil {
			return []any{}, nil
		}
		return params, nil
	}
	if len(params) > len(m.Params) {
		return nil, &ParamError{
			Method: method,
			Index:  len(m.Params),
			Err:    errors.New("too many parameters"),
		}
	}

	out := make([]any, len(m.Params))
	last := -1
	for i, p := range m.Params {
		var v any
		switch {
		case i < len(params):
			v = params[i]
		case p.Default != nil:
			v = p.Default
		case p.Optional:
			continue
		default:
			return nil, &ParamError{Method: method, Index: i, Name: p.Name, Err: errMissingParam}
		}
		if v == nil {
			if !p.Optional {
				return nil, &ParamError{Method: method, Index: i, Name: p.Name, Err: errMissingParam}
			}
			continue
		}
		enc, err := b.engine.Encode(p.Codec, v)
		if err != nil {
			return nil, &ParamError{Method: method, Index: i, Name: p.Name, Err: err}
		}
		out[i] = enc
		last = i
	}
	return out[:last+1], nil
}
