package format

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"ethwire/internal/codec"
	"ethwire/internal/schema"
)

// Engine drives record decoding and encoding through a registry and a schema
// set. It is immutable after construction and safe for concurrent use.
type Engine struct {
	registry *Registry
	schemas  *schema.Set
	types    map[schema.Kind]reflect.Type
	kinds    map[reflect.Type]schema.Kind

	strictChecksum bool
	strictFields   bool
}

type Option func(*Engine)

// WithRegistry replaces the default registry. The engine keeps its own copy.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r.Clone() }
}

func WithSchemas(s *schema.Set) Option {
	return func(e *Engine) { e.schemas = s }
}

// WithStrictChecksum rejects mixed-case addresses that fail EIP-55.
func WithStrictChecksum() Option {
	return func(e *Engine) { e.strictChecksum = true }
}

// WithStrictFields rejects fields that are neither declared nor registered.
func WithStrictFields() Option {
	return func(e *Engine) { e.strictFields = true }
}

// WithType binds kind to the Go type of sample, which must be a struct or a
// pointer to one.
func WithType(kind schema.Kind, sample any) Option {
	return func(e *Engine) {
		t := reflect.TypeOf(sample)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		e.types[kind] = t
		e.kinds[t] = kind
	}
}

// NewEngine builds an engine over the default registry, schemas and record types.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry: DefaultRegistry(),
		schemas:  schema.Default(),
		types:    make(map[schema.Kind]reflect.Type),
		kinds:    make(map[reflect.Type]schema.Kind),
	}
	for kind, t := range defaultTypes() {
		e.types[kind] = t
		e.kinds[t] = kind
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) StrictChecksum() bool { return e.strictChecksum }

func (e *Engine) Schemas() *schema.Set { return e.schemas }

// Resolve exposes the engine's registry lookup.
func (e *Engine) Resolve(kind schema.Kind, field string) []Codec {
	return e.registry.Resolve(kind, field)
}

// Decode runs a single codec inbound.
func (e *Engine) Decode(c Codec, v any) (any, error) { return c.Decode(e, v) }

// Encode runs a single codec outbound.
func (e *Engine) Encode(c Codec, v any) (any, error) { return encodeWith(e, c, v) }

// DecodeRecord decodes a generic JSON object as kind. The result is a pointer to
// the kind's Go type, or a map[string]any for kinds without one. Fields without a
// codec chain or a struct slot are kept in the record's Extra map.
func (e *Engine) DecodeRecord(kind schema.Kind, v any) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ShapeError{Codec: string(kind), Want: "object", Got: v}
	}

	sc, ok := e.schemas.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("decode %s: no schema", kind)
	}
	if sc.Discriminant != "" {
		variant, err := e.selectVariant(sc, obj)
		if err != nil {
			return nil, err
		}
		if sc, ok = e.schemas.Lookup(variant); !ok {
			return nil, fmt.Errorf("decode %s: no schema for variant %s", kind, variant)
		}
		kind = variant
	}

	if err := sc.Validate(obj); err != nil {
		return nil, err
	}
	if e.strictFields {
		if unknown := sc.Unknown(obj, func(f string) bool { return e.registry.Has(kind, f) }); len(unknown) > 0 {
			return nil, &schema.UnknownFieldError{Kind: kind, Fields: unknown}
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t, typed := e.types[kind]
	if !typed {
		out := make(map[string]any, len(obj))
		for _, k := range keys {
			val, err := e.decodeField(kind, k, obj[k])
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	}

	ptr := reflect.New(t)
	rec := ptr.Elem()
	info := infoFor(t)
	extra := make(map[string]json.RawMessage)

	for _, k := range keys {
		wire := obj[k]
		index, hasSlot := info.fields[k]
		if !hasSlot || !e.registry.Has(kind, k) {
			raw, err := rawOf(wire)
			if err != nil {
				return nil, &FieldError{Kind: kind, Field: k, Err: err}
			}
			extra[k] = raw
			continue
		}
		slot := rec.FieldByIndex(index)
		if wire == nil && !nillable(slot.Type()) {
			return nil, e.nullField(kind, k)
		}
		val, err := e.decodeField(kind, k, wire)
		if err != nil {
			return nil, err
		}
		if err := assign(slot, val); err != nil {
			return nil, &FieldError{Kind: kind, Field: k, Err: err}
		}
	}

	if len(extra) > 0 && info.extra != nil {
		rec.FieldByIndex(info.extra).Set(reflect.ValueOf(extra))
	}
	return ptr.Interface(), nil
}

// decodeField runs the inbound chain. Null skips the chain, so absent-or-null
// values stay nil instead of becoming zero.
func (e *Engine) decodeField(kind schema.Kind, field string, wire any) (any, error) {
	if wire == nil {
		return nil, nil
	}
	val := wire
	for _, c := range e.registry.Resolve(kind, field) {
		var err error
		if val, err = c.Decode(e, val); err != nil {
			return nil, &FieldError{Kind: kind, Field: field, Err: err}
		}
	}
	return val, nil
}

// nullField reports a null in a slot that has no nil value. The chain runs so
// the error names what the field expected; a chain that accepts null still
// fails with ErrNull.
func (e *Engine) nullField(kind schema.Kind, field string) error {
	for _, c := range e.registry.Resolve(kind, field) {
		if _, err := c.Decode(e, nil); err != nil {
			return &FieldError{Kind: kind, Field: field, Err: err}
		}
	}
	return &FieldError{Kind: kind, Field: field, Err: ErrNull}
}

func (e *Engine) selectVariant(sc *schema.Schema, obj map[string]any) (schema.Kind, error) {
	raw, present := obj[sc.Discriminant]
	if !present || raw == nil {
		return sc.Variant(0, false), nil
	}
	n, err := codec.DecodeUint64(raw, false)
	if err != nil {
		return "", &FieldError{Kind: sc.Kind, Field: sc.Discriminant, Err: err}
	}
	return sc.Variant(n, true), nil
}

// EncodeRecord turns a typed record, or a caller-built map, into a wire object.
// Conflicting fields are rejected before any codec runs. Required kinds always
// carry every declared field; unset ones are written as null.
func (e *Engine) EncodeRecord(kind schema.Kind, v any) (map[string]any, error) {
	fields, t, err := fieldsOf(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}

	sc, ok := e.schemas.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("encode %s: no schema", kind)
	}
	if sc.Discriminant != "" {
		variant, err := e.encodeVariant(sc, t, fields)
		if err != nil {
			return nil, err
		}
		if sc, ok = e.schemas.Lookup(variant); !ok {
			return nil, fmt.Errorf("encode %s: no schema for variant %s", kind, variant)
		}
		kind = variant
	}

	if err := sc.CheckConflicts(fields); err != nil {
		return nil, err
	}
	if e.strictFields {
		if unknown := sc.Unknown(fields, func(f string) bool { return e.registry.Has(kind, f) }); len(unknown) > 0 {
			return nil, &schema.UnknownFieldError{Kind: kind, Fields: unknown}
		}
	}

	out := make(map[string]any, len(fields))
	for k, val := range fields {
		if _, raw := val.(json.RawMessage); raw {
			out[k] = val
			continue
		}
		chain := e.registry.Resolve(kind, k)
		for i := len(chain) - 1; i >= 0; i-- {
			if val, err = encodeWith(e, chain[i], val); err != nil {
				return nil, &FieldError{Kind: kind, Field: k, Err: err}
			}
		}
		out[k] = val
	}
	if sc.Presence == schema.AllRequired {
		for _, f := range sc.Fields {
			if _, ok := out[f]; !ok {
				out[f] = nil
			}
		}
	}
	return out, nil
}

func (e *Engine) encodeVariant(sc *schema.Schema, t reflect.Type, fields map[string]any) (schema.Kind, error) {
	if t != nil {
		if kind, ok := e.kinds[t]; ok {
			return kind, nil
		}
	}
	raw, present := fields[sc.Discriminant]
	if !present || isNil(raw) {
		return sc.Variant(0, false), nil
	}
	if p, ok := raw.(*uint64); ok {
		raw = *p
	}
	n, err := codec.QuantityOf(raw)
	if err != nil || !n.IsUint64() {
		return "", &FieldError{Kind: sc.Kind, Field: sc.Discriminant, Err: fmt.Errorf("invalid discriminant %v", raw)}
	}
	return sc.Variant(n.Uint64(), true), nil
}
