package format

import (
	"sort"

	"ethwire/internal/schema"
)

// Registry maps (record kind, field) to an ordered codec chain. Decoding applies
// the chain front to back, encoding back to front.
type Registry struct {
	entries map[schema.Kind]map[string][]Codec
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[schema.Kind]map[string][]Codec)}
}

// Set replaces the chain for a field.
func (r *Registry) Set(kind schema.Kind, field string, codecs ...Codec) {
	fields, ok := r.entries[kind]
	if !ok {
		fields = make(map[string][]Codec)
		r.entries[kind] = fields
	}
	fields[field] = append([]Codec(nil), codecs...)
}

// Append adds codecs to the end of a field's chain.
func (r *Registry) Append(kind schema.Kind, field string, codecs ...Codec) {
	r.Set(kind, field, append(r.Resolve(kind, field), codecs...)...)
}

// Resolve returns the chain for a field, or nil when the field is not registered.
func (r *Registry) Resolve(kind schema.Kind, field string) []Codec {
	return r.entries[kind][field]
}

// Has reports whether the field has a chain.
func (r *Registry) Has(kind schema.Kind, field string) bool {
	_, ok := r.entries[kind][field]
	return ok
}

// Fields lists the registered fields of kind, sorted.
func (r *Registry) Fields(kind schema.Kind) []string {
	out := make([]string, 0, len(r.entries[kind]))
	for f := range r.entries[kind] {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	for kind, fields := range r.entries {
		for f, codecs := range fields {
			out.Set(kind, f, codecs...)
		}
	}
	return out
}
