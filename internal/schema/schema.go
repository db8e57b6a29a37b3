package schema

import "sort"

// Presence is a record-wide policy; a kind never mixes required and optional fields.
type Presence uint8

const (
	AllOptional Presence = iota
	AllRequired
)

func (p Presence) String() string {
	if p == AllRequired {
		return "required"
	}
	return "optional"
}

// Conflict declares that Field may not be combined with any of With. Err builds
// the returned error; nil means ConflictingFieldsError.
type Conflict struct {
	Field string
	With  []string
	Err   func(kind Kind, fields []string) error
}

// Schema describes one record kind.
type Schema struct {
	Kind      Kind
	Presence  Presence
	Fields    []string
	Conflicts []Conflict

	// Discriminant, when set, names the field whose quantity value selects a
	// concrete kind from Variants. Default applies when the field is absent,
	// Fallback when its value is not listed.
	Discriminant string
	Variants     map[uint64]Kind
	Default      Kind
	Fallback     Kind
}

// Has reports whether field is declared by the schema.
func (s *Schema) Has(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Validate checks presence of required fields. Keys mapped to null count as present.
func (s *Schema) Validate(obj map[string]any) error {
	if s.Presence != AllRequired {
		return nil
	}
	var missing []string
	for _, f := range s.Fields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Kind: s.Kind, Fields: missing}
	}
	return nil
}

// CheckConflicts rejects objects that set mutually exclusive fields. Null values
// are treated as unset.
func (s *Schema) CheckConflicts(obj map[string]any) error {
	for _, c := range s.Conflicts {
		if !isSet(obj, c.Field) {
			continue
		}
		fields := []string{c.Field}
		for _, other := range c.With {
			if isSet(obj, other) {
				fields = append(fields, other)
			}
		}
		if len(fields) == 1 {
			continue
		}
		if c.Err != nil {
			return c.Err(s.Kind, fields)
		}
		return &ConflictingFieldsError{Kind: s.Kind, Fields: fields}
	}
	return nil
}

// Unknown returns the keys of obj that are neither declared nor accepted by known,
// sorted.
func (s *Schema) Unknown(obj map[string]any, known func(string) bool) []string {
	var out []string
	for k := range obj {
		if s.Has(k) || (known != nil && known(k)) {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Variant resolves the concrete kind for a discriminant value.
func (s *Schema) Variant(value uint64, present bool) Kind {
	if !present {
		return s.Default
	}
	if k, ok := s.Variants[value]; ok {
		return k
	}
	return s.Fallback
}

func isSet(obj map[string]any, field string) bool {
	v, ok := obj[field]
	return ok && v != nil
}

// Set is an immutable collection of schemas keyed by kind.
type Set struct {
	schemas map[Kind]*Schema
}

// NewSet builds a set from the given schemas. Later duplicates replace earlier ones.
func NewSet(schemas ...*Schema) *Set {
	s := &Set{schemas: make(map[Kind]*Schema, len(schemas))}
	for _, sc := range schemas {
		s.schemas[sc.Kind] = sc
	}
	return s
}

func (s *Set) Lookup(k Kind) (*Schema, bool) {
	sc, ok := s.schemas[k]
	return sc, ok
}

// Kinds returns every kind in the set, sorted.
func (s *Set) Kinds() []Kind {
	out := make([]Kind, 0, len(s.schemas))
	for k := range s.schemas {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
