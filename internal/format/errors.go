package format

import (
	"errors"
	"fmt"

	"ethwire/internal/schema"
)

// ErrNull is returned for a null in a field that cannot hold one.
var ErrNull = errors.New("null where a value is required")

// FieldError wraps the failure of one field's codec chain. It aborts decoding of
// the whole record.
type FieldError struct {
	Kind  schema.Kind
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Kind, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ShapeError reports a JSON value of the wrong type for a codec.
type ShapeError struct {
	Codec string
	Want  string
	Got   any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Codec, e.Want, jsonType(e.Got))
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
