package schema

import (
	"fmt"
	"strings"
)

// MissingFieldError lists the fields a required-presence record lacks, in schema order.
type MissingFieldError struct {
	Kind   Kind
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Kind, strings.Join(e.Fields, ", "))
}

// ConflictingFeeFieldsError is returned when legacy and EIP-1559 fee fields are set together.
type ConflictingFeeFieldsError struct {
	Kind   Kind
	Fields []string
}

func (e *ConflictingFeeFieldsError) Error() string {
	return fmt.Sprintf("%s: conflicting fee fields: %s", e.Kind, strings.Join(e.Fields, ", "))
}

// ConflictingFieldsError is returned when mutually exclusive fields are set
// together, such as a filter's blockHash with a block range.
type ConflictingFieldsError struct {
	Kind   Kind
	Fields []string
}

func (e *ConflictingFieldsError) Error() string {
	return fmt.Sprintf("%s: fields cannot be combined: %s", e.Kind, strings.Join(e.Fields, ", "))
}

// UnknownFieldError is only produced when unknown-field rejection is enabled.
type UnknownFieldError struct {
	Kind   Kind
	Fields []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: unknown fields: %s", e.Kind, strings.Join(e.Fields, ", "))
}
