package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSON decodes raw into generic values, keeping numbers as json.Number so
// that integers wider than 53 bits survive.
func ParseJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse json: trailing data after value")
	}
	return v, nil
}

// ParseRaw is ParseJSON for a json.RawMessage, treating an empty message as null.
func ParseRaw(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return ParseJSON(raw)
}

func rawOf(v any) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
