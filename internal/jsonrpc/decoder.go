package jsonrpc

import (
	"encoding/json"
	"fmt"

	"ethwire/internal/format"
	"ethwire/internal/methods"
)

// Decoder turns response and notification payloads into typed values. It is
// safe for concurrent use.
type Decoder struct {
	engine *format.Engine
	table  *methods.Table
	strict bool
}

type DecoderOption func(*Decoder)

// WithStrictResults rejects results of methods and subscriptions missing from
// the table instead of returning them as generic JSON.
func WithStrictResults() DecoderOption {
	return func(d *Decoder) { d.strict = true }
}

func NewDecoder(engine *format.Engine, table *methods.Table, opts ...DecoderOption) *Decoder {
	d := &Decoder{engine: engine, table: table}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notification is a decoded subscription push.
type Notification struct {
	Subscription string
	Type         string
	Result       any
}

// Decode checks the envelope of raw and decodes its result as method's. An
// error member is returned as *RPCFault.
func (d *Decoder) Decode(method string, raw []byte) (any, error) {
	resp, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	return d.Result(method, resp)
}

// DecodeFor is Decode with id correlation against req.
func (d *Decoder) DecodeFor(req *Request, raw []byte) (any, error) {
	resp, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	if resp.ID != nil && *resp.ID != req.ID {
		return nil, &EnvelopeShapeError{Reason: fmt.Sprintf("response id %d does not match request id %d", *resp.ID, req.ID)}
	}
	return d.Result(req.Method, resp)
}

// Result decodes an already parsed response.
func (d *Decoder) Result(method string, resp *Response) (any, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	return d.DecodeResult(method, resp.Result)
}

// DecodeResult decodes a bare result value. Nullable results decode null to nil.
func (d *Decoder) DecodeResult(method string, result json.RawMessage) (any, error) {
	m, ok := d.table.Lookup(method)
	if !ok && d.strict {
		return nil, &UnsupportedMethodError{Method: method}
	}
	v, err := format.ParseRaw(result)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", method, err)
	}
	if !ok {
		return v, nil
	}
	out, err := d.engine.Decode(m.Result, v)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", method, err)
	}
	return out, nil
}

// DecodeNotification checks a push envelope and decodes its result with the
// codec of subType.
func (d *Decoder) DecodeNotification(subType string, raw []byte) (*Notification, error) {
	n, err := ParseNotification(raw)
	if err != nil {
		return nil, err
	}
	res, err := d.DecodePush(subType, n.Result)
	if err != nil {
		return nil, err
	}
	return &Notification{Subscription: n.Subscription, Type: subType, Result: res}, nil
}

// DecodePush decodes the result member of a push.
func (d *Decoder) DecodePush(subType string, result json.RawMessage) (any, error) {
	c, ok := d.table.Subscription(subType)
	if !ok && d.strict {
		return nil, fmt.Errorf("decode %s push: unknown subscription type", subType)
	}
	v, err := format.ParseRaw(result)
	if err != nil {
		return nil, fmt.Errorf("decode %s push: %w", subType, err)
	}
	if !ok {
		return v, nil
	}
	out, err := d.engine.Decode(c, v)
	if err != nil {
		return nil, fmt.Errorf("decode %s push: %w", subType, err)
	}
	return out, nil
}
