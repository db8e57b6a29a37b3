package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPCFault is the error object of a JSON-RPC response. It satisfies
// go-ethereum's rpc.Error and rpc.DataError.
type RPCFault struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

var (
	_ rpc.Error     = (*RPCFault)(nil)
	_ rpc.DataError = (*RPCFault)(nil)
)

func (f *RPCFault) Error() string {
	if len(f.Data) > 0 {
		return fmt.Sprintf("rpc error %d: %s (data: %s)", f.Code, f.Message, f.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", f.Code, f.Message)
}

func (f *RPCFault) ErrorCode() int { return f.Code }

// ErrorData returns the decoded data member, or nil when absent.
func (f *RPCFault) ErrorData() interface{} {
	if len(f.Data) == 0 {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(f.Data, &out); err != nil {
		return string(f.Data)
	}
	return out
}

// EnvelopeShapeError reports a payload that is not a well-formed JSON-RPC 2.0
// response or notification.
type EnvelopeShapeError struct {
	Reason string
}

func (e *EnvelopeShapeError) Error() string {
	return "malformed json-rpc envelope: " + e.Reason
}

// UnsupportedMethodError is returned in strict mode for methods missing from the
// method table.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q", e.Method)
}

// ParamError reports a positional parameter that is missing, surplus, or fails
// to encode.
type ParamError struct {
	Method string
	Index  int
	Name   string
	Err    error
}

func (e *ParamError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s param %d: %v", e.Method, e.Index, e.Err)
	}
	return fmt.Sprintf("%s param %d (%s): %v", e.Method, e.Index, e.Name, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// UnknownSubscriptionError is returned by the router for pushes whose
// subscription id has no registered handler.
type UnknownSubscriptionError struct {
	ID string
}

func (e *UnknownSubscriptionError) Error() string {
	return fmt.Sprintf("no handler for subscription %q", e.ID)
}
