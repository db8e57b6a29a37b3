package jsonrpc

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	Version = "2.0"

	// NotificationMethod is the method name of subscription pushes.
	NotificationMethod = "eth_subscription"
)

// Request is a JSON-RPC 2.0 call. Params is never nil so it always marshals as
// an array.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

func (r *Request) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Response is a parsed response envelope. Exactly one of Result and Error is
// set; Result holds the raw JSON, "null" included. ID is nil only for error
// responses the server could not correlate.
type Response struct {
	ID     *uint64
	Result json.RawMessage
	Error  *RPCFault
}

// RawNotification is an eth_subscription push before its result is decoded.
type RawNotification struct {
	Subscription string
	Result       json.RawMessage
}

// ParseResponse checks the envelope of a single response.
func ParseResponse(raw []byte) (*Response, error) {
	obj, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := obj["method"]; ok {
		return nil, &EnvelopeShapeError{Reason: "unexpected notification where a response was expected"}
	}

	result, hasResult := obj["result"]
	errRaw, hasError := obj["error"]
	switch {
	case hasResult && hasError:
		return nil, &EnvelopeShapeError{Reason: "both result and error present"}
	case !hasResult && !hasError:
		return nil, &EnvelopeShapeError{Reason: "neither result nor error present"}
	}

	idRaw, ok := obj["id"]
	if !ok {
		return nil, &EnvelopeShapeError{Reason: "missing id"}
	}
	id, err := parseID(idRaw)
	if err != nil {
		return nil, err
	}
	if id == nil && !hasError {
		return nil, &EnvelopeShapeError{Reason: "null id on a result"}
	}

	resp := &Response{ID: id}
	if hasResult {
		resp.Result = result
		return resp, nil
	}
	if resp.Error, err = parseFault(errRaw); err != nil {
		return nil, err
	}
	return resp, nil
}

// ParseNotification checks the envelope of a subscription push.
func ParseNotification(raw []byte) (*RawNotification, error) {
	obj, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var method string
	if err := json.Unmarshal(obj["method"], &method); err != nil || method != NotificationMethod {
		return nil, &EnvelopeShapeError{Reason: "notification method must be " + NotificationMethod}
	}
	if _, ok := obj["id"]; ok {
		return nil, &EnvelopeShapeError{Reason: "notification carries an id"}
	}

	var params map[string]json.RawMessage
	if err := json.Unmarshal(obj["params"], &params); err != nil || params == nil {
		return nil, &EnvelopeShapeError{Reason: "notification params must be an object"}
	}
	var sub string
	if err := json.Unmarshal(params["subscription"], &sub); err != nil || sub == "" {
		return nil, &EnvelopeShapeError{Reason: "notification without subscription id"}
	}
	result, ok := params["result"]
	if !ok {
		return nil, &EnvelopeShapeError{Reason: "notification without result"}
	}
	return &RawNotification{Subscription: sub, Result: result}, nil
}

// IsNotification reports whether raw looks like a push rather than a response.
// It does not validate the envelope.
func IsNotification(raw []byte) bool {
	var head struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return false
	}
	return head.ID == nil && head.Method == NotificationMethod
}

func parseEnvelope(raw []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, &EnvelopeShapeError{Reason: "payload is not a json object"}
	}
	var version string
	if err := json.Unmarshal(obj["jsonrpc"], &version); err != nil || version != Version {
		return nil, &EnvelopeShapeError{Reason: `jsonrpc version must be "2.0"`}
	}
	return obj, nil
}

func parseID(raw json.RawMessage) (*uint64, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &EnvelopeShapeError{Reason: "malformed id"}
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil, &EnvelopeShapeError{Reason: "id must be a non-negative integer"}
	}
	id, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return nil, &EnvelopeShapeError{Reason: "id must be a non-negative integer"}
	}
	return &id, nil
}

func parseFault(raw json.RawMessage) (*RPCFault, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, &EnvelopeShapeError{Reason: "error member must be an object"}
	}

	var code json.Number
	dec := json.NewDecoder(bytes.NewReader(obj["code"]))
	dec.UseNumber()
	if err := dec.Decode(&code); err != nil {
		return nil, &EnvelopeShapeError{Reason: "error code must be an integer"}
	}
	n, err := strconv.Atoi(code.String())
	if err != nil {
		return nil, &EnvelopeShapeError{Reason: "error code must be an integer"}
	}

	fault := &RPCFault{Code: n}
	if err := json.Unmarshal(obj["message"], &fault.Message); err != nil {
		return nil, &EnvelopeShapeError{Reason: "error message must be a string"}
	}
	if data, ok := obj["data"]; ok && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		fault.Data = data
	}
	return fault, nil
}
