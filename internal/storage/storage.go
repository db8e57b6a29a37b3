// Package storage keeps captured JSON-RPC exchanges as JSON lines so they can
// be replayed through the decoder offline.
package storage

import (
	"encoding/json"
	"time"
)

// Exchange is one call as it crossed the wire. Response is empty when the
// transport failed, in which case Error says why.
type Exchange struct {
	Time     time.Time       `json:"time"`
	Endpoint string          `json:"endpoint,omitempty"`
	Method   string          `json:"method"`
	Request  json.RawMessage `json:"request"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// DecodeError records an exchange that failed to replay.
type DecodeError struct {
	Line   int    `json:"line"`
	Method string `json:"method,omitempty"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error"`
}

// Storage defines a sink for captured exchanges.
type Storage interface {
	PutExchanges(batch []Exchange) error
}
