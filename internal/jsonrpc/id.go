package jsonrpc

import "sync/atomic"

// IDAllocator hands out request ids starting at 1. Reset it when the transport
// reconnects so ids restart with the new session.
type IDAllocator struct {
	last atomic.Uint64
}

func (a *IDAllocator) Next() uint64 {
	return a.last.Add(1)
}

func (a *IDAllocator) Reset() {
	a.last.Store(0)
}
