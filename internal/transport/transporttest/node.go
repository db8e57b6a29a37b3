// Package transporttest provides an in-memory node for tests that need a
// transport without a network.
package transporttest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"ethwire/internal/jsonrpc"
)

// Request is a call the node received.
type Request struct {
	ID     json.RawMessage
	Method string
	Params []json.RawMessage
}

// HandlerFunc answers a call. Returning *jsonrpc.RPCFault produces an error
// envelope; any other error fails Send itself.
type HandlerFunc func(params []json.RawMessage) (any, error)

// RawFunc returns a complete response envelope for the request id.
type RawFunc func(id json.RawMessage) []byte

// Node dispatches envelopes to per-method handlers. Unhandled methods get a
// -32601 fault. It is safe for concurrent use.
type Node struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	raw      map[string]RawFunc
	requests []Request
	push     []func([]byte)
	hooks    []func()
	closed   bool
}

func NewNode() *Node {
	return &Node{
		handlers: make(map[string]HandlerFunc),
		raw:      make(map[string]RawFunc),
	}
}

func (n *Node) Handle(method string, fn HandlerFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = fn
}

// Reply answers method with a fixed result. json.RawMessage is sent verbatim.
func (n *Node) Reply(method string, result any) {
	n.Handle(method, func([]json.RawMessage) (any, error) { return result, nil })
}

func (n *Node) Fail(method string, code int, message string) {
	n.Handle(method, func([]json.RawMessage) (any, error) {
		return nil, &jsonrpc.RPCFault{Code: code, Message: message}
	})
}

// HandleRaw answers method with hand-built bytes, for malformed envelopes.
func (n *Node) HandleRaw(method string, fn RawFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.raw[method] = fn
}

// Requests returns every call received so far, oldest first.
func (n *Node) Requests() []Request {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Request(nil), n.requests...)
}

func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, r := range n.requests {
		if r.Method == method {
			count++
		}
	}
	return count
}

func (n *Node) Send(ctx context.Context, req []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var in Request
	if err := json.Unmarshal(req, &struct {
		ID     *json.RawMessage   `json:"id"`
		Method *string            `json:"method"`
		Params *[]json.RawMessage `json:"params"`
	}{&in.ID, &in.Method, &in.Params}); err != nil {
		return nil, fmt.Errorf("transporttest: bad request: %w", err)
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil, errors.New("transporttest: node closed")
	}
	n.requests = append(n.requests, in)
	raw, hasRaw := n.raw[in.Method]
	handler, hasHandler := n.handlers[in.Method]
	n.mu.Unlock()

	if hasRaw {
		return raw(in.ID), nil
	}
	if !hasHandler {
		return envelope(in.ID, nil, &jsonrpc.RPCFault{Code: -32601, Message: "the method " + in.Method + " does not exist/is not available"})
	}
	result, err := handler(in.Params)
	if err != nil {
		var fault *jsonrpc.RPCFault
		if errors.As(err, &fault) {
			return envelope(in.ID, nil, fault)
		}
		return nil, err
	}
	return envelope(in.ID, result, nil)
}

func envelope(id json.RawMessage, result any, fault *jsonrpc.RPCFault) ([]byte, error) {
	out := map[string]any{"jsonrpc": jsonrpc.Version, "id": id}
	if fault != nil {
		out["error"] = fault
	} else {
		out["result"] = result
	}
	return json.Marshal(out)
}

func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}

func (n *Node) OnPush(fn func(raw []byte)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.push = append(n.push, fn)
}

// Push delivers an eth_subscription notification to every push handler.
func (n *Node) Push(subscription string, result any) error {
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": jsonrpc.Version,
		"method":  jsonrpc.NotificationMethod,
		"params":  map[string]any{"subscription": subscription, "result": result},
	})
	if err != nil {
		return err
	}
	n.PushRaw(raw)
	return nil
}

func (n *Node) PushRaw(raw []byte) {
	n.mu.Lock()
	handlers := slices.Clone(n.push)
	n.mu.Unlock()
	for _, fn := range handlers {
		fn(raw)
	}
}

func (n *Node) OnReconnect(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks = append(n.hooks, fn)
}

// Reconnect runs the reconnect hooks as a real transport would after a
// dropped connection.
func (n *Node) Reconnect() {
	n.mu.Lock()
	hooks := append([]func(){}, n.hooks...)
	n.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
