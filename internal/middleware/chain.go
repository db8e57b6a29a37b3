// Package middleware wraps RPC calls in an onion of stages. Stage 1 sees the
// caller's request first and post-processes the result last.
package middleware

import (
	"context"
	"fmt"
	"time"
)

// Request is a call as the caller expressed it, before wire encoding.
type Request struct {
	Method  string
	Params  []any
	Started time.Time
}

// WithParams returns a copy of r carrying params.
func (r *Request) WithParams(params []any) *Request {
	out := *r
	out.Params = params
	return &out
}

// ShortCircuit ends the outbound pass with Result. Only the stages outside the
// one that produced it see the result.
type ShortCircuit struct {
	Result any
}

// Stage is one layer of the chain. OnRequest may replace the request (nil
// keeps it) or short-circuit the call.
type Stage interface {
	Name() string
	OnRequest(ctx context.Context, req *Request) (*Request, *ShortCircuit, error)
	OnResponse(ctx context.Context, req *Request, result any) (any, error)
}

// ErrorObserver is implemented by stages that want to see failures of the
// layers inside them.
type ErrorObserver interface {
	OnError(ctx context.Context, req *Request, err error)
}

// Handler performs the call once every stage has run.
type Handler func(ctx context.Context, req *Request) (any, error)

// Caller issues RPC calls. Stages use it for auxiliary lookups; it must not
// route back through the same chain.
type Caller interface {
	Call(ctx context.Context, method string, params ...any) (any, error)
}

// Base is a pass-through stage to embed.
type Base struct{}

func (Base) OnRequest(_ context.Context, req *Request) (*Request, *ShortCircuit, error) {
	return req, nil, nil
}

func (Base) OnResponse(_ context.Context, _ *Request, result any) (any, error) {
	return result, nil
}

// Chain is an ordered list of stages. It is immutable and safe for concurrent
// use as long as its stages are.
type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: append([]Stage(nil), stages...)}
}

func (c *Chain) Stages() []Stage {
	return append([]Stage(nil), c.stages...)
}

// Do runs req through every stage and final.
func (c *Chain) Do(ctx context.Context, req *Request, final Handler) (any, error) {
	if req.Started.IsZero() {
		req = req.WithParams(req.Params)
		req.Started = time.Now()
	}
	return c.run(ctx, 0, req, final)
}

func (c *Chain) run(ctx context.Context, i int, req *Request, final Handler) (any, error) {
	if i == len(c.stages) {
		return final(ctx, req)
	}
	stage := c.stages[i]

	next, short, err := stage.OnRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stage.Name(), err)
	}
	if short != nil {
		return short.Result, nil
	}
	if next == nil {
		next = req
	}

	result, err := c.run(ctx, i+1, next, final)
	if err != nil {
		if obs, ok := stage.(ErrorObserver); ok {
			obs.OnError(ctx, next, err)
		}
		return nil, err
	}

	out, err := stage.OnResponse(ctx, next, result)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stage.Name(), err)
	}
	return out, nil
}
