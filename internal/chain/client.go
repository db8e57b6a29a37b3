// Package chain is the typed JSON-RPC client: calls run through the middleware
// chain, get encoded by the request builder, travel over a transport and come
// back through the response decoder.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ethwire/internal/codec"
	"ethwire/internal/format"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/methods"
	"ethwire/internal/metrics"
	"ethwire/internal/middleware"
	"ethwire/internal/storage"
	"ethwire/internal/transport"
)

// DefaultCoalesceMethods are merged when identical calls are in flight at the
// same time.
var DefaultCoalesceMethods = []string{
	"eth_chainId",
	"eth_blockNumber",
	"eth_gasPrice",
	"eth_maxPriorityFeePerGas",
	"net_version",
}

// Client wraps a transport and provides typed calls.
type Client struct {
	transport transport.Transport
	engine    *format.Engine
	table     *methods.Table
	builder   *jsonrpc.Builder
	decoder   *jsonrpc.Decoder
	router    *jsonrpc.Router
	chain     *middleware.Chain
	cache     *middleware.Cache

	logger   *zap.Logger
	metrics  *metrics.Metrics
	capture  storage.Storage
	endpoint string

	coalesce map[string]bool
	group    singleflight.Group

	mu   sync.Mutex
	subs map[string]string

	tsMu    sync.RWMutex
	tsCache map[uint64]codec.Timestamp
}

// New builds a client over t. The transport is owned by the client from here
// on and closed by Close.
func New(t transport.Transport, opts ...Option) (*Client, error) {
	s := buildSettings(opts)

	engine := s.engine
	if engine == nil {
		engine = format.NewEngine()
	}
	table := s.table
	if table == nil {
		table = methods.Default()
	}

	var builderOpts []jsonrpc.BuilderOption
	var decoderOpts []jsonrpc.DecoderOption
	if s.strict {
		builderOpts = append(builderOpts, jsonrpc.WithStrictMethods())
		decoderOpts = append(decoderOpts, jsonrpc.WithStrictResults())
	}
	decoder := jsonrpc.NewDecoder(engine, table, decoderOpts...)

	c := &Client{
		transport: t,
		engine:    engine,
		table:     table,
		builder:   jsonrpc.NewBuilder(engine, table, builderOpts...),
		decoder:   decoder,
		router:    jsonrpc.NewRouter(decoder),
		logger:    s.logger,
		metrics:   s.metrics,
		capture:   s.capture,
		endpoint:  s.endpoint,
		coalesce:  make(map[string]bool, len(s.coalesce)),
		subs:      make(map[string]string),
		tsCache:   make(map[uint64]codec.Timestamp),
	}
	for _, m := range s.coalesce {
		c.coalesce[m] = true
	}

	stages, err := c.stages(s)
	if err != nil {
		return nil, err
	}
	c.chain = middleware.NewChain(stages...)

	if ps, ok := t.(transport.PushSource); ok {
		ps.OnPush(c.dispatch)
	}
	if rc, ok := t.(transport.Reconnecter); ok {
		rc.OnReconnect(c.onReconnect)
	}
	return c, nil
}

// Dial connects to endpoint with the transport its scheme calls for.
func Dial(ctx context.Context, endpoint string, opts ...Option) (*Client, error) {
	s := buildSettings(opts)
	topts := append([]transport.Option{transport.WithLogger(s.logger)}, s.transportOpts...)
	t, err := transport.Dial(ctx, endpoint, topts...)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	c, err := New(t, append(opts, WithEndpoint(endpoint))...)
	if err != nil {
		t.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) stages(s settings) ([]middleware.Stage, error) {
	stages := []middleware.Stage{
		middleware.NewLogging(c.logger),
		middleware.NewMetrics(c.metrics),
	}
	if s.cacheSize > 0 {
		cacheOpts := []middleware.CacheOption{middleware.WithCacheMetrics(c.metrics)}
		if len(s.cacheMethods) > 0 {
			cacheOpts = append(cacheOpts, middleware.WithCacheMethods(s.cacheMethods...))
		}
		cache, err := middleware.NewCache(s.cacheSize, cacheOpts...)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		c.cache = cache
		stages = append(stages, cache)
	}
	switch s.poa {
	case PoAValidate:
		stages = append(stages, middleware.NewPoAValidator())
	case PoATrim:
		stages = append(stages, middleware.NewPoAValidator(), middleware.NewPoATrimmer())
	}
	if s.fillTx {
		raw := c.Raw()
		stages = append(stages,
			middleware.NewFeeNormalizer(raw, c.logger),
			middleware.NewNonceFiller(raw),
			middleware.NewGasEstimator(raw),
		)
	}
	return append(stages, s.stages...), nil
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) Engine() *format.Engine { return c.engine }

func (c *Client) Methods() *methods.Table { return c.table }

// Call runs method through the middleware chain and returns the decoded
// result. Node errors come back as *jsonrpc.RPCFault.
func (c *Client) Call(ctx context.Context, method string, params ...any) (any, error) {
	return c.chain.Do(ctx, &middleware.Request{Method: method, Params: params}, c.send)
}

// Raw returns a caller that skips the middleware chain. Stages use it for
// their own lookups.
func (c *Client) Raw() middleware.Caller {
	return rawCaller{c}
}

type rawCaller struct{ c *Client }

func (r rawCaller) Call(ctx context.Context, method string, params ...any) (any, error) {
	return r.c.roundTrip(ctx, method, params)
}

// send coalesces identical in-flight calls to stable methods. The first
// caller's context governs the shared call.
func (c *Client) send(ctx context.Context, req *middleware.Request) (any, error) {
	if !c.coalesce[req.Method] {
		return c.roundTrip(ctx, req.Method, req.Params)
	}
	key, err := json.Marshal(req.Params)
	if err != nil {
		return c.roundTrip(ctx, req.Method, req.Params)
	}
	v, err, shared := c.group.Do(req.Method+string(key), func() (any, error) {
		return c.roundTrip(ctx, req.Method, req.Params)
	})
	if shared {
		v = cloneShared(v)
	}
	return v, err
}

func (c *Client) roundTrip(ctx context.Context, method string, params []any) (any, error) {
	req, err := c.builder.Build(method, params...)
	if err != nil {
		return nil, err
	}
	payload, err := req.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	raw, err := c.transport.Send(ctx, payload)
	c.record(method, payload, raw, err)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}
	return c.decoder.DecodeFor(req, raw)
}

func (c *Client) record(method string, req, resp []byte, sendErr error) {
	if c.capture == nil {
		return
	}
	ex := storage.Exchange{
		Time:     time.Now().UTC(),
		Endpoint: c.endpoint,
		Method:   method,
		Request:  json.RawMessage(req),
	}
	if sendErr != nil {
		ex.Error = sendErr.Error()
	} else {
		ex.Response = json.RawMessage(resp)
	}
	if err := c.capture.PutExchanges([]storage.Exchange{ex}); err != nil {
		c.logger.Warn("capture exchange", zap.String("method", method), zap.Error(err))
	}
}

func cloneShared(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return new(big.Int).Set(x)
	case *codec.Wei:
		return codec.NewWei(x.Int())
	}
	return v
}

// Subscribe opens a subscription of subType and routes its pushes to h. Extra
// args follow the subscription type on the wire, e.g. a log filter.
func (c *Client) Subscribe(ctx context.Context, subType string, h jsonrpc.Handler, args ...any) (string, error) {
	handler := c.observePush(subType, h)

	if sub, ok := c.transport.(transport.Subscriber); ok {
		wire, err := c.builder.Params("eth_subscribe", append([]any{subType}, args...)...)
		if err != nil {
			return "", err
		}
		id, err := sub.Subscribe(ctx, subType, wire[1:]...)
		if err != nil {
			return "", fmt.Errorf("subscribe %s: %w", subType, err)
		}
		c.track(id, subType, handler)
		return id, nil
	}

	if _, ok := c.transport.(transport.PushSource); !ok {
		return "", fmt.Errorf("subscribe %s: transport does not deliver pushes", subType)
	}
	res, err := c.Call(ctx, "eth_subscribe", append([]any{subType}, args...)...)
	if err != nil {
		return "", err
	}
	id, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("eth_subscribe: unexpected result %T", res)
	}
	c.track(id, subType, handler)
	return id, nil
}

func (c *Client) track(id, subType string, h jsonrpc.Handler) {
	c.router.Register(id, subType, h)
	c.mu.Lock()
	c.subs[id] = subType
	c.mu.Unlock()
	c.logger.Info("subscribed", zap.String("subscription", id), zap.String("type", subType))
}

func (c *Client) observePush(subType string, h jsonrpc.Handler) jsonrpc.Handler {
	return func(n *jsonrpc.Notification, err error) {
		c.metrics.RecordPush(subType, err)
		if err != nil {
			c.logger.Warn("decode push", zap.String("type", subType), zap.Error(err))
		}
		h(n, err)
	}
}

// Unsubscribe cancels a subscription opened with Subscribe.
func (c *Client) Unsubscribe(ctx context.Context, id string) error {
	c.mu.Lock()
	_, ok := c.subs[id]
	delete(c.subs, id)
	c.mu.Unlock()
	if !ok {
		return &jsonrpc.UnknownSubscriptionError{ID: id}
	}
	c.router.Unregister(id)

	if sub, ok := c.transport.(transport.Subscriber); ok {
		return sub.Unsubscribe(ctx, id)
	}
	res, err := c.Call(ctx, "eth_unsubscribe", id)
	if err != nil {
		return err
	}
	if done, _ := res.(bool); !done {
		return fmt.Errorf("eth_unsubscribe: node did not cancel %s", id)
	}
	return nil
}

// Subscriptions returns the open subscription ids with their types.
func (c *Client) Subscriptions() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.subs))
	for id, t := range c.subs {
		out[id] = t
	}
	return out
}

func (c *Client) dispatch(raw []byte) {
	err := c.router.Dispatch(raw)
	var unknown *jsonrpc.UnknownSubscriptionError
	var shape *jsonrpc.EnvelopeShapeError
	switch {
	case err == nil:
	case errors.As(err, &unknown):
		c.logger.Debug("push for unknown subscription", zap.String("subscription", unknown.ID))
	case errors.As(err, &shape):
		c.logger.Warn("malformed push", zap.Error(err))
	}
	// Decode failures were already handed to the subscription handler.
}

// onReconnect restarts id allocation, forgets cached node facts and drops
// subscriptions that died with the old connection.
func (c *Client) onReconnect() {
	c.builder.IDs().Reset()
	if c.cache != nil {
		c.cache.Purge()
	}

	c.mu.Lock()
	dropped := c.subs
	c.subs = make(map[string]string)
	c.mu.Unlock()
	for id := range dropped {
		c.router.Unregister(id)
	}
	c.logger.Info("transport reconnected", zap.Int("droppedSubscriptions", len(dropped)))
}
