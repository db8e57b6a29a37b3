package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Geth carries envelopes over go-ethereum's rpc client. Websocket and IPC
// connections support subscriptions; go-ethereum keeps the server-side ids to
// itself, so subscriptions get local ids and pushes are re-wrapped as
// eth_subscription envelopes under those ids.
type Geth struct {
	endpoint string
	opts     options

	mu     sync.RWMutex
	client *rpc.Client
	subs   map[string]*rpc.ClientSubscription
	push   []func([]byte)
	hooks  []func()

	nextSub atomic.Uint64
}

// DialGeth connects to a websocket, IPC or HTTP endpoint.
func DialGeth(ctx context.Context, endpoint string, opts ...Option) (*Geth, error) {
	o := buildOptions(opts)
	client, err := dialRPC(ctx, endpoint, o)
	if err != nil {
		return nil, err
	}
	g := NewGeth(client, opts...)
	g.endpoint = endpoint
	return g, nil
}

// NewGeth wraps an existing client, e.g. one from rpc.DialInProc.
func NewGeth(client *rpc.Client, opts ...Option) *Geth {
	return &Geth{
		client: client,
		opts:   buildOptions(opts),
		subs:   make(map[string]*rpc.ClientSubscription),
	}
}

func dialRPC(ctx context.Context, endpoint string, o options) (*rpc.Client, error) {
	var clientOpts []rpc.ClientOption
	for k, v := range o.headers {
		clientOpts = append(clientOpts, rpc.WithHeader(k, v))
	}
	client, err := rpc.DialOptions(ctx, endpoint, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return client, nil
}

type envelopeIn struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type faultOut struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type envelopeOut struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *faultOut       `json:"error,omitempty"`
}

// Send replays the request through CallContext and rebuilds the response
// envelope. Node errors come back as error envelopes; connection failures are
// returned as errors.
func (g *Geth) Send(ctx context.Context, req []byte) ([]byte, error) {
	var in envelopeIn
	if err := json.Unmarshal(req, &in); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	args := make([]any, len(in.Params))
	for i, p := range in.Params {
		args[i] = p
	}

	var result json.RawMessage
	err := g.rpcClient().CallContext(ctx, &result, in.Method, args...)

	out := envelopeOut{JSONRPC: "2.0", ID: in.ID}
	switch {
	case err == nil:
		if len(result) == 0 {
			result = json.RawMessage("null")
		}
		out.Result = result
	default:
		fault, ok := faultOf(err)
		if !ok {
			return nil, err
		}
		out.Error = fault
	}
	return json.Marshal(out)
}

func faultOf(err error) (*faultOut, bool) {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return nil, false
	}
	f := &faultOut{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		if data, mErr := json.Marshal(dataErr.ErrorData()); mErr == nil {
			f.Data = data
		}
	}
	return f, true
}

// OnPush registers fn for every push on every subscription.
func (g *Geth) OnPush(fn func(raw []byte)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.push = append(g.push, fn)
}

func (g *Geth) OnReconnect(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, fn)
}

// Subscribe opens an eth_subscribe subscription and returns its local id.
func (g *Geth) Subscribe(ctx context.Context, subType string, args ...any) (string, error) {
	ch := make(chan json.RawMessage, 64)
	callArgs := append([]any{subType}, args...)
	sub, err := g.rpcClient().EthSubscribe(ctx, ch, callArgs...)
	if err != nil {
		return "", err
	}

	id := "0x" + strconv.FormatUint(g.nextSub.Add(1), 16)
	g.mu.Lock()
	g.subs[id] = sub
	g.mu.Unlock()

	go g.forward(id, subType, sub, ch)
	return id, nil
}

func (g *Geth) forward(id, subType string, sub *rpc.ClientSubscription, ch <-chan json.RawMessage) {
	for {
		select {
		case result := <-ch:
			raw, err := json.Marshal(map[string]any{
				"jsonrpc": "2.0",
				"method":  "eth_subscription",
				"params": map[string]any{
					"subscription": id,
					"result":       result,
				},
			})
			if err != nil {
				g.opts.logger.Error("wrap push", zap.String("subscription", id), zap.Error(err))
				continue
			}
			g.mu.RLock()
			handlers := slices.Clone(g.push)
			g.mu.RUnlock()
			for _, fn := range handlers {
				fn(raw)
			}
		case err, ok := <-sub.Err():
			if ok && err != nil {
				g.opts.logger.Warn("subscription dropped",
					zap.String("subscription", id),
					zap.String("type", subType),
					zap.Error(err),
				)
			}
			g.mu.Lock()
			delete(g.subs, id)
			g.mu.Unlock()
			return
		}
	}
}

func (g *Geth) Unsubscribe(_ context.Context, id string) error {
	g.mu.Lock()
	sub, ok := g.subs[id]
	delete(g.subs, id)
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown subscription %s", id)
	}
	sub.Unsubscribe()
	return nil
}

// Redial replaces the connection. Open subscriptions are dropped and the
// reconnect hooks run once the new connection is up.
func (g *Geth) Redial(ctx context.Context) error {
	if g.endpoint == "" {
		return fmt.Errorf("redial: transport was not dialed from an endpoint")
	}
	client, err := dialRPC(ctx, g.endpoint, g.opts)
	if err != nil {
		return err
	}

	g.mu.Lock()
	old := g.client
	g.client = client
	subs := g.subs
	g.subs = make(map[string]*rpc.ClientSubscription)
	hooks := append([]func(){}, g.hooks...)
	g.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	old.Close()
	g.opts.logger.Info("reconnected", zap.String("endpoint", g.endpoint), zap.Int("droppedSubscriptions", len(subs)))
	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (g *Geth) rpcClient() *rpc.Client {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.client
}

func (g *Geth) Close() error {
	g.mu.Lock()
	subs := g.subs
	g.subs = make(map[string]*rpc.ClientSubscription)
	g.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
	g.rpcClient().Close()
	return nil
}
