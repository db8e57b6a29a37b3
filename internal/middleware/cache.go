package middleware

import (
	"context"
	"encoding/json"
	"math/big"

	lru "github.com/hashicorp/golang-lru"

	"ethwire/internal/codec"
	"ethwire/internal/metrics"
)

// DefaultCacheMethods return values that are fixed for the life of a node.
var DefaultCacheMethods = []string{
	"eth_chainId",
	"net_version",
	"web3_clientVersion",
	"eth_protocolVersion",
	"admin_datadir",
}

// Cache answers repeated calls to the configured methods from an LRU. Only
// scalar results are stored, and big integers are copied on the way in and
// out, so callers never share mutable values.
type Cache struct {
	Base
	methods map[string]bool
	lru     *lru.Cache
	metrics *metrics.Metrics
}

type CacheOption func(*Cache)

// WithCacheMethods replaces the cached method set.
func WithCacheMethods(methods ...string) CacheOption {
	return func(c *Cache) {
		c.methods = make(map[string]bool, len(methods))
		for _, m := range methods {
			c.methods[m] = true
		}
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

func NewCache(size int, opts ...CacheOption) (*Cache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	c := &Cache{lru: l}
	WithCacheMethods(DefaultCacheMethods...)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (*Cache) Name() string { return "cache" }

func (c *Cache) OnRequest(_ context.Context, req *Request) (*Request, *ShortCircuit, error) {
	key, ok := c.key(req)
	if !ok {
		return req, nil, nil
	}
	v, hit := c.lru.Get(key)
	c.metrics.RecordCacheLookup(req.Method, hit)
	if !hit {
		return req, nil, nil
	}
	return req, &ShortCircuit{Result: cloneScalar(v)}, nil
}

func (c *Cache) OnResponse(_ context.Context, req *Request, result any) (any, error) {
	key, ok := c.key(req)
	if !ok || result == nil || !isScalar(result) {
		return result, nil
	}
	c.lru.Add(key, cloneScalar(result))
	return result, nil
}

func (c *Cache) Len() int { return c.lru.Len() }

// Purge drops every entry, e.g. after the transport reconnects to another node.
func (c *Cache) Purge() { c.lru.Purge() }

func (c *Cache) key(req *Request) (string, bool) {
	if !c.methods[req.Method] {
		return "", false
	}
	params, err := json.Marshal(req.Params)
	if err != nil {
		return "", false
	}
	return req.Method + string(params), true
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, uint64, codec.BlockNumber, codec.Nonce, codec.Timestamp, *big.Int, *codec.Wei:
		return true
	}
	return false
}

func cloneScalar(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return new(big.Int).Set(x)
	case *codec.Wei:
		return codec.NewWei(x.Int())
	}
	return v
}
