package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
	"ethwire/internal/model"
)

// callAs runs Call and asserts the decoded result. A null result yields the
// zero value.
func callAs[T any](ctx context.Context, c *Client, method string, params ...any) (T, error) {
	var zero T
	v, err := c.Call(ctx, method, params...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result %T", method, v)
	}
	return out, nil
}

// ChainID returns the chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return callAs[*big.Int](ctx, c, "eth_chainId")
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (codec.BlockNumber, error) {
	return callAs[codec.BlockNumber](ctx, c, "eth_blockNumber")
}

// BlockByNumber returns the block for a number or tag, nil if the node does
// not have it.
func (c *Client) BlockByNumber(ctx context.Context, block any, full bool) (*model.Block, error) {
	return callAs[*model.Block](ctx, c, "eth_getBlockByNumber", block, full)
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (codec.Timestamp, error) {
	c.tsMu.RLock()
	ts, ok := c.tsCache[number]
	c.tsMu.RUnlock()
	if ok {
		return ts, nil
	}

	block, err := c.BlockByNumber(ctx, codec.BlockNumber(number), false)
	if err != nil {
		return 0, err
	}
	if block == nil || block.Timestamp == nil {
		return 0, fmt.Errorf("block %d not found", number)
	}

	ts = *block.Timestamp
	c.tsMu.Lock()
	c.tsCache[number] = ts
	c.tsMu.Unlock()

	return ts, nil
}

// TransactionReceipt returns the receipt of a mined transaction, nil while it
// is pending or unknown.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*model.Receipt, error) {
	return callAs[*model.Receipt](ctx, c, "eth_getTransactionReceipt", hash)
}

// Logs returns the logs matching filter.
func (c *Client) Logs(ctx context.Context, filter *model.FilterParams) ([]*model.Log, error) {
	items, err := callAs[[]any](ctx, c, "eth_getLogs", filter)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Log, 0, len(items))
	for i, item := range items {
		l, ok := item.(*model.Log)
		if !ok {
			return nil, fmt.Errorf("eth_getLogs: [%d] unexpected %T", i, item)
		}
		out = append(out, l)
	}
	return out, nil
}

// Balance returns the balance of addr at block. A nil block means latest.
func (c *Client) Balance(ctx context.Context, addr common.Address, block any) (*codec.Wei, error) {
	if block == nil {
		return callAs[*codec.Wei](ctx, c, "eth_getBalance", addr)
	}
	return callAs[*codec.Wei](ctx, c, "eth_getBalance", addr, block)
}

// CallContract performs an eth_call at block and returns the raw return data.
func (c *Client) CallContract(ctx context.Context, msg *model.TxParams, block any) (codec.HexBlob, error) {
	if block == nil {
		block = codec.TagLatest
	}
	return callAs[codec.HexBlob](ctx, c, "eth_call", msg, block)
}

// BlockReceipts returns every receipt of a block, nil if the node does not
// have the block.
func (c *Client) BlockReceipts(ctx context.Context, block any) ([]*model.Receipt, error) {
	items, err := callAs[[]any](ctx, c, "eth_getBlockReceipts", block)
	if err != nil || items == nil {
		return nil, err
	}
	out := make([]*model.Receipt, 0, len(items))
	for i, item := range items {
		r, ok := item.(*model.Receipt)
		if !ok {
			return nil, fmt.Errorf("eth_getBlockReceipts: [%d] unexpected %T", i, item)
		}
		out = append(out, r)
	}
	return out, nil
}
