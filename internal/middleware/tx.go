package middleware

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"ethwire/internal/codec"
	"ethwire/internal/model"
	"ethwire/internal/schema"
)

// txMethods take a TxParams first param that the filling stages complete.
var txMethods = map[string]bool{
	"eth_sendTransaction": true,
	"eth_signTransaction": true,
}

// txParamsOf returns a copy of the request's transaction params when the
// method sends a transaction and the caller passed a model.TxParams. Generic
// maps are left alone.
func txParamsOf(req *Request) (*model.TxParams, bool) {
	if !txMethods[req.Method] || len(req.Params) == 0 {
		return nil, false
	}
	switch tx := req.Params[0].(type) {
	case *model.TxParams:
		if tx == nil {
			return nil, false
		}
		return tx.Clone(), true
	case model.TxParams:
		return tx.Clone(), true
	}
	return nil, false
}

func withTx(req *Request, tx *model.TxParams) *Request {
	params := append([]any(nil), req.Params...)
	params[0] = tx
	return req.WithParams(params)
}

func weiResult(method string, v any) (*codec.Wei, error) {
	w, ok := v.(*codec.Wei)
	if !ok || w == nil {
		return nil, fmt.Errorf("%s: unexpected result %T", method, v)
	}
	return w, nil
}

// FeeNormalizer settles the fee style of outgoing transactions. Legacy params
// keep gasPrice; EIP-1559 params get missing caps filled with
// maxFeePerGas = 2*baseFee + maxPriorityFeePerGas. Params with neither style
// are priced as EIP-1559 when the latest block has a base fee and with
// eth_gasPrice otherwise. The type field is set to match.
type FeeNormalizer struct {
	Base
	caller Caller
	logger *zap.Logger
}

func NewFeeNormalizer(caller Caller, logger *zap.Logger) *FeeNormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeNormalizer{caller: caller, logger: logger}
}

func (*FeeNormalizer) Name() string { return "fees" }

func (f *FeeNormalizer) OnRequest(ctx context.Context, req *Request) (*Request, *ShortCircuit, error) {
	tx, ok := txParamsOf(req)
	if !ok {
		return req, nil, nil
	}

	switch {
	case tx.HasLegacyFee() && tx.HasDynamicFee():
		return nil, nil, &schema.ConflictingFeeFieldsError{
			Kind:   schema.TxParams,
			Fields: []string{"gasPrice", "maxFeePerGas", "maxPriorityFeePerGas"},
		}
	case tx.HasLegacyFee():
		setType(tx, model.LegacyTxType)
	case tx.HasDynamicFee():
		if err := f.fillDynamic(ctx, tx, nil); err != nil {
			return nil, nil, err
		}
	default:
		baseFee, err := f.baseFee(ctx)
		if err != nil {
			return nil, nil, err
		}
		if baseFee == nil {
			price, err := f.call(ctx, "eth_gasPrice")
			if err != nil {
				return nil, nil, err
			}
			f.logger.Debug("no base fee, pricing as legacy", zap.Stringer("gasPrice", price))
			tx.GasPrice = price
			setType(tx, model.LegacyTxType)
			break
		}
		if err := f.fillDynamic(ctx, tx, baseFee); err != nil {
			return nil, nil, err
		}
	}
	return withTx(req, tx), nil, nil
}

func (f *FeeNormalizer) fillDynamic(ctx context.Context, tx *model.TxParams, baseFee *codec.Wei) error {
	if tx.MaxPriorityFeePerGas == nil {
		tip, err := f.call(ctx, "eth_maxPriorityFeePerGas")
		if err != nil {
			return err
		}
		tx.MaxPriorityFeePerGas = tip
	}
	if tx.MaxFeePerGas == nil {
		if baseFee == nil {
			var err error
			if baseFee, err = f.baseFee(ctx); err != nil {
				return err
			}
			if baseFee == nil {
				return fmt.Errorf("latest block has no base fee, cannot derive maxFeePerGas")
			}
		}
		feeCap := new(big.Int).Mul(baseFee.Int(), big.NewInt(2))
		feeCap.Add(feeCap, tx.MaxPriorityFeePerGas.Int())
		tx.MaxFeePerGas = codec.NewWei(feeCap)
	}
	if tx.MaxPriorityFeePerGas.Cmp(tx.MaxFeePerGas) > 0 {
		return fmt.Errorf("maxPriorityFeePerGas %s exceeds maxFeePerGas %s", tx.MaxPriorityFeePerGas, tx.MaxFeePerGas)
	}
	setType(tx, model.DynamicFeeTxType)
	return nil
}

// baseFee returns the latest block's base fee, or nil before London.
func (f *FeeNormalizer) baseFee(ctx context.Context) (*codec.Wei, error) {
	res, err := f.caller.Call(ctx, "eth_getBlockByNumber", codec.TagLatest, false)
	if err != nil {
		return nil, err
	}
	block, ok := res.(*model.Block)
	if !ok || block == nil {
		return nil, fmt.Errorf("eth_getBlockByNumber: no latest block")
	}
	return block.BaseFeePerGas, nil
}

func (f *FeeNormalizer) call(ctx context.Context, method string) (*codec.Wei, error) {
	res, err := f.caller.Call(ctx, method)
	if err != nil {
		return nil, err
	}
	return weiResult(method, res)
}

func setType(tx *model.TxParams, t uint64) {
	if tx.Type == nil {
		tx.Type = &t
	}
}

// NonceFiller sets a missing nonce from the sender's pending transaction count.
type NonceFiller struct {
	Base
	caller Caller
}

func NewNonceFiller(caller Caller) *NonceFiller {
	return &NonceFiller{caller: caller}
}

func (*NonceFiller) Name() string { return "nonce" }

func (n *NonceFiller) OnRequest(ctx context.Context, req *Request) (*Request, *ShortCircuit, error) {
	tx, ok := txParamsOf(req)
	if !ok || tx.Nonce != nil || tx.From == nil {
		return req, nil, nil
	}
	res, err := n.caller.Call(ctx, "eth_getTransactionCount", *tx.From, codec.TagPending)
	if err != nil {
		return nil, nil, err
	}
	nonce, ok := res.(codec.Nonce)
	if !ok {
		return nil, nil, fmt.Errorf("eth_getTransactionCount: unexpected result %T", res)
	}
	tx.Nonce = &nonce
	return withTx(req, tx), nil, nil
}

// GasEstimator sets a missing gas limit with eth_estimateGas.
type GasEstimator struct {
	Base
	caller Caller
}

func NewGasEstimator(caller Caller) *GasEstimator {
	return &GasEstimator{caller: caller}
}

func (*GasEstimator) Name() string { return "gas" }

func (g *GasEstimator) OnRequest(ctx context.Context, req *Request) (*Request, *ShortCircuit, error) {
	tx, ok := txParamsOf(req)
	if !ok || tx.Gas != nil {
		return req, nil, nil
	}
	res, err := g.caller.Call(ctx, "eth_estimateGas", tx)
	if err != nil {
		return nil, nil, err
	}
	gas, ok := res.(uint64)
	if !ok {
		return nil, nil, fmt.Errorf("eth_estimateGas: unexpected result %T", res)
	}
	tx.Gas = &gas
	return withTx(req, tx), nil, nil
}
