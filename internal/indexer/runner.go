package indexer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ethwire/internal/codec"
	"ethwire/internal/format"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/model"
	"ethwire/internal/schema"
	"ethwire/internal/transport"
)

// Source is the subset of chain.Client the runner needs.
type Source interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (codec.BlockNumber, error)
	BlockByNumber(ctx context.Context, block any, full bool) (*model.Block, error)
	BlockReceipts(ctx context.Context, block any) ([]*model.Receipt, error)
	Engine() *format.Engine
}

// Sink receives one value per block, in block order.
type Sink interface {
	Write(value any) error
}

// RunConfig holds runtime settings for the block fetcher.
type RunConfig struct {
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	Concurrency       int
	Full              bool
	Receipts          bool
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// BlockRecord is the line written per block. Block and Receipts carry the
// re-encoded wire form and are only set when requested.
type BlockRecord struct {
	Summary  BlockSummary     `json:"summary"`
	Block    map[string]any   `json:"block,omitempty"`
	Receipts []map[string]any `json:"receipts,omitempty"`
}

// ReorgError is returned when the checkpointed block hash no longer matches the
// chain.
type ReorgError struct {
	Number uint64
	Want   string
	Got    string
}

func (e *ReorgError) Error() string {
	return fmt.Sprintf("block %d hash changed since checkpoint: had %s, node has %s", e.Number, e.Want, e.Got)
}

// MissingBlockError is returned when the node has no block at a height inside
// the requested range.
type MissingBlockError struct {
	Number uint64
}

func (e *MissingBlockError) Error() string {
	return fmt.Sprintf("block %d not found", e.Number)
}

// Runner fetches a block range in batches and writes one record per block.
type Runner struct {
	cfg        RunConfig
	source     Source
	sink       Sink
	logger     *zap.Logger
	checkpoint *CheckpointStore
	now        func() time.Time
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source Source, sink Sink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		sink:       sink,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
		now:        time.Now,
	}
}

// Run executes the fetch loop until the range is exhausted or ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("block source is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	chainID, err := r.source.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.source.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = uint64(latest)
	}

	from, err = r.resume(ctx, chainIDValue, from)
	if err != nil {
		return err
	}

	if from > to {
		r.logger.Info("nothing to fetch", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.logger.Info("fetch blocks", zap.Stringer("range", blockRange))

		records, err := r.fetchBatch(ctx, chainIDValue, blockRange)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := r.sink.Write(rec); err != nil {
				return fmt.Errorf("write block %d: %w", rec.Summary.Number, err)
			}
		}

		last := records[len(records)-1].Summary
		if err := r.checkpoint.Save(Checkpoint{
			ChainID:            chainIDValue,
			LastProcessedBlock: last.Number,
			LastBlockHash:      last.Hash,
		}); err != nil {
			return err
		}

		r.logger.Info("batch complete", zap.Int("blocks", len(records)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return nil
}

// resume moves from past the checkpoint after checking the checkpoint still
// describes this chain.
func (r *Runner) resume(ctx context.Context, chainID, from uint64) (uint64, error) {
	cp, ok, err := r.checkpoint.Load()
	if err != nil || !ok {
		return from, err
	}
	if cp.ChainID != 0 && cp.ChainID != chainID {
		return 0, fmt.Errorf("checkpoint is for chain %d, node reports %d", cp.ChainID, chainID)
	}
	if cp.LastProcessedBlock < from {
		return from, nil
	}

	if cp.LastBlockHash != "" {
		block, err := r.blockWithRetry(ctx, cp.LastProcessedBlock)
		if err != nil {
			return 0, fmt.Errorf("verify checkpoint: %w", err)
		}
		if got := block.Hash.Hex(); got != cp.LastBlockHash {
			return 0, &ReorgError{Number: cp.LastProcessedBlock, Want: cp.LastBlockHash, Got: got}
		}
	}

	r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", cp.LastProcessedBlock+1))
	return cp.LastProcessedBlock + 1, nil
}

func (r *Runner) fetchBatch(ctx context.Context, chainID uint64, blockRange BlockRange) ([]BlockRecord, error) {
	records := make([]BlockRecord, blockRange.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i := uint64(0); i < blockRange.Len(); i++ {
		n := blockRange.From + i
		g.Go(func() error {
			rec, err := r.fetchBlock(gctx, chainID, n)
			if err != nil {
				return fmt.Errorf("block %d: %w", n, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Runner) fetchBlock(ctx context.Context, chainID, number uint64) (BlockRecord, error) {
	block, err := r.blockWithRetry(ctx, number)
	if err != nil {
		return BlockRecord{}, err
	}

	var receipts []*model.Receipt
	if r.cfg.Receipts {
		err := transport.Retry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, retryable, func(ctx context.Context) error {
			var err error
			receipts, err = r.source.BlockReceipts(ctx, codec.BlockNumber(number))
			if err != nil {
				r.logger.Warn("block receipts fetch failed", zap.Error(err), zap.Uint64("block_number", number))
			}
			return err
		})
		if err != nil {
			return BlockRecord{}, fmt.Errorf("receipts: %w", err)
		}
		if receipts == nil {
			receipts = []*model.Receipt{}
		}
	}

	rec := BlockRecord{Summary: NewBlockSummary(chainID, block, receipts, r.now())}
	engine := r.source.Engine()
	if r.cfg.Full {
		if rec.Block, err = engine.EncodeRecord(schema.Block, block); err != nil {
			return BlockRecord{}, err
		}
	}
	for _, receipt := range receipts {
		wire, err := engine.EncodeRecord(schema.Receipt, receipt)
		if err != nil {
			return BlockRecord{}, err
		}
		rec.Receipts = append(rec.Receipts, wire)
	}
	return rec, nil
}

func (r *Runner) blockWithRetry(ctx context.Context, number uint64) (*model.Block, error) {
	var block *model.Block
	err := transport.Retry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, retryable, func(ctx context.Context) error {
		var err error
		block, err = r.source.BlockByNumber(ctx, codec.BlockNumber(number), r.cfg.Full)
		if err != nil {
			r.logger.Warn("block fetch failed", zap.Error(err), zap.Uint64("block_number", number))
			return err
		}
		if block == nil || block.Hash == nil {
			return &MissingBlockError{Number: number}
		}
		return nil
	})
	return block, err
}

// retryable keeps retrying transport failures and missing blocks, which show
// up briefly on load-balanced nodes. Node faults and decode errors are final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		fault   *jsonrpc.RPCFault
		field   *format.FieldError
		shape   *format.ShapeError
		missing *schema.MissingFieldError
	)
	return !errors.As(err, &fault) && !errors.As(err, &field) && !errors.As(err, &shape) && !errors.As(err, &missing)
}
