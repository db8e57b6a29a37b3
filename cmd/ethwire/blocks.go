package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ethwire/internal/config"
	"ethwire/internal/indexer"
	"ethwire/internal/storage"
)

func newBlocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Fetch a block range and write one JSON line per block",
		RunE:  runBlocks,
	}

	addClientFlags(cmd.Flags())
	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().Uint64("batch-size", 100, "blocks per batch")
	cmd.Flags().Int("concurrency", 4, "blocks fetched in parallel within a batch")
	cmd.Flags().Bool("full", false, "fetch full transactions and include the block's wire form")
	cmd.Flags().Bool("receipts", false, "fetch receipts with eth_getBlockReceipts")
	cmd.Flags().String("out", "./data/blocks.jsonl", "output JSONL path")
	cmd.Flags().String("checkpoint", "./data/blocks_checkpoint.json", "checkpoint file path")
	cmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	return cmd
}

func runBlocks(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadBlocks(loadFlags(cmd))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	client, err := dialClient(ctx, cfg.Client, logger, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	out, err := storage.NewWriter(cfg.Out, true)
	if err != nil {
		return err
	}
	defer out.Close()

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		BatchSize:         cfg.BatchSize,
		Concurrency:       cfg.Concurrency,
		Full:              cfg.Full,
		Receipts:          cfg.Receipts,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, client, out, logger)

	logger.Info("blocks start",
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("full", cfg.Full),
		zap.Bool("receipts", cfg.Receipts),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}
