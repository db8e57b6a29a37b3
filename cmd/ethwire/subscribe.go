package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ethwire/internal/config"
	"ethwire/internal/format"
	"ethwire/internal/indexer"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/methods"
	"ethwire/internal/metrics"
	"ethwire/internal/model"
	"ethwire/internal/storage"
)

func newSubscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Stream a subscription as JSON lines",
		Long: `Subscribe opens an eth_subscribe stream over a websocket or IPC endpoint.
newHeads pushes are written as block summaries, logs pushes as log records,
anything else in its canonical wire form.`,
		RunE: runSubscribe,
	}

	addClientFlags(cmd.Flags())
	cmd.Flags().String("type", "newHeads", "subscription type (newHeads, logs, newPendingTransactions, syncing)")
	cmd.Flags().StringSlice("address", nil, "log filter addresses (comma-separated)")
	cmd.Flags().StringSlice("topic", nil, "log filter topics by position; '*' matches any, 'a|b' either")
	cmd.Flags().String("out", "", "output JSONL path, stdout when empty")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
	cmd.Flags().Int("limit", 0, "stop after this many pushes, 0 means run until interrupted")
	return cmd
}

func runSubscribe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadSubscribe(loadFlags(cmd))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var args []any
	if cfg.Type == "logs" {
		filter, err := logFilter(cfg)
		if err != nil {
			return err
		}
		args = append(args, filter)
	}

	ctx, stop := signalContext()
	defer stop()

	var reg *prometheus.Registry
	if cfg.MetricsAddr != "" {
		reg = prometheus.NewRegistry()
		srv := metrics.NewServer(cfg.MetricsAddr, reg)
		errCh := srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		go func() {
			if err, ok := <-errCh; ok && err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
				stop()
			}
		}()
		logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	client, err := dialClient(ctx, cfg.Client, logger, registerer)
	if err != nil {
		return err
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	var sink lineWriter
	if cfg.Out == "" {
		sink = newStreamWriter(cmd.OutOrStdout())
	} else {
		w, err := storage.NewWriter(cfg.Out, true)
		if err != nil {
			return err
		}
		defer w.Close()
		sink = w
	}

	pushes := make(chan *jsonrpc.Notification, 64)
	id, err := client.Subscribe(ctx, cfg.Type, func(n *jsonrpc.Notification, err error) {
		if err != nil {
			logger.Warn("drop push", zap.String("type", cfg.Type), zap.Error(err))
			return
		}
		select {
		case pushes <- n:
		case <-ctx.Done():
		}
	}, args...)
	if err != nil {
		return err
	}
	logger.Info("subscribed", zap.String("type", cfg.Type), zap.String("subscription", id), zap.Uint64("chain_id", chainID.Uint64()))

	p := &pushWriter{
		chainID: chainID.Uint64(),
		engine:  client.Engine(),
		table:   client.Methods(),
		sink:    sink,
		now:     time.Now,
	}

	written := 0
	for cfg.Limit <= 0 || written < cfg.Limit {
		select {
		case <-ctx.Done():
			logger.Info("subscription stopped", zap.Int("written", written))
			return unsubscribe(client.Unsubscribe, id)
		case n := <-pushes:
			if err := p.write(n); err != nil {
				return err
			}
			written++
		}
	}
	logger.Info("limit reached", zap.Int("written", written))
	return unsubscribe(client.Unsubscribe, id)
}

func unsubscribe(fn func(context.Context, string) error, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx, id); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", id, err)
	}
	return nil
}

func logFilter(cfg config.SubscribeConfig) (*model.FilterParams, error) {
	addresses, err := indexer.ParseAddresses(cfg.Addresses, cfg.StrictChecksum)
	if err != nil {
		return nil, err
	}
	topics, err := indexer.ParseTopics(cfg.Topics)
	if err != nil {
		return nil, err
	}
	filter := &model.FilterParams{Topics: topics}
	if len(addresses) > 0 {
		filter.Address = addresses
	}
	return filter, nil
}

// pushWriter turns decoded pushes into output lines.
type pushWriter struct {
	chainID uint64
	engine  *format.Engine
	table   *methods.Table
	sink    lineWriter
	now     func() time.Time
}

func (p *pushWriter) write(n *jsonrpc.Notification) error {
	switch v := n.Result.(type) {
	case *model.Block:
		return p.sink.Write(indexer.NewBlockSummary(p.chainID, v, nil, p.now()))
	case *model.Log:
		return p.sink.Write(model.NewLogRecord(p.chainID, v, p.now()))
	}

	wire := n.Result
	if c, ok := p.table.Subscription(n.Type); ok && n.Result != nil {
		encoded, err := p.engine.Encode(c, n.Result)
		if err != nil {
			return fmt.Errorf("encode %s push: %w", n.Type, err)
		}
		wire = encoded
	}
	return p.sink.Write(map[string]any{"subscription": n.Subscription, "type": n.Type, "result": wire})
}

type streamWriter struct {
	enc *json.Encoder
}

func newStreamWriter(w io.Writer) *streamWriter {
	return &streamWriter{enc: json.NewEncoder(w)}
}

func (s *streamWriter) Write(value any) error {
	return s.enc.Encode(value)
}
