package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ethwire/internal/config"
	"ethwire/internal/format"
	"ethwire/internal/jsonrpc"
	"ethwire/internal/methods"
	"ethwire/internal/storage"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Replay a capture file through the decoder",
		RunE:  runDecode,
	}

	cmd.Flags().String("in", "", "input capture JSONL (written by call --capture)")
	cmd.Flags().String("out", "./data/decoded.jsonl", "output decoded results JSONL")
	cmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	cmd.Flags().Bool("strict-checksum", false, "reject mixed-case addresses with a bad checksum")
	cmd.Flags().Bool("strict-fields", false, "reject unknown record fields")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func runDecode(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadDecode(loadFlags(cmd))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outWriter, err := storage.NewWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := storage.NewWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Bool("strict_checksum", cfg.StrictChecksum),
		zap.Bool("strict_fields", cfg.StrictFields),
	)

	r := newReplayer(newEngine(cfg.StrictChecksum, cfg.StrictFields), methods.Default())
	stats, err := r.run(inputFile, outWriter, errWriter)
	if err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.Int("total", stats.total),
		zap.Int("decoded", stats.decoded),
		zap.Int("faults", stats.faults),
		zap.Int("skipped", stats.skipped),
		zap.Int("failed", stats.failed),
	)
	return nil
}

// decodedExchange is one replayed call. Result is the canonical wire form of
// the decoded value; Fault is set instead when the node answered with an error.
type decodedExchange struct {
	Line   int               `json:"line"`
	Time   time.Time         `json:"time"`
	Method string            `json:"method"`
	ID     string            `json:"id"`
	Result any               `json:"result"`
	Fault  *jsonrpc.RPCFault `json:"fault,omitempty"`
}

type replayStats struct {
	total, decoded, faults, skipped, failed int
}

type lineWriter interface {
	Write(value any) error
}

type replayer struct {
	engine  *format.Engine
	table   *methods.Table
	decoder *jsonrpc.Decoder
}

func newReplayer(engine *format.Engine, table *methods.Table) *replayer {
	return &replayer{
		engine:  engine,
		table:   table,
		decoder: jsonrpc.NewDecoder(engine, table),
	}
}

// run decodes every exchange in r. Exchanges whose transport failed carry no
// response and are skipped.
func (p *replayer) run(r io.Reader, out, errs lineWriter) (replayStats, error) {
	var stats replayStats
	err := storage.ReadExchanges(r, func(line int, ex *storage.Exchange, err error) error {
		stats.total++
		if err != nil {
			stats.failed++
			return errs.Write(storage.DecodeError{Line: line, Error: err.Error()})
		}
		if ex.Error != "" || len(ex.Response) == 0 {
			stats.skipped++
			return nil
		}

		rec, err := p.decode(line, ex)
		if err != nil {
			stats.failed++
			derr := storage.DecodeError{Line: line, Method: ex.Method, Error: err.Error()}
			if rec != nil {
				derr.ID = rec.ID
			}
			return errs.Write(derr)
		}
		if rec.Fault != nil {
			stats.faults++
		} else {
			stats.decoded++
		}
		return out.Write(rec)
	})
	if err != nil {
		return stats, fmt.Errorf("replay: %w", err)
	}
	return stats, nil
}

func (p *replayer) decode(line int, ex *storage.Exchange) (*decodedExchange, error) {
	var req jsonrpc.Request
	if err := json.Unmarshal(ex.Request, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	if req.Method == "" {
		req.Method = ex.Method
	}

	rec := &decodedExchange{
		Line:   line,
		Time:   ex.Time,
		Method: req.Method,
		ID:     strconv.FormatUint(req.ID, 10),
	}

	result, err := p.decoder.DecodeFor(&req, ex.Response)
	if err != nil {
		var fault *jsonrpc.RPCFault
		if errors.As(err, &fault) {
			rec.Fault = fault
			return rec, nil
		}
		return rec, err
	}

	if rec.Result, err = wireResult(p.engine, p.table, req.Method, result); err != nil {
		return rec, err
	}
	return rec, nil
}
