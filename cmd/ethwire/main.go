package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ethwire/internal/chain"
	"ethwire/internal/config"
	"ethwire/internal/format"
	"ethwire/internal/metrics"
	"ethwire/internal/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ethwire",
		Short:        "Typed Ethereum JSON-RPC client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newCallCmd(), newDecodeCmd(), newBlocksCmd(), newSubscribeCmd())
	return root
}

// addClientFlags registers the flags shared by every command that talks to a
// node.
func addClientFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "node endpoint (http(s)://, ws(s):// or IPC path)")
	flags.StringSlice("header", nil, "extra HTTP/WS header as key=value (repeatable)")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.Int("max-retries", 3, "maximum retry attempts for transport failures")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.Int("cache-size", 128, "result cache entries, 0 disables the cache")
	flags.String("poa", "off", "proof-of-authority extraData handling (off, validate, trim)")
	flags.Bool("strict-checksum", false, "reject mixed-case addresses with a bad checksum")
	flags.Bool("strict-fields", false, "reject unknown record fields")
	flags.Bool("strict-methods", false, "reject methods missing from the method table")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func loadFlags(cmd *cobra.Command) (string, *pflag.FlagSet) {
	cfgFile, _ := cmd.Flags().GetString("config")
	return cfgFile, cmd.Flags()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func newEngine(strictChecksum, strictFields bool) *format.Engine {
	var opts []format.Option
	if strictChecksum {
		opts = append(opts, format.WithStrictChecksum())
	}
	if strictFields {
		opts = append(opts, format.WithStrictFields())
	}
	return format.NewEngine(opts...)
}

// clientOptions turns shared settings into client options. A nil registerer
// leaves metrics off.
func clientOptions(cfg config.Client, logger *zap.Logger, reg prometheus.Registerer) ([]chain.Option, error) {
	poa, err := parsePoA(cfg.PoA)
	if err != nil {
		return nil, err
	}

	opts := []chain.Option{
		chain.WithLogger(logger),
		chain.WithEngine(newEngine(cfg.StrictChecksum, cfg.StrictFields)),
		chain.WithPoA(poa),
		chain.WithTransportOptions(
			transport.WithHeaders(cfg.Headers),
			transport.WithTimeout(cfg.Timeout),
			transport.WithRetries(cfg.MaxRetries, cfg.RetryBackoff),
		),
	}
	if cfg.CacheSize > 0 {
		opts = append(opts, chain.WithCache(cfg.CacheSize))
	}
	if cfg.StrictMethods {
		opts = append(opts, chain.WithStrict())
	}
	if reg != nil {
		m, err := metrics.NewWithLabels(reg, metrics.Labels{Endpoint: endpointLabel(cfg.RPCURL)})
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, chain.WithMetrics(m))
	}
	return opts, nil
}

func dialClient(ctx context.Context, cfg config.Client, logger *zap.Logger, reg prometheus.Registerer, extra ...chain.Option) (*chain.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := clientOptions(cfg, logger, reg)
	if err != nil {
		return nil, err
	}
	return chain.Dial(ctx, cfg.RPCURL, append(opts, extra...)...)
}

func parsePoA(mode string) (chain.PoAMode, error) {
	switch mode {
	case "", "off":
		return chain.PoAOff, nil
	case "validate":
		return chain.PoAValidate, nil
	case "trim":
		return chain.PoATrim, nil
	default:
		return chain.PoAOff, fmt.Errorf("unknown poa mode %q", mode)
	}
}

// endpointLabel keeps only the host so credentials in paths or query strings
// stay out of metric labels.
func endpointLabel(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "ipc"
	}
	return u.Host
}
