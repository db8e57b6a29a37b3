package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ethwire/internal/chain"
	"ethwire/internal/config"
	"ethwire/internal/format"
	"ethwire/internal/methods"
	"ethwire/internal/output"
	"ethwire/internal/storage"
)

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call METHOD [PARAM...]",
		Short: "Call a JSON-RPC method and print the normalized result",
		Long: `Call sends one request and prints the decoded result re-encoded in canonical
wire form. Each PARAM is read as JSON when it parses, otherwise as a plain
string, so both 'latest' and '{"to":"0x..."}' work.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCall,
	}

	addClientFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "json", "output format (json, yaml, table)")
	cmd.Flags().String("capture", "", "append request/response exchanges to this JSONL file")
	cmd.Flags().Bool("fill-tx", false, "fill nonce, gas and fees of transaction params before sending")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(loadFlags(cmd))
	if err != nil {
		return err
	}
	outFormat, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	params := parseParams(args[1:])

	ctx, stop := signalContext()
	defer stop()

	var extra []chain.Option
	if cfg.Capture != "" {
		extra = append(extra, chain.WithCapture(storage.NewJsonlStorage(cfg.Capture)))
	}
	if cfg.FillTx {
		extra = append(extra, chain.WithTxFilling())
	}

	client, err := dialClient(ctx, cfg.Client, logger, nil, extra...)
	if err != nil {
		return err
	}
	defer client.Close()

	method := args[0]
	logger.Debug("call", zap.String("method", method), zap.Int("params", len(params)))

	result, err := client.Call(ctx, method, params...)
	if err != nil {
		output.Error(cmd.ErrOrStderr(), err)
		return err
	}

	wire, err := wireResult(client.Engine(), client.Methods(), method, result)
	if err != nil {
		return err
	}
	return output.Render(cmd.OutOrStdout(), outFormat, wire)
}

// parseParams reads each argument as JSON, falling back to a bare string.
// Numbers stay json.Number so large quantities keep their precision.
func parseParams(args []string) []any {
	params := make([]any, 0, len(args))
	for _, arg := range args {
		dec := json.NewDecoder(bytes.NewReader([]byte(arg)))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil || dec.More() {
			params = append(params, arg)
			continue
		}
		params = append(params, v)
	}
	return params
}

// wireResult re-encodes a decoded result with the method's result codec and
// returns it as a generic JSON value.
func wireResult(engine *format.Engine, table *methods.Table, method string, result any) (any, error) {
	v := result
	if m, ok := table.Lookup(method); ok && result != nil {
		encoded, err := engine.Encode(m.Result, result)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", method, err)
		}
		v = encoded
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s result: %w", method, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return out, nil
}
