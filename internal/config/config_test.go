package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into dir so no stray ./config.yaml is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func callFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("call", pflag.ContinueOnError)
	fs.String("rpc", "", "")
	fs.StringSlice("header", nil, "")
	fs.String("output", "json", "")
	fs.String("poa", "off", "")
	fs.Bool("fill-tx", false, "")
	fs.Int("max-retries", 3, "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, "off", cfg.PoA)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Headers)
	assert.EqualError(t, cfg.Validate(), "rpc url is required")
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ethwire.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
rpc: http://file:8545
poa: Trim
max-retries: 7
header:
  X-Api-Key: from-file
`), 0o644))

	cfg, err := Load(file, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://file:8545", cfg.RPCURL)
	assert.Equal(t, "trim", cfg.PoA)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, map[string]string{"x-api-key": "from-file"}, cfg.Headers)
	require.NoError(t, cfg.Validate())

	t.Setenv("ETHWIRE_RPC", "http://env:8545")
	t.Setenv("ETHWIRE_MAX_RETRIES", "1")
	cfg, err = Load(file, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env:8545", cfg.RPCURL)
	assert.Equal(t, 1, cfg.MaxRetries)

	fs := callFlags()
	require.NoError(t, fs.Parse([]string{"--rpc", "http://flag:8545", "--header", "Authorization=Bearer x", "--fill-tx"}))
	cfg, err = Load(file, fs)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:8545", cfg.RPCURL)
	assert.Equal(t, map[string]string{"Authorization": "Bearer x"}, cfg.Headers)
	assert.True(t, cfg.FillTx)
	assert.Equal(t, 1, cfg.MaxRetries, "unset flags do not override env")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "read config")
}

func TestValidatePoA(t *testing.T) {
	c := Client{RPCURL: "ws://node", PoA: "sometimes"}
	assert.ErrorContains(t, c.Validate(), "poa must be")
}

func TestLoadSubscribe(t *testing.T) {
	chdir(t, t.TempDir())

	fs := pflag.NewFlagSet("subscribe", pflag.ContinueOnError)
	fs.String("type", "newHeads", "")
	fs.StringSlice("address", nil, "")
	fs.StringSlice("topic", nil, "")
	require.NoError(t, fs.Parse([]string{"--type", "logs", "--address", " 0x1111111111111111111111111111111111111111 ,,"}))

	t.Setenv("ETHWIRE_TOPIC", "0xaa,0xbb")
	cfg, err := LoadSubscribe("", fs)
	require.NoError(t, err)
	assert.Equal(t, "logs", cfg.Type)
	assert.Equal(t, []string{"0x1111111111111111111111111111111111111111"}, cfg.Addresses)
	assert.Equal(t, []string{"0xaa", "0xbb"}, cfg.Topics)
}

func TestLoadBlocksAndDecode(t *testing.T) {
	chdir(t, t.TempDir())

	fs := pflag.NewFlagSet("blocks", pflag.ContinueOnError)
	fs.Uint64("from", 0, "")
	fs.Uint64("to", 0, "")
	require.NoError(t, fs.Parse([]string{"--from", "10", "--to", "20"}))

	blocks, err := LoadBlocks("", fs)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), blocks.FromBlock)
	assert.Equal(t, uint64(20), blocks.ToBlock)
	assert.Equal(t, uint64(100), blocks.BatchSize)
	assert.Equal(t, 4, blocks.Concurrency)
	assert.True(t, blocks.CheckpointEnabled)
	assert.Equal(t, "./data/blocks_checkpoint.json", blocks.Checkpoint)

	dec, err := LoadDecode("", nil)
	require.NoError(t, err)
	assert.Equal(t, "./data/decoded.jsonl", dec.Out)
	assert.Equal(t, "./data/decode_errors.jsonl", dec.Errors)
}
