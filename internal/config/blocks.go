package config

import (
	"github.com/spf13/pflag"
)

// BlocksConfig holds configuration for the blocks command.
type BlocksConfig struct {
	Client
	FromBlock   uint64
	ToBlock     uint64
	BatchSize   uint64
	Concurrency int
	Full        bool
	Receipts    bool
	Out         string

	Checkpoint        string
	CheckpointEnabled bool
}

// LoadBlocks merges config file, environment variables, and flags into BlocksConfig.
func LoadBlocks(cfgFile string, flags *pflag.FlagSet) (BlocksConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"batch-size":         uint64(100),
		"concurrency":        4,
		"out":                "./data/blocks.jsonl",
		"checkpoint":         "./data/blocks_checkpoint.json",
		"checkpoint-enabled": true,
	})
	if err != nil {
		return BlocksConfig{}, err
	}

	cfg := BlocksConfig{
		Client:      loadClient(v),
		FromBlock:   v.GetUint64("from"),
		ToBlock:     v.GetUint64("to"),
		BatchSize:   v.GetUint64("batch-size"),
		Concurrency: v.GetInt("concurrency"),
		Full:        v.GetBool("full"),
		Receipts:    v.GetBool("receipts"),
		Out:         v.GetString("out"),

		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
	}
	return cfg, nil
}
