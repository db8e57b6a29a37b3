package config

import (
	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the decode command, which replays a
// capture file offline.
type DecodeConfig struct {
	In             string
	Out            string
	Errors         string
	StrictChecksum bool
	StrictFields   bool
	LogLevel       string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"out":    "./data/decoded.jsonl",
		"errors": "./data/decode_errors.jsonl",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		In:             v.GetString("in"),
		Out:            v.GetString("out"),
		Errors:         v.GetString("errors"),
		StrictChecksum: v.GetBool("strict-checksum"),
		StrictFields:   v.GetBool("strict-fields"),
		LogLevel:       v.GetString("log-level"),
	}
	return cfg, nil
}
