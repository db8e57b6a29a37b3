package config

import (
	"github.com/spf13/pflag"
)

// SubscribeConfig holds configuration for the subscribe command.
type SubscribeConfig struct {
	Client
	Type        string
	Addresses   []string
	Topics      []string
	Out         string
	MetricsAddr string
	Limit       int
}

// LoadSubscribe merges config file, environment variables, and flags into SubscribeConfig.
func LoadSubscribe(cfgFile string, flags *pflag.FlagSet) (SubscribeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"type": "newHeads",
	})
	if err != nil {
		return SubscribeConfig{}, err
	}

	cfg := SubscribeConfig{
		Client:      loadClient(v),
		Type:        v.GetString("type"),
		Addresses:   stringList(v, "address"),
		Topics:      stringList(v, "topic"),
		Out:         v.GetString("out"),
		MetricsAddr: v.GetString("metrics-addr"),
		Limit:       v.GetInt("limit"),
	}
	return cfg, nil
}
