package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. ETHWIRE_RPC.
const EnvPrefix = "ETHWIRE"

// Client holds the settings every command that talks to a node shares.
type Client struct {
	RPCURL         string
	Headers        map[string]string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	CacheSize      int
	PoA            string
	StrictChecksum bool
	StrictFields   bool
	StrictMethods  bool
	LogLevel       string
}

// Config holds configuration for the call command.
type Config struct {
	Client
	Output  string
	Capture string
	FillTx  bool
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"output":  "json",
		"fill-tx": false,
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Client:  loadClient(v),
		Output:  v.GetString("output"),
		Capture: v.GetString("capture"),
		FillTx:  v.GetBool("fill-tx"),
	}
	return cfg, nil
}

var clientDefaults = map[string]any{
	"timeout":       30 * time.Second,
	"max-retries":   3,
	"retry-backoff": 500 * time.Millisecond,
	"cache-size":    128,
	"poa":           "off",
	"log-level":     "info",
}

// newViper layers flags over environment over the config file over defaults.
// Without cfgFile, ./config.{yaml,toml,json} is read when present.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for k, val := range clientDefaults {
		v.SetDefault(k, val)
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadClient(v *viper.Viper) Client {
	return Client{
		RPCURL:         v.GetString("rpc"),
		Headers:        headerMap(v, "header"),
		Timeout:        v.GetDuration("timeout"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		CacheSize:      v.GetInt("cache-size"),
		PoA:            strings.ToLower(v.GetString("poa")),
		StrictChecksum: v.GetBool("strict-checksum"),
		StrictFields:   v.GetBool("strict-fields"),
		StrictMethods:  v.GetBool("strict-methods"),
		LogLevel:       v.GetString("log-level"),
	}
}

// Validate checks the settings needed to reach a node.
func (c Client) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	switch c.PoA {
	case "off", "validate", "trim":
	default:
		return fmt.Errorf("poa must be off, validate or trim, got %q", c.PoA)
	}
	return nil
}

// stringList reads a list setting given either as a list or as one
// comma-separated string (the environment form).
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, fmt.Sprint(item))
		}
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// headerMap reads key=value pairs. A config file may also give a plain mapping.
// Pairs with an empty key or value are dropped.
func headerMap(v *viper.Viper, key string) map[string]string {
	headers := map[string]string{}
	put := func(k, val string) {
		k, val = strings.TrimSpace(k), strings.TrimSpace(val)
		if k != "" && val != "" {
			headers[k] = val
		}
	}

	switch val := v.Get(key).(type) {
	case map[string]any:
		for k, x := range val {
			put(k, fmt.Sprint(x))
		}
	case map[string]string:
		for k, x := range val {
			put(k, x)
		}
	default:
		for _, pair := range stringList(v, key) {
			if k, x, ok := strings.Cut(pair, "="); ok {
				put(k, x)
			}
		}
	}
	return headers
}
