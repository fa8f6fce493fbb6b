package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// runConfig carries all settings for one deduplication run. Values come
// from flags, environment variables (METHOD, CHUNK_SIZE, ...), and an
// optional YAML config file, in that precedence order.
type runConfig struct {
	Method    string `mapstructure:"method"`
	Input     string `mapstructure:"input"`
	Output    string `mapstructure:"output"`
	ChunkSize int    `mapstructure:"chunk_size"`
	MaxChunks int64  `mapstructure:"max_chunks"`

	Compression string `mapstructure:"compression"`
	Prefetch    int    `mapstructure:"prefetch"`

	BloomCapacity  int     `mapstructure:"bloom_capacity"`
	BloomErrorRate float64 `mapstructure:"bloom_error_rate"`

	MinHashNumHashes     int     `mapstructure:"minhash_num_hashes"`
	MinHashThreshold     float64 `mapstructure:"minhash_threshold"`
	MinHashBands         int     `mapstructure:"minhash_bands"`
	MinHashSeed          int64   `mapstructure:"minhash_seed"`
	MinHashDebugInterval int     `mapstructure:"minhash_debug_interval"`
	ShingleSize          int     `mapstructure:"shingle_size"`

	Report        string `mapstructure:"report"`
	BloomStateOut string `mapstructure:"bloom_state_out"`
	Verbose       bool   `mapstructure:"verbose"`
	NoProgress    bool   `mapstructure:"no_progress"`
}

// loadConfig resolves the run configuration from flags, environment, and
// an optional config file.
func loadConfig(flags *pflag.FlagSet, configFile string) (runConfig, error) {
	v := viper.New()

	// Every key carries a default so environment-only values are always
	// visible to Unmarshal.
	v.SetDefault("method", "exact")
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("max_chunks", 0)
	v.SetDefault("compression", "")
	v.SetDefault("prefetch", 1)
	v.SetDefault("bloom_capacity", 1_000_000)
	v.SetDefault("bloom_error_rate", 0.001)
	v.SetDefault("minhash_num_hashes", 128)
	v.SetDefault("minhash_threshold", 0.8)
	v.SetDefault("minhash_bands", 0)
	v.SetDefault("minhash_seed", 1)
	v.SetDefault("minhash_debug_interval", 1000)
	v.SetDefault("shingle_size", 3)
	v.SetDefault("report", "")
	v.SetDefault("bloom_state_out", "")
	v.SetDefault("verbose", false)
	v.SetDefault("no_progress", false)

	// Flag names use dashes; config keys and env vars use underscores,
	// so --chunk-size, CHUNK_SIZE, and "chunk_size:" all hit one key.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return runConfig{}, bindErr
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return runConfig{}, err
		}
	}

	var cfg runConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return runConfig{}, err
	}

	return cfg, nil
}
