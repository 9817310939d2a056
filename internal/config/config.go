/*
Package config manages the TOML configuration of the fmindex drivers.

	[index]
	algorithm = "induced"
	step = 64
	sentinel = "\u0000"
	case_sensitive = true
	normalize = true
	occurrences = "sampled"
	cross_check = false
	lcp = true

	[search]
	max_pattern = 256
	max_results = 1000
	cache_size = 512

	[bench]
	runs = 3
	max_chars = 0
	parallel = 1
	queries = ["the", "and", "of the"]

Missing keys keep their defaults. A file that fails to decode as a whole is
read again section by section so that the valid keys still apply.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/viniciusth/fmindex"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the entire config structure
type Config struct {
	Index  IndexConfig  `toml:"index"`
	Search SearchConfig `toml:"search"`
	Bench  BenchConfig  `toml:"bench"`
}

// IndexConfig holds the construction options of an index.
type IndexConfig struct {
	Algorithm     string `toml:"algorithm"`
	Step          int    `toml:"step"`
	Sentinel      string `toml:"sentinel"`
	CaseSensitive bool   `toml:"case_sensitive"`
	Normalize     bool   `toml:"normalize"`
	Occurrences   string `toml:"occurrences"`
	CrossCheck    bool   `toml:"cross_check"`
	LCP           bool   `toml:"lcp"`
}

// SearchConfig holds query limits for the CLI and the IPC server.
type SearchConfig struct {
	MaxPattern int `toml:"max_pattern"`
	MaxResults int `toml:"max_results"`
	CacheSize  int `toml:"cache_size"`
}

// BenchConfig holds benchmark driver options.
type BenchConfig struct {
	Runs     int      `toml:"runs"`
	MaxChars int      `toml:"max_chars"`
	Parallel int      `toml:"parallel"`
	Queries  []string `toml:"queries"`
}

const (
	OccurrencesSampled = "sampled"
	OccurrencesWavelet = "wavelet"
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Algorithm:     fmindex.Induced.String(),
			Step:          fmindex.DefaultStep,
			Sentinel:      string(fmindex.DefaultSentinel),
			CaseSensitive: true,
			Normalize:     true,
			Occurrences:   OccurrencesSampled,
			CrossCheck:    false,
			LCP:           true,
		},
		Search: SearchConfig{
			MaxPattern: 256,
			MaxResults: 1000,
			CacheSize:  512,
		},
		Bench: BenchConfig{
			Runs:     3,
			MaxChars: 0,
			Parallel: 1,
			Queries:  []string{"the", "and", "of the", "which", "upon"},
		},
	}
}

// SentinelRune decodes the configured sentinel, which must be exactly one rune.
func (c IndexConfig) SentinelRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(c.Sentinel)
	if r == utf8.RuneError || size != len(c.Sentinel) {
		return 0, fmt.Errorf("%w: sentinel %q must be a single rune", ErrInvalidConfig, c.Sentinel)
	}
	return r, nil
}

// Validate reports the first option that cannot be used to build an index.
func (c *Config) Validate() error {
	if _, err := fmindex.ParseAlgorithm(c.Index.Algorithm); err != nil {
		return fmt.Errorf("%w: index.algorithm: %v", ErrInvalidConfig, err)
	}
	if c.Index.Step < 1 {
		return fmt.Errorf("%w: index.step must be positive, got %d", ErrInvalidConfig, c.Index.Step)
	}
	if _, err := c.Index.SentinelRune(); err != nil {
		return err
	}
	if c.Index.Occurrences != OccurrencesSampled && c.Index.Occurrences != OccurrencesWavelet {
		return fmt.Errorf("%w: index.occurrences must be %q or %q, got %q", ErrInvalidConfig, OccurrencesSampled, OccurrencesWavelet, c.Index.Occurrences)
	}
	if c.Search.MaxPattern < 1 {
		return fmt.Errorf("%w: search.max_pattern must be positive, got %d", ErrInvalidConfig, c.Search.MaxPattern)
	}
	if c.Search.MaxResults < 0 || c.Search.CacheSize < 0 {
		return fmt.Errorf("%w: search limits must not be negative", ErrInvalidConfig)
	}
	if c.Bench.Runs < 1 {
		return fmt.Errorf("%w: bench.runs must be positive, got %d", ErrInvalidConfig, c.Bench.Runs)
	}
	if c.Bench.MaxChars < 0 || c.Bench.Parallel < 0 {
		return fmt.Errorf("%w: bench limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Configure applies the index options to b. The configuration is expected to
// be valid; invalid values are left for Build to report.
func (c IndexConfig) Configure(b *fmindex.Builder) *fmindex.Builder {
	if a, err := fmindex.ParseAlgorithm(c.Algorithm); err == nil {
		b = b.UseAlgorithm(a)
	}
	if r, err := c.SentinelRune(); err == nil {
		b = b.WithSentinel(r)
	}
	b = b.WithStep(c.Step)
	if !c.CaseSensitive {
		b = b.CaseInsensitive()
	}
	if !c.Normalize {
		b = b.SkipNormalization()
	}
	if c.Occurrences == OccurrencesWavelet {
		b = b.UseWaveletTree()
	}
	if c.CrossCheck {
		b = b.CrossCheck()
	}
	if !c.LCP {
		b = b.SkipLCP()
	}
	return b
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		log.Warnf("Failed to create config directory for %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. An unreadable file is an error; a file
// with decoding errors falls back to partial recovery.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := DefaultConfig()
	if _, err := toml.Decode(string(data), config); err != nil {
		log.Warnf("TOML parsing error in config file %s: %v. Attempting partial recovery...", configPath, err)
		return tryPartialParse(configPath, string(data)), nil
	}
	return config, nil
}

// tryPartialParse keeps every well-typed key of a file that does not decode
// into Config as a whole.
func tryPartialParse(configPath, data string) *Config {
	config := DefaultConfig()

	raw := make(map[string]any)
	if _, err := toml.Decode(data, &raw); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if section, ok := raw["index"].(map[string]any); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := raw["search"].(map[string]any); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := raw["bench"].(map[string]any); ok {
		extractBenchConfig(section, &config.Bench)
	}
	return config
}

func extractInt(data map[string]any, key string) (int, bool) {
	if val, ok := data[key].(int64); ok {
		return int(val), true
	}
	return 0, false
}

func extractBool(data map[string]any, key string) (bool, bool) {
	val, ok := data[key].(bool)
	return val, ok
}

func extractString(data map[string]any, key string) (string, bool) {
	val, ok := data[key].(string)
	return val, ok
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := extractString(data, "algorithm"); ok {
		index.Algorithm = val
	}
	if val, ok := extractInt(data, "step"); ok {
		index.Step = val
	}
	if val, ok := extractString(data, "sentinel"); ok {
		index.Sentinel = val
	}
	if val, ok := extractBool(data, "case_sensitive"); ok {
		index.CaseSensitive = val
	}
	if val, ok := extractBool(data, "normalize"); ok {
		index.Normalize = val
	}
	if val, ok := extractString(data, "occurrences"); ok {
		index.Occurrences = val
	}
	if val, ok := extractBool(data, "cross_check"); ok {
		index.CrossCheck = val
	}
	if val, ok := extractBool(data, "lcp"); ok {
		index.LCP = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := extractInt(data, "max_pattern"); ok {
		search.MaxPattern = val
	}
	if val, ok := extractInt(data, "max_results"); ok {
		search.MaxResults = val
	}
	if val, ok := extractInt(data, "cache_size"); ok {
		search.CacheSize = val
	}
}

func extractBenchConfig(data map[string]any, bench *BenchConfig) {
	if val, ok := extractInt(data, "runs"); ok {
		bench.Runs = val
	}
	if val, ok := extractInt(data, "max_chars"); ok {
		bench.MaxChars = val
	}
	if val, ok := extractInt(data, "parallel"); ok {
		bench.Parallel = val
	}
	if list, ok := data["queries"].([]any); ok {
		queries := make([]string, 0, len(list))
		for _, item := range list {
			if q, ok := item.(string); ok {
				queries = append(queries, q)
			}
		}
		bench.Queries = queries
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(config)
}
