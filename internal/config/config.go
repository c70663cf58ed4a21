package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file written at the data dir root.
const FileName = "tallybook.yaml"

// Config represents the top-level tallybook.yaml configuration.
type Config struct {
	DataDir     string        `yaml:"data_dir"`
	DefaultUser string        `yaml:"default_user"`
	Cache       CacheConfig   `yaml:"cache"`
	Git         GitConfig     `yaml:"git"`
	Analyze     AnalyzeConfig `yaml:"analyze"`
}

// CacheConfig tunes the transaction cache. Durations are Go duration
// strings, e.g. "5m".
type CacheConfig struct {
	MaxEntries        int    `yaml:"max_entries"`
	ExpireAfterWrite  string `yaml:"expire_after_write"`
	RefreshAfterWrite string `yaml:"refresh_after_write,omitempty"`
}

// GitConfig controls auto-committing the data dir after mutations.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// AnalyzeConfig selects the text-completion model for the analyze command.
type AnalyzeConfig struct {
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// Load reads a tallybook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data dir.
func Default(dataDir, user string) *Config {
	return &Config{
		DataDir:     dataDir,
		DefaultUser: user,
		Cache: CacheConfig{
			MaxEntries:        64,
			ExpireAfterWrite:  "5m",
			RefreshAfterWrite: "1m",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tallybook",
			AuthorEmail: "tallybook@localhost",
		},
		Analyze: AnalyzeConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "60s",
		},
	}
}

// RecordsPath returns the record file for a user under the data dir.
func (c *Config) RecordsPath(user string) string {
	return filepath.Join(c.DataDir, user, "records.csv")
}

// ExpireAfterWriteDuration parses the cache expiry duration; empty means
// five minutes.
func (c CacheConfig) ExpireAfterWriteDuration() (time.Duration, error) {
	if c.ExpireAfterWrite == "" {
		return 5 * time.Minute, nil
	}
	return parseDuration(c.ExpireAfterWrite, "cache.expire_after_write")
}

// RefreshAfterWriteDuration parses the optional refresh duration; empty
// means disabled.
func (c CacheConfig) RefreshAfterWriteDuration() (time.Duration, error) {
	if c.RefreshAfterWrite == "" {
		return 0, nil
	}
	return parseDuration(c.RefreshAfterWrite, "cache.refresh_after_write")
}

// TimeoutDuration parses the analyze call timeout; empty means one minute.
func (c AnalyzeConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return time.Minute, nil
	}
	return parseDuration(c.Timeout, "analyze.timeout")
}

func parseDuration(s, field string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
