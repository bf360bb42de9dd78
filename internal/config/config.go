// Package config loads and validates scoring-engine configuration: logging
// settings, resource limits enforced on a run, and the declarative rule
// pipeline the engine applies.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LoggingConfig configures the ambient category logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// RuleLimits bounds a single scoring run, mirroring the teacher's
// CoreLimits/EnforceCoreLimits idiom applied to this domain's resources.
type RuleLimits struct {
	MaxRules         int `yaml:"max_rules"`
	MaxNotes         int `yaml:"max_notes"`
	EnforceRuleLimits bool `yaml:"enforce_rule_limits"`
}

// Config holds all notescore configuration.
type Config struct {
	Logging    LoggingConfig `yaml:"logging"`
	RuleLimits RuleLimits    `yaml:"rule_limits"`
	Pipeline   PipelineSpec  `yaml:"pipeline"`
}

// DefaultConfig returns the default configuration: info/console logging, a
// generous but non-zero set of run limits, and an empty pipeline (a
// pipeline file or --pipeline flag is expected to supply the rule list).
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		RuleLimits: RuleLimits{
			MaxRules:          64,
			MaxNotes:          5_000_000,
			EnforceRuleLimits: true,
		},
	}
}

// Load resolves configuration from, in increasing precedence: defaults, the
// YAML file at path (if present), and NOTESCORE_-prefixed environment
// variables, using viper for the layered merge the way untoldecay/BeadsLog
// layers project/user/env config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NOTESCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
			if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
				return nil, fmt.Errorf("config: load %s into resolver: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg, v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WatchPipeline re-reads the YAML config file at path and calls onChange
// with the freshly loaded Config whenever the file changes on disk, using
// viper.WatchConfig (backed by fsnotify) the way untoldecay/BeadsLog watches
// its own config file for hot-reload. onChange runs on viper's internal
// watcher goroutine. A no-op if path is empty; the caller decides whether
// long-running operation (e.g. a future "serve" mode) needs this, since the
// one-shot `score`/`validate` CLI commands do not.
func WatchPipeline(path string, onChange func(*Config, error)) error {
	if path == "" {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: watch %s: initial read: %w", path, err)
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		onChange(Load(path))
	})
	v.WatchConfig()
	return nil
}

func applyEnvOverrides(cfg *Config, v *viper.Viper) {
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.format") {
		cfg.Logging.Format = v.GetString("logging.format")
	}
	if v.IsSet("logging.file") {
		cfg.Logging.File = v.GetString("logging.file")
	}
	if v.IsSet("rule_limits.max_rules") {
		cfg.RuleLimits.MaxRules = v.GetInt("rule_limits.max_rules")
	}
	if v.IsSet("rule_limits.max_notes") {
		cfg.RuleLimits.MaxNotes = v.GetInt("rule_limits.max_notes")
	}
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

var validLevels = []string{"debug", "info", "warn", "warning", "error"}
var validFormats = []string{"console", "json"}

// Validate checks field-level invariants that are cheap to assert up front,
// independent of the pipeline's own dependency validation (see engine.Validate).
func (c *Config) Validate() error {
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("config: invalid logging.level %q (valid: %v)", c.Logging.Level, validLevels)
	}
	if !contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("config: invalid logging.format %q (valid: %v)", c.Logging.Format, validFormats)
	}
	if c.RuleLimits.MaxRules <= 0 {
		return fmt.Errorf("config: rule_limits.max_rules must be positive, got %d", c.RuleLimits.MaxRules)
	}
	if c.RuleLimits.MaxNotes <= 0 {
		return fmt.Errorf("config: rule_limits.max_notes must be positive, got %d", c.RuleLimits.MaxNotes)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
