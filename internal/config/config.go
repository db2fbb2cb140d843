// Package config provides configuration management for lexmerge.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klauern/lexmerge/internal/backup"
	"github.com/klauern/lexmerge/internal/report"
	"github.com/klauern/lexmerge/internal/strategy"
	"github.com/klauern/lexmerge/internal/ui"
	"github.com/klauern/lexmerge/internal/util"
)

// Config represents the complete lexmerge configuration.
type Config struct {
	// Merge configures strategies and conflict handling
	Merge MergeConfig `yaml:"merge"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`

	// Batch configures directory merges
	Batch BatchConfig `yaml:"batch"`

	// Backup configures copies of overwritten files
	Backup BackupConfig `yaml:"backup"`
}

// MergeConfig holds merge settings.
type MergeConfig struct {
	// Strategies is a TOML strategies file. When empty the preset is used.
	Strategies string `yaml:"strategies,omitempty"`
	// Preset names a built-in registry (lexicon, empty)
	Preset string `yaml:"preset"`
	// ReportDefaultStrategy warns about elements without a registered strategy
	ReportDefaultStrategy bool `yaml:"report_default_strategy"`
	// FailOnConflict makes merge exit non-zero when conflicts were recorded
	FailOnConflict bool `yaml:"fail_on_conflict"`
	// WriteNotes writes a conflict notes document next to merged files
	WriteNotes bool `yaml:"write_notes"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the report format (text, json, yaml)
	Format string `yaml:"format"`
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Indent is used to pretty print merged documents; empty writes compact XML
	Indent string `yaml:"indent"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// BatchConfig holds directory merge settings.
type BatchConfig struct {
	// Workers bounds concurrent merges; 0 uses the number of CPUs
	Workers int `yaml:"workers"`
	// Progress shows a progress bar on terminals
	Progress bool `yaml:"progress"`
	// Pattern selects the files to merge by base name (e.g. *.lift)
	Pattern string `yaml:"pattern"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Enabled backs up files before they are overwritten
	Enabled bool `yaml:"enabled"`
	// Location is the backup directory path
	Location string `yaml:"location"`
	// MaxBackups is the maximum number of backups to keep per file
	MaxBackups int `yaml:"max_backups"`
	// MaxAge is how long backups are kept
	MaxAge time.Duration `yaml:"max_age"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			Preset:     "lexicon",
			WriteNotes: true,
		},
		Output: OutputConfig{
			Format: string(report.FormatText),
			Color:  string(ui.ColorAuto),
			Indent: "  ",
		},
		Batch: BatchConfig{
			Progress: true,
			Pattern:  "*.lift",
		},
		Backup: BackupConfig{
			Enabled:    true,
			Location:   util.BackupDir(),
			MaxBackups: 10,
			MaxAge:     30 * 24 * time.Hour,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.ConfigDir(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg, err := LoadFromPath(FilePath())
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.applyEnvironment()
		return cfg, nil
	}
	return cfg, err
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// YAML returns the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern LEXMERGE_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// Merge settings
	if v := os.Getenv("LEXMERGE_MERGE_STRATEGIES"); v != "" {
		c.Merge.Strategies = v
	}
	if v := os.Getenv("LEXMERGE_MERGE_PRESET"); v != "" {
		c.Merge.Preset = v
	}
	if v := os.Getenv("LEXMERGE_MERGE_REPORT_DEFAULT_STRATEGY"); v != "" {
		c.Merge.ReportDefaultStrategy = parseBool(v)
	}
	if v := os.Getenv("LEXMERGE_MERGE_FAIL_ON_CONFLICT"); v != "" {
		c.Merge.FailOnConflict = parseBool(v)
	}
	if v := os.Getenv("LEXMERGE_MERGE_WRITE_NOTES"); v != "" {
		c.Merge.WriteNotes = parseBool(v)
	}

	// Output settings
	if v := os.Getenv("LEXMERGE_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("LEXMERGE_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v, ok := os.LookupEnv("LEXMERGE_OUTPUT_INDENT"); ok {
		c.Output.Indent = v
	}
	if v := os.Getenv("LEXMERGE_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	// Batch settings
	if v := os.Getenv("LEXMERGE_BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Batch.Workers = n
		}
	}
	if v := os.Getenv("LEXMERGE_BATCH_PROGRESS"); v != "" {
		c.Batch.Progress = parseBool(v)
	}
	if v := os.Getenv("LEXMERGE_BATCH_PATTERN"); v != "" {
		c.Batch.Pattern = v
	}

	// Backup settings
	if v := os.Getenv("LEXMERGE_BACKUP_ENABLED"); v != "" {
		c.Backup.Enabled = parseBool(v)
	}
	if v := os.Getenv("LEXMERGE_BACKUP_LOCATION"); v != "" {
		c.Backup.Location = v
	}
	if v := os.Getenv("LEXMERGE_BACKUP_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Backup.MaxAge = d
		}
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Merge.Strategies == "" {
		if _, ok := strategy.Preset(c.Merge.Preset); !ok {
			errs = append(errs, fmt.Errorf("merge.preset: unknown preset %q (want one of %s)",
				c.Merge.Preset, strings.Join(strategy.PresetNames(), ", ")))
		}
	}
	if !report.Format(c.Output.Format).IsValid() {
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	if !ui.ColorMode(c.Output.Color).IsValid() {
		errs = append(errs, fmt.Errorf("output.color: unknown mode %q", c.Output.Color))
	}
	if strings.TrimLeft(c.Output.Indent, " \t") != "" {
		errs = append(errs, fmt.Errorf("output.indent: only spaces and tabs are allowed"))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch.workers: must not be negative"))
	}
	if _, err := filepath.Match(c.Batch.Pattern, ""); err != nil {
		errs = append(errs, fmt.Errorf("batch.pattern: %w", err))
	}
	if c.Backup.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("backup.max_backups: must not be negative"))
	}
	return errors.Join(errs...)
}

// Registry builds the strategy registry: the strategies file when one is set,
// the named preset otherwise.
func (c *Config) Registry() (*strategy.Registry, error) {
	if c.Merge.Strategies != "" {
		return strategy.LoadTOMLFile(util.ExpandHome(c.Merge.Strategies))
	}
	reg, ok := strategy.Preset(c.Merge.Preset)
	if !ok {
		return nil, fmt.Errorf("unknown strategy preset %q", c.Merge.Preset)
	}
	return reg, nil
}

// GetFormat returns the report format, falling back to text.
func (c *Config) GetFormat() report.Format {
	if f := report.Format(c.Output.Format); f.IsValid() {
		return f
	}
	return report.FormatText
}

// GetColorMode returns the color mode, falling back to auto.
func (c *Config) GetColorMode() ui.ColorMode {
	if m := ui.ColorMode(c.Output.Color); m.IsValid() {
		return m
	}
	return ui.ColorAuto
}

// BackupStore returns the backup store, or nil when backups are disabled.
func (c *Config) BackupStore() *backup.Store {
	if !c.Backup.Enabled {
		return nil
	}
	return backup.NewStore(util.ExpandHome(c.Backup.Location))
}

// CleanupOptions returns the backup retention settings.
func (c *Config) CleanupOptions() backup.CleanupOptions {
	opts := backup.DefaultCleanupOptions()
	opts.MaxBackups = c.Backup.MaxBackups
	opts.MaxAge = c.Backup.MaxAge
	return opts
}

// MatchBatchFile reports whether a file, given by its path relative to a
// batch root, should be merged.
func (c *Config) MatchBatchFile(rel string) bool {
	if c.Batch.Pattern == "" {
		return true
	}
	ok, err := filepath.Match(c.Batch.Pattern, filepath.Base(rel))
	return err == nil && ok
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
