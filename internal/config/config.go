// Package config provides configuration management for the report importer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "trade-report/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Parser  ParserConfig  `mapstructure:"parser"`
	Input   InputConfig   `mapstructure:"input"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Batch   BatchConfig   `mapstructure:"batch"`
}

// ParserConfig holds report parsing configuration.
type ParserConfig struct {
	ExcerptLength   int    `mapstructure:"excerpt_length"`
	ClusterRecovery bool   `mapstructure:"cluster_recovery"`
	SourceTag       string `mapstructure:"source_tag"`
	MaxPages        int    `mapstructure:"max_pages"` // 0 reads every page
}

// InputConfig holds upload limits.
type InputConfig struct {
	MaxFileMB int `mapstructure:"max_file_mb"`
}

// StoreConfig holds trade store configuration.
type StoreConfig struct {
	Path    string `mapstructure:"path"`
	OwnerID string `mapstructure:"owner_id"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// OutputConfig holds CLI output configuration.
type OutputConfig struct {
	Format       string `mapstructure:"format"` // text, json, yaml
	ColorEnabled bool   `mapstructure:"color_enabled"`
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// BatchConfig holds batch import configuration.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-report"
	}
	return filepath.Join(home, ".config", "trade-report")
}

// Default returns the configuration used when no file overrides a value.
func Default(configDir string) *Config {
	return &Config{
		Parser: ParserConfig{
			ExcerptLength:   700,
			ClusterRecovery: true,
			SourceTag:       "import",
		},
		Input: InputConfig{MaxFileMB: 25},
		Store: StoreConfig{
			Path:    filepath.Join(configDir, "trades.db"),
			OwnerID: "local",
		},
		Log: LogConfig{
			Level:      "info",
			Console:    true,
			File:       false,
			FilePath:   filepath.Join(configDir, "logs", "trade-report.log"),
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
		Output:  OutputConfig{Format: "text", ColorEnabled: true},
		Tracing: TracingConfig{Enabled: false},
		Batch:   BatchConfig{Workers: 4},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	if err := loadDotEnv(configDir); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrConfigInvalid, "reading %v", err)
	}

	cfg := Default(configDir)
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ConfigPath returns the path of the main config file.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// loadDotEnv reads .env files from the config directory and the working
// directory. Variables already set in the environment win. A missing file is
// not an error.
func loadDotEnv(configDir string) error {
	for _, path := range []string{filepath.Join(configDir, ".env"), ".env"} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func loadConfigFile(configDir, name string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return v.Unmarshal(cfg)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("parser.excerpt_length", cfg.Parser.ExcerptLength)
	v.SetDefault("parser.cluster_recovery", cfg.Parser.ClusterRecovery)
	v.SetDefault("parser.source_tag", cfg.Parser.SourceTag)
	v.SetDefault("parser.max_pages", cfg.Parser.MaxPages)
	v.SetDefault("input.max_file_mb", cfg.Input.MaxFileMB)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("store.owner_id", cfg.Store.OwnerID)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.console", cfg.Log.Console)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.file_path", cfg.Log.FilePath)
	v.SetDefault("log.max_size", cfg.Log.MaxSize)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age", cfg.Log.MaxAge)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.color_enabled", cfg.Output.ColorEnabled)
	v.SetDefault("tracing.enabled", cfg.Tracing.Enabled)
	v.SetDefault("batch.workers", cfg.Batch.Workers)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADE_REPORT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TRADE_REPORT_OWNER_ID"); v != "" {
		cfg.Store.OwnerID = v
	}
	if v := os.Getenv("TRADE_REPORT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TRADE_REPORT_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("TRADE_REPORT_SOURCE_TAG"); v != "" {
		cfg.Parser.SourceTag = v
	}
	if v := os.Getenv("TRADE_REPORT_TRACING"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.Enabled = enabled
		}
	}
	if v := os.Getenv("NO_COLOR"); v != "" {
		cfg.Output.ColorEnabled = false
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "output.format %q (must be text, json or yaml)", c.Output.Format)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "log.level %q", c.Log.Level)
	}

	if c.Parser.ExcerptLength < 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "parser.excerpt_length must be positive")
	}
	if c.Parser.MaxPages < 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "parser.max_pages must be non-negative")
	}
	if c.Parser.SourceTag == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "parser.source_tag must not be empty")
	}
	if c.Input.MaxFileMB < 1 || c.Input.MaxFileMB > 512 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "input.max_file_mb must be between 1 and 512")
	}
	if c.Store.Path == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "store.path must not be empty")
	}
	if c.Batch.Workers < 1 || c.Batch.Workers > 64 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "batch.workers must be between 1 and 64")
	}

	return nil
}

// MaxFileBytes returns the upload limit in bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.Input.MaxFileMB) << 20
}
