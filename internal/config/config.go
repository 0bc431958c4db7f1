// Package config provides configuration management for the screening application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	apperrors "orion-screener/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Provider      ProviderConfig     `mapstructure:"provider"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Screening     ScreeningConfig    `mapstructure:"screening"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Storage       StorageConfig      `mapstructure:"storage"`
}

// ProviderConfig holds market data provider configuration.
type ProviderConfig struct {
	Name      string `mapstructure:"name"`       // data provider name
	APIKey    string `mapstructure:"api_key"`    // loaded here, consumed by the provider client
	RateLimit int    `mapstructure:"rate_limit"` // requests per minute
}

// CacheConfig holds caching configuration. TTLs are in seconds.
type CacheConfig struct {
	QuoteTTL       int `mapstructure:"quote_ttl"`
	OptionChainTTL int `mapstructure:"option_chain_ttl"`
	HistoricalTTL  int `mapstructure:"historical_ttl"`
	FastCapacity   int `mapstructure:"fast_capacity"`
}

// QuoteTTLDuration returns the quote TTL as a duration.
func (c CacheConfig) QuoteTTLDuration() time.Duration {
	return time.Duration(c.QuoteTTL) * time.Second
}

// OptionChainTTLDuration returns the option chain TTL as a duration.
func (c CacheConfig) OptionChainTTLDuration() time.Duration {
	return time.Duration(c.OptionChainTTL) * time.Second
}

// HistoricalTTLDuration returns the historical data TTL as a duration.
func (c CacheConfig) HistoricalTTLDuration() time.Duration {
	return time.Duration(c.HistoricalTTL) * time.Second
}

// ScreeningConfig holds screening behavior configuration.
type ScreeningConfig struct {
	Universe      []string `mapstructure:"universe"`
	CustomSymbols []string `mapstructure:"custom_symbols"`
	MaxConcurrent int      `mapstructure:"max_concurrent"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Email   EmailConfig   `mapstructure:"email"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// EmailConfig holds email notification configuration.
type EmailConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// StorageConfig holds result storage configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/orion"
	}
	return filepath.Join(home, ".config", "orion")
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "data", "screenings.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is not an error: defaults plus environment overrides apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", "alpha_vantage")
	v.SetDefault("provider.rate_limit", 5)

	v.SetDefault("cache.quote_ttl", 300)
	v.SetDefault("cache.option_chain_ttl", 900)
	v.SetDefault("cache.historical_ttl", 86400)
	v.SetDefault("cache.fast_capacity", 1024)

	v.SetDefault("screening.universe", []string{"SPY_500"})
	v.SetDefault("screening.custom_symbols", []string{})
	v.SetDefault("screening.max_concurrent", 5)

	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.email.smtp_port", 587)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)

	v.SetDefault("storage.db_path", DefaultDBPath())
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ORION_PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("ORION_PROVIDER_NAME"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("ORION_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Screening.MaxConcurrent = n
		}
	}
	if v := os.Getenv("ORION_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("ORION_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ORION_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Webhook.URL = v
		cfg.Notifications.Webhook.Enabled = true
		cfg.Notifications.Enabled = true
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Screening.MaxConcurrent <= 0 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "screening.max_concurrent must be positive, got %d", c.Screening.MaxConcurrent)
	}
	if c.Cache.QuoteTTL <= 0 || c.Cache.OptionChainTTL <= 0 || c.Cache.HistoricalTTL <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "cache TTLs must be positive")
	}
	if c.Cache.FastCapacity <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "cache.fast_capacity must be positive")
	}
	if c.Notifications.Email.Enabled && c.Notifications.Email.SMTPHost == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "email notifications enabled without smtp_host")
	}
	if c.Notifications.Webhook.Enabled && c.Notifications.Webhook.URL == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "webhook notifications enabled without url")
	}
	return nil
}

// Symbols returns the effective list of symbols to screen: the custom
// symbols when present, otherwise the configured universe.
func (c *Config) Symbols() []string {
	if len(c.Screening.CustomSymbols) > 0 {
		return c.Screening.CustomSymbols
	}
	return c.Screening.Universe
}
