package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jask/opsconsole/internal/directory"
)

// Config holds application configuration.
type Config struct {
	Seed         SeedConfig         `mapstructure:"seed"`
	Payout       PayoutConfig       `mapstructure:"payout"`
	Verification VerificationConfig `mapstructure:"verification"`
	UI           UIConfig           `mapstructure:"ui"`
	Links        LinksConfig        `mapstructure:"links"`
	Wallet       WalletConfig       `mapstructure:"wallet"`
	Log          LogConfig          `mapstructure:"log"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// SeedConfig points at an alternative seed file. Empty uses the built-in set.
type SeedConfig struct {
	Path string `mapstructure:"path"`
}

// PayoutConfig holds the partner payout rates.
type PayoutConfig struct {
	Base         float64 `mapstructure:"base"`
	PerKm        float64 `mapstructure:"per_km"`
	FreeRadiusKm float64 `mapstructure:"free_radius_km"`
}

// VerificationConfig holds the delivery code window.
type VerificationConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol   string  `mapstructure:"currency_symbol"`
	Username         string  `mapstructure:"username"`
	SampleDistanceKm float64 `mapstructure:"sample_distance_km"`
	// ListingFilter is the approval filter the listings pane opens with.
	ListingFilter    string  `mapstructure:"listing_filter"`
}

// LinksConfig holds the outbound link targets.
type LinksConfig struct {
	MapBaseURL       string  `mapstructure:"map_base_url"`
	MapDelta         float64 `mapstructure:"map_delta"`
	MessagingBaseURL string  `mapstructure:"messaging_base_url"`
	MessagingPhone   string  `mapstructure:"messaging_phone"`
}

// WalletConfig limits top-up requests per username.
type WalletConfig struct {
	TopUpsPerMinute float64 `mapstructure:"topups_per_minute"`
	TopUpBurst      int     `mapstructure:"topup_burst"`
}

// LogConfig holds the log file settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Path returns the config file location. Env var OPSCONSOLE_CONFIG wins.
func Path() string {
	if p := os.Getenv("OPSCONSOLE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "opsconsole", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed.path", "")
	v.SetDefault("payout.base", 20.0)
	v.SetDefault("payout.per_km", 7.0)
	v.SetDefault("payout.free_radius_km", 1.0)
	v.SetDefault("verification.window_seconds", 120)
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.username", "admin_user")
	v.SetDefault("ui.sample_distance_km", 6.4)
	v.SetDefault("ui.listing_filter", "")
	v.SetDefault("links.map_base_url", "https://www.openstreetmap.org")
	v.SetDefault("links.map_delta", 0.01)
	v.SetDefault("links.messaging_base_url", "https://wa.me")
	v.SetDefault("links.messaging_phone", "918434805818")
	v.SetDefault("wallet.topups_per_minute", 6.0)
	v.SetDefault("wallet.topup_burst", 3)
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "opsconsole", "opsconsole.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Load reads configuration from file and env. Env var overrides use prefix OPSCONSOLE_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("OPSCONSOLE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "opsconsole"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("OPSCONSOLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the stores cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Payout.Base < 0 || c.Payout.PerKm < 0 || c.Payout.FreeRadiusKm < 0 {
		errs = append(errs, errors.New("payout rates must not be negative"))
	}
	if c.Verification.WindowSeconds <= 0 {
		errs = append(errs, fmt.Errorf("verification.window_seconds must be positive, got %d", c.Verification.WindowSeconds))
	}
	if c.Links.MapDelta <= 0 {
		errs = append(errs, fmt.Errorf("links.map_delta must be positive, got %v", c.Links.MapDelta))
	}
	if c.UI.SampleDistanceKm < 0 {
		errs = append(errs, fmt.Errorf("ui.sample_distance_km must not be negative, got %v", c.UI.SampleDistanceKm))
	}
	if _, err := directory.ParseApproval(c.UI.ListingFilter); err != nil {
		errs = append(errs, fmt.Errorf("ui.listing_filter: %w", err))
	}
	if strings.TrimSpace(c.Links.MessagingPhone) == "" {
		errs = append(errs, errors.New("links.messaging_phone is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the provided config to path, creating the directory if needed.
// It backs the -write-config flag so operators can start from the defaults.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("seed.path", cfg.Seed.Path)
	v.Set("payout.base", cfg.Payout.Base)
	v.Set("payout.per_km", cfg.Payout.PerKm)
	v.Set("payout.free_radius_km", cfg.Payout.FreeRadiusKm)
	v.Set("verification.window_seconds", cfg.Verification.WindowSeconds)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.username", cfg.UI.Username)
	v.Set("ui.sample_distance_km", cfg.UI.SampleDistanceKm)
	v.Set("ui.listing_filter", cfg.UI.ListingFilter)
	v.Set("links.map_base_url", cfg.Links.MapBaseURL)
	v.Set("links.map_delta", cfg.Links.MapDelta)
	v.Set("links.messaging_base_url", cfg.Links.MessagingBaseURL)
	v.Set("links.messaging_phone", cfg.Links.MessagingPhone)
	v.Set("wallet.topups_per_minute", cfg.Wallet.TopUpsPerMinute)
	v.Set("wallet.topup_burst", cfg.Wallet.TopUpBurst)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
