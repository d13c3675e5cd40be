package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	FHIRServer      string   `mapstructure:"FHIR_SERVER"`
	ImageServer     string   `mapstructure:"IMAGE_SERVER"`
	ClientTimeout   int      `mapstructure:"HTTP_CLIENT_TIMEOUT_SECONDS"`
	HistoryPageSize int      `mapstructure:"HISTORY_PAGE_SIZE"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	ImageDir        string   `mapstructure:"IMAGE_DIR"`
	BundleDir       string   `mapstructure:"BUNDLE_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("HTTP_CLIENT_TIMEOUT_SECONDS", 30)
	v.SetDefault("HISTORY_PAGE_SIZE", 20)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("IMAGE_DIR", "images")
	v.SetDefault("BUNDLE_DIR", "synthetic_data")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("FHIR_SERVER")
	v.BindEnv("IMAGE_SERVER")
	v.BindEnv("HTTP_CLIENT_TIMEOUT_SECONDS")
	v.BindEnv("HISTORY_PAGE_SIZE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("IMAGE_DIR")
	v.BindEnv("BUNDLE_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HTTPTimeout returns the outbound client timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	if c.ClientTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ClientTimeout) * time.Second
}

// ValidateCDS checks the settings the summary server cannot run without.
// The upstream FHIR server and the imaging metadata service are both
// remote collaborators, so their base URLs have no sensible defaults.
func (c *Config) ValidateCDS() error {
	if c.FHIRServer == "" {
		return fmt.Errorf("FHIR_SERVER is required")
	}
	if c.ImageServer == "" {
		return fmt.Errorf("IMAGE_SERVER is required")
	}
	if c.HistoryPageSize <= 0 {
		return fmt.Errorf("HISTORY_PAGE_SIZE must be positive, got %d", c.HistoryPageSize)
	}
	return nil
}

// ValidateImages checks the settings the image server cannot run without.
func (c *Config) ValidateImages() error {
	if c.ImageDir == "" {
		return fmt.Errorf("IMAGE_DIR is required")
	}
	return nil
}
