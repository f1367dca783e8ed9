package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/inference"
	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/plaid"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "CHURN"

// Config is the typed view of the churn configuration.
type Config struct {
	Plaid      plaid.Config
	Reference  ReferenceConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Model      inference.Config
	Prediction PredictionConfig
	Sheets     SheetsConfig
}

// ReferenceConfig locates the reference dataset.
type ReferenceConfig struct {
	Path string
}

// DatabaseConfig locates the prediction history store.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string
	Format string
}

// PredictionConfig tunes the churn decision.
type PredictionConfig struct {
	Threshold float64
}

// Dir returns the default configuration directory, $HOME/.config/churn.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".churn"
	}
	return filepath.Join(home, ".config", "churn")
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	dir := Dir()

	v.SetDefault("reference.path", "churn_dataset.csv")
	v.SetDefault("model.provider", inference.ProviderScorecard)
	v.SetDefault("model.path", filepath.Join(dir, "model.json"))
	v.SetDefault("model.timeout", inference.DefaultTimeout)
	v.SetDefault("prediction.threshold", model.DefaultThreshold)
	v.SetDefault("database.path", filepath.Join(dir, "churn.db"))
	v.SetDefault("plaid.environment", plaid.EnvironmentSandbox)
	v.SetDefault("sheets.spreadsheet_name", defaultSpreadsheetName)
	v.SetDefault("sheets.timezone", "UTC")
	v.SetDefault("sheets.token_file", filepath.Join(dir, "sheets_token.json"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads every key from v into a Config and checks the values that do
// not depend on which command runs.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Reference: ReferenceConfig{Path: ExpandPath(v.GetString("reference.path"))},
		Database:  DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Model: inference.Config{
			Provider: v.GetString("model.provider"),
			Path:     ExpandPath(v.GetString("model.path")),
			Endpoint: v.GetString("model.endpoint"),
			APIKey:   v.GetString("model.api_key"),
			Timeout:  v.GetDuration("model.timeout"),
		},
		Prediction: PredictionConfig{Threshold: v.GetFloat64("prediction.threshold")},
		Plaid: plaid.Config{
			ClientID:    v.GetString("plaid.client_id"),
			Secret:      v.GetString("plaid.secret"),
			Environment: v.GetString("plaid.environment"),
			AccessToken: v.GetString("plaid.access_token"),
			BaseURL:     v.GetString("plaid.base_url"),
		},
		Sheets: loadSheets(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that are invalid regardless of the command.
func (c *Config) Validate() error {
	t := c.Prediction.Threshold
	if !(t > 0 && t <= 1) {
		return fmt.Errorf("%w: prediction.threshold must be in (0, 1], got %g", common.ErrInvalidConfig, t)
	}
	if c.Model.Timeout < 0 {
		return fmt.Errorf("%w: model.timeout must not be negative", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json", "":
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ScorerTimeout returns the configured scoring timeout, or the default.
func (c *Config) ScorerTimeout() time.Duration {
	if c.Model.Timeout == 0 {
		return inference.DefaultTimeout
	}
	return c.Model.Timeout
}
