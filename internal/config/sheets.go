package config

import (
	"github.com/Veraticus/churn/internal/sheets"
	"github.com/spf13/viper"
)

const defaultSpreadsheetName = "Churn Risk Report"

// SheetsConfig holds the sheets.* keys.
type SheetsConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	TokenFile          string
}

func loadSheets(v *viper.Viper) SheetsConfig {
	return SheetsConfig{
		ClientID:           v.GetString("sheets.client_id"),
		ClientSecret:       v.GetString("sheets.client_secret"),
		RefreshToken:       v.GetString("sheets.refresh_token"),
		ServiceAccountPath: ExpandPath(v.GetString("sheets.service_account_path")),
		SpreadsheetID:      v.GetString("sheets.spreadsheet_id"),
		SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
		TimeZone:           v.GetString("sheets.timezone"),
		TokenFile:          ExpandPath(v.GetString("sheets.token_file")),
	}
}

// Writer builds the Google Sheets writer configuration. Precedence is:
//  1. config file or CHURN_SHEETS_* environment variables
//  2. GOOGLE_SHEETS_* environment variables
//  3. defaults
//
// A refresh token saved by `churn auth sheets` is used when none is configured.
func (s SheetsConfig) Writer() (sheets.Config, error) {
	cfg := sheets.DefaultConfig()
	cfg.ClientID = s.ClientID
	cfg.ClientSecret = s.ClientSecret
	cfg.RefreshToken = s.RefreshToken
	cfg.ServiceAccountPath = s.ServiceAccountPath
	cfg.SpreadsheetID = s.SpreadsheetID
	// The viper default must not shadow GOOGLE_SHEETS_SPREADSHEET_NAME.
	cfg.SpreadsheetName = ""
	if s.SpreadsheetName != defaultSpreadsheetName {
		cfg.SpreadsheetName = s.SpreadsheetName
	}
	if s.TimeZone != "" {
		cfg.TimeZone = s.TimeZone
	}

	cfg.LoadFromEnv()
	if cfg.SpreadsheetName == "" {
		cfg.SpreadsheetName = defaultSpreadsheetName
	}
	cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)

	if cfg.RefreshToken == "" && cfg.ServiceAccountPath == "" && s.TokenFile != "" {
		if token, err := sheets.LoadToken(s.TokenFile); err == nil {
			cfg.RefreshToken = token.RefreshToken
		}
	}

	if err := cfg.Validate(); err != nil {
		return sheets.Config{}, err
	}
	return cfg, nil
}

// OAuth2 builds the configuration for the interactive authorization flow.
func (s SheetsConfig) OAuth2() sheets.OAuth2Config {
	creds := sheets.Config{ClientID: s.ClientID, ClientSecret: s.ClientSecret}
	creds.LoadFromEnv()
	return sheets.OAuth2Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenFile:    s.TokenFile,
	}
}
