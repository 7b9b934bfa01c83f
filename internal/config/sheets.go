package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/billwell/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration. Values come from, in
// order: viper (config file or BILLWELL_SHEETS_* variables), the
// GOOGLE_SHEETS_* variables, then defaults.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("report.timezone"); v != "" {
		config.TimeZone = v
	}
	if viper.IsSet("sheets.formatting") {
		config.EnableFormatting = viper.GetBool("sheets.formatting")
	}

	fallback := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	fallback(&config.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	fallback(&config.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	fallback(&config.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	fallback(&config.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	if config.SpreadsheetName == sheets.DefaultSpreadsheetName {
		if v := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); v != "" {
			config.SpreadsheetName = v
		}
	}

	if config.ServiceAccountPath == "" && config.RefreshToken == "" {
		if tok, err := sheets.LoadToken(SheetsTokenFile()); err == nil {
			config.RefreshToken = tok.RefreshToken
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SheetsTokenFile is where `billwell auth sheets` stores the OAuth token.
func SheetsTokenFile() string {
	if p := strings.TrimSpace(viper.GetString("sheets.token_file")); p != "" {
		return ExpandPath(p)
	}
	return filepath.Join(ConfigDir(), "sheets-token.json")
}
