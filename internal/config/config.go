package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/billwell/internal/common"
)

// EnvPrefix is prepended to every environment override, e.g.
// BILLWELL_API_BASE_URL.
const EnvPrefix = "BILLWELL"

// Defaults.
const (
	DefaultBaseURL       = "https://bill-backend-1-z17b.onrender.com/api"
	DefaultTimeout       = 30 * time.Second
	DefaultRateLimit     = 5.0
	DefaultRetryAttempts = 3
	DefaultStatusMode    = "local"
	DefaultSymbol        = "₹"
	DefaultLocale        = "en-IN"
	DefaultTimezone      = "Asia/Kolkata"
)

var validate = validator.New()

var keyReplacer = strings.NewReplacer(".", "_")

// BindEnvironment lets BILLWELL_* variables override any key.
func BindEnvironment() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(keyReplacer)
	viper.AutomaticEnv()
}

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault("api.base_url", DefaultBaseURL)
	viper.SetDefault("api.timeout", DefaultTimeout)
	viper.SetDefault("api.rate_limit", DefaultRateLimit)
	viper.SetDefault("api.retry_attempts", DefaultRetryAttempts)
	viper.SetDefault("invoices.status_mode", DefaultStatusMode)
	viper.SetDefault("currency.symbol", DefaultSymbol)
	viper.SetDefault("currency.locale", DefaultLocale)
	viper.SetDefault("report.timezone", DefaultTimezone)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// LoadEnvFile reads KEY=VALUE pairs from paths (default .env) into the
// environment. Variables already set win and missing files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// APIConfig configures the remote API client.
type APIConfig struct {
	BaseURL       string        `validate:"required,url"`
	Token         string        `validate:"-"`
	StatusMode    string        `validate:"oneof=local remote"`
	Timeout       time.Duration `validate:"gt=0"`
	RateLimit     float64       `validate:"gte=0"`
	RetryAttempts int           `validate:"gte=1,lte=10"`
}

// LoadAPIConfig reads api.* and invoices.status_mode.
func LoadAPIConfig() (*APIConfig, error) {
	cfg := &APIConfig{
		BaseURL:       strings.TrimSpace(viper.GetString("api.base_url")),
		Token:         strings.TrimSpace(viper.GetString("api.token")),
		StatusMode:    strings.ToLower(strings.TrimSpace(viper.GetString("invoices.status_mode"))),
		Timeout:       viper.GetDuration("api.timeout"),
		RateLimit:     viper.GetFloat64("api.rate_limit"),
		RetryAttempts: viper.GetInt("api.retry_attempts"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.StatusMode == "" {
		cfg.StatusMode = DefaultStatusMode
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("api settings: %w: %w", common.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// ReportConfig configures summaries and document output.
type ReportConfig struct {
	CurrencySymbol string   `validate:"required"`
	Locale         string   `validate:"required,bcp47_language_tag"`
	Timezone       string   `validate:"required,timezone"`
	GotenbergURL   string   `validate:"omitempty,url"`
	PaidStatuses   []string `validate:"dive,required"`
	Year           int      `validate:"gte=1970,lte=9999"`
}

// LoadReportConfig reads currency.*, report.* and invoices.paid_statuses.
// report.year defaults to now's year.
func LoadReportConfig(now time.Time) (*ReportConfig, error) {
	cfg := &ReportConfig{
		CurrencySymbol: viper.GetString("currency.symbol"),
		Locale:         strings.TrimSpace(viper.GetString("currency.locale")),
		Timezone:       strings.TrimSpace(viper.GetString("report.timezone")),
		GotenbergURL:   strings.TrimSpace(viper.GetString("report.gotenberg_url")),
		PaidStatuses:   viper.GetStringSlice("invoices.paid_statuses"),
		Year:           viper.GetInt("report.year"),
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = DefaultSymbol
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.Year == 0 {
		cfg.Year = now.Year()
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("report settings: %w: %w", common.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Location resolves Timezone, falling back to UTC.
func (c *ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabasePath returns database.path expanded, or DefaultDatabasePath.
func DatabasePath() string {
	if p := strings.TrimSpace(viper.GetString("database.path")); p != "" {
		return ExpandPath(p)
	}
	return DefaultDatabasePath()
}
