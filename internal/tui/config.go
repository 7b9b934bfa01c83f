package tui

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/overlay"
	"github.com/Veraticus/billwell/internal/tui/themes"
	"github.com/Veraticus/billwell/internal/view"
)

// ErrNoLoader is returned when the browser is started without a loader.
var ErrNoLoader = errors.New("tui: loader is required")

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Loader    *view.Loader
	Updater   overlay.StatusUpdater
	Formatter *format.Formatter
	Now       func() time.Time
	// OnUnauthorized runs the first time the API rejects the token.
	OnUnauthorized func(context.Context) error
	Year           int
	Width          int
	Height         int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Formatter: format.DefaultFormatter(),
		Now:       time.Now,
		Width:     100,
		Height:    30,
	}
}

// WithLoader sets where records come from.
func WithLoader(l *view.Loader) Option {
	return func(c *Config) {
		c.Loader = l
	}
}

// WithUpdater enables the invoice status keys.
func WithUpdater(u overlay.StatusUpdater) Option {
	return func(c *Config) {
		c.Updater = u
	}
}

// WithFormatter sets the currency formatter.
func WithFormatter(f *format.Formatter) Option {
	return func(c *Config) {
		if f != nil {
			c.Formatter = f
		}
	}
}

// WithUnauthorized sets the hook that invalidates a rejected session.
func WithUnauthorized(fn func(context.Context) error) Option {
	return func(c *Config) {
		c.OnUnauthorized = fn
	}
}

// WithYear sets the overview's invoice year. Zero means the current year.
func WithYear(year int) Option {
	return func(c *Config) {
		c.Year = year
	}
}

// WithTheme sets the UI theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial dimensions.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}
