package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/billwell/internal/aggregate"
	"github.com/Veraticus/billwell/internal/api"
	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/config"
	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/overlay"
	"github.com/Veraticus/billwell/internal/service"
	"github.com/Veraticus/billwell/internal/storage"
	"github.com/Veraticus/billwell/internal/view"
)

// app bundles what most commands need: local storage, an API client carrying
// the signed-in token and the resolved settings.
type app struct {
	store     *storage.SQLiteStorage
	client    *api.Client
	overlay   *overlay.Overlay
	formatter *format.Formatter
	apiCfg    *config.APIConfig
	reportCfg *config.ReportConfig
	now       func() time.Time
}

// initStorage opens the local database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func newApp(ctx context.Context) (*app, error) {
	apiCfg, err := config.LoadAPIConfig()
	if err != nil {
		return nil, err
	}
	reportCfg, err := config.LoadReportConfig(time.Now())
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Options{
		BaseURL:   apiCfg.BaseURL,
		Timeout:   apiCfg.Timeout,
		RateLimit: apiCfg.RateLimit,
		Retry:     service.RetryOptions{MaxAttempts: apiCfg.RetryAttempts},
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{
		store:     store,
		client:    client,
		overlay:   overlay.New(store),
		formatter: format.NewFormatter(reportCfg.CurrencySymbol, reportCfg.Locale),
		apiCfg:    apiCfg,
		reportCfg: reportCfg,
		now:       time.Now,
	}
	a.client = client.WithToken(a.token(ctx))
	return a, nil
}

// token prefers an explicit api.token, then the stored session. An expired
// session is discarded.
func (a *app) token(ctx context.Context) string {
	if a.apiCfg.Token != "" {
		return a.apiCfg.Token
	}
	session, err := a.store.GetSession(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNoSession) {
			common.LogError(ctx, err, "failed to read session", nil)
		}
		return ""
	}
	if session.Expired(a.now()) {
		common.LogInfo(ctx, "stored session has expired", common.Fields{"email": session.Email, "expired_at": session.ExpiresAt})
		if err := a.store.ClearSession(ctx); err != nil {
			slog.Warn("failed to clear expired session", "error", err)
		}
		return ""
	}
	return session.Token
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Debug("failed to close storage", "error", err)
	}
}

// requireLogin fails early when no token is available.
func (a *app) requireLogin() error {
	if a.client.HasToken() {
		return nil
	}
	return common.NewUserError("You are not logged in. Run `billwell auth login` first.", common.ErrNoSession)
}

func (a *app) invoiceOptions(year int) aggregate.InvoiceOptions {
	return aggregate.InvoiceOptions{
		Location:     a.reportCfg.Location(),
		PaidStatuses: a.reportCfg.PaidStatuses,
		Year:         year,
	}
}

func (a *app) loader(opts view.LoaderOptions) *view.Loader {
	if opts.Overlay == nil {
		opts.Overlay = a.overlay
	}
	if opts.Invoice.Location == nil {
		opts.Invoice = a.invoiceOptions(opts.Invoice.Year)
	}
	return view.NewLoader(a.client, opts)
}

func (a *app) updater() (overlay.StatusUpdater, error) {
	return overlay.NewStatusUpdater(a.apiCfg.StatusMode, a.overlay, a.client)
}

// unauthorized clears the rejected session and explains how to recover. Any
// other error is returned unchanged.
func (a *app) unauthorized(ctx context.Context, err error) error {
	if !common.IsUnauthorized(err) {
		return err
	}
	if clearErr := a.store.ClearSession(ctx); clearErr != nil {
		slog.Warn("failed to clear session", "error", clearErr)
	}
	return common.NewUserError("Your session has expired. Run `billwell auth login` to sign in again.", err)
}
