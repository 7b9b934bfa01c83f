package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/billwell/internal/aggregate"
	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/normalize"
	"github.com/Veraticus/billwell/internal/overlay"
	"github.com/Veraticus/billwell/internal/report"
	"github.com/Veraticus/billwell/internal/service"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Overlay, when set, is applied to invoices returned by LoadRecords.
	Overlay *overlay.Overlay
	// Normalizer defaults to normalize.New().
	Normalizer *normalize.Normalizer
	// OnFetched is called once per resource as soon as its fetch settles.
	OnFetched func(kind model.Kind, err error)
	// Invoice configures invoice aggregation. Its Year is replaced by the
	// year passed to LoadOverview.
	Invoice aggregate.InvoiceOptions
	// OverlayInReport applies the overlay to invoices before summarizing.
	OverlayInReport bool
}

// Loader fetches and prepares resources for a screen.
type Loader struct {
	source     service.RecordSource
	normalizer *normalize.Normalizer
	now        func() time.Time
	logger     *slog.Logger
	opts       LoaderOptions
}

// NewLoader creates a loader reading from source.
func NewLoader(source service.RecordSource, opts LoaderOptions) *Loader {
	n := opts.Normalizer
	if n == nil {
		n = normalize.New()
	}
	return &Loader{
		source:     source,
		normalizer: n,
		now:        time.Now,
		logger:     slog.Default().With("component", "view"),
		opts:       opts,
	}
}

// Snapshot is the result of one overview load.
type Snapshot struct {
	LoadedAt  time.Time
	Records   map[model.Kind][]model.Record
	Summaries report.Summaries
	Year      int
}

// Unauthorized reports whether any resource failed because the session token
// was rejected.
func (s *Snapshot) Unauthorized() bool {
	for _, err := range s.Summaries.Failures {
		if common.IsUnauthorized(err) {
			return true
		}
	}
	return false
}

// FailedKinds lists failed resources in report order.
func (s *Snapshot) FailedKinds() []model.Kind {
	var out []model.Kind
	for _, k := range model.AllKinds {
		if s.Summaries.Failed(k) {
			out = append(out, k)
		}
	}
	return out
}

// Series composes the overview series.
func (s *Snapshot) Series() report.CombinedSeries {
	return report.Compose(s.Summaries)
}

// Dashboard summarizes the sales orders and products of the snapshot.
func (s *Snapshot) Dashboard() aggregate.DashboardSummary {
	return aggregate.SummarizeDashboard(s.Records[model.KindSalesOrders], s.Records[model.KindProducts])
}

// LoadOverview fetches every resource concurrently. A resource that fails is
// reported through Summaries.Failures with its zero summary; the other
// resources are unaffected. The only errors returned are ErrSessionClosed and
// the context's error.
func (l *Loader) LoadOverview(ctx context.Context, session *Session, year int) (*Snapshot, error) {
	return l.load(ctx, session, year, model.AllKinds)
}

// LoadDashboard fetches only what the dashboard shows.
func (l *Loader) LoadDashboard(ctx context.Context, session *Session) (*Snapshot, error) {
	return l.load(ctx, session, l.now().Year(), []model.Kind{model.KindSalesOrders, model.KindProducts})
}

func (l *Loader) load(ctx context.Context, session *Session, year int, kinds []model.Kind) (*Snapshot, error) {
	opts := l.opts.Invoice
	opts.Year = year

	snap := &Snapshot{
		Year:      year,
		Records:   make(map[model.Kind][]model.Record, len(kinds)),
		Summaries: report.EmptySummaries(year),
	}

	// mu guards snap when session is shared by concurrent loads.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		g.Go(func() error {
			records, err := l.fetch(gctx, kind, l.opts.OverlayInReport)
			if l.opts.OnFetched != nil {
				l.opts.OnFetched(kind, err)
			}
			session.Deliver(func() {
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					l.logger.Warn("resource unavailable", "kind", kind, "error", err)
					snap.Summaries.Fail(kind, err)
					return
				}
				snap.Records[kind] = records
				snap.Summaries.Set(kind, records, opts)
			})
			return nil
		})
	}
	// Every goroutine returns nil: a failed resource is recorded in
	// Summaries.Failures and the others keep loading.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !session.Alive() {
		return nil, ErrSessionClosed
	}
	snap.LoadedAt = l.now()
	return snap, nil
}

// LoadRecords fetches one resource for a list screen. Invoices have the
// overlay applied.
func (l *Loader) LoadRecords(ctx context.Context, session *Session, kind model.Kind) ([]model.Record, error) {
	records, err := l.fetch(ctx, kind, true)
	if err != nil {
		return nil, err
	}
	var out []model.Record
	if !session.Deliver(func() { out = records }) {
		return nil, ErrSessionClosed
	}
	return out, nil
}

func (l *Loader) fetch(ctx context.Context, kind model.Kind, withOverlay bool) ([]model.Record, error) {
	body, err := l.source.Fetch(ctx, kind)
	if err != nil {
		return nil, err
	}
	records := l.normalizer.Normalize(body, kind)
	l.logger.Debug("normalized resource", "kind", kind, "records", len(records))

	if kind != model.KindInvoices || !withOverlay || l.opts.Overlay == nil {
		return records, nil
	}
	applied, err := l.opts.Overlay.Apply(ctx, records)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("invoices fetched but overrides unavailable: %w", err)
	}
	return applied, nil
}
