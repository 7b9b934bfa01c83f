package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/billwell/internal/aggregate"
	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/overlay"
)

type fakeSource struct {
	bodies map[model.Kind]string
	errs   map[model.Kind]error
	gate   chan struct{}
	calls  atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context, kind model.Kind) ([]byte, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[kind]), nil
}

type mapStore struct {
	mu        sync.Mutex
	overrides map[string]string
}

func (m *mapStore) LoadOverrides(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.overrides {
		out[k] = v
	}
	return out, nil
}

func (m *mapStore) ListOverrides(context.Context) ([]model.StatusOverride, error) { return nil, nil }

func (m *mapStore) SaveOverride(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[id] = status
	return nil
}

func (m *mapStore) ClearOverrides(context.Context) error { return nil }

func fullSource() *fakeSource {
	return &fakeSource{bodies: map[model.Kind]string{
		model.KindExpenses:       `[{"_id":"e1","amount":"₹500","category":"Office"},{"_id":"e2","amount":300,"category":"Travel"},{"_id":"e3","amount":200,"category":"Office"}]`,
		model.KindProducts:       `{"products":[{"_id":"p1","price":10,"stock":3,"createdAt":"2024-01-01T00:00:00Z"}]}`,
		model.KindInvoices:       `{"invoices":[{"_id":"i1","total":100,"status":"draft","issueDate":"2024-03-10"}]}`,
		model.KindPurchaseOrders: `{"data":[{"_id":"po1","total":40,"vendor":{"name":"Acme"}}]}`,
		model.KindSalesOrders:    `[{"_id":"so1","total":60,"status":"pending","customer":{"name":"Ravi"}}]`,
	}}
}

func TestSession_DeliverAfterClose(t *testing.T) {
	s := NewSession()
	ran := 0
	assert.True(t, s.Deliver(func() { ran++ }))
	s.Close()
	s.Close()
	assert.False(t, s.Deliver(func() { ran++ }))
	assert.Equal(t, 1, ran)
	assert.False(t, s.Alive())
}

func TestLoadOverview_AllResources(t *testing.T) {
	l := NewLoader(fullSource(), LoaderOptions{})

	snap, err := l.LoadOverview(context.Background(), NewSession(), 2024)
	require.NoError(t, err)

	assert.Empty(t, snap.FailedKinds())
	assert.InDelta(t, 1000, snap.Summaries.Expenses.Total, 0.001)
	assert.Equal(t, "Office", snap.Summaries.Expenses.MaxCategory)
	assert.InDelta(t, 30, snap.Summaries.Products.StockValue, 0.001)
	assert.InDelta(t, 100, snap.Summaries.Invoices.Monthly[2], 0.001)
	assert.Equal(t, "Acme", snap.Summaries.PurchaseOrders.TopParties[0].Key)
	assert.Equal(t, 1, snap.Dashboard().Pending)

	series := snap.Series()
	assert.False(t, series.Placeholder)
	assert.Len(t, series.Entries, 5)
}

func TestLoadOverview_PartialFailure(t *testing.T) {
	src := fullSource()
	src.errs = map[model.Kind]error{
		model.KindProducts: errors.New("connection reset"),
	}
	l := NewLoader(src, LoaderOptions{})

	snap, err := l.LoadOverview(context.Background(), NewSession(), 2024)
	require.NoError(t, err)

	assert.Equal(t, []model.Kind{model.KindProducts}, snap.FailedKinds())
	assert.Equal(t, aggregate.EmptyProductSummary(), snap.Summaries.Products)
	assert.InDelta(t, 1000, snap.Summaries.Expenses.Total, 0.001)
	assert.False(t, snap.Unauthorized())
	assert.Len(t, snap.Series().Entries, 4)
}

func TestLoadOverview_FailureDoesNotCancelOthers(t *testing.T) {
	for _, failed := range model.AllKinds {
		t.Run(string(failed), func(t *testing.T) {
			src := fullSource()
			src.errs = map[model.Kind]error{failed: errors.New("connection reset")}

			snap, err := NewLoader(src, LoaderOptions{}).LoadOverview(context.Background(), NewSession(), 2024)
			require.NoError(t, err)
			assert.Equal(t, []model.Kind{failed}, snap.FailedKinds())
			for _, kind := range model.AllKinds {
				if kind == failed {
					assert.Empty(t, snap.Records[kind])
					continue
				}
				assert.NotEmpty(t, snap.Records[kind], "%s should still load", kind)
				assert.False(t, snap.Summaries.Failed(kind))
			}
		})
	}
}

func TestLoadOverview_Unauthorized(t *testing.T) {
	src := fullSource()
	src.errs = map[model.Kind]error{
		model.KindInvoices: &common.APIError{Method: "GET", Path: "/invoices", StatusCode: 401},
	}

	snap, err := NewLoader(src, LoaderOptions{}).LoadOverview(context.Background(), NewSession(), 2024)
	require.NoError(t, err)
	assert.True(t, snap.Unauthorized())
}

func TestLoadOverview_EverythingFails(t *testing.T) {
	src := &fakeSource{errs: map[model.Kind]error{}}
	for _, k := range model.AllKinds {
		src.errs[k] = errors.New("offline")
	}

	snap, err := NewLoader(src, LoaderOptions{}).LoadOverview(context.Background(), NewSession(), 2024)
	require.NoError(t, err)
	assert.Len(t, snap.FailedKinds(), 5)
	assert.True(t, snap.Series().Placeholder)
}

func TestLoadOverview_ClosedSessionDiscardsResults(t *testing.T) {
	src := fullSource()
	src.gate = make(chan struct{})
	session := NewSession()

	var fetched atomic.Int32
	l := NewLoader(src, LoaderOptions{OnFetched: func(model.Kind, error) { fetched.Add(1) }})

	done := make(chan error, 1)
	go func() {
		_, err := l.LoadOverview(context.Background(), session, 2024)
		done <- err
	}()

	session.Close()
	close(src.gate)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish")
	}
	assert.Equal(t, int32(5), fetched.Load())
}

func TestLoadOverview_ContextCanceled(t *testing.T) {
	src := fullSource()
	src.gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(src, LoaderOptions{}).LoadOverview(ctx, NewSession(), 2024)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadOverview_OverlayInReport(t *testing.T) {
	store := &mapStore{overrides: map[string]string{"i1": "paid"}}
	o := overlay.New(store)

	plain, err := NewLoader(fullSource(), LoaderOptions{Overlay: o}).
		LoadOverview(context.Background(), NewSession(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, plain.Summaries.Invoices.PaidCount)

	patched, err := NewLoader(fullSource(), LoaderOptions{Overlay: o, OverlayInReport: true}).
		LoadOverview(context.Background(), NewSession(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, patched.Summaries.Invoices.PaidCount)
}

func TestLoadRecords(t *testing.T) {
	store := &mapStore{overrides: map[string]string{"i1": "paid"}}
	l := NewLoader(fullSource(), LoaderOptions{Overlay: overlay.New(store)})

	records, err := l.LoadRecords(context.Background(), NewSession(), model.KindInvoices)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "paid", records[0].Status)

	closed := NewSession()
	closed.Close()
	_, err = l.LoadRecords(context.Background(), closed, model.KindExpenses)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestLoadDashboard(t *testing.T) {
	src := fullSource()
	snap, err := NewLoader(src, LoaderOptions{}).LoadDashboard(context.Background(), NewSession())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())

	d := snap.Dashboard()
	assert.Equal(t, 1, d.TotalSalesOrders)
	assert.InDelta(t, 60, d.Revenue, 0.001)
	require.Len(t, d.RecentProducts, 1)
}

func TestFilterInvoices(t *testing.T) {
	records := []model.Record{
		{ID: "1", Number: "INV-001", Party: "Ravi Traders", Status: "paid"},
		{ID: "2", Number: "INV-002", Party: "Asha Stores", Status: "pending"},
		{ID: "3", Number: "INV-010", Party: "", Status: "Paid"},
	}

	tests := []struct {
		name   string
		search string
		status string
		want   []string
	}{
		{name: "no filter", status: "all", want: []string{"1", "2", "3"}},
		{name: "search customer", search: "asha", want: []string{"2"}},
		{name: "search number", search: "inv-01", want: []string{"3"}},
		{name: "status is exact", status: "paid", want: []string{"1"}},
		{name: "both", search: "inv", status: "pending", want: []string{"2"}},
		{name: "no match", search: "zzz", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterInvoices(records, tt.search, tt.status)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterExpenses(t *testing.T) {
	records := []model.Record{
		{ID: "1", Description: "Printer ink", Category: "Office", DateRaw: "2024-03-02", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Description: "Train", Category: "Travel", DateRaw: "2024-04-11"},
		{ID: "3", Description: "Paper", Category: "Office", DateRaw: "Invalid Date"},
	}

	assert.Len(t, FilterExpenses(records, "", "all", "all"), 3)
	assert.Len(t, FilterExpenses(records, "office", "", ""), 2)
	assert.Len(t, FilterExpenses(records, "", "Office", "2024-03"), 1)
	assert.Len(t, FilterExpenses(records, "", "", "2024-04"), 1)
	assert.Empty(t, FilterExpenses(records, "", "office", ""))
}

func TestFilterProductsAndOrders(t *testing.T) {
	products := []model.Record{
		{ID: "p1", Name: "Steel Rod", Category: "Hardware"},
		{ID: "p2", Name: "Paint", Category: "Supplies"},
	}
	assert.Len(t, FilterProducts(products, "rod", "hardware"), 1)
	assert.Len(t, FilterProducts(products, "", "ALL"), 2)

	orders := []model.Record{
		{ID: "so1", Number: "SO-1", Party: "Ravi", Status: "Pending"},
		{ID: "so2", Number: "SO-2", Party: "Asha", Status: "delivered"},
	}
	assert.Len(t, FilterOrders(orders, "ravi", "pending"), 1)
	assert.Len(t, FilterOrders(orders, "so-", ""), 2)
}
