package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/view"
)

type fakeSource struct {
	bodies map[model.Kind]string
	errs   map[model.Kind]error
}

func (f *fakeSource) Fetch(_ context.Context, kind model.Kind) ([]byte, error) {
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[kind]), nil
}

type fakeUpdater struct {
	err   error
	calls map[string]string
	mu    sync.Mutex
}

func (u *fakeUpdater) UpdateStatus(_ context.Context, id, status string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.calls == nil {
		u.calls = map[string]string{}
	}
	u.calls[id] = status
	return u.err
}

func (u *fakeUpdater) Mode() string { return "local" }

func testSource() *fakeSource {
	return &fakeSource{bodies: map[model.Kind]string{
		model.KindExpenses: `[{"_id":"e1","amount":500,"category":"Office","description":"Paper"}]`,
		model.KindProducts: `{"products":[{"_id":"p1","name":"Widget","price":10,"stock":3}]}`,
		model.KindInvoices: `{"invoices":[` +
			`{"_id":"i1","invoiceNumber":"INV-1","customerName":"Asha","total":100,"status":"draft","issueDate":"2024-03-10"},` +
			`{"_id":"i2","invoiceNumber":"INV-2","customerName":"Ravi","total":250,"status":"pending","issueDate":"2024-04-02"}]}`,
		model.KindPurchaseOrders: `{"data":[{"_id":"po1","total":40,"vendor":{"name":"Acme"}}]}`,
		model.KindSalesOrders:    `[{"_id":"so1","total":60,"status":"pending","customer":{"name":"Ravi"}}]`,
	}}
}

func testModel(t *testing.T, src *fakeSource, opts ...Option) Model {
	t.Helper()
	cfg := defaultConfig()
	cfg.Loader = view.NewLoader(src, view.LoaderOptions{})
	cfg.Year = 2024
	WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) })(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(context.Background(), cfg)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// goToTab presses tab until the kind's tab is active and feeds it the loaded
// records directly.
func goToTab(t *testing.T, m Model, kind model.Kind) Model {
	t.Helper()
	for m.current().kind != kind {
		m, _ = update(t, m, keyPress("tab"))
	}
	msg := m.fetch(m.session, m.current())()
	m, _ = update(t, m, msg)
	require.False(t, m.loading)
	return m
}

func TestModel_OverviewLoads(t *testing.T) {
	m := testModel(t, testSource())
	assert.True(t, m.current().overview())
	assert.True(t, m.loading)

	msg := m.fetch(m.session, m.current())()
	m, _ = update(t, m, msg)

	require.NotNil(t, m.snapshot)
	assert.False(t, m.loading)
	assert.NoError(t, m.err)
	assert.Equal(t, 2024, m.snapshot.Year)
	assert.Contains(t, m.View(), "Business Management System")
}

func TestModel_TabSwitchDiscardsStaleResults(t *testing.T) {
	m := testModel(t, testSource())
	first := m.session
	staleCmd := m.fetch(first, m.current())

	m, cmd := update(t, m, keyPress("tab"))
	assert.NotNil(t, cmd)
	assert.False(t, first.Alive())
	assert.NotSame(t, first, m.session)
	assert.Equal(t, model.KindExpenses, m.current().kind)

	// The overview load finishes after the user moved on.
	m, _ = update(t, m, staleCmd())
	assert.Nil(t, m.snapshot)
	assert.True(t, m.loading)

	m, _ = update(t, m, overviewLoadedMsg{session: first, snapshot: &view.Snapshot{}})
	assert.Nil(t, m.snapshot)

	m, _ = update(t, m, m.fetch(m.session, m.current())())
	assert.Len(t, m.records, 1)
	assert.Contains(t, m.View(), "Paper")
}

func TestModel_PrevTabWraps(t *testing.T) {
	m := testModel(t, testSource())
	m, _ = update(t, m, keyPress("shift+tab"))
	assert.Equal(t, model.KindSalesOrders, m.current().kind)
}

func TestModel_StatusKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "paid", key: "p", want: StatusPaid},
		{name: "pending", key: "u", want: StatusPending},
		{name: "draft", key: "d", want: StatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &fakeUpdater{}
			m := goToTab(t, testModel(t, testSource(), WithUpdater(u)), model.KindInvoices)
			m, _ = update(t, m, keyPress("down"))
			require.Equal(t, 1, m.table.Cursor())

			m, cmd := update(t, m, keyPress(tt.key))
			require.NotNil(t, cmd)
			m, _ = update(t, m, cmd())

			assert.Equal(t, map[string]string{"i2": tt.want}, u.calls)
			assert.Equal(t, tt.want, m.records[1].Status)
			assert.Equal(t, "draft", m.records[0].Status)
			assert.Contains(t, m.notice, "i2")
		})
	}
}

func TestModel_StatusKeysOnlyOnInvoices(t *testing.T) {
	u := &fakeUpdater{}
	m := goToTab(t, testModel(t, testSource(), WithUpdater(u)), model.KindExpenses)
	_, cmd := update(t, m, keyPress("p"))
	assert.Nil(t, cmd)
	assert.Empty(t, u.calls)
}

func TestModel_StatusWithoutUpdater(t *testing.T) {
	m := goToTab(t, testModel(t, testSource()), model.KindInvoices)
	m, cmd := update(t, m, keyPress("p"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, "not available")
}

func TestModel_StatusUpdateFailure(t *testing.T) {
	u := &fakeUpdater{err: errors.New("store offline")}
	m := goToTab(t, testModel(t, testSource(), WithUpdater(u)), model.KindInvoices)
	m, cmd := update(t, m, keyPress("p"))
	m, _ = update(t, m, cmd())
	assert.ErrorContains(t, m.err, "store offline")
	assert.Equal(t, "draft", m.records[0].Status)
}

func TestModel_StatusResultAfterTabSwitchIgnored(t *testing.T) {
	u := &fakeUpdater{}
	m := goToTab(t, testModel(t, testSource(), WithUpdater(u)), model.KindInvoices)
	_, cmd := update(t, m, keyPress("p"))
	m, _ = update(t, m, keyPress("tab"))
	m, _ = update(t, m, cmd())
	assert.Empty(t, m.notice)
}

func TestModel_Unauthorized(t *testing.T) {
	src := testSource()
	src.errs = map[model.Kind]error{model.KindExpenses: &common.APIError{StatusCode: 401}}
	m := testModel(t, src)
	m = goToTab(t, m, model.KindExpenses)
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "billwell auth login")
}

func TestModel_OverviewUnauthorizedNotice(t *testing.T) {
	src := testSource()
	src.errs = map[model.Kind]error{model.KindInvoices: &common.APIError{StatusCode: 401}}
	m := testModel(t, src)
	m, _ = update(t, m, m.fetch(m.session, m.current())())
	assert.NoError(t, m.err)
	assert.Equal(t, unauthorizedNotice, m.notice)
}

func TestModel_UnauthorizedClearsSessionOnce(t *testing.T) {
	tests := []struct {
		name string
		kind model.Kind
		load func(t *testing.T, m Model) (Model, tea.Cmd)
	}{
		{
			name: "overview",
			kind: model.KindInvoices,
			load: func(t *testing.T, m Model) (Model, tea.Cmd) {
				return update(t, m, m.fetch(m.session, m.current())())
			},
		},
		{
			name: "list tab",
			kind: model.KindExpenses,
			load: func(t *testing.T, m Model) (Model, tea.Cmd) {
				for m.current().kind != model.KindExpenses {
					m, _ = update(t, m, keyPress("tab"))
				}
				return update(t, m, m.fetch(m.session, m.current())())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testSource()
			src.errs = map[model.Kind]error{tt.kind: &common.APIError{StatusCode: 401}}
			calls := 0
			m := testModel(t, src, WithUnauthorized(func(context.Context) error {
				calls++
				return nil
			}))

			m, cmd := tt.load(t, m)
			require.NotNil(t, cmd)
			assert.Nil(t, cmd())
			assert.Equal(t, 1, calls)
			assert.Equal(t, unauthorizedNotice, m.notice)

			m, _ = update(t, m, keyPress("r"))
			_, cmd = update(t, m, m.fetch(m.session, m.current())())
			assert.Nil(t, cmd)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestModel_UnauthorizedHookFailureIsLogged(t *testing.T) {
	src := testSource()
	src.errs = map[model.Kind]error{model.KindSalesOrders: &common.APIError{StatusCode: 401}}
	m := testModel(t, src, WithUnauthorized(func(context.Context) error {
		return errors.New("database is locked")
	}))
	_, cmd := update(t, m, m.fetch(m.session, m.current())())
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
}

func TestModel_EmptyList(t *testing.T) {
	src := testSource()
	src.bodies[model.KindProducts] = `[]`
	m := goToTab(t, testModel(t, src), model.KindProducts)
	assert.Contains(t, m.View(), "No products found.")
}

func TestModel_QuitClosesSession(t *testing.T) {
	m := testModel(t, testSource())
	s := m.session
	m, cmd := update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.False(t, s.Alive())
	assert.Empty(t, m.View())
}

func TestModel_Resize(t *testing.T) {
	m := testModel(t, testSource())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.cfg.Width)
	assert.Equal(t, 40, m.cfg.Height)
	assert.Equal(t, 120, m.help.Width)
}

func TestRun_RequiresLoader(t *testing.T) {
	assert.ErrorIs(t, Run(context.Background()), ErrNoLoader)
}
