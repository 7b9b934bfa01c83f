// Package tui is the interactive terminal browser: an overview tab with the
// combined report and one list tab per resource.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/overlay"
	"github.com/Veraticus/billwell/internal/report"
	"github.com/Veraticus/billwell/internal/view"
)

// Invoice statuses reachable from the status keys.
const (
	StatusPaid    = "paid"
	StatusPending = "pending"
	StatusDraft   = "draft"
)

// tab is one screen of the browser. The overview tab has an empty kind.
type tab struct {
	title string
	kind  model.Kind
}

func (t tab) overview() bool { return t.kind == "" }

func defaultTabs() []tab {
	tabs := []tab{{title: "Overview"}}
	for _, k := range model.AllKinds {
		tabs = append(tabs, tab{title: k.Label(), kind: k})
	}
	return tabs
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx      context.Context
	err      error
	session  *view.Session
	snapshot *view.Snapshot
	logger   *slog.Logger
	terminal *report.TerminalFormatter
	notice   string
	keys     KeyMap
	records  []model.Record
	tabs     []tab
	cfg      Config
	help     help.Model
	spinner  spinner.Model
	table    table.Model
	active   int
	loading   bool
	quitting  bool
	signedOut bool
}

func newModel(ctx context.Context, cfg Config) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(cfg.Theme.Title),
	)

	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.TableHeader
	styles.Selected = cfg.Theme.Selected
	tbl := table.New(table.WithFocused(true), table.WithStyles(styles))

	m := Model{
		ctx:      ctx,
		cfg:      cfg,
		keys:     DefaultKeyMap(),
		tabs:     defaultTabs(),
		help:     help.New(),
		spinner:  sp,
		table:    tbl,
		terminal: report.NewTerminalFormatter(),
		logger:   slog.Default().With("component", "tui"),
		session:  view.NewSession(),
		loading:  true,
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Init starts the spinner and the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(m.session, m.current()))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case overviewLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			cmd := m.setError(msg.err)
			return m, cmd
		}
		m.snapshot = msg.snapshot
		if msg.snapshot.Unauthorized() {
			m.notice = unauthorizedNotice
			cmd := m.expireSession()
			return m, cmd
		}
		return m, nil

	case recordsLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			cmd := m.setError(msg.err)
			return m, cmd
		}
		m.records = msg.records
		m.refreshTable(msg.kind)
		return m, nil

	case statusUpdatedMsg:
		if msg.session != m.session {
			return m, nil
		}
		if msg.err != nil {
			cmd := m.setError(msg.err)
			return m, cmd
		}
		m.records = overlay.ApplyOverrides(m.records, map[string]string{msg.id: msg.status})
		m.refreshTable(model.KindInvoices)
		m.notice = fmt.Sprintf("Invoice %s marked %s", msg.id, msg.status)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.session.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab((m.active + 1) % len(m.tabs))

	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab((m.active + len(m.tabs) - 1) % len(m.tabs))

	case key.Matches(msg, m.keys.Refresh):
		return m, m.switchTab(m.active)

	case key.Matches(msg, m.keys.MarkPaid):
		return m, m.updateStatus(StatusPaid)

	case key.Matches(msg, m.keys.MarkPending):
		return m, m.updateStatus(StatusPending)

	case key.Matches(msg, m.keys.MarkDraft):
		return m, m.updateStatus(StatusDraft)
	}

	if m.current().overview() {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// switchTab closes the running session, so results still in flight for the
// previous tab are discarded, and starts loading tab i.
func (m *Model) switchTab(i int) tea.Cmd {
	m.session.Close()
	m.session = view.NewSession()
	m.active = i
	m.loading = true
	m.err = nil
	m.notice = ""
	m.snapshot = nil
	m.records = nil
	m.table.SetRows(nil)
	return tea.Batch(m.spinner.Tick, m.fetch(m.session, m.current()))
}

func (m *Model) updateStatus(status string) tea.Cmd {
	if m.current().kind != model.KindInvoices || m.loading {
		return nil
	}
	if m.cfg.Updater == nil {
		m.notice = "Status updates are not available"
		return nil
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return nil
	}
	id := m.records[i].ID
	if id == "" {
		m.notice = "This invoice has no id and cannot be updated"
		return nil
	}

	session, updater, ctx := m.session, m.cfg.Updater, m.ctx
	return func() tea.Msg {
		err := updater.UpdateStatus(ctx, id, status)
		return statusUpdatedMsg{session: session, id: id, status: status, err: err}
	}
}

func (m Model) fetch(session *view.Session, t tab) tea.Cmd {
	loader, ctx, year := m.cfg.Loader, m.ctx, m.year()
	if t.overview() {
		return func() tea.Msg {
			snap, err := loader.LoadOverview(ctx, session, year)
			return overviewLoadedMsg{session: session, snapshot: snap, err: err}
		}
	}
	return func() tea.Msg {
		records, err := loader.LoadRecords(ctx, session, t.kind)
		return recordsLoadedMsg{session: session, kind: t.kind, records: records, err: err}
	}
}

func (m Model) current() tab { return m.tabs[m.active] }

func (m Model) year() int {
	if m.cfg.Year != 0 {
		return m.cfg.Year
	}
	return m.cfg.Now().Year()
}

func (m *Model) setError(err error) tea.Cmd {
	if errors.Is(err, view.ErrSessionClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	m.logger.Debug("load failed", "tab", m.current().title, "error", err)
	m.err = err
	if common.IsUnauthorized(err) {
		m.notice = unauthorizedNotice
		return m.expireSession()
	}
	return nil
}

// expireSession runs the OnUnauthorized hook once per browser run.
func (m *Model) expireSession() tea.Cmd {
	if m.signedOut || m.cfg.OnUnauthorized == nil {
		return nil
	}
	m.signedOut = true
	hook, ctx, logger := m.cfg.OnUnauthorized, m.ctx, m.logger
	return func() tea.Msg {
		if err := hook(ctx); err != nil {
			logger.Warn("failed to clear rejected session", "error", err)
		}
		return nil
	}
}

func (m *Model) resize(width, height int) {
	m.cfg.Width, m.cfg.Height = width, height
	m.help.Width = width
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-8, 3))
}

func (m *Model) refreshTable(kind model.Kind) {
	m.table.SetRows(nil)
	m.table.SetColumns(columnsFor(kind))
	m.table.SetRows(rowsFor(kind, m.records, m.cfg.Formatter))
}

const unauthorizedNotice = "Your session has expired. Run `billwell auth login` to sign in again."
