package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/report"
)

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	parts := []string{m.renderTabs(), m.renderBody()}
	if m.notice != "" {
		parts = append(parts, m.cfg.Theme.StatusWarning.Render(m.notice))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n\n")
}

func (m Model) renderTabs() string {
	rendered := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		style := m.cfg.Theme.InactiveTab
		if i == m.active {
			style = m.cfg.Theme.ActiveTab
		}
		rendered[i] = style.Render(t.title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderBody() string {
	theme := m.cfg.Theme
	switch {
	case m.loading:
		return m.spinner.View() + " " + theme.Subtitle.Render("Loading "+strings.ToLower(m.current().title)+"...")
	case m.err != nil:
		return theme.StatusError.Render("Failed to load: " + m.err.Error())
	case m.current().overview():
		return m.renderOverview()
	case len(m.records) == 0:
		return theme.Muted.Render("No " + strings.ToLower(m.current().title) + " found.")
	}

	title := theme.Title.Render(m.current().title)
	count := theme.Subtitle.Render(fmt.Sprintf("%d records", len(m.records)))
	return lipgloss.JoinVertical(lipgloss.Left, title+"  "+count, m.table.View())
}

func (m Model) renderOverview() string {
	if m.snapshot == nil {
		return ""
	}
	doc := report.BuildDocument(m.snapshot.Series(), m.snapshot.Summaries, m.cfg.Formatter, m.snapshot.LoadedAt)
	return m.terminal.Format(doc)
}

func columnsFor(kind model.Kind) []table.Column {
	switch kind {
	case model.KindInvoices:
		return []table.Column{
			{Title: "Number", Width: 14},
			{Title: "Customer", Width: 22},
			{Title: "Date", Width: 20},
			{Title: "Status", Width: 10},
			{Title: "Amount", Width: 16},
		}
	case model.KindExpenses:
		return []table.Column{
			{Title: "Date", Width: 20},
			{Title: "Description", Width: 28},
			{Title: "Category", Width: 16},
			{Title: "Amount", Width: 16},
		}
	case model.KindProducts:
		return []table.Column{
			{Title: "Name", Width: 28},
			{Title: "Category", Width: 16},
			{Title: "Price", Width: 14},
			{Title: "Stock", Width: 8},
		}
	default:
		return []table.Column{
			{Title: "Number", Width: 14},
			{Title: "Party", Width: 22},
			{Title: "Date", Width: 20},
			{Title: "Status", Width: 12},
			{Title: "Amount", Width: 16},
		}
	}
}

func rowsFor(kind model.Kind, records []model.Record, f *format.Formatter) []table.Row {
	money := func(v float64) string { return f.FormatCurrency(v, format.Display) }
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		switch kind {
		case model.KindInvoices:
			rows = append(rows, table.Row{orDash(r.Number, r.ID), orDash(r.Party), format.FormatTime(r.Date), orDash(r.Status), money(r.Amount)})
		case model.KindExpenses:
			rows = append(rows, table.Row{format.FormatTime(r.Date), orDash(r.Description), orDash(r.Category), money(r.Amount)})
		case model.KindProducts:
			rows = append(rows, table.Row{orDash(r.Name), orDash(r.Category), money(r.Price), strconv.FormatFloat(r.Stock, 'f', -1, 64)})
		default:
			rows = append(rows, table.Row{orDash(r.Number, r.ID), orDash(r.Party), format.FormatTime(r.Date), orDash(r.Status), money(r.Amount)})
		}
	}
	return rows
}

// orDash returns the first non-empty value, or "-".
func orDash(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "-"
}
