package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/billwell/internal/cli"
)

// TerminalFormatter renders a Document for terminal display.
type TerminalFormatter struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	subtle   lipgloss.Style
	warning  lipgloss.Style
	bold     lipgloss.Style
	box      lipgloss.Style
	barWidth int
}

// NewTerminalFormatter creates a formatter using the shared CLI styles.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{
		title:    cli.TitleStyle,
		subtitle: cli.SubtitleStyle,
		subtle:   cli.SubtleStyle,
		warning:  cli.WarningStyle,
		bold:     cli.BoldStyle,
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cli.SubtleColor).
			Padding(0, 1),
		barWidth: 24,
	}
}

// Format renders the full overview.
func (f *TerminalFormatter) Format(doc Document) string {
	sections := []string{
		f.formatHeader(doc),
		f.formatMetrics(doc),
	}
	for _, s := range doc.Sections {
		sections = append(sections, f.formatSection(s))
	}
	return strings.Join(sections, "\n\n")
}

func (f *TerminalFormatter) formatHeader(doc Document) string {
	title := f.title.UnsetMargins().Render(cli.ChartIcon + " " + doc.Title)
	subtitle := f.subtitle.UnsetMargins().Render(doc.Subtitle)
	generated := f.subtle.Render(doc.Generated)
	return fmt.Sprintf("%s\n%s\n%s", title, subtitle, generated)
}

// formatMetrics draws the metrics table with one share bar per entry.
func (f *TerminalFormatter) formatMetrics(doc Document) string {
	if doc.Notice != "" {
		return f.box.Render(f.warning.Render(cli.WarningIcon + " " + doc.Notice))
	}

	labelWidth := 26
	amountWidth := 18
	pctWidth := 8

	header := fmt.Sprintf("%-*s %*s %*s",
		labelWidth, "Metric",
		amountWidth, "Amount",
		pctWidth, "Share")
	rows := []string{
		f.subtle.Bold(true).Render(header),
		f.subtle.Render(strings.Repeat("─", len(header))),
	}

	for i, m := range doc.Metrics {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Hex))
		share := doc.Series.Percent(i)
		filled := int(float64(f.barWidth) * share / 100)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", f.barWidth-filled)

		row := fmt.Sprintf("%s %-*s %*s %*s  %s",
			swatch.Render("●"),
			labelWidth-2, m.Label,
			amountWidth, m.Amount,
			pctWidth, m.Percentage,
			swatch.Render(bar))
		rows = append(rows, row)
	}

	if doc.Total != nil {
		rows = append(rows,
			f.subtle.Render(strings.Repeat("─", len(header))),
			f.bold.Render(fmt.Sprintf("%-*s %*s %*s",
				labelWidth, doc.Total.Label,
				amountWidth, doc.Total.Amount,
				pctWidth, doc.Total.Percentage)))
	}
	return strings.Join(rows, "\n")
}

func (f *TerminalFormatter) formatSection(s Section) string {
	keyWidth := 0
	for _, field := range s.Fields {
		keyWidth = max(keyWidth, len(field.Key))
	}

	lines := make([]string, 0, len(s.Fields)+1)
	if s.Note != "" {
		lines = append(lines, f.warning.Render(cli.WarningIcon+" "+s.Note))
	}
	for _, field := range s.Fields {
		key := f.subtle.Render(fmt.Sprintf("%-*s", keyWidth, field.Key+":"))
		lines = append(lines, fmt.Sprintf("%s %s", key, field.Value))
	}

	title := f.title.UnsetMargins().Render(s.Title)
	return f.box.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")))
}
