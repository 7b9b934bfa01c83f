package sheets

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/billwell/internal/report"
)

// MetricRow is one line of the overview table with its raw amount, so the
// sheet holds numbers rather than formatted text.
type MetricRow struct {
	Label  string
	Share  string
	Amount decimal.Decimal
}

// Layout is a report.Document arranged as spreadsheet values.
type Layout struct {
	Values [][]any
	// MetricStart and MetricEnd bound the zero-based rows holding amounts.
	MetricStart int
	MetricEnd   int
	// Headings are the zero-based rows that start a block.
	Headings []int
}

// metricRows pairs the document's metric labels with the series amounts
// they were formatted from.
func metricRows(doc report.Document) []MetricRow {
	if doc.Series.Placeholder {
		return nil
	}
	rows := make([]MetricRow, 0, len(doc.Metrics)+1)
	for i, m := range doc.Metrics {
		var amount decimal.Decimal
		if i < len(doc.Series.Entries) {
			amount = decimal.NewFromFloat(doc.Series.Entries[i].Value).Round(2)
		}
		rows = append(rows, MetricRow{Label: m.Label, Share: m.Percentage, Amount: amount})
	}
	if doc.Total != nil {
		rows = append(rows, MetricRow{
			Label:  doc.Total.Label,
			Share:  doc.Total.Percentage,
			Amount: decimal.NewFromFloat(doc.Series.Total()).Round(2),
		})
	}
	return rows
}

// BuildLayout arranges doc for the Overview sheet.
func BuildLayout(doc report.Document) Layout {
	l := Layout{Values: make([][]any, 0, 8+len(doc.Metrics)+4*len(doc.Sections))}
	add := func(row ...any) int {
		l.Values = append(l.Values, row)
		return len(l.Values) - 1
	}

	l.Headings = append(l.Headings, add(doc.Title, doc.Subtitle))
	add(doc.Generated)
	add()
	l.Headings = append(l.Headings, add("Financial Overview"))
	add("Metric", "Amount", "Percentage")

	rows := metricRows(doc)
	if len(rows) == 0 {
		add(doc.Notice)
		l.MetricStart, l.MetricEnd = -1, -1
	} else {
		l.MetricStart = len(l.Values)
		for _, r := range rows {
			add(r.Label, r.Amount.InexactFloat64(), r.Share)
		}
		l.MetricEnd = len(l.Values)
	}

	for _, s := range doc.Sections {
		add()
		l.Headings = append(l.Headings, add(s.Title))
		if s.Note != "" {
			add(s.Note)
		}
		for _, f := range s.Fields {
			add(f.Key, f.Value)
		}
	}
	return l
}
