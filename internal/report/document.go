package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
)

// Document headings.
const (
	DocumentTitle    = "Business Management System"
	DocumentSubtitle = "Business Overview Report"
	NoDataNotice     = "No financial data available"
	UnavailableNote  = "Data unavailable: the last fetch failed"
	TotalLabel       = "TOTAL"
)

// MetricRow is one line of the metrics table.
type MetricRow struct {
	Label      string `json:"label"`
	Amount     string `json:"amount"`
	Percentage string `json:"percentage"`
	Color      string `json:"color,omitempty"`
	Hex        string `json:"-"`
}

// Field is one key/value pair of a summary section.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section lists one resource's summary.
type Section struct {
	Title  string     `json:"title"`
	Note   string     `json:"note,omitempty"`
	Kind   model.Kind `json:"kind"`
	Fields []Field    `json:"fields"`
}

// Document is the printable overview. Every renderer draws from the same
// Document, so the terminal, HTML, PDF and spreadsheet outputs agree.
type Document struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Total       *MetricRow     `json:"total,omitempty"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle"`
	Generated   string         `json:"generated"`
	Notice      string         `json:"notice,omitempty"`
	Metrics     []MetricRow    `json:"metrics"`
	Sections    []Section      `json:"sections"`
	Series      CombinedSeries `json:"series"`
}

// BuildDocument lays out series and summaries. Money is rendered through the
// document formatting path.
func BuildDocument(series CombinedSeries, s Summaries, f *format.Formatter, generatedAt time.Time) Document {
	doc := Document{
		Title:       DocumentTitle,
		Subtitle:    DocumentSubtitle,
		GeneratedAt: generatedAt,
		Generated:   "Generated on " + generatedAt.Format("January 2, 2006 at 3:04 PM"),
		Series:      series,
		Metrics:     make([]MetricRow, 0, len(series.Entries)),
	}

	money := func(v float64) string { return f.FormatCurrency(v, format.Document) }

	if series.Placeholder {
		doc.Notice = NoDataNotice
	} else {
		shares := series.Percentages()
		for i, e := range series.Entries {
			doc.Metrics = append(doc.Metrics, MetricRow{
				Label:      e.Label,
				Amount:     money(e.Value),
				Percentage: percentLabel(shares, series.Total(), i),
				Color:      e.Color,
				Hex:        e.Hex,
			})
		}
		doc.Total = &MetricRow{
			Label:      TotalLabel,
			Amount:     money(series.Total()),
			Percentage: "100%",
		}
	}

	doc.Sections = []Section{
		{
			Title: "Expense Summary",
			Kind:  model.KindExpenses,
			Fields: []Field{
				{"Total Expenses", money(s.Expenses.Total)},
				{"Highest Category", s.Expenses.MaxCategory},
				{"Highest Amount", money(s.Expenses.MaxCategoryAmount)},
				{"Average Expense", money(s.Expenses.Average)},
			},
		},
		{
			Title: "Product Summary",
			Kind:  model.KindProducts,
			Fields: []Field{
				{"Total Products", fmt.Sprintf("%d", s.Products.Count)},
				{"Stock Value", money(s.Products.StockValue)},
				{"Low Stock Items", fmt.Sprintf("%d", len(s.Products.LowStock))},
			},
		},
		{
			Title: "Invoice Summary",
			Kind:  model.KindInvoices,
			Fields: []Field{
				{"Total Invoices", fmt.Sprintf("%d", s.Invoices.Count)},
				{"Total Revenue", money(s.Invoices.Revenue)},
				{"Paid Invoices", fmt.Sprintf("%d (%s)", s.Invoices.PaidCount, money(s.Invoices.PaidAmount))},
				{"Unpaid Invoices", fmt.Sprintf("%d (%s)", s.Invoices.UnpaidCount, money(s.Invoices.UnpaidAmount))},
			},
		},
		{
			Title: "Purchase Order Summary",
			Kind:  model.KindPurchaseOrders,
			Fields: []Field{
				{"Total Purchase Orders", fmt.Sprintf("%d", s.PurchaseOrders.Count)},
				{"Total Amount", money(s.PurchaseOrders.Total)},
			},
		},
		{
			Title: "Sales Order Summary",
			Kind:  model.KindSalesOrders,
			Fields: []Field{
				{"Total Sales Orders", fmt.Sprintf("%d", s.SalesOrders.Count)},
				{"Total Amount", money(s.SalesOrders.Total)},
			},
		},
	}
	for i := range doc.Sections {
		if s.Failed(doc.Sections[i].Kind) {
			doc.Sections[i].Note = UnavailableNote
		}
	}
	return doc
}

// percentLabel renders share i, or "0%" when the total is zero.
func percentLabel(shares []float64, total float64, i int) string {
	if total == 0 {
		return "0%"
	}
	return format.FormatPercent(shares[i])
}
