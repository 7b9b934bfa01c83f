// Package report combines per-resource summaries into the business overview
// and renders it for the terminal, HTML and PDF.
package report

import (
	"math"
	"sort"

	"github.com/Veraticus/billwell/internal/aggregate"
	"github.com/Veraticus/billwell/internal/model"
)

// Series labels.
const (
	LabelExpenses       = "Total Expenses"
	LabelInventory      = "Product Inventory Value"
	LabelRevenue        = "Invoice Revenue"
	LabelPurchaseOrders = "Purchase Orders Value"
	LabelSalesOrders    = "Sales Orders Value"
	LabelNoData         = "No Data Available"
)

// PlaceholderValue is the value of the single entry shown when every
// resource is zero.
const PlaceholderValue = 100

// Entry is one labeled, colored slice of the overview.
type Entry struct {
	Kind  model.Kind `json:"kind,omitempty"`
	Label string     `json:"label"`
	Color string     `json:"color"`
	Hex   string     `json:"-"`
	Value float64    `json:"value"`
}

// CombinedSeries is the ordered overview shared by the chart and the
// generated document.
type CombinedSeries struct {
	Entries     []Entry `json:"entries"`
	Placeholder bool    `json:"placeholder"`
}

// Summaries bundles one summary per resource. Failures records the resources
// whose fetch failed; their summaries are the zero summaries.
type Summaries struct {
	Failures       map[model.Kind]error
	Expenses       aggregate.ExpenseSummary
	Products       aggregate.ProductSummary
	Invoices       aggregate.InvoiceSummary
	PurchaseOrders aggregate.OrderSummary
	SalesOrders    aggregate.OrderSummary
}

// EmptySummaries returns zero summaries for every resource.
func EmptySummaries(year int) Summaries {
	return Summaries{
		Failures:       map[model.Kind]error{},
		Expenses:       aggregate.EmptyExpenseSummary(),
		Products:       aggregate.EmptyProductSummary(),
		Invoices:       aggregate.EmptyInvoiceSummary(year),
		PurchaseOrders: aggregate.EmptyOrderSummary(),
		SalesOrders:    aggregate.EmptyOrderSummary(),
	}
}

// Summarize aggregates already normalized records. Kinds missing from records
// keep their zero summary.
func Summarize(records map[model.Kind][]model.Record, opts aggregate.InvoiceOptions) Summaries {
	s := EmptySummaries(opts.Year)
	for kind, recs := range records {
		s.Set(kind, recs, opts)
	}
	return s
}

// Set replaces the summary of kind with one computed from records.
func (s *Summaries) Set(kind model.Kind, records []model.Record, opts aggregate.InvoiceOptions) {
	switch kind {
	case model.KindExpenses:
		s.Expenses = aggregate.SummarizeExpenses(records)
	case model.KindProducts:
		s.Products = aggregate.SummarizeProducts(records)
	case model.KindInvoices:
		s.Invoices = aggregate.SummarizeInvoices(records, opts)
	case model.KindPurchaseOrders:
		s.PurchaseOrders = aggregate.SummarizePurchaseOrders(records)
	case model.KindSalesOrders:
		s.SalesOrders = aggregate.SummarizeSalesOrders(records)
	}
}

// Fail records a failed fetch for kind and resets its summary.
func (s *Summaries) Fail(kind model.Kind, err error) {
	if s.Failures == nil {
		s.Failures = map[model.Kind]error{}
	}
	s.Failures[kind] = err
	empty := EmptySummaries(s.Invoices.Year)
	switch kind {
	case model.KindExpenses:
		s.Expenses = empty.Expenses
	case model.KindProducts:
		s.Products = empty.Products
	case model.KindInvoices:
		s.Invoices = empty.Invoices
	case model.KindPurchaseOrders:
		s.PurchaseOrders = empty.PurchaseOrders
	case model.KindSalesOrders:
		s.SalesOrders = empty.SalesOrders
	}
}

// Failed reports whether kind's fetch failed.
func (s Summaries) Failed(kind model.Kind) bool {
	_, ok := s.Failures[kind]
	return ok
}

type headline struct {
	kind  model.Kind
	label string
	color string
	hex   string
	value func(Summaries) float64
}

var headlines = []headline{
	{model.KindExpenses, LabelExpenses, "rgba(255, 99, 132, 0.8)", "#FF6384",
		func(s Summaries) float64 { return s.Expenses.Total }},
	{model.KindProducts, LabelInventory, "rgba(54, 162, 235, 0.8)", "#36A2EB",
		func(s Summaries) float64 { return s.Products.StockValue }},
	{model.KindInvoices, LabelRevenue, "rgba(46, 204, 113, 0.8)", "#2ECC71",
		func(s Summaries) float64 { return s.Invoices.Revenue }},
	{model.KindPurchaseOrders, LabelPurchaseOrders, "rgba(255, 159, 64, 0.8)", "#FF9F40",
		func(s Summaries) float64 { return s.PurchaseOrders.Total }},
	{model.KindSalesOrders, LabelSalesOrders, "rgba(153, 102, 255, 0.8)", "#9966FF",
		func(s Summaries) float64 { return s.SalesOrders.Total }},
}

// Compose builds the overview series. Resources whose headline value is not
// strictly positive are omitted. When nothing remains a single placeholder
// entry is returned instead.
func Compose(s Summaries) CombinedSeries {
	var entries []Entry
	for _, h := range headlines {
		v := h.value(s)
		if v <= 0 {
			continue
		}
		entries = append(entries, Entry{
			Kind:  h.kind,
			Label: h.label,
			Value: v,
			Color: h.color,
			Hex:   h.hex,
		})
	}
	if len(entries) == 0 {
		return CombinedSeries{
			Entries: []Entry{{
				Label: LabelNoData,
				Value: PlaceholderValue,
				Color: "rgba(200, 200, 200, 0.8)",
				Hex:   "#C8C8C8",
			}},
			Placeholder: true,
		}
	}
	return CombinedSeries{Entries: entries}
}

// Total sums the real entries. It is 0 for the placeholder series.
func (c CombinedSeries) Total() float64 {
	if c.Placeholder {
		return 0
	}
	var total float64
	for _, e := range c.Entries {
		total += e.Value
	}
	return total
}

// Percent is entry i's share of Total in one-decimal steps, or 0 when the
// total is 0. It is the i-th value of Percentages.
func (c CombinedSeries) Percent(i int) float64 {
	if i < 0 || i >= len(c.Entries) {
		return 0
	}
	return c.Percentages()[i]
}

// Percentages returns every entry's share of Total in tenths of a percent,
// apportioned by largest remainder so that they add up to exactly 100 when
// the total is positive. Ties go to the earlier entry. All shares are 0 when
// the total is 0.
func (c CombinedSeries) Percentages() []float64 {
	out := make([]float64, len(c.Entries))
	total := c.Total()
	if total <= 0 {
		return out
	}

	const whole = 1000
	tenths := make([]int, len(c.Entries))
	remainders := make([]float64, len(c.Entries))
	assigned := 0
	for i, e := range c.Entries {
		exact := e.Value / total * whole
		floor := math.Floor(exact + 1e-9)
		tenths[i] = int(floor)
		remainders[i] = exact - floor
		assigned += tenths[i]
	}

	order := make([]int, len(c.Entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for k := 0; assigned < whole; k = (k + 1) % len(order) {
		tenths[order[k]]++
		assigned++
	}

	for i, t := range tenths {
		out[i] = float64(t) / 10
	}
	return out
}
