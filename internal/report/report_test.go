package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/billwell/internal/aggregate"
	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
)

func summariesWith(expenses, stock, revenue, po, so float64) Summaries {
	s := EmptySummaries(2024)
	s.Expenses.Total = expenses
	s.Products.StockValue = stock
	s.Invoices.Revenue = revenue
	s.PurchaseOrders.Total = po
	s.SalesOrders.Total = so
	return s
}

func labels(c CombinedSeries) []string {
	out := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e.Label)
	}
	return out
}

func TestCompose_OmitsZeroResources(t *testing.T) {
	c := Compose(summariesWith(1500, 0, 3000, 0, 500))
	assert.False(t, c.Placeholder)
	assert.Equal(t, []string{LabelExpenses, LabelRevenue, LabelSalesOrders}, labels(c))
	assert.Equal(t, "rgba(255, 99, 132, 0.8)", c.Entries[0].Color)
	assert.Equal(t, model.KindInvoices, c.Entries[1].Kind)
	assert.InDelta(t, 5000.0, c.Total(), 1e-9)
}

func TestCompose_NegativeValuesOmitted(t *testing.T) {
	c := Compose(summariesWith(-10, 0, 0, 0, 0))
	assert.True(t, c.Placeholder)
}

func TestCompose_Placeholder(t *testing.T) {
	c := Compose(EmptySummaries(2024))
	require.Len(t, c.Entries, 1)
	assert.True(t, c.Placeholder)
	assert.Equal(t, LabelNoData, c.Entries[0].Label)
	assert.InDelta(t, float64(PlaceholderValue), c.Entries[0].Value, 1e-9)
	assert.Zero(t, c.Total())
	assert.Equal(t, []float64{0}, c.Percentages())
}

func TestCombinedSeries_PercentagesSumToHundred(t *testing.T) {
	cases := []Summaries{
		summariesWith(1, 1, 1, 0, 0),
		summariesWith(1500, 250000, 3000, 720, 12),
		summariesWith(0.01, 0, 0, 0, 99999.99),
		summariesWith(10, 20, 30, 40, 50),
		summariesWith(2005, 2005, 2005, 2005, 1980),
	}
	for _, s := range cases {
		c := Compose(s)
		var sum float64
		for _, p := range c.Percentages() {
			sum += p
		}
		assert.InDelta(t, 100.0, sum, 0.1, "series %v", labels(c))
	}
}

func TestCombinedSeries_PercentagesLargestRemainder(t *testing.T) {
	tests := []struct {
		name string
		s    Summaries
		want []float64
	}{
		{name: "four equal shares and a smaller one", s: summariesWith(2005, 2005, 2005, 2005, 1980), want: []float64{20.1, 20.1, 20, 20, 19.8}},
		{name: "thirds", s: summariesWith(1, 1, 1, 0, 0), want: []float64{33.4, 33.3, 33.3}},
		{name: "single entry", s: summariesWith(0, 0, 42, 0, 0), want: []float64{100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compose(tt.s)
			got := c.Percentages()
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
				assert.InDelta(t, tt.want[i], c.Percent(i), 1e-9)
			}
		})
	}
}

func TestBuildDocument_PercentagesAddUp(t *testing.T) {
	series := Compose(summariesWith(2005, 2005, 2005, 2005, 1980))
	doc := BuildDocument(series, summariesWith(2005, 2005, 2005, 2005, 1980), format.DefaultFormatter(), time.Now())
	got := make([]string, len(doc.Metrics))
	for i, m := range doc.Metrics {
		got[i] = m.Percentage
	}
	assert.Equal(t, []string{"20.1%", "20.1%", "20.0%", "20.0%", "19.8%"}, got)
}

func TestCombinedSeries_PercentOutOfRange(t *testing.T) {
	c := Compose(summariesWith(10, 0, 0, 0, 0))
	assert.InDelta(t, 100.0, c.Percent(0), 1e-9)
	assert.Zero(t, c.Percent(5))
	assert.Zero(t, c.Percent(-1))
}

func TestSummaries_SetAndFail(t *testing.T) {
	s := Summarize(map[model.Kind][]model.Record{
		model.KindExpenses: {{Amount: 100, Category: "Rent"}},
		model.KindInvoices: {{Amount: 50, Status: "paid"}},
	}, aggregate.InvoiceOptions{Year: 2024})
	assert.InDelta(t, 100.0, s.Expenses.Total, 1e-9)
	assert.Equal(t, 1, s.Invoices.PaidCount)

	s.Fail(model.KindExpenses, errors.New("boom"))
	assert.True(t, s.Failed(model.KindExpenses))
	assert.False(t, s.Failed(model.KindInvoices))
	assert.Equal(t, aggregate.EmptyExpenseSummary(), s.Expenses)
	assert.Equal(t, []string{LabelRevenue}, labels(Compose(s)))
}

func TestBuildDocument_MatchesSeries(t *testing.T) {
	s := summariesWith(1500, 0, 3000, 0, 500)
	s.Invoices.PaidCount = 2
	s.Invoices.PaidAmount = 2000
	s.Invoices.UnpaidCount = 1
	s.Invoices.UnpaidAmount = 1000
	s.Expenses.MaxCategory = "Rent"
	s.Expenses.MaxCategoryAmount = 1500
	s.Fail(model.KindPurchaseOrders, errors.New("timeout"))

	series := Compose(s)
	at := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	doc := BuildDocument(series, s, format.DefaultFormatter(), at)

	assert.Equal(t, DocumentTitle, doc.Title)
	assert.Equal(t, "Generated on March 5, 2024 at 2:30 PM", doc.Generated)
	assert.Empty(t, doc.Notice)

	require.Len(t, doc.Metrics, len(series.Entries))
	for i, e := range series.Entries {
		assert.Equal(t, e.Label, doc.Metrics[i].Label)
		assert.InDelta(t, e.Value, format.ParseAmount(doc.Metrics[i].Amount), 1e-9)
		assert.Equal(t, format.FormatPercent(series.Percent(i)), doc.Metrics[i].Percentage)
	}
	assert.Equal(t, "₹1,500.00", doc.Metrics[0].Amount)
	assert.Equal(t, "30.0%", doc.Metrics[0].Percentage)

	require.NotNil(t, doc.Total)
	assert.Equal(t, TotalLabel, doc.Total.Label)
	assert.Equal(t, "₹5,000.00", doc.Total.Amount)
	assert.Equal(t, "100%", doc.Total.Percentage)

	require.Len(t, doc.Sections, 5)
	invoices := doc.Sections[2]
	assert.Equal(t, "Invoice Summary", invoices.Title)
	assert.Contains(t, invoices.Fields, Field{Key: "Paid Invoices", Value: "2 (₹2,000.00)"})
	assert.Contains(t, invoices.Fields, Field{Key: "Unpaid Invoices", Value: "1 (₹1,000.00)"})
	assert.Equal(t, UnavailableNote, doc.Sections[3].Note)
	assert.Empty(t, doc.Sections[0].Note)
}

func TestBuildDocument_Placeholder(t *testing.T) {
	s := EmptySummaries(2024)
	doc := BuildDocument(Compose(s), s, format.DefaultFormatter(), time.Now())
	assert.Equal(t, NoDataNotice, doc.Notice)
	assert.Empty(t, doc.Metrics)
	assert.Nil(t, doc.Total)
	assert.Contains(t, doc.Sections[0].Fields, Field{Key: "Highest Category", Value: aggregate.NoCategory})
}

func TestHTMLRenderer(t *testing.T) {
	r, err := NewHTMLRenderer()
	require.NoError(t, err)

	s := summariesWith(1500, 0, 3000, 0, 0)
	doc := BuildDocument(Compose(s), s, format.DefaultFormatter(), time.Now())
	out, err := r.Render(doc)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, DocumentTitle)
	assert.Contains(t, html, LabelExpenses)
	assert.Contains(t, html, "₹3,000.00")
	assert.Contains(t, html, "33.3%")
	assert.Contains(t, html, "rgba(255, 99, 132, 0.8)")
	assert.NotContains(t, html, "ZgotmplZ")
	assert.NotContains(t, html, NoDataNotice)
}

func TestHTMLRenderer_Placeholder(t *testing.T) {
	r, err := NewHTMLRenderer()
	require.NoError(t, err)

	s := EmptySummaries(2024)
	out, err := r.Render(BuildDocument(Compose(s), s, format.DefaultFormatter(), time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(out), NoDataNotice)
}

func TestBuildExpenseReport(t *testing.T) {
	expenses := []model.Record{
		{ID: "e1", Description: "Paper", Category: "Office", Amount: 1500, PaymentMethod: "Card", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "e2", Category: "Travel", Amount: 550.5},
	}
	r, err := BuildExpenseReport(expenses, format.DefaultFormatter(), time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, ExpenseReportTitle, r.Title)
	assert.Equal(t, ExpenseReportSubtitle, r.Subtitle)
	assert.Equal(t, "Generated: June 1, 2024 at 9:30 AM", r.Generated)
	assert.Equal(t, []ExpenseRow{
		{Date: "March 10, 2024", Description: "Paper", Category: "Office", Amount: "₹1,500.00", PaymentMethod: "Card"},
		{Date: format.DateUnavailable, Description: "-", Category: "Travel", Amount: "₹550.50", PaymentMethod: "-"},
	}, r.Rows)
	assert.Equal(t, "₹2,050.50", r.Total)
}

func TestBuildExpenseReport_Empty(t *testing.T) {
	_, err := BuildExpenseReport(nil, format.DefaultFormatter(), time.Now())
	assert.ErrorIs(t, err, ErrNoExpenses)
}

func TestHTMLRenderer_Expenses(t *testing.T) {
	r, err := NewHTMLRenderer()
	require.NoError(t, err)

	expenses := []model.Record{{Description: "<b>Paper</b>", Category: "Office", Amount: 1500, PaymentMethod: "UPI"}}
	er, err := BuildExpenseReport(expenses, format.DefaultFormatter(), time.Now())
	require.NoError(t, err)
	out, err := r.RenderExpenses(er)
	require.NoError(t, err)

	html := string(out)
	for _, want := range []string{ExpenseReportTitle, ExpenseReportSubtitle, "Date", "Description", "Category", "Amount", "Payment Method", "UPI", ExpenseTotalLabel + " ₹1,500.00", "Generated: "} {
		assert.Contains(t, html, want)
	}
	assert.Contains(t, html, "&lt;b&gt;Paper&lt;/b&gt;")
	assert.NotContains(t, html, DocumentSubtitle)
}

func TestCSSColor(t *testing.T) {
	assert.Equal(t, "rgba(54, 162, 235, 0.8)", string(cssColor("rgba(54, 162, 235, 0.8)")))
	assert.Equal(t, "#FF9F40", string(cssColor("#FF9F40")))
	assert.Equal(t, "#C8C8C8", string(cssColor("red;background:url(x)")))
}

func TestTerminalFormatter(t *testing.T) {
	s := summariesWith(1500, 0, 3000, 0, 0)
	doc := BuildDocument(Compose(s), s, format.DefaultFormatter(), time.Now())
	out := NewTerminalFormatter().Format(doc)

	assert.Contains(t, out, DocumentTitle)
	assert.Contains(t, out, LabelRevenue)
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, TotalLabel)
	for _, sec := range doc.Sections {
		assert.Contains(t, out, sec.Title)
	}

	empty := EmptySummaries(2024)
	placeholder := NewTerminalFormatter().Format(BuildDocument(Compose(empty), empty, format.DefaultFormatter(), time.Now()))
	assert.True(t, strings.Contains(placeholder, NoDataNotice))
}
