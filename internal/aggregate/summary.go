package aggregate

import (
	"strings"
	"time"

	"github.com/Veraticus/billwell/internal/model"
)

// LowStockThreshold is the stock level below which a product is flagged.
const LowStockThreshold = 5

// TopPartyCount is how many vendors or customers the order summaries rank.
const TopPartyCount = 5

// NoCategory is the max category reported when there are no expenses.
const NoCategory = "None"

// DefaultPaidStatuses are the statuses counted as paid.
var DefaultPaidStatuses = []string{"paid", "completed", "settled"}

// ExpenseSummary aggregates expenses.
type ExpenseSummary struct {
	MaxCategory       string   `json:"max_category"`
	ByCategory        []Bucket `json:"by_category"`
	Count             int      `json:"count"`
	Total             float64  `json:"total"`
	MaxCategoryAmount float64  `json:"max_category_amount"`
	Average           float64  `json:"average"`
}

// ProductSummary aggregates the product catalogue.
type ProductSummary struct {
	ByCategory []Bucket       `json:"by_category"`
	LowStock   []model.Record `json:"-"`
	Count      int            `json:"count"`
	StockValue float64        `json:"stock_value"`
}

// InvoiceSummary aggregates invoices.
type InvoiceSummary struct {
	ByStatus     []Bucket    `json:"by_status"`
	Monthly      [12]float64 `json:"monthly"`
	Count        int         `json:"count"`
	Year         int         `json:"year"`
	PaidCount    int         `json:"paid_count"`
	UnpaidCount  int         `json:"unpaid_count"`
	Revenue      float64     `json:"revenue"`
	PaidAmount   float64     `json:"paid_amount"`
	UnpaidAmount float64     `json:"unpaid_amount"`
}

// OrderSummary aggregates purchase or sales orders. TopParties holds vendors
// for purchase orders and customers for sales orders.
type OrderSummary struct {
	ByStatus   []Bucket `json:"by_status"`
	TopParties []Bucket `json:"top_parties"`
	Count      int      `json:"count"`
	Total      float64  `json:"total"`
}

// InvoiceOptions configures SummarizeInvoices.
type InvoiceOptions struct {
	// Location is used to place invoice dates in a month. Nil means UTC.
	Location *time.Location
	// PaidStatuses overrides DefaultPaidStatuses when non-empty.
	PaidStatuses []string
	// Year selects the monthly series. Zero leaves the series empty.
	Year int
}

// SummarizeExpenses totals expenses and finds the highest-spend category.
func SummarizeExpenses(records []model.Record) ExpenseSummary {
	s := EmptyExpenseSummary()
	s.Count = len(records)
	s.Total = Sum(records)
	s.ByCategory = Breakdown(records, byCategory, Uncategorized)
	if top, ok := Max(s.ByCategory); ok {
		s.MaxCategory = top.Key
		s.MaxCategoryAmount = top.Total
	}
	s.Average = s.Total / float64(max(s.Count, 1))
	return s
}

// SummarizeProducts totals stock value and lists products running low.
func SummarizeProducts(records []model.Record) ProductSummary {
	s := EmptyProductSummary()
	s.Count = len(records)
	s.StockValue = Sum(records)
	s.ByCategory = Breakdown(records, byCategory, Uncategorized)
	for _, r := range records {
		if r.Stock < LowStockThreshold {
			s.LowStock = append(s.LowStock, r)
		}
	}
	return s
}

// SummarizeInvoices totals revenue, splits it into paid and unpaid, and
// builds the monthly series for opts.Year.
//
// Any status outside the paid list counts as unpaid, including blank and
// unrecognized ones.
func SummarizeInvoices(records []model.Record, opts InvoiceOptions) InvoiceSummary {
	paid := opts.PaidStatuses
	if len(paid) == 0 {
		paid = DefaultPaidStatuses
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	s := EmptyInvoiceSummary(opts.Year)
	s.Count = len(records)
	s.ByStatus = Breakdown(records, byStatus, Pending)
	for _, r := range records {
		s.Revenue += r.Amount
		if IsPaid(r.Status, paid) {
			s.PaidCount++
			s.PaidAmount += r.Amount
		} else {
			s.UnpaidCount++
			s.UnpaidAmount += r.Amount
		}

		if opts.Year == 0 || !r.HasDate() {
			continue
		}
		d := r.Date.In(loc)
		if d.Year() != opts.Year {
			continue
		}
		s.Monthly[d.Month()-1] += r.Amount
	}
	return s
}

// SummarizePurchaseOrders totals purchase orders and ranks vendors.
func SummarizePurchaseOrders(records []model.Record) OrderSummary {
	return summarizeOrders(records)
}

// SummarizeSalesOrders totals sales orders and ranks customers.
func SummarizeSalesOrders(records []model.Record) OrderSummary {
	return summarizeOrders(records)
}

func summarizeOrders(records []model.Record) OrderSummary {
	s := EmptyOrderSummary()
	s.Count = len(records)
	s.Total = Sum(records)
	s.ByStatus = Breakdown(records, byStatus, Pending)
	s.TopParties = TopN(Breakdown(records, byParty, Unknown), TopPartyCount)
	return s
}

// IsPaid reports whether status case-insensitively matches one of synonyms.
func IsPaid(status string, synonyms []string) bool {
	status = strings.TrimSpace(status)
	for _, s := range synonyms {
		if strings.EqualFold(status, s) {
			return true
		}
	}
	return false
}

// EmptyExpenseSummary is the summary of no expenses.
func EmptyExpenseSummary() ExpenseSummary {
	return ExpenseSummary{MaxCategory: NoCategory, ByCategory: []Bucket{}}
}

// EmptyProductSummary is the summary of no products.
func EmptyProductSummary() ProductSummary {
	return ProductSummary{ByCategory: []Bucket{}}
}

// EmptyInvoiceSummary is the summary of no invoices for year.
func EmptyInvoiceSummary(year int) InvoiceSummary {
	return InvoiceSummary{Year: year, ByStatus: []Bucket{}}
}

// EmptyOrderSummary is the summary of no orders.
func EmptyOrderSummary() OrderSummary {
	return OrderSummary{ByStatus: []Bucket{}, TopParties: []Bucket{}}
}
