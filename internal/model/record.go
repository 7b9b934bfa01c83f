package model

import "time"

// AmountSource records where a record's monetary amount came from.
type AmountSource string

const (
	// AmountFromField means a direct total/amount field was present.
	AmountFromField AmountSource = "field"
	// AmountFromItems means the amount was computed from line items.
	AmountFromItems AmountSource = "items"
	// AmountNone means neither was available and the amount defaulted to 0.
	AmountNone AmountSource = "none"
)

// Record is one normalized invoice, expense, product, purchase order or
// sales order. Every field is optional in the source data; missing values
// are left at their zero value.
type Record struct {
	Date          time.Time // zero when DateRaw is missing or unparseable
	CreatedAt     time.Time
	Kind          Kind
	ID            string
	Number        string
	Name          string
	Party         string // customer for invoices and sales orders, vendor otherwise
	Category      string
	Status        string
	Description   string
	PaymentMethod string
	DateRaw       string
	DueDate       string
	AmountSource  AmountSource
	Items         []LineItem
	Amount        float64
	Price         float64
	Stock         float64
}

// HasDate reports whether the record carried a parseable date.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

// LineItem is a single priced line on an invoice or order.
type LineItem struct {
	Name      string
	Quantity  float64
	UnitPrice float64
	Discount  float64 // percent
	Tax       float64 // percent
}

// Total is quantity × unit price, reduced by the discount percentage and
// then increased by the tax percentage.
func (li LineItem) Total() float64 {
	total := li.Quantity * li.UnitPrice
	total -= total * (li.Discount / 100)
	total += total * (li.Tax / 100)
	return total
}

// ItemsTotal sums the recomputed totals of items.
func ItemsTotal(items []LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Total()
	}
	return sum
}

// StatusOverride is a locally stored status for a record.
type StatusOverride struct {
	UpdatedAt time.Time
	RecordID  string
	Status    string
}
