package model

import (
	"errors"
	"math"
	"time"
)

// Draft defaults for new invoices and orders.
const (
	DefaultGSTRate = 18.0
	DefaultDueDays = 30
)

// ErrInvalidTaxRate is returned for a tax rate outside 0–100.
var ErrInvalidTaxRate = errors.New("tax rate must be between 0 and 100")

// Totals are the figures of an invoice or order being drafted.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	TaxRate  float64 `json:"tax_rate"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// DraftTotals sums quantity × unit price over items and applies taxRate
// percent to the subtotal. Per-line discount and tax are not used here.
func DraftTotals(items []LineItem, taxRate float64) (Totals, error) {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Quantity * item.UnitPrice
	}
	return Totals{Subtotal: subtotal}.WithTaxRate(taxRate)
}

// WithTaxRate recomputes tax and total for a new rate, keeping the subtotal.
// An invalid rate leaves t unchanged.
func (t Totals) WithTaxRate(rate float64) (Totals, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 100 {
		return t, ErrInvalidTaxRate
	}
	t.TaxRate = rate
	t.Tax = t.Subtotal * rate / 100
	t.Total = t.Subtotal + t.Tax
	return t, nil
}

// DueDate is the default payment due date for a document issued on issued.
func DueDate(issued time.Time) time.Time {
	return issued.AddDate(0, 0, DefaultDueDays)
}
