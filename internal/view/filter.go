package view

import (
	"strings"

	"github.com/Veraticus/billwell/internal/model"
)

// All matches every value of a status, category or month filter.
const All = "all"

// FilterInvoices keeps invoices whose number or customer contains search and
// whose status equals status.
func FilterInvoices(records []model.Record, search, status string) []model.Record {
	return filter(records, func(r model.Record) bool {
		return matchesSearch(search, r.Number, r.Party) && exact(status, r.Status)
	})
}

// FilterExpenses keeps expenses whose description or category contains
// search, in category, dated in month (YYYY-MM).
func FilterExpenses(records []model.Record, search, category, month string) []model.Record {
	return filter(records, func(r model.Record) bool {
		return matchesSearch(search, r.Description, r.Category) &&
			exact(category, r.Category) &&
			inMonth(month, r)
	})
}

// FilterProducts keeps products whose name contains search in category.
// Category comparison ignores case.
func FilterProducts(records []model.Record, search, category string) []model.Record {
	return filter(records, func(r model.Record) bool {
		return matchesSearch(search, r.Name) && folded(category, r.Category)
	})
}

// FilterOrders keeps purchase or sales orders whose number, id or party
// contains search. Status comparison ignores case.
func FilterOrders(records []model.Record, search, status string) []model.Record {
	return filter(records, func(r model.Record) bool {
		return matchesSearch(search, r.Number, r.ID, r.Party) && folded(status, r.Status)
	})
}

func filter(records []model.Record, keep func(model.Record) bool) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func matchesSearch(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func unfiltered(want string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, All)
}

func exact(want, got string) bool {
	return unfiltered(want) || strings.TrimSpace(want) == got
}

func folded(want, got string) bool {
	return unfiltered(want) || strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
}

func inMonth(month string, r model.Record) bool {
	if unfiltered(month) {
		return true
	}
	month = strings.TrimSpace(month)
	if r.HasDate() && r.Date.Format("2006-01") == month {
		return true
	}
	return strings.HasPrefix(r.DateRaw, month)
}
