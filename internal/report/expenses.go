package report

import (
	"errors"
	"time"

	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
)

// Expense report headings.
const (
	ExpenseReportTitle    = "BillWell"
	ExpenseReportSubtitle = "Expenses Report"
	ExpenseTotalLabel     = "Total Expenses:"
)

// ErrNoExpenses is returned when there is nothing to put in an expense report.
var ErrNoExpenses = errors.New("no expenses to export")

// ExpenseRow is one line of the expense table.
type ExpenseRow struct {
	Date          string
	Description   string
	Category      string
	Amount        string
	PaymentMethod string
}

// ExpenseReport is the printable expense list.
type ExpenseReport struct {
	GeneratedAt time.Time
	Title       string
	Subtitle    string
	Generated   string
	TotalLabel  string
	Total       string
	Rows        []ExpenseRow
}

// BuildExpenseReport lays out expenses in the order given, followed by their
// total.
func BuildExpenseReport(expenses []model.Record, f *format.Formatter, generatedAt time.Time) (ExpenseReport, error) {
	if len(expenses) == 0 {
		return ExpenseReport{}, ErrNoExpenses
	}

	r := ExpenseReport{
		Title:       ExpenseReportTitle,
		Subtitle:    ExpenseReportSubtitle,
		GeneratedAt: generatedAt,
		Generated:   "Generated: " + generatedAt.Format("January 2, 2006 at 3:04 PM"),
		TotalLabel:  ExpenseTotalLabel,
		Rows:        make([]ExpenseRow, len(expenses)),
	}
	var total float64
	for i, e := range expenses {
		r.Rows[i] = ExpenseRow{
			Date:          format.FormatTime(e.Date),
			Description:   dash(e.Description),
			Category:      dash(e.Category),
			Amount:        f.FormatCurrency(e.Amount, format.Document),
			PaymentMethod: dash(e.PaymentMethod),
		}
		total += e.Amount
	}
	r.Total = f.FormatCurrency(total, format.Document)
	return r, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
