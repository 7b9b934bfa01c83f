package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Mode selects the currency rendering path.
type Mode int

const (
	// Display renders through the locale-aware printer used on screen.
	Display Mode = iota
	// Document renders with fixed Indian digit grouping for generated files.
	Document
)

// Default currency settings.
const (
	DefaultSymbol = "₹"
	DefaultLocale = "en-IN"
)

// Formatter renders monetary values. Both modes round through Round2 so the
// numeric value they show is identical.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter creates a formatter for the given currency symbol and BCP 47
// locale. An unknown locale falls back to en-IN.
func NewFormatter(symbol, locale string) *Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

// DefaultFormatter returns the rupee formatter.
func DefaultFormatter() *Formatter {
	return NewFormatter(DefaultSymbol, DefaultLocale)
}

// Symbol returns the currency symbol prefix.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// FormatCurrency renders amount with two decimals in the selected mode.
func (f *Formatter) FormatCurrency(amount float64, mode Mode) string {
	rounded := decimal.NewFromFloat(finite(amount)).Round(2)
	if mode == Document {
		return f.symbol + groupIndian(rounded)
	}

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	digits := f.printer.Sprintf("%v", number.Decimal(rounded.Abs().InexactFloat64(), number.Scale(2)))
	return sign + f.symbol + digits
}

// groupIndian formats d as [-]1,23,45,678.90: the last three integer digits
// form one group and every two digits before them another.
func groupIndian(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	n := len(intPart)
	for i := 0; i < n; i++ {
		b.WriteByte(intPart[i])
		left := n - i - 1
		if left == 0 {
			break
		}
		if left == 3 || (left > 3 && (left-3)%2 == 0) {
			b.WriteByte(',')
		}
	}
	return sign + b.String() + "." + fracPart
}
