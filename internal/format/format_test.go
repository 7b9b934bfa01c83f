package format

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input any
		name  string
		want  float64
	}{
		{name: "float", input: 1500.5, want: 1500.5},
		{name: "int", input: 42, want: 42},
		{name: "int64", input: int64(-7), want: -7},
		{name: "rupee string", input: "₹1,000.00", want: 1000},
		{name: "indian grouping", input: "₹2,36,000.00", want: 236000},
		{name: "negative currency", input: "₹-1,23,456.78", want: -123456.78},
		{name: "plain numeric string", input: "99.95", want: 99.95},
		{name: "json number", input: json.Number("12.5"), want: 12.5},
		{name: "gjson number", input: gjson.Parse(`250`), want: 250},
		{name: "gjson string", input: gjson.Parse(`"₹75.25"`), want: 75.25},
		{name: "trailing garbage after second point", input: "1.2.3", want: 1.2},
		{name: "invalid", input: "invalid", want: 0},
		{name: "empty string", input: "", want: 0},
		{name: "only symbols", input: "₹-.", want: 0},
		{name: "nil", input: nil, want: 0},
		{name: "bool", input: true, want: 0},
		{name: "NaN", input: math.NaN(), want: 0},
		{name: "infinity", input: math.Inf(1), want: 0},
		{name: "gjson null", input: gjson.Parse(`null`), want: 0},
		{name: "gjson object", input: gjson.Parse(`{"a":1}`), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 1.01, Round2(1.005), 1e-9)
	assert.InDelta(t, -1.01, Round2(-1.005), 1e-9)
	assert.InDelta(t, 2.5, Round2(2.499999), 1e-9)
	assert.InDelta(t, 0.0, Round2(math.NaN()), 1e-9)
}

func TestFormatCurrency_Document(t *testing.T) {
	f := DefaultFormatter()

	tests := []struct {
		name  string
		want  string
		input float64
	}{
		{name: "zero", input: 0, want: "₹0.00"},
		{name: "hundreds", input: 999.5, want: "₹999.50"},
		{name: "thousands", input: 1000, want: "₹1,000.00"},
		{name: "lakh", input: 123456, want: "₹1,23,456.00"},
		{name: "crore", input: 12345678.9, want: "₹1,23,45,678.90"},
		{name: "half up", input: 10.005, want: "₹10.01"},
		{name: "negative", input: -123456, want: "₹-1,23,456.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatCurrency(tt.input, Document))
		})
	}
}

func TestFormatCurrency_RoundTrip(t *testing.T) {
	f := DefaultFormatter()
	inputs := []any{
		"₹1,000.00", 500, "invalid", 123456.789, "2,36,000", -42.125, 0.004, "₹ 99", 10.005,
	}

	for _, mode := range []Mode{Display, Document} {
		for _, in := range inputs {
			first := ParseAmount(in)
			out := f.FormatCurrency(first, mode)
			require.True(t, strings.Contains(out, DefaultSymbol), out)
			assert.InDelta(t, Round2(first), ParseAmount(out), 1e-9, "input %v rendered %q", in, out)
		}
	}
}

func TestFormatCurrency_PathsAgree(t *testing.T) {
	f := DefaultFormatter()
	for _, v := range []float64{0, 1.005, 999.999, 123456.785, -3.335} {
		assert.InDelta(t,
			ParseAmount(f.FormatCurrency(v, Display)),
			ParseAmount(f.FormatCurrency(v, Document)),
			1e-9, "value %v", v)
	}
}

func TestNewFormatter_Fallbacks(t *testing.T) {
	f := NewFormatter("", "not a locale!!")
	assert.Equal(t, DefaultSymbol, f.Symbol())
	assert.Equal(t, "₹1,000.00", f.FormatCurrency(1000, Document))

	usd := NewFormatter("$", "en-US")
	assert.Equal(t, "$1,23,456.00", usd.FormatCurrency(123456, Document))
	assert.InDelta(t, 123456.0, ParseAmount(usd.FormatCurrency(123456, Display)), 1e-9)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{input: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "2024-03-15T10:30:00Z", want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{input: "2024-03-15T10:30:00.123Z", want: time.Date(2024, 3, 15, 10, 30, 0, 123000000, time.UTC), ok: true},
		{input: "2024-3-5", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "2024-12-1", want: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "2024-3-5T08:15:00+05:30", want: time.Date(2024, 3, 5, 2, 45, 0, 0, time.UTC), ok: true},
		{input: "2024-3-5T08:15:00Z", want: time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC), ok: true},
		{input: "03/15/2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "March 15, 2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "15 Mar 2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "Invalid Date"},
		{input: DateUnavailable},
		{input: "yesterday"},
		{input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "March 15, 2024", FormatDate("2024-03-15T10:30:00Z"))
	assert.Equal(t, DateUnavailable, FormatDate("not a date"))
	assert.Equal(t, DateUnavailable, FormatDate("Invalid Date"))
	assert.NotEqual(t, "Invalid Date", FormatDate("2024-13-45"))
	assert.Equal(t, DateUnavailable, FormatTime(time.Time{}))
}

func TestIsDateSentinel(t *testing.T) {
	assert.True(t, IsDateSentinel("Invalid Date"))
	assert.True(t, IsDateSentinel(DateUnavailable))
	assert.False(t, IsDateSentinel("2024-01-01"))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "42.5%", FormatPercent(42.5))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "100.0%", FormatPercent(100))
}
