package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/billwell/internal/cli"
	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/config"
	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
)

func draftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Compute the totals of an invoice or order before creating it",
		Long: `Compute subtotal, GST and total for a set of line items.

Each --item is name:quantity:unit-price. The name may itself contain colons;
quantity and price are read from the right.`,
		Example: `  billwell draft --item "Widget:2:150" --item "Setup fee:1:500"
  billwell draft --item "Widget:2:150" --gst 5 --date 2024-06-01 --json`,
		RunE: runDraft,
	}
	cmd.Flags().StringArray("item", nil, "line item as name:quantity:unit-price (repeatable)")
	cmd.Flags().Float64("gst", model.DefaultGSTRate, "GST rate in percent (0-100)")
	cmd.Flags().String("date", "", "issue date (default: today)")
	cmd.Flags().Bool("json", false, "print JSON")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

type draftJSON struct {
	model.Totals
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`
}

func runDraft(cmd *cobra.Command, _ []string) error {
	specs, _ := cmd.Flags().GetStringArray("item")
	items := make([]model.LineItem, 0, len(specs))
	for _, spec := range specs {
		item, err := parseDraftItem(spec)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	rate, _ := cmd.Flags().GetFloat64("gst")
	totals, err := model.DraftTotals(items, rate)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("GST rate %v is not valid", rate), err)
	}

	reportCfg, err := config.LoadReportConfig(time.Now())
	if err != nil {
		return err
	}
	issued := time.Now().In(reportCfg.Location())
	if raw, _ := cmd.Flags().GetString("date"); raw != "" {
		t, ok := format.ParseDate(raw)
		if !ok {
			return fmt.Errorf("invalid --date %q", raw)
		}
		issued = t
	}
	due := model.DueDate(issued)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		totals.Subtotal = format.Round2(totals.Subtotal)
		totals.Tax = format.Round2(totals.Tax)
		totals.Total = format.Round2(totals.Total)
		return printJSON(cmd.OutOrStdout(), draftJSON{
			Totals:    totals,
			IssueDate: issued.Format("2006-01-02"),
			DueDate:   due.Format("2006-01-02"),
		})
	}

	f := format.NewFormatter(reportCfg.CurrencySymbol, reportCfg.Locale)
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s × %s @ %s\n", item.Name, strconv.FormatFloat(item.Quantity, 'f', -1, 64), f.FormatCurrency(item.UnitPrice, format.Display))
	}
	fmt.Fprintf(&b, "\nSubtotal:  %s\n", f.FormatCurrency(totals.Subtotal, format.Display))
	fmt.Fprintf(&b, "GST (%s%%): %s\n", strconv.FormatFloat(totals.TaxRate, 'f', -1, 64), f.FormatCurrency(totals.Tax, format.Display))
	fmt.Fprintf(&b, "Total:     %s\n", f.FormatCurrency(totals.Total, format.Display))
	fmt.Fprintf(&b, "Due:       %s", due.Format(format.LongDate))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Draft", b.String()))
	return nil
}

// parseDraftItem splits name:quantity:price from the right.
func parseDraftItem(spec string) (model.LineItem, error) {
	priceAt := strings.LastIndex(spec, ":")
	if priceAt < 0 {
		return model.LineItem{}, fmt.Errorf("item %q: want name:quantity:unit-price", spec)
	}
	qtyAt := strings.LastIndex(spec[:priceAt], ":")
	if qtyAt < 0 {
		return model.LineItem{}, fmt.Errorf("item %q: want name:quantity:unit-price", spec)
	}

	name := strings.TrimSpace(spec[:qtyAt])
	if name == "" {
		return model.LineItem{}, fmt.Errorf("item %q: name is empty", spec)
	}
	qty, ok := parseNonNegative(spec[qtyAt+1 : priceAt])
	if !ok {
		return model.LineItem{}, fmt.Errorf("item %q: invalid quantity", spec)
	}
	price, ok := parseNonNegative(spec[priceAt+1:])
	if !ok {
		return model.LineItem{}, fmt.Errorf("item %q: invalid unit price", spec)
	}
	return model.LineItem{Name: name, Quantity: qty, UnitPrice: price}, nil
}

func parseNonNegative(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
