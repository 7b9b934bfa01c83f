package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/billwell/internal/aggregate"
	"github.com/Veraticus/billwell/internal/cli"
	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/report"
	"github.com/Veraticus/billwell/internal/view"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show sales order progress and recent products",
		RunE:  runDashboard,
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	snap, err := a.loader(view.LoaderOptions{}).LoadDashboard(ctx, view.NewSession())
	if err != nil {
		return err
	}
	if err := unauthorizedFailure(snap); err != nil {
		return a.unauthorized(ctx, err)
	}
	for _, kind := range snap.FailedKinds() {
		cmd.PrintErrln(cli.FormatWarning(fmt.Sprintf("%s unavailable: %v", kind.Label(), snap.Summaries.Failures[kind])))
	}

	d := snap.Dashboard()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), dashboardJSON{
			DashboardSummary: d,
			RecentOrders:     recordRows(d.RecentOrders),
			RecentProducts:   recordRows(d.RecentProducts),
		})
	}
	printDashboard(cmd.OutOrStdout(), d, a.formatter)
	return nil
}

type dashboardJSON struct {
	aggregate.DashboardSummary
	RecentOrders   []recordRow `json:"recent_orders"`
	RecentProducts []recordRow `json:"recent_products"`
}

func printDashboard(w io.Writer, d aggregate.DashboardSummary, f *format.Formatter) {
	var b strings.Builder
	fmt.Fprintf(&b, "Sales orders: %d (%d pending, %d completed)\n", d.TotalSalesOrders, d.Pending, d.Completed)
	fmt.Fprintf(&b, "Revenue:      %s\n", f.FormatCurrency(d.Revenue, format.Display))
	if len(d.RecentProducts) > 0 {
		b.WriteString("\nRecent products:\n")
		for _, p := range d.RecentProducts {
			fmt.Fprintf(&b, "  • %s  %s  (%s)\n", orDash(p.Name), f.FormatCurrency(p.Price, format.Display), format.FormatTime(p.CreatedAt))
		}
	}
	if len(d.RecentOrders) > 0 {
		b.WriteString("\nRecent orders:\n")
		for _, o := range d.RecentOrders {
			status := o.Status
			if status == "" {
				status = "Pending"
			}
			fmt.Fprintf(&b, "  • %s  %s  %s  %s  %s\n", orDash(o.Number, o.ID), orDash(o.Party), format.FormatTime(o.Date), status, f.FormatCurrency(o.Amount, format.Display))
		}
	}
	fmt.Fprintln(w, cli.RenderBox("Dashboard", strings.TrimRight(b.String(), "\n")))
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "summary <kind>",
		Short:     "Summarize one resource",
		Long:      "Summarize one of: expenses, products, invoices, purchase-orders, sales-orders.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE:      runSummary,
	}
	cmd.Flags().Int("year", 0, "year of the monthly invoice series (default: current year)")
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func kindNames() []string {
	names := make([]string, len(model.AllKinds))
	for i, k := range model.AllKinds {
		names[i] = string(k)
	}
	return names
}

func runSummary(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = a.reportCfg.Year
	}
	opts := a.invoiceOptions(year)

	records, err := a.loader(view.LoaderOptions{}).LoadRecords(ctx, view.NewSession(), kind)
	if err != nil {
		return a.unauthorized(ctx, err)
	}

	summaries := report.EmptySummaries(year)
	summaries.Set(kind, records, opts)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), summaryFor(kind, summaries))
	}

	doc := report.BuildDocument(report.Compose(summaries), summaries, a.formatter, a.now())
	for _, s := range doc.Sections {
		if s.Kind != kind {
			continue
		}
		lines := make([]string, 0, len(s.Fields))
		for _, field := range s.Fields {
			lines = append(lines, fmt.Sprintf("%-24s %s", field.Key+":", field.Value))
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(s.Title, strings.Join(lines, "\n")))
	}
	return nil
}

func summaryFor(kind model.Kind, s report.Summaries) any {
	switch kind {
	case model.KindExpenses:
		return s.Expenses
	case model.KindProducts:
		return s.Products
	case model.KindInvoices:
		return s.Invoices
	case model.KindPurchaseOrders:
		return s.PurchaseOrders
	default:
		return s.SalesOrders
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// orDash returns the first non-empty value, or "-".
func orDash(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "-"
}
