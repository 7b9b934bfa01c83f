package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/billwell/internal/cli"
	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/pdf"
	"github.com/Veraticus/billwell/internal/report"
	"github.com/Veraticus/billwell/internal/view"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List the records of one resource",
		Long: `List one of: expenses, products, invoices, purchase-orders, sales-orders.

--status applies to invoices and orders, --category to expenses and products,
--month (YYYY-MM) to expenses.

Expenses can also be written as an HTML or PDF expense report with --format;
PDF goes through the Gotenberg server and needs --output.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE:      runList,
	}
	cmd.Flags().String("search", "", "text to look for in numbers, names and parties")
	cmd.Flags().String("status", view.All, "only records with this status")
	cmd.Flags().String("category", view.All, "only records in this category")
	cmd.Flags().String("month", view.All, "only expenses dated in this month (YYYY-MM)")
	cmd.Flags().StringP("format", "f", formatTable, "output format (table, json; html and pdf for expenses)")
	cmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	cmd.Flags().Bool("json", false, "print JSON (same as --format json)")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	outFormat, err := listFormat(cmd, kind)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("output")

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	var exporter *pdf.Exporter
	if outFormat == formatPDF {
		if exporter, err = newPDFExporter(ctx, a.reportCfg); err != nil {
			return err
		}
	}

	records, err := a.loader(view.LoaderOptions{}).LoadRecords(ctx, view.NewSession(), kind)
	if err != nil {
		return a.unauthorized(ctx, err)
	}

	search, _ := cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")
	month, _ := cmd.Flags().GetString("month")

	switch kind {
	case model.KindExpenses:
		records = view.FilterExpenses(records, search, category, month)
	case model.KindProducts:
		records = view.FilterProducts(records, search, category)
	case model.KindInvoices:
		records = view.FilterInvoices(records, search, status)
	default:
		records = view.FilterOrders(records, search, status)
	}

	switch outFormat {
	case formatHTML, formatPDF:
		out, err := renderExpenseReport(ctx, records, a, exporter)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), outPath, out); err != nil {
			return err
		}
		if outPath != "" {
			cmd.PrintErrln(cli.FormatSuccess("Expense report written to " + outPath))
		}
		return nil
	case formatJSON:
		return printJSON(cmd.OutOrStdout(), recordRows(records))
	}
	if len(records) == 0 {
		cmd.Println(cli.FormatInfo(fmt.Sprintf("No %s found.", kind.Label())))
		return nil
	}
	printRecords(cmd.OutOrStdout(), kind, records, a.formatter)
	return nil
}

// listFormat resolves --format and --json. HTML and PDF are expense reports.
func listFormat(cmd *cobra.Command, kind model.Kind) (string, error) {
	outFormat, _ := cmd.Flags().GetString("format")
	outFormat = strings.ToLower(strings.TrimSpace(outFormat))
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		outFormat = formatJSON
	}
	switch outFormat {
	case formatTable, formatJSON:
		return outFormat, nil
	case formatHTML, formatPDF:
		if kind != model.KindExpenses {
			return "", fmt.Errorf("%s output is only available for expenses", outFormat)
		}
		if outPath, _ := cmd.Flags().GetString("output"); outFormat == formatPDF && outPath == "" {
			return "", fmt.Errorf("--output is required for pdf")
		}
		return outFormat, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected table, json, html or pdf)", outFormat)
	}
}

// renderExpenseReport renders expenses as HTML, or as PDF when exporter is set.
func renderExpenseReport(ctx context.Context, expenses []model.Record, a *app, exporter *pdf.Exporter) ([]byte, error) {
	er, err := report.BuildExpenseReport(expenses, a.formatter, a.now().In(a.reportCfg.Location()))
	if errors.Is(err, report.ErrNoExpenses) {
		return nil, common.NewUserError("No expenses to export.", err)
	}
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		return exporter.ExportExpenses(ctx, er)
	}
	r, err := report.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	return r.RenderExpenses(er)
}

type recordRow struct {
	ID       string  `json:"id"`
	Number   string  `json:"number,omitempty"`
	Name     string  `json:"name,omitempty"`
	Party    string  `json:"party,omitempty"`
	Category string  `json:"category,omitempty"`
	Status   string  `json:"status,omitempty"`
	Date     string  `json:"date,omitempty"`
	Amount   float64 `json:"amount"`
}

func recordRows(records []model.Record) []recordRow {
	rows := make([]recordRow, len(records))
	for i, r := range records {
		rows[i] = recordRow{
			ID:       r.ID,
			Number:   r.Number,
			Name:     r.Name,
			Party:    r.Party,
			Category: r.Category,
			Status:   r.Status,
			Date:     r.DateRaw,
			Amount:   format.Round2(r.Amount),
		}
	}
	return rows
}

type listColumn struct {
	title string
	width int
	value func(model.Record) string
}

func listColumns(kind model.Kind, f *format.Formatter) []listColumn {
	money := func(v func(model.Record) float64) func(model.Record) string {
		return func(r model.Record) string { return f.FormatCurrency(v(r), format.Display) }
	}
	amount := money(func(r model.Record) float64 { return r.Amount })
	date := func(r model.Record) string { return format.FormatTime(r.Date) }

	switch kind {
	case model.KindExpenses:
		return []listColumn{
			{"Date", 20, date},
			{"Description", 28, func(r model.Record) string { return orDash(r.Description) }},
			{"Category", 16, func(r model.Record) string { return orDash(r.Category) }},
			{"Vendor", 18, func(r model.Record) string { return orDash(r.Party) }},
			{"Amount", 16, amount},
		}
	case model.KindProducts:
		return []listColumn{
			{"Name", 26, func(r model.Record) string { return orDash(r.Name) }},
			{"Category", 16, func(r model.Record) string { return orDash(r.Category) }},
			{"Price", 14, money(func(r model.Record) float64 { return r.Price })},
			{"Stock", 8, func(r model.Record) string { return strconv.FormatFloat(r.Stock, 'f', -1, 64) }},
			{"Value", 16, amount},
		}
	case model.KindInvoices:
		return []listColumn{
			{"Number", 14, func(r model.Record) string { return orDash(r.Number) }},
			{"Customer", 22, func(r model.Record) string { return orDash(r.Party) }},
			{"Date", 20, date},
			{"Status", 10, func(r model.Record) string { return orDash(r.Status) }},
			{"Amount", 16, amount},
		}
	default:
		party := "Customer"
		if kind == model.KindPurchaseOrders {
			party = "Vendor"
		}
		return []listColumn{
			{"Number", 14, func(r model.Record) string { return orDash(r.Number, r.ID) }},
			{party, 22, func(r model.Record) string { return orDash(r.Party) }},
			{"Date", 20, date},
			{"Status", 12, func(r model.Record) string { return orDash(r.Status) }},
			{"Total", 16, amount},
		}
	}
}

func printRecords(w io.Writer, kind model.Kind, records []model.Record, f *format.Formatter) {
	cols := listColumns(kind, f)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = cli.TableHeaderStyle.Width(c.width).Render(c.title)
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, r := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cli.TableCellStyle.Width(c.width).Render(c.value(r))
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	fmt.Fprintln(w, cli.SubtleStyle.Render(fmt.Sprintf("%d %s", len(records), kind.Label())))
}
