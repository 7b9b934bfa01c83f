package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/billwell/internal/aggregate"
	"github.com/Veraticus/billwell/internal/cli"
	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/config"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/pdf"
	"github.com/Veraticus/billwell/internal/report"
	"github.com/Veraticus/billwell/internal/service"
	"github.com/Veraticus/billwell/internal/sheets"
	"github.com/Veraticus/billwell/internal/view"
)

// Report output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatHTML  = "html"
	formatPDF   = "pdf"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the combined business overview",
		Long: `Fetch every resource, summarize it and print the combined financial overview.

The overview can be written as a terminal table, JSON, HTML or PDF (through a
Gotenberg server), and optionally exported to Google Sheets. A resource that
cannot be fetched is shown as unavailable and counted as zero.`,
		RunE: runReport,
	}

	cmd.Flags().Int("year", 0, "year of the monthly invoice series (default: current year)")
	cmd.Flags().StringP("format", "f", formatTable, "output format (table, json, html, pdf)")
	cmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	cmd.Flags().Bool("export-sheets", false, "also write the overview to Google Sheets")
	cmd.Flags().Bool("apply-overrides", false, "use local invoice status overrides in the summaries")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	outFormat, _ := cmd.Flags().GetString("format")
	outFormat = strings.ToLower(strings.TrimSpace(outFormat))
	switch outFormat {
	case formatTable, formatJSON, formatHTML, formatPDF:
	default:
		return fmt.Errorf("unknown format %q (expected table, json, html or pdf)", outFormat)
	}
	outPath, _ := cmd.Flags().GetString("output")
	if outFormat == formatPDF && outPath == "" {
		return fmt.Errorf("--output is required for pdf")
	}
	exportSheets, _ := cmd.Flags().GetBool("export-sheets")
	applyOverrides, _ := cmd.Flags().GetBool("apply-overrides")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Report interrupted")
	ctx := interrupts.HandleInterrupts(cmd.Context())

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

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = a.reportCfg.Year
	}

	progress := cli.NewFetchProgress(cmd.ErrOrStderr(), len(model.AllKinds), !noProgress)
	loader := a.loader(view.LoaderOptions{
		OnFetched: func(kind model.Kind, err error) {
			progress.Done(kind.Label(), err)
		},
		Invoice:         a.invoiceOptions(year),
		OverlayInReport: applyOverrides,
	})
	snap, err := loader.LoadOverview(ctx, view.NewSession(), year)
	progress.Finish()
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return err
	}
	if err := unauthorizedFailure(snap); err != nil {
		return a.unauthorized(ctx, err)
	}
	for _, kind := range snap.FailedKinds() {
		cmd.PrintErrln(cli.FormatWarning(fmt.Sprintf("%s unavailable: %v", kind.Label(), snap.Summaries.Failures[kind])))
	}

	doc := report.BuildDocument(snap.Series(), snap.Summaries, a.formatter, snap.LoadedAt.In(a.reportCfg.Location()))

	out, err := renderReport(ctx, outFormat, doc, snap, exporter)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), outPath, out); err != nil {
		return err
	}
	if outPath != "" {
		cmd.PrintErrln(cli.FormatSuccess("Report written to " + outPath))
	}

	if exportSheets {
		if err := exportToSheets(ctx, cmd, doc); err != nil {
			return err
		}
	}
	return nil
}

// unauthorizedFailure returns the first failure caused by a rejected token.
func unauthorizedFailure(snap *view.Snapshot) error {
	for _, kind := range model.AllKinds {
		if err := snap.Summaries.Failures[kind]; common.IsUnauthorized(err) {
			return err
		}
	}
	return nil
}

// newPDFExporter fails before any resource is fetched when Gotenberg is not
// configured or not reachable.
func newPDFExporter(ctx context.Context, cfg *config.ReportConfig) (*pdf.Exporter, error) {
	exporter, err := pdf.NewExporter(cfg.GotenbergURL, service.RetryOptions{})
	if err != nil {
		return nil, common.NewUserError("PDF output needs report.gotenberg_url (or BILLWELL_REPORT_GOTENBERG_URL)", err)
	}
	if err := exporter.Ping(ctx); err != nil {
		return nil, common.NewUserError("Gotenberg at "+cfg.GotenbergURL+" is not reachable", err)
	}
	return exporter, nil
}

func renderReport(ctx context.Context, outFormat string, doc report.Document, snap *view.Snapshot, exporter *pdf.Exporter) ([]byte, error) {
	switch outFormat {
	case formatJSON:
		return marshalReport(doc, snap)
	case formatHTML:
		r, err := report.NewHTMLRenderer()
		if err != nil {
			return nil, err
		}
		return r.Render(doc)
	case formatPDF:
		return exporter.Export(ctx, doc)
	default:
		return []byte(report.NewTerminalFormatter().Format(doc) + "\n"), nil
	}
}

type reportJSON struct {
	Document    report.Document            `json:"document"`
	Summaries   summariesJSON              `json:"summaries"`
	Unavailable map[model.Kind]string      `json:"unavailable,omitempty"`
	Percentages []float64                  `json:"percentages"`
	Dashboard   aggregate.DashboardSummary `json:"dashboard"`
}

type summariesJSON struct {
	Expenses       aggregate.ExpenseSummary `json:"expenses"`
	Products       aggregate.ProductSummary `json:"products"`
	Invoices       aggregate.InvoiceSummary `json:"invoices"`
	PurchaseOrders aggregate.OrderSummary   `json:"purchase_orders"`
	SalesOrders    aggregate.OrderSummary   `json:"sales_orders"`
}

func marshalReport(doc report.Document, snap *view.Snapshot) ([]byte, error) {
	s := snap.Summaries
	out := reportJSON{
		Document: doc,
		Summaries: summariesJSON{
			Expenses:       s.Expenses,
			Products:       s.Products,
			Invoices:       s.Invoices,
			PurchaseOrders: s.PurchaseOrders,
			SalesOrders:    s.SalesOrders,
		},
		Percentages: doc.Series.Percentages(),
		Dashboard:   snap.Dashboard(),
	}
	for _, kind := range snap.FailedKinds() {
		if out.Unavailable == nil {
			out.Unavailable = map[model.Kind]string{}
		}
		out.Unavailable[kind] = s.Failures[kind].Error()
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(b, '\n'), nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(config.ExpandPath(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func exportToSheets(ctx context.Context, cmd *cobra.Command, doc report.Document) error {
	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured. Run `billwell auth sheets` or set sheets.service_account_path.", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
	if err != nil {
		return err
	}
	id, err := writer.Write(ctx, doc)
	if err != nil {
		return err
	}
	cmd.PrintErrln(cli.FormatSuccess("Exported to Google Sheets: https://docs.google.com/spreadsheets/d/" + id))
	return nil
}
