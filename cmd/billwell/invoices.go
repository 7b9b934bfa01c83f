package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/billwell/internal/cli"
	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/overlay"
	"github.com/Veraticus/billwell/internal/view"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List invoices and manage their status",
		Long: `List invoices and manage their status.

Status changes are kept in the local database by default and shown on top of
what the API returns. Set invoices.status_mode to "remote" to send them to the
API instead.`,
	}

	cmd.AddCommand(invoicesListCmd())
	cmd.AddCommand(invoicesSetStatusCmd())
	cmd.AddCommand(invoicesOverridesCmd())

	return cmd
}

func invoicesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices with local status overrides applied",
		RunE:  runInvoicesList,
	}
	cmd.Flags().String("search", "", "match invoice number or customer")
	cmd.Flags().String("status", view.All, "only invoices with this status")
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func runInvoicesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	records, err := a.loader(view.LoaderOptions{}).LoadRecords(ctx, view.NewSession(), model.KindInvoices)
	if err != nil {
		return a.unauthorized(ctx, err)
	}

	search, _ := cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")
	records = view.FilterInvoices(records, search, status)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), invoiceRows(records))
	}
	if len(records) == 0 {
		cmd.Println(cli.FormatInfo("No invoices found."))
		return nil
	}
	printInvoices(cmd.OutOrStdout(), records, a.formatter)
	return nil
}

type invoiceRow struct {
	ID       string  `json:"id"`
	Number   string  `json:"number"`
	Customer string  `json:"customer"`
	Date     string  `json:"date"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
}

func invoiceRows(records []model.Record) []invoiceRow {
	rows := make([]invoiceRow, len(records))
	for i, r := range records {
		rows[i] = invoiceRow{
			ID:       r.ID,
			Number:   r.Number,
			Customer: r.Party,
			Date:     r.DateRaw,
			Status:   r.Status,
			Amount:   format.Round2(r.Amount),
		}
	}
	return rows
}

func printInvoices(w io.Writer, records []model.Record, f *format.Formatter) {
	widths := []int{26, 14, 22, 20, 10, 16}
	cell := func(i int, s string) string {
		return cli.TableCellStyle.Width(widths[i]).Render(s)
	}
	header := make([]string, len(widths))
	for i, title := range []string{"ID", "Number", "Customer", "Date", "Status", "Amount"} {
		header[i] = cli.TableHeaderStyle.Width(widths[i]).Render(title)
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, r := range records {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			cell(0, orDash(r.ID)),
			cell(1, orDash(r.Number)),
			cell(2, orDash(r.Party)),
			cell(3, format.FormatTime(r.Date)),
			cell(4, orDash(r.Status)),
			cell(5, f.FormatCurrency(r.Amount, format.Display)),
		))
	}
	fmt.Fprintln(w, cli.SubtleStyle.Render(fmt.Sprintf("%d invoices", len(records))))
}

func invoicesSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change an invoice's status",
		Args:  cobra.ExactArgs(2),
		RunE:  runInvoicesSetStatus,
	}
}

func runInvoicesSetStatus(cmd *cobra.Command, args []string) error {
	id, status := strings.TrimSpace(args[0]), strings.ToLower(strings.TrimSpace(args[1]))
	if id == "" || status == "" {
		return fmt.Errorf("invoice id and status are required")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	updater, err := a.updater()
	if err != nil {
		return err
	}
	if updater.Mode() == overlay.ModeRemote {
		if err := a.requireLogin(); err != nil {
			return err
		}
	}
	if err := updater.UpdateStatus(ctx, id, status); err != nil {
		return a.unauthorized(ctx, err)
	}

	cmd.Println(cli.FormatSuccess(fmt.Sprintf("Invoice %s marked %s (%s)", id, status, updater.Mode())))
	return nil
}

func invoicesOverridesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Inspect or clear local status overrides",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List local status overrides",
		RunE:  runOverridesList,
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every local status override",
		RunE:  runOverridesClear,
	}
	clearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(clearCmd)

	return cmd
}

func runOverridesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	overrides, err := overlay.New(store).List(ctx)
	if err != nil {
		return err
	}
	if len(overrides) == 0 {
		cmd.Println(cli.FormatInfo("No local status overrides."))
		return nil
	}
	for _, o := range overrides {
		fmt.Fprintf(cmd.OutOrStdout(), "%-26s %-10s %s\n", o.RecordID, o.Status, cli.SubtleStyle.Render(o.UpdatedAt.Local().Format(time.DateTime)))
	}
	return nil
}

func runOverridesClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(ctx, "Clear every local status override?")
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println(cli.FormatInfo("Nothing changed."))
			return nil
		}
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := overlay.New(store).Clear(ctx); err != nil {
		return err
	}
	cmd.Println(cli.FormatSuccess("Local status overrides cleared."))
	return nil
}
