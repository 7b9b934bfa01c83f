package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/billwell/internal/tui"
	"github.com/Veraticus/billwell/internal/tui/themes"
	"github.com/Veraticus/billwell/internal/view"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the overview and every resource interactively",
		Long: `Open the interactive browser: an Overview tab with the combined report and
one tab per resource. On the Invoices tab, p, u and d mark the selected invoice
paid, pending or draft.`,
		RunE: runBrowse,
	}
	cmd.Flags().Int("year", 0, "year of the monthly invoice series (default: current year)")
	cmd.Flags().String("theme", "", "color theme (default, catppuccin-mocha)")
	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	updater, err := a.updater()
	if err != nil {
		return err
	}

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = a.reportCfg.Year
	}
	theme, _ := cmd.Flags().GetString("theme")
	if theme == "" {
		theme = viper.GetString("tui.theme")
	}

	loader := a.loader(view.LoaderOptions{Invoice: a.invoiceOptions(year)})
	return tui.Run(ctx,
		tui.WithLoader(loader),
		tui.WithUpdater(updater),
		tui.WithFormatter(a.formatter),
		tui.WithYear(year),
		tui.WithTheme(themes.GetTheme(theme)),
		tui.WithUnauthorized(a.store.ClearSession),
	)
}
