package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/cli"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

func filtersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage the active dashboard filters",
		Long:  `Inspect and change the server-held filter state that scopes every dashboard and analytics query.`,
	}

	cmd.AddCommand(showFiltersCmd())
	cmd.AddCommand(setFiltersCmd())
	cmd.AddCommand(quickFilterCmd())
	cmd.AddCommand(resetFiltersCmd())

	return cmd
}

func showFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			filters, err := client.CurrentFilters(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch filters: %w", err)
			}

			printFilters(filters)
			return nil
		},
	}
}

func setFiltersCmd() *cobra.Command {
	var (
		categories    []string
		subcategories []string
		suppliers     []string
		locations     []string
		years         []int
		startDate     string
		endDate       string
		minAmount     float64
		maxAmount     float64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the active filters",
		Long: `Apply a partial filter update. Only the flags you pass change; every
other dimension keeps its current value. Pass an empty string to a list
flag to clear that dimension.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := initClient()
			if err != nil {
				return err
			}

			current, err := client.CurrentFilters(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch filters: %w", err)
			}

			var update model.FilterUpdate
			flags := cmd.Flags()
			if flags.Changed("category") {
				update.Categories = &categories
			}
			if flags.Changed("subcategory") {
				update.Subcategories = &subcategories
			}
			if flags.Changed("supplier") {
				update.Suppliers = &suppliers
			}
			if flags.Changed("location") {
				update.Locations = &locations
			}
			if flags.Changed("year") {
				update.Years = &years
			}
			if flags.Changed("start") || flags.Changed("end") {
				dr := current.DateRange
				if flags.Changed("start") {
					dr.Start = optionalString(startDate)
				}
				if flags.Changed("end") {
					dr.End = optionalString(endDate)
				}
				update.DateRange = &dr
			}
			if flags.Changed("min") || flags.Changed("max") {
				ar := current.AmountRange
				if flags.Changed("min") {
					ar.Min = &minAmount
				}
				if flags.Changed("max") {
					ar.Max = &maxAmount
				}
				update.AmountRange = &ar
			}

			merged := current.Merge(update)
			if err := client.UpdateFilters(ctx, merged); err != nil {
				return fmt.Errorf("failed to update filters: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Filters updated (%d active)", merged.ActiveCount())))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "filter to these categories")
	cmd.Flags().StringSliceVar(&subcategories, "subcategory", nil, "filter to these subcategories")
	cmd.Flags().StringSliceVar(&suppliers, "supplier", nil, "filter to these suppliers")
	cmd.Flags().StringSliceVar(&locations, "location", nil, "filter to these locations")
	cmd.Flags().IntSliceVar(&years, "year", nil, "filter to these years")
	cmd.Flags().StringVar(&startDate, "start", "", "date range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "date range end (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&minAmount, "min", 0, "minimum amount")
	cmd.Flags().Float64Var(&maxAmount, "max", 0, "maximum amount")

	return cmd
}

func quickFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quick <range>",
		Short: "Apply a quick date range",
		Long: `Set the date range from a named shortcut: last-7-days, last-30-days,
last-90-days, this-year, last-year.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dateRange, err := model.QuickRange(args[0]).Resolve(time.Now())
			if err != nil {
				return err
			}

			client, err := initClient()
			if err != nil {
				return err
			}

			current, err := client.CurrentFilters(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch filters: %w", err)
			}

			merged := current.Merge(model.FilterUpdate{DateRange: &dateRange})
			if err := client.UpdateFilters(ctx, merged); err != nil {
				return fmt.Errorf("failed to update filters: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Date range set to %s", args[0])))
			return nil
		},
	}
}

func resetFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear all filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}
			if err := client.ResetFilters(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset filters: %w", err)
			}
			fmt.Println(cli.FormatSuccess("Filters cleared"))
			return nil
		},
	}
}

func printFilters(filters model.Filters) {
	fmt.Println(cli.FormatTitle(fmt.Sprintf("Active filters: %d", filters.ActiveCount())))

	printList := func(label string, values []string) {
		if len(values) > 0 {
			fmt.Printf("  %-14s %s\n", label+":", strings.Join(values, ", "))
		}
	}
	printList("Categories", filters.Categories)
	printList("Subcategories", filters.Subcategories)
	printList("Suppliers", filters.Suppliers)
	printList("Locations", filters.Locations)

	if len(filters.Years) > 0 {
		years := make([]string, len(filters.Years))
		for i, y := range filters.Years {
			years[i] = fmt.Sprintf("%d", y)
		}
		fmt.Printf("  %-14s %s\n", "Years:", strings.Join(years, ", "))
	}
	if filters.DateRange.IsSet() {
		fmt.Printf("  %-14s %s → %s\n", "Dates:", orOpen(filters.DateRange.Start), orOpen(filters.DateRange.End))
	}
	if filters.AmountRange.IsSet() {
		fmt.Printf("  %-14s %s → %s\n", "Amounts:", orOpenFloat(filters.AmountRange.Min), orOpenFloat(filters.AmountRange.Max))
	}
}

func orOpen(s *string) string {
	if s == nil {
		return "(open)"
	}
	return *s
}

func orOpenFloat(f *float64) string {
	if f == nil {
		return "(open)"
	}
	return fmt.Sprintf("%.2f", *f)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
