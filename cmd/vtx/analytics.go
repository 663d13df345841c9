package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/api"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/cli"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/export"
)

func analyticsCmd() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show spend analytics",
		Long: `Pull the Pareto, supplier, contract, procure-to-pay, and forecast
dashboards for the current filters. With --export the full dataset is
written to an XLSX workbook instead of printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := initClient()
			if err != nil {
				return err
			}

			bundle, err := fetchAnalytics(ctx, client)
			if err != nil {
				return err
			}

			if exportPath != "" {
				data, err := export.AnalyticsXLSX(bundle)
				if err != nil {
					return err
				}
				if err := os.WriteFile(exportPath, data, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", exportPath, err)
				}
				fmt.Println(cli.FormatSuccess("Exported analytics to " + exportPath))
				return nil
			}

			printAnalytics(bundle)
			return nil
		},
	}

	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "write analytics to an XLSX file")
	return cmd
}

func fetchAnalytics(ctx context.Context, client *api.Client) (export.AnalyticsBundle, error) {
	var bundle export.AnalyticsBundle
	var err error

	if bundle.Pareto, err = client.Pareto(ctx); err != nil {
		return bundle, fmt.Errorf("failed to fetch pareto analysis: %w", err)
	}
	if bundle.Suppliers, err = client.Suppliers(ctx); err != nil {
		return bundle, fmt.Errorf("failed to fetch supplier analysis: %w", err)
	}
	if bundle.Contracts, err = client.Contracts(ctx); err != nil {
		return bundle, fmt.Errorf("failed to fetch contract summary: %w", err)
	}
	if bundle.P2P, err = client.P2PCycle(ctx); err != nil {
		return bundle, fmt.Errorf("failed to fetch procure-to-pay metrics: %w", err)
	}
	if bundle.Forecast, err = client.SpendForecast(ctx); err != nil {
		return bundle, fmt.Errorf("failed to fetch spend forecast: %w", err)
	}
	return bundle, nil
}

func printAnalytics(bundle export.AnalyticsBundle) {
	fmt.Println(cli.FormatTitle("Spend by category (Pareto)"))
	for _, item := range bundle.Pareto.Items {
		fmt.Printf("  %-30s %14.2f  %5.1f%%\n", item.Category, item.Spend, item.CumulativePercent)
	}
	fmt.Printf("  %-30s %14.2f\n\n", "Total", bundle.Pareto.TotalSpend)

	fmt.Println(cli.FormatTitle("Top suppliers"))
	for _, s := range bundle.Suppliers.Suppliers {
		fmt.Printf("  %-30s %14.2f  %5.1f%%  %d orders\n", s.Supplier, s.Spend, s.SharePercent, s.OrderCount)
	}
	fmt.Printf("  Concentration (HHI): %.3f\n\n", bundle.Suppliers.HHI)

	fmt.Println(cli.FormatTitle("Contracts"))
	fmt.Printf("  Active: %d   Expiring in 90 days: %d   On-contract: %.1f%%   Maverick spend: %.2f\n\n",
		bundle.Contracts.ActiveContracts,
		bundle.Contracts.ExpiringIn90Days,
		bundle.Contracts.OnContractPercent,
		bundle.Contracts.MaverickSpend)

	fmt.Println(cli.FormatTitle("Procure-to-pay cycle"))
	fmt.Printf("  Total: %.1f days (approval %.1f, fulfillment %.1f, payment %.1f)\n\n",
		bundle.P2P.AvgCycleDays,
		bundle.P2P.AvgApprovalDays,
		bundle.P2P.AvgFulfillmentDays,
		bundle.P2P.AvgPaymentDays)

	fmt.Println(cli.FormatTitle("Spend forecast"))
	for _, p := range bundle.Forecast.Points {
		fmt.Printf("  %-10s %14.2f  (%.2f – %.2f)\n", p.Period, p.Predicted, p.LowerBound, p.UpperBound)
	}
	fmt.Printf("  MAPE: %.1f%%   R²: %.3f\n", bundle.Forecast.MAPE, bundle.Forecast.RSquared)
}
