package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/cli"
)

func paymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payments <supplier>",
		Short: "Show payment history for a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			history, err := client.PaymentHistoryForSupplier(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch payment history: %w", err)
			}

			if len(history.Payments) == 0 {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("No payments on record for %s", args[0])))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "Paid On\tAmount\n")
			var total float64
			for _, p := range history.Payments {
				fmt.Fprintf(w, "%s\t%.2f\n", p.PaidOn, p.Amount)
				total += p.Amount
			}
			fmt.Fprintf(w, "Total\t%.2f\n", total)
			return nil
		},
	}
}
