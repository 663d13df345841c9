package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/cli"
)

func orgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Manage organizations",
		Long:  `List the organizations you belong to and switch the one that scopes uploads, filters, and analytics.`,
	}

	cmd.AddCommand(listOrgsCmd())
	cmd.AddCommand(switchOrgCmd())

	return cmd
}

func listOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			orgs, err := client.ListOrganizations(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list organizations: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, " \tID\tName\n")
			for _, org := range orgs {
				marker := " "
				if org.Active {
					marker = cli.SuccessIcon
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", marker, org.ID, org.Name)
			}
			return nil
		},
	}
}

func switchOrgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <id>",
		Short: "Switch the active organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			org, err := client.SwitchOrganization(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to switch organization: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Now operating as %s", org.Name)))
			fmt.Println(cli.FormatWarning("Saved filter presets are shared across organizations"))
			return nil
		},
	}
}
