package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/cli"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage column mapping templates",
		Long:  `Mapping templates remember how a recurring spreadsheet layout maps onto the standard schema. They are stored server-side and shared across the organization.`,
	}

	cmd.AddCommand(listTemplatesCmd())
	cmd.AddCommand(saveTemplateCmd())

	return cmd
}

func listTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved mapping templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			templates, err := client.ListMappingTemplates(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}

			if len(templates) == 0 {
				fmt.Println(cli.FormatInfo("No mapping templates saved."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "Name\tColumns\tCreated\n")
			for _, tmpl := range templates {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					tmpl.Name, describeMapping(tmpl.Mapping), tmpl.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func saveTemplateCmd() *cobra.Command {
	var mapFlags []string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a mapping template",
		Long: `Save a reusable column mapping. Each --map flag assigns one source
header to a target field, e.g. --map 'Vendor Name=Supplier'. Use '-'
as the target to mark a column as ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(mapFlags) == 0 {
				return fmt.Errorf("at least one --map is required")
			}

			mapping := model.ColumnMapping{}
			for _, flag := range mapFlags {
				source, target, ok := strings.Cut(flag, "=")
				if !ok {
					return fmt.Errorf("invalid --map value %q, expected 'Source Header=Target'", flag)
				}
				mapping[source] = target
			}

			client, err := initClient()
			if err != nil {
				return err
			}

			tmpl, err := client.SaveMappingTemplate(cmd.Context(), args[0], mapping)
			if err != nil {
				return fmt.Errorf("failed to save template: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved template %q with %d columns", tmpl.Name, len(tmpl.Mapping))))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&mapFlags, "map", "m", nil, "column assignment as 'Source Header=Target' (repeatable)")
	return cmd
}

func describeMapping(mapping model.ColumnMapping) string {
	pairs := make([]string, 0, len(mapping))
	for source, target := range mapping {
		if target == model.IgnoredField {
			continue
		}
		pairs = append(pairs, source+"→"+target)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}
