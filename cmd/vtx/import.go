package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/cli"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/spreadsheet"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/tui"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/wizard"
)

func importCmd() *cobra.Command {
	var (
		templateName string
		skipInvalid  bool
		interactive  bool
		mapFlags     []string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upload a spend spreadsheet",
		Long: `Import procurement records from an XLSX or CSV file.

The file goes through the five-step upload flow: column headers are
auto-detected against the standard schema (Supplier, Category,
Subcategory, Amount, Date, Location), rows are validated by the server,
and the import job is tracked to completion.

With --interactive the flow runs as a full-screen wizard; otherwise it
runs headless and fails fast on anything that needs a human decision.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := initClient()
			if err != nil {
				return err
			}

			session := wizard.NewSession(spreadsheet.NewParser(), client)
			if err := session.SelectFile(args[0]); err != nil {
				return err
			}
			session.SetSkipInvalid(skipInvalid)

			if interactive {
				job, err := tui.Run(ctx, session)
				if err != nil {
					return err
				}
				if job == nil {
					fmt.Println(cli.FormatInfo("Import abandoned"))
					return nil
				}
				if job.Status == model.JobFailed {
					return fmt.Errorf("import job %s failed: %s", job.ID, job.Error)
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Import complete: %d rows (job %s)", job.ProcessedRows, job.ID)))
				return nil
			}

			return runHeadlessImport(ctx, client, session, templateName, mapFlags)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "apply a saved mapping template by name")
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "upload valid rows even when some rows fail validation")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "run the full-screen upload wizard")
	cmd.Flags().StringArrayVarP(&mapFlags, "map", "m", nil, "override a column mapping as 'Source Header=Target' (repeatable)")

	return cmd
}

func runHeadlessImport(ctx context.Context, client templateLister, session *wizard.Session, templateName string, mapFlags []string) error {
	// Step 1 → 2: parse and preview.
	if err := session.Next(ctx); err != nil {
		return err
	}
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Parsed %d rows from %s", session.RowCount(), session.FilePath())))

	// Step 2 → 3: auto-detect mapping, then apply template and overrides.
	if err := session.Next(ctx); err != nil {
		return err
	}
	if templateName != "" {
		if err := applyNamedTemplate(ctx, client, session, templateName); err != nil {
			return err
		}
	}
	for _, flag := range mapFlags {
		source, target, ok := strings.Cut(flag, "=")
		if !ok {
			return fmt.Errorf("invalid --map value %q, expected 'Source Header=Target'", flag)
		}
		if target == model.IgnoredField {
			session.IgnoreColumn(source)
		} else {
			session.MapColumn(source, target)
		}
	}

	// Step 3 → 4: server-side validation.
	if err := session.Next(ctx); err != nil {
		var incomplete *wizard.MappingIncompleteError
		if errors.As(err, &incomplete) {
			return fmt.Errorf("%w (map the missing columns with --map or run with --interactive)", err)
		}
		return err
	}
	printValidation(session.Validation())

	// Step 4 → 5: create the upload job.
	if err := session.Next(ctx); err != nil {
		var blocked *wizard.ValidationBlockedError
		if errors.As(err, &blocked) {
			return fmt.Errorf("%w (re-run with --skip-invalid to upload the valid rows)", err)
		}
		return err
	}

	bar := cli.NewUploadProgress(os.Stderr, session.Job().TotalRows)
	job, err := session.AwaitUpload(ctx, func(j model.UploadJob) {
		if j.TotalRows > 0 && j.TotalRows != bar.GetMax() {
			bar.ChangeMax(j.TotalRows)
		}
		_ = bar.Set(j.ProcessedRows)
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if job != nil && job.Status == model.JobFailed {
			return fmt.Errorf("import job %s failed: %s", job.ID, job.Error)
		}
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Import complete: %d rows (job %s)", job.ProcessedRows, job.ID)))
	return nil
}

// templateLister is the slice of the API client the import command needs
// beyond the wizard backend.
type templateLister interface {
	ListMappingTemplates(ctx context.Context) ([]model.MappingTemplate, error)
}

func applyNamedTemplate(ctx context.Context, client templateLister, session *wizard.Session, name string) error {
	templates, err := client.ListMappingTemplates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mapping templates: %w", err)
	}
	for _, tmpl := range templates {
		if strings.EqualFold(tmpl.Name, name) {
			session.ApplyTemplate(tmpl)
			return nil
		}
	}
	return fmt.Errorf("mapping template %q not found", name)
}

func printValidation(result *model.ValidationResult) {
	if result == nil {
		return
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d rows valid", result.ValidRows)))
	if result.InvalidRows == 0 {
		return
	}
	fmt.Println(cli.FormatWarning(fmt.Sprintf("%d rows invalid", result.InvalidRows)))
	for i, rowErr := range result.Errors {
		if i >= 10 {
			fmt.Printf("  ... and %d more\n", len(result.Errors)-10)
			break
		}
		fmt.Printf("  row %d [%s]: %s\n", rowErr.Row, rowErr.Severity, rowErr.Message)
	}
}
