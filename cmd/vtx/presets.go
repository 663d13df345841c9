package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/cli"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/storage"
)

func presetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage saved filter presets",
		Long:  `Save the current dashboard filters under a name and re-apply them later. Presets are stored locally.`,
	}

	cmd.AddCommand(listPresetsCmd())
	cmd.AddCommand(savePresetCmd())
	cmd.AddCommand(applyPresetCmd())
	cmd.AddCommand(renamePresetCmd())
	cmd.AddCommand(deletePresetCmd())

	return cmd
}

func listPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, closeStore, err := initPresetStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			presets, err := store.Presets(ctx)
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}

			if len(presets) == 0 {
				fmt.Println(cli.FormatInfo("No presets saved. Use 'vtx presets save <name>' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "ID\tName\tActive Filters\tCreated\n")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 8),
				strings.Repeat("-", 20),
				strings.Repeat("-", 14),
				strings.Repeat("-", 10))
			for _, p := range presets {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					shortID(p.ID), p.Name, p.Filters.ActiveCount(), p.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func savePresetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current filters as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			client, err := initClient()
			if err != nil {
				return err
			}
			filters, err := client.CurrentFilters(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch filters: %w", err)
			}

			store, closeStore, err := initPresetStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			// Duplicate names are allowed in storage; the CLI asks for
			// confirmation so accidental copies don't pile up.
			if !force {
				exists, err := store.NameExists(ctx, name)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("a preset named %q already exists (use --force to save another with the same name)", name)
				}
			}

			preset, err := store.SavePreset(ctx, name, filters)
			if err != nil {
				return fmt.Errorf("failed to save preset: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved preset %q (%s)", preset.Name, shortID(preset.ID))))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "save even if a preset with this name exists")
	return cmd
}

func applyPresetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <name-or-id>",
		Short: "Apply a saved preset to the active filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := initPresetStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			preset, err := findPreset(ctx, store, args[0])
			if err != nil {
				return err
			}

			client, err := initClient()
			if err != nil {
				return err
			}
			if err := client.UpdateFilters(ctx, preset.Filters); err != nil {
				return fmt.Errorf("failed to apply preset: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Applied preset %q (%d active filters)", preset.Name, preset.Filters.ActiveCount())))
			return nil
		},
	}
}

func renamePresetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name-or-id> <new-name>",
		Short: "Rename a preset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			newName := args[1]

			store, closeStore, err := initPresetStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			preset, err := findPreset(ctx, store, args[0])
			if err != nil {
				return err
			}

			taken, err := store.NameExists(ctx, newName, preset.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("a preset named %q already exists", newName)
			}

			if err := store.UpdatePreset(ctx, preset.ID, model.PresetUpdate{Name: &newName}); err != nil {
				return fmt.Errorf("failed to rename preset: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Renamed %q to %q", preset.Name, newName)))
			return nil
		},
	}
}

func deletePresetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := initPresetStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			preset, err := findPreset(ctx, store, args[0])
			if err != nil {
				return err
			}

			if err := store.DeletePreset(ctx, preset.ID); err != nil {
				return fmt.Errorf("failed to delete preset: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted preset %q", preset.Name)))
			return nil
		},
	}
}

// findPreset resolves a preset by exact id, id prefix, or case-insensitive
// name. Ambiguous names are an error.
func findPreset(ctx context.Context, store *storage.PresetStore, ref string) (*model.FilterPreset, error) {
	presets, err := store.Presets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}

	var matches []model.FilterPreset
	for _, p := range presets {
		if p.ID == ref || strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no preset matches %q", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d presets, use the id instead", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
