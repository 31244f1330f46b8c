package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
)

// newDiffCmd creates and configures the 'diff' subcommand.
func newDiffCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "diff <older> <newer>",
		Short: "Compare two snapshots",
		Long: `Compares two snapshots by product ID and reports added, removed, and
changed products. Arguments are snapshot names or file paths; pass the
older capture first.`,

		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			return runDiff(cmd, rt, args[0], args[1], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format, table or json")
	return cmd
}

func runDiff(cmd *cobra.Command, rt *Runtime, oldRef, newRef, format string) error {
	older, oldName, err := loadSnapshotRef(rt.Config.Data.Dir, oldRef)
	if err != nil {
		return err
	}
	newer, newName, err := loadSnapshotRef(rt.Config.Data.Dir, newRef)
	if err != nil {
		return err
	}

	result, err := snapshot.Diff(older.Products, newer.Products)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, map[string]any{
			"old":  oldName,
			"new":  newName,
			"diff": result,
		})
	case "table":
		return printDiff(out, oldName, newName, result)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
