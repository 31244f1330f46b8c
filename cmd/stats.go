package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

// newStatsCmd creates and configures the 'stats' subcommand.
func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats [snapshot]",
		Short: "Summarize a stored snapshot",
		Long: `Computes price, stock, tag, vendor, and product type statistics for a
snapshot. The argument is a snapshot name (products_2024-05-01.json) or
a file path; with no argument the newest snapshot in the data directory
is used.`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			return runStats(cmd, rt, ref, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format, table or json")
	return cmd
}

func runStats(cmd *cobra.Command, rt *Runtime, ref, format string) error {
	snap, name, err := loadSnapshotRef(rt.Config.Data.Dir, ref)
	if err != nil {
		return err
	}
	sum := stats.Summarize(snap.Products, rt.Config.Report.TopN)

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, map[string]any{
			"snapshot":    name,
			"store_url":   snap.StoreURL,
			"captured_at": snap.CapturedAt,
			"summary":     sum,
		})
	case "table":
		label := name
		if snap.StoreURL != "" {
			label = fmt.Sprintf("%s (%s)", name, catalog.StoreHost(snap.StoreURL))
		}
		return printSummary(out, label, sum)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
