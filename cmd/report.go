package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidensmith24/shopifyscraper/internal/report"
	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

// newReportCmd creates and configures the 'report' subcommand.
func newReportCmd() *cobra.Command {
	var (
		outDir string
		bins   int
		topN   int
	)

	cmd := &cobra.Command{
		Use:   "report [snapshot]",
		Short: "Render charts and a PDF report for a snapshot",
		Long: `Generates a price histogram, vendor and product type bar charts, and
a PDF report for a snapshot. Without an argument the newest snapshot in
the data directory is used.`,

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
			if bins <= 0 {
				bins = rt.Config.Report.Bins
			}
			if topN <= 0 {
				topN = rt.Config.Report.TopN
			}
			return runReport(cmd, rt, ref, outDir, bins, topN)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <data.dir>/reports/<snapshot>)")
	cmd.Flags().IntVar(&bins, "bins", 0, "price histogram bin count (0 means the configured default)")
	cmd.Flags().IntVar(&topN, "top", 0, "how many vendors, types, and tags to chart (0 means the configured default)")
	return cmd
}

func runReport(cmd *cobra.Command, rt *Runtime, ref, outDir string, bins, topN int) error {
	snap, name, err := loadSnapshotRef(rt.Config.Data.Dir, ref)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = filepath.Join(rt.Config.ReportDir(), strings.TrimSuffix(name, ".json"))
	}

	builder, err := report.NewBuilder(outDir, bins, topN, rt.Logger)
	if err != nil {
		return err
	}
	sum := stats.Summarize(snap.Products, topN)
	artifacts, err := builder.Build(snap, sum)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report for %s\n", name)
	for _, f := range artifacts.Files() {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}
