// Package cmd defines and implements the CLI commands for the
// shopify-scraper executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidensmith24/shopifyscraper/internal/config"
	"github.com/aidensmith24/shopifyscraper/internal/logging"
)

var (
	cfgFile string
	dataDir string
	verbose bool
)

// runtimeKeyType is the key for storing the Runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// Runtime bundles the services every subcommand needs.
type Runtime struct {
	Config config.Config
	Logger *zap.Logger
}

// newRuntime is the runtime factory. It is a variable so tests can
// substitute a canned runtime.
var newRuntime = buildRuntime

func buildRuntime() (*Runtime, error) {
	// A .env file is a development convenience; missing is fine.
	godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if verbose {
		cfg.Logging.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &Runtime{Config: cfg, Logger: logger}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopify-scraper",
		Short: "Scrape, snapshot, and analyze Shopify storefront catalogs",
		Long: `shopify-scraper walks the public products.json listing of a Shopify
storefront, stores dated snapshots of the catalog, and turns them into
statistics, diffs, charts, and PDF reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Runs after flags are parsed but before the subcommand's RunE,
		// so every command receives a ready Runtime via its context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			ctx := context.WithValue(cmd.Context(), runtimeKey, rt)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey).(*Runtime); ok && rt != nil {
				rt.Logger.Sync() //nolint:errcheck // best-effort flush
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "snapshot directory (overrides data.dir)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "force development logging")

	cmd.AddCommand(
		newScrapeCmd(),
		newVerifyCmd(),
		newStatsCmd(),
		newDiffCmd(),
		newReportCmd(),
		newServeCmd(),
	)
	return cmd
}

func resolveRuntime(ctx context.Context) (*Runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*Runtime)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
