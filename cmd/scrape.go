package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
	"github.com/aidensmith24/shopifyscraper/internal/progress"
	progresssinks "github.com/aidensmith24/shopifyscraper/internal/progress/sinks"
	"github.com/aidensmith24/shopifyscraper/internal/scrape"
	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

type scrapeOptions struct {
	outPath     string
	skipVerify  bool
	noSnapshot  bool
	proxies     []string
	maxPages    int
	maxPagesSet bool
	metricsAddr string
}

// newScrapeCmd creates and configures the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	var (
		outPath     string
		skipVerify  bool
		noSnapshot  bool
		proxies     []string
		maxPages    int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "scrape <store>",
		Short: "Scrape a storefront catalog and save a snapshot",
		Long: `Walks the storefront's products.json listing page by page and writes
the full catalog to a dated snapshot file. The store argument accepts a
bare shop name (demo), a domain (demo.myshopify.com), or a full URL.`,

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			return runScrape(cmd, rt, args[0], scrapeOptions{
				outPath:     outPath,
				skipVerify:  skipVerify,
				noSnapshot:  noSnapshot,
				proxies:     proxies,
				maxPages:    maxPages,
				maxPagesSet: cmd.Flags().Changed("max-pages"),
				metricsAddr: metricsAddr,
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the snapshot to this exact path")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "skip storefront verification")
	cmd.Flags().BoolVar(&noSnapshot, "no-snapshot", false, "scrape without writing a snapshot")
	cmd.Flags().StringArrayVar(&proxies, "proxy", nil, "proxy URL to rotate through (repeatable)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 means unlimited)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	return cmd
}

func runScrape(cmd *cobra.Command, rt *Runtime, rawStore string, opts scrapeOptions) error {
	storeURL, err := catalog.NormalizeStoreURL(rawStore)
	if err != nil {
		return err
	}

	cfg := rt.Config
	if len(opts.proxies) > 0 {
		cfg.Scrape.Proxies = opts.proxies
	}
	if opts.maxPagesSet {
		cfg.Scrape.MaxPages = opts.maxPages
	}
	if opts.metricsAddr == "" {
		opts.metricsAddr = cfg.Scrape.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sinkList := []progress.Sink{progresssinks.NewLogSink(rt.Logger)}
	if opts.metricsAddr != "" {
		promSink, err := progresssinks.NewPrometheusSink(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("init metrics sink: %w", err)
		}
		sinkList = append(sinkList, promSink)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			rt.Logger.Info("metrics server started", zap.String("addr", opts.metricsAddr))
			if err := http.ListenAndServe(opts.metricsAddr, mux); err != nil {
				rt.Logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}
	broadcaster := progress.NewBroadcaster(rt.Logger, sinkList...)
	defer func() {
		if cerr := broadcaster.Close(context.Background()); cerr != nil {
			rt.Logger.Warn("close progress sinks", zap.Error(cerr))
		}
	}()

	scrapeCfg := scrape.Config{
		PageSize:  cfg.Scrape.PageSize,
		Delay:     cfg.Scrape.Delay,
		Timeout:   cfg.Scrape.Timeout,
		UserAgent: cfg.Scrape.UserAgent,
		Proxies:   cfg.Scrape.Proxies,
		MaxPages:  cfg.Scrape.MaxPages,
	}
	fetcher, err := scrape.NewCollyFetcher(scrapeCfg, rt.Logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	scraper := scrape.New(fetcher, scrapeCfg, rt.Logger, broadcaster)

	ctx := cmd.Context()
	if cfg.Scrape.Verify && !opts.skipVerify {
		verdict, err := scraper.Verify(ctx, storeURL)
		if err != nil {
			return fmt.Errorf("verify store: %w", err)
		}
		if !verdict.IsShopify() {
			return fmt.Errorf("%s: %w", storeURL, scrape.ErrNotShopify)
		}
	}

	result, err := scraper.ScrapeAll(ctx, storeURL)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", storeURL, err)
	}

	out := cmd.OutOrStdout()
	sum := stats.Summarize(result.Products, cfg.Report.TopN)
	if err := printSummary(out, catalog.StoreHost(storeURL), sum); err != nil {
		return err
	}

	if opts.noSnapshot {
		return nil
	}
	snap := snapshot.Snapshot{
		RunID:      result.RunID.String(),
		StoreURL:   storeURL,
		CapturedAt: time.Now().UTC(),
		Products:   result.Products,
	}
	path := opts.outPath
	if path != "" {
		if err := snapshot.Write(snap, path); err != nil {
			return err
		}
	} else {
		store, err := snapshot.NewStore(cfg.Data.Dir)
		if err != nil {
			return err
		}
		path, err = store.Save(snap)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "\nSnapshot written to %s (%d products, %d pages, %s)\n",
		path, len(result.Products), result.Pages, result.Duration.Round(time.Millisecond))
	return nil
}
