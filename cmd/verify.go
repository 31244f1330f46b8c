package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
	"github.com/aidensmith24/shopifyscraper/internal/scrape"
)

// newVerifyCmd creates and configures the 'verify' subcommand.
func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <store>",
		Short: "Check whether a domain is a Shopify storefront",
		Long: `Runs three detection checks in order: a products.json request, a
response header sniff, and an HTML source scan. The first check that
passes settles the verdict and the remaining checks are skipped. The
command exits non-zero when no check passes.`,

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			return runVerify(cmd, rt, args[0])
		},
	}
	return cmd
}

func runVerify(cmd *cobra.Command, rt *Runtime, rawStore string) error {
	storeURL, err := catalog.NormalizeStoreURL(rawStore)
	if err != nil {
		return err
	}

	scrapeCfg := scrape.Config{
		Delay:     rt.Config.Scrape.Delay,
		Timeout:   rt.Config.Scrape.Timeout,
		UserAgent: rt.Config.Scrape.UserAgent,
		Proxies:   rt.Config.Scrape.Proxies,
	}
	fetcher, err := scrape.NewCollyFetcher(scrapeCfg, rt.Logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	scraper := scrape.New(fetcher, scrapeCfg, rt.Logger, nil)

	verdict, err := scraper.Verify(cmd.Context(), storeURL)
	if err != nil {
		return fmt.Errorf("verify store: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Store          %s\n", storeURL)
	fmt.Fprintf(out, "products.json  %s\n", yesNo(verdict.ProductsJSON))
	fmt.Fprintf(out, "headers        %s\n", yesNo(verdict.Headers))
	fmt.Fprintf(out, "html markers   %s\n", yesNo(verdict.HTMLMarkers))
	if !verdict.IsShopify() {
		return fmt.Errorf("%s: %w", storeURL, scrape.ErrNotShopify)
	}
	fmt.Fprintln(out, "Verdict        Shopify storefront")
	return nil
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
