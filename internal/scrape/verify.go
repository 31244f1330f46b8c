package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrNotShopify reports a store that failed every detection check.
var ErrNotShopify = errors.New("store does not look like a Shopify storefront")

// HTML markers that betray a Shopify-rendered page.
var htmlMarkers = []string{"cdn.shopify.com", "shopify-digital-wallet"}

// Verdict records which storefront detection checks passed. Checks run
// in order and stop at the first success, so later fields stay false
// once an earlier one passes.
type Verdict struct {
	ProductsJSON bool `json:"products_json"`
	Headers      bool `json:"headers"`
	HTMLMarkers  bool `json:"html_markers"`
}

// IsShopify reports whether any check passed.
func (v Verdict) IsShopify() bool {
	return v.ProductsJSON || v.Headers || v.HTMLMarkers
}

// Verify probes the store with up to three checks: a products.json
// request, a header sniff, and an HTML marker scan. Individual request
// failures count as a failed check rather than an error; only context
// cancellation aborts verification.
func (s *Scraper) Verify(ctx context.Context, storeURL string) (Verdict, error) {
	var verdict Verdict

	ok, err := s.checkProductsJSON(ctx, storeURL)
	if err != nil {
		return verdict, err
	}
	verdict.ProductsJSON = ok
	if ok {
		return verdict, nil
	}

	ok, err = s.checkHeaders(ctx, storeURL)
	if err != nil {
		return verdict, err
	}
	verdict.Headers = ok
	if ok {
		return verdict, nil
	}

	ok, err = s.checkHTML(ctx, storeURL)
	if err != nil {
		return verdict, err
	}
	verdict.HTMLMarkers = ok
	return verdict, nil
}

// checkProductsJSON passes when the listing endpoint answers 200 with a
// JSON object that has a products key.
func (s *Scraper) checkProductsJSON(ctx context.Context, storeURL string) (bool, error) {
	pageURL, err := PageURL(storeURL, 1, 1)
	if err != nil {
		return false, err
	}
	resp, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return false, s.checkFailed(ctx, "products_json", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return false, nil
	}
	_, has := doc["products"]
	return has, nil
}

// checkHeaders passes when any response header name mentions Shopify.
func (s *Scraper) checkHeaders(ctx context.Context, storeURL string) (bool, error) {
	resp, err := s.fetcher.Head(ctx, storeURL)
	if err != nil {
		return false, s.checkFailed(ctx, "headers", err)
	}
	for name := range resp.Headers {
		if strings.Contains(strings.ToLower(name), "shopify") {
			return true, nil
		}
	}
	return false, nil
}

// checkHTML passes when the landing page references Shopify assets.
func (s *Scraper) checkHTML(ctx context.Context, storeURL string) (bool, error) {
	resp, err := s.fetcher.Get(ctx, storeURL)
	if err != nil {
		return false, s.checkFailed(ctx, "html", err)
	}
	body := strings.ToLower(string(resp.Body))
	for _, marker := range htmlMarkers {
		if strings.Contains(body, marker) {
			return true, nil
		}
	}
	return false, nil
}

// checkFailed downgrades a request error to a failed check unless the
// context was canceled.
func (s *Scraper) checkFailed(ctx context.Context, check string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.logger.Debug("verification check failed",
		zap.String("check", check),
		zap.Error(err),
	)
	return nil
}
