// Package scrape drives paginated product fetches against a single
// Shopify storefront, including storefront verification and optional
// proxy rotation.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/proxy"
	"go.uber.org/zap"
)

// DefaultUserAgent identifies the scraper to storefronts.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ShopifyScraper/1.0)"

// Config holds the knobs for one scrape run.
type Config struct {
	// PageSize is the limit parameter sent to /products.json, capped
	// at 250 by Shopify.
	PageSize int
	// Delay is the politeness pause between page requests.
	Delay time.Duration
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// UserAgent overrides DefaultUserAgent when set.
	UserAgent string
	// Proxies lists proxy URLs rotated round robin across requests.
	// Empty means direct connections.
	Proxies []string
	// MaxPages caps the pagination loop; 0 means unlimited.
	MaxPages int
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 || c.PageSize > 250 {
		c.PageSize = 250
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// Response is one HTTP exchange as seen by the scraper.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Fetcher retrieves storefront URLs. Implementations are used
// sequentially, one request at a time.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (Response, error)
	Head(ctx context.Context, rawURL string) (Response, error)
}

// CollyFetcher implements Fetcher using the Colly collector.
type CollyFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher. The base
// collector carries the politeness limit and proxy rotation; each
// request runs on a clone so callbacks never leak between fetches.
func NewCollyFetcher(cfg Config, logger *zap.Logger) (*CollyFetcher, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	// The same storefront URL is hit by both verification and the page
	// loop, so revisits must be allowed.
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          8,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	if err := base.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limit: %w", err)
	}

	if len(cfg.Proxies) > 0 {
		switcher, err := proxy.RoundRobinProxySwitcher(cfg.Proxies...)
		if err != nil {
			return nil, fmt.Errorf("configure proxy rotation: %w", err)
		}
		base.SetProxyFunc(switcher)
	}

	return &CollyFetcher{
		baseCollector: base,
		logger:        logger,
	}, nil
}

// Get retrieves rawURL with a GET request.
func (f *CollyFetcher) Get(ctx context.Context, rawURL string) (Response, error) {
	return f.fetch(ctx, rawURL, func(c *colly.Collector) error {
		return c.Visit(rawURL)
	})
}

// Head retrieves only the response headers for rawURL.
func (f *CollyFetcher) Head(ctx context.Context, rawURL string) (Response, error) {
	return f.fetch(ctx, rawURL, func(c *colly.Collector) error {
		return c.Head(rawURL)
	})
}

func (f *CollyFetcher) fetch(ctx context.Context, rawURL string, visit func(*colly.Collector) error) (Response, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				cp := make([]string, len(v))
				copy(cp, v)
				headers[k] = cp
			}
		}
		send(fetchResult{resp: Response{
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte{}, r.Body...),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		res := fetchResult{err: err}
		if r != nil {
			res.resp.StatusCode = r.StatusCode
		}
		send(res)
	})

	if err := visit(collector); err != nil {
		return Response{}, fmt.Errorf("request %s: %w", rawURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		return res.resp, res.err
	default:
		return Response{}, errors.New("fetch produced no result")
	}
}

type fetchResult struct {
	resp Response
	err  error
}
