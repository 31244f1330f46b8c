package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
	"github.com/aidensmith24/shopifyscraper/internal/progress"
)

// Scraper walks the paginated product listing of one storefront.
type Scraper struct {
	fetcher Fetcher
	cfg     Config
	logger  *zap.Logger
	emitter progress.Emitter
}

// New constructs a Scraper. A nil emitter disables progress events.
func New(fetcher Fetcher, cfg Config, logger *zap.Logger, emitter progress.Emitter) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		fetcher: fetcher,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		emitter: emitter,
	}
}

// Result is one complete catalog capture.
type Result struct {
	RunID    uuid.UUID
	StoreURL string
	Products []catalog.Product
	Pages    int
	Duration time.Duration
}

// PageURL builds the storefront listing URL for one page.
func PageURL(storeURL string, pageSize, page int) (string, error) {
	u, err := url.Parse(storeURL)
	if err != nil {
		return "", fmt.Errorf("parse store url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/products.json"
	q := url.Values{}
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ScrapeAll fetches every catalog page in order, starting at page 1,
// until a page comes back empty or short. Any request or decode error
// aborts the run and surfaces to the caller; there is no retry. The
// politeness delay between pages is enforced by the fetcher.
func (s *Scraper) ScrapeAll(ctx context.Context, storeURL string) (Result, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return Result{}, fmt.Errorf("generate run id: %w", err)
	}
	store := catalog.StoreHost(storeURL)
	started := time.Now()

	s.emit(progress.Event{
		RunID: progress.UUIDToBytes(runID),
		TS:    time.Now().UTC(),
		Stage: progress.StageRunStart,
		Store: store,
	})
	s.logger.Info("scrape started",
		zap.Stringer("run_id", runID),
		zap.String("store", store),
		zap.Int("page_size", s.cfg.PageSize),
	)

	var all []catalog.Product
	pages := 0
	for page := 1; ; page++ {
		if s.cfg.MaxPages > 0 && page > s.cfg.MaxPages {
			s.logger.Warn("page cap reached, stopping early",
				zap.Int("max_pages", s.cfg.MaxPages),
			)
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, s.fail(runID, store, started, err)
		}

		products, err := s.fetchPage(ctx, runID, storeURL, store, page)
		if err != nil {
			return Result{}, s.fail(runID, store, started, fmt.Errorf("fetch page %d: %w", page, err))
		}
		if len(products) == 0 {
			break
		}
		pages++
		all = append(all, products...)
		s.logger.Info("page fetched",
			zap.Int("page", page),
			zap.Int("products", len(products)),
			zap.Int("total", len(all)),
		)
		if len(products) < s.cfg.PageSize {
			break
		}
	}

	dur := time.Since(started)
	s.emit(progress.Event{
		RunID:    progress.UUIDToBytes(runID),
		TS:       time.Now().UTC(),
		Stage:    progress.StageRunDone,
		Store:    store,
		Products: len(all),
		Dur:      dur,
	})
	s.logger.Info("scrape complete",
		zap.Stringer("run_id", runID),
		zap.String("store", store),
		zap.Int("pages", pages),
		zap.Int("products", len(all)),
		zap.Duration("dur", dur),
	)
	return Result{
		RunID:    runID,
		StoreURL: storeURL,
		Products: all,
		Pages:    pages,
		Duration: dur,
	}, nil
}

// fetchPage retrieves and decodes one listing page, emitting exactly
// one PAGE_DONE event whether or not the request succeeded.
func (s *Scraper) fetchPage(ctx context.Context, runID uuid.UUID, storeURL, store string, page int) ([]catalog.Product, error) {
	pageURL, err := PageURL(storeURL, s.cfg.PageSize, page)
	if err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	resp, err := s.fetcher.Get(ctx, pageURL)

	var doc catalog.Page
	if err == nil {
		if decodeErr := json.Unmarshal(resp.Body, &doc); decodeErr != nil {
			err = fmt.Errorf("decode products page: %w", decodeErr)
		}
	}

	s.emit(progress.Event{
		RunID:       progress.UUIDToBytes(runID),
		TS:          time.Now().UTC(),
		Stage:       progress.StagePageDone,
		Store:       store,
		Page:        page,
		Products:    len(doc.Products),
		Bytes:       int64(len(resp.Body)),
		StatusClass: progress.ClassifyStatus(resp.StatusCode),
		Dur:         time.Since(fetchStart),
	})
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func (s *Scraper) fail(runID uuid.UUID, store string, started time.Time, err error) error {
	s.emit(progress.Event{
		RunID: progress.UUIDToBytes(runID),
		TS:    time.Now().UTC(),
		Stage: progress.StageRunError,
		Store: store,
		Dur:   time.Since(started),
		Note:  err.Error(),
	})
	s.logger.Error("scrape failed",
		zap.Stringer("run_id", runID),
		zap.String("store", store),
		zap.Error(err),
	)
	return err
}

func (s *Scraper) emit(evt progress.Event) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(evt)
}
