package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
	"github.com/aidensmith24/shopifyscraper/internal/progress"
)

func makeProducts(n int) []catalog.Product {
	products := make([]catalog.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, catalog.Product{
			ID:     int64(i),
			Title:  fmt.Sprintf("Product %d", i),
			Handle: fmt.Sprintf("product-%d", i),
			Vendor: "Acme",
			Variants: []catalog.Variant{
				{ID: int64(i * 100), Title: "Default", Price: catalog.Amount(float64(i)), Available: i%2 == 0},
			},
		})
	}
	return products
}

// fakeStorefront serves a catalog through the paginated listing
// endpoint the way Shopify does.
func fakeStorefront(t *testing.T, products []catalog.Product, requests *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			*requests++
		}
		if r.URL.Path != "/products.json" {
			http.NotFound(w, r)
			return
		}
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = 250
		}
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page <= 0 {
			page = 1
		}
		start := (page - 1) * limit
		if start > len(products) {
			start = len(products)
		}
		end := start + limit
		if end > len(products) {
			end = len(products)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(catalog.Page{Products: products[start:end]}); err != nil {
			t.Errorf("encode page: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestScraper(t *testing.T, cfg Config, emitter progress.Emitter) *Scraper {
	t.Helper()
	fetcher, err := NewCollyFetcher(cfg, nil)
	require.NoError(t, err)
	return New(fetcher, cfg, nil, emitter)
}

func TestPageURL(t *testing.T) {
	got, err := PageURL("https://shop.example.com", 250, 2)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/products.json?limit=250&page=2", got)

	got, err = PageURL("https://shop.example.com/eu", 50, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/eu/products.json?limit=50&page=1", got)
}

func TestScrapeAllConcatenatesPages(t *testing.T) {
	catalogFixture := makeProducts(55)
	var requests int
	srv := fakeStorefront(t, catalogFixture, &requests)

	s := newTestScraper(t, Config{PageSize: 20}, nil)
	result, err := s.ScrapeAll(context.Background(), srv.URL)
	require.NoError(t, err)

	// Pages of 20, 20, 15: concatenation must equal the full catalog.
	assert.Equal(t, catalogFixture, result.Products)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 3, requests)
	assert.NotEqual(t, [16]byte{}, progress.UUIDToBytes(result.RunID))
}

func TestScrapeAllMatchesSinglePageFetch(t *testing.T) {
	catalogFixture := makeProducts(40)

	paginated := newTestScraper(t, Config{PageSize: 15}, nil)
	srv := fakeStorefront(t, catalogFixture, nil)
	got, err := paginated.ScrapeAll(context.Background(), srv.URL)
	require.NoError(t, err)

	oneShot := newTestScraper(t, Config{PageSize: 250}, nil)
	srv2 := fakeStorefront(t, catalogFixture, nil)
	want, err := oneShot.ScrapeAll(context.Background(), srv2.URL)
	require.NoError(t, err)

	assert.Equal(t, want.Products, got.Products)
}

func TestScrapeAllStopsAtExactMultiple(t *testing.T) {
	catalogFixture := makeProducts(40)
	var requests int
	srv := fakeStorefront(t, catalogFixture, &requests)

	s := newTestScraper(t, Config{PageSize: 20}, nil)
	result, err := s.ScrapeAll(context.Background(), srv.URL)
	require.NoError(t, err)

	// Two full pages force a third request that comes back empty.
	assert.Len(t, result.Products, 40)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 3, requests)
}

func TestScrapeAllEmptyCatalog(t *testing.T) {
	srv := fakeStorefront(t, nil, nil)

	s := newTestScraper(t, Config{PageSize: 20}, nil)
	result, err := s.ScrapeAll(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, result.Products)
	assert.Equal(t, 0, result.Pages)
}

func TestScrapeAllHonorsMaxPages(t *testing.T) {
	catalogFixture := makeProducts(100)
	srv := fakeStorefront(t, catalogFixture, nil)

	s := newTestScraper(t, Config{PageSize: 20, MaxPages: 2}, nil)
	result, err := s.ScrapeAll(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, result.Products, 40)
}

type stubFetcher struct {
	responses map[string]Response
	errs      map[string]error
}

func (f *stubFetcher) Get(_ context.Context, rawURL string) (Response, error) {
	if err, ok := f.errs[rawURL]; ok {
		return Response{StatusCode: http.StatusInternalServerError}, err
	}
	resp, ok := f.responses[rawURL]
	if !ok {
		return Response{StatusCode: http.StatusNotFound}, errors.New("not found")
	}
	return resp, nil
}

func (f *stubFetcher) Head(ctx context.Context, rawURL string) (Response, error) {
	return f.Get(ctx, rawURL)
}

func pageBody(t *testing.T, products []catalog.Product) []byte {
	t.Helper()
	data, err := json.Marshal(catalog.Page{Products: products})
	require.NoError(t, err)
	return data
}

func TestScrapeAllSurfacesPageError(t *testing.T) {
	const store = "https://shop.example.com"
	page1, err := PageURL(store, 2, 1)
	require.NoError(t, err)
	page2, err := PageURL(store, 2, 2)
	require.NoError(t, err)

	fetcher := &stubFetcher{
		responses: map[string]Response{
			page1: {StatusCode: 200, Body: pageBody(t, makeProducts(2))},
		},
		errs: map[string]error{
			page2: errors.New("status 500"),
		},
	}
	s := New(fetcher, Config{PageSize: 2}, nil, nil)

	_, err = s.ScrapeAll(context.Background(), store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch page 2")
}

func TestScrapeAllSurfacesMalformedJSON(t *testing.T) {
	const store = "https://shop.example.com"
	page1, err := PageURL(store, 250, 1)
	require.NoError(t, err)

	fetcher := &stubFetcher{
		responses: map[string]Response{
			page1: {StatusCode: 200, Body: []byte("{not json")},
		},
	}
	s := New(fetcher, Config{PageSize: 250}, nil, nil)

	_, err = s.ScrapeAll(context.Background(), store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode products page")
}

func TestScrapeAllCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(&stubFetcher{}, Config{PageSize: 250}, nil, nil)
	_, err := s.ScrapeAll(ctx, "https://shop.example.com")
	require.ErrorIs(t, err, context.Canceled)
}

type recordingEmitter struct {
	events []progress.Event
}

func (e *recordingEmitter) Emit(evt progress.Event) {
	e.events = append(e.events, evt)
}

func (e *recordingEmitter) stages() []progress.Stage {
	out := make([]progress.Stage, 0, len(e.events))
	for _, evt := range e.events {
		out = append(out, evt.Stage)
	}
	return out
}

func TestScrapeAllEmitsProgress(t *testing.T) {
	catalogFixture := makeProducts(25)
	srv := fakeStorefront(t, catalogFixture, nil)

	emitter := &recordingEmitter{}
	s := newTestScraper(t, Config{PageSize: 20}, emitter)
	_, err := s.ScrapeAll(context.Background(), srv.URL)
	require.NoError(t, err)

	require.Equal(t, []progress.Stage{
		progress.StageRunStart,
		progress.StagePageDone,
		progress.StagePageDone,
		progress.StageRunDone,
	}, emitter.stages())

	first := emitter.events[1]
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 20, first.Products)
	assert.Equal(t, progress.Status2xx, first.StatusClass)
	assert.Positive(t, first.Bytes)

	done := emitter.events[3]
	assert.Equal(t, 25, done.Products)

	for _, evt := range emitter.events {
		assert.NoError(t, evt.Validate())
		assert.Equal(t, emitter.events[0].RunID, evt.RunID)
	}
}

func TestScrapeAllEmitsRunErrorOnFailure(t *testing.T) {
	const store = "https://shop.example.com"
	emitter := &recordingEmitter{}
	s := New(&stubFetcher{}, Config{PageSize: 250}, nil, emitter)

	_, err := s.ScrapeAll(context.Background(), store)
	require.Error(t, err)

	stages := emitter.stages()
	require.NotEmpty(t, stages)
	assert.Equal(t, progress.StageRunError, stages[len(stages)-1])
}
