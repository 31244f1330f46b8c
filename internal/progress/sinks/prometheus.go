package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aidensmith24/shopifyscraper/internal/progress"
)

// PrometheusSink exports scrape progress as Prometheus metrics. It owns
// the collectors for runs started/completed and per-store page
// counters.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	pagesFetched *prometheus.CounterVec
	products     *prometheus.CounterVec
	pageBytes    *prometheus.CounterVec
	pageDuration *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided
// registry. A nil registry falls back to the default registerer.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_runs_started_total",
			Help: "Total scrape runs that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_runs_completed_total",
			Help: "Total scrape runs completed partitioned by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scraper_run_duration_seconds",
			Help:    "Wall time per completed scrape run.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"result"}),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Catalog pages fetched partitioned by store and status class.",
		}, []string{"store", "status_class"}),
		products: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_products_scraped_total",
			Help: "Products collected per store.",
		}, []string{"store"}),
		pageBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_page_bytes_total",
			Help: "Bytes downloaded per store.",
		}, []string{"store"}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scraper_page_duration_seconds",
			Help:    "Page fetch duration partitioned by store and status class.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"store", "status_class"}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.pagesFetched,
		s.products,
		s.pageBytes,
		s.pageDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors from the provided batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.completeRun(evt, "success")
	case progress.StageRunError:
		s.completeRun(evt, "error")
	case progress.StagePageDone:
		s.handlePageEvent(evt)
	}
}

func (s *PrometheusSink) completeRun(evt progress.Event, result string) {
	s.runsCompleted.WithLabelValues(result).Inc()
	if evt.Dur > 0 {
		s.runDuration.WithLabelValues(result).Observe(evt.Dur.Seconds())
	}
}

func (s *PrometheusSink) handlePageEvent(evt progress.Event) {
	store := evt.Store
	if store == "" {
		store = "unknown"
	}
	statusClass := string(evt.StatusClass)
	if statusClass == "" {
		statusClass = string(progress.StatusOther)
	}
	s.pagesFetched.WithLabelValues(store, statusClass).Inc()
	if evt.Products > 0 {
		s.products.WithLabelValues(store).Add(float64(evt.Products))
	}
	if evt.Bytes > 0 {
		s.pageBytes.WithLabelValues(store).Add(float64(evt.Bytes))
	}
	if evt.Dur > 0 {
		s.pageDuration.WithLabelValues(store, statusClass).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; collectors stay registered.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
