// Package report renders catalog statistics into chart images and a
// PDF summary document.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

// Output file names inside the report directory.
const (
	priceChartFile  = "price_distribution.png"
	vendorChartFile = "vendors.png"
	typeChartFile   = "product_types.png"
	pdfFile         = "report.pdf"
)

// Artifacts lists the files one Build produced.
type Artifacts struct {
	Charts []string
	PDF    string
}

// Files returns every produced path, charts first.
func (a Artifacts) Files() []string {
	files := make([]string, 0, len(a.Charts)+1)
	files = append(files, a.Charts...)
	if a.PDF != "" {
		files = append(files, a.PDF)
	}
	return files
}

// Builder renders the charts and PDF for one snapshot into a single
// output directory.
type Builder struct {
	dir    string
	bins   int
	topN   int
	logger *zap.Logger
}

// NewBuilder validates the output directory, creating it if missing.
// Non-positive bins or topN fall back to 20 and 10.
func NewBuilder(dir string, bins, topN int, logger *zap.Logger) (*Builder, error) {
	if dir == "" {
		return nil, errors.New("report directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	if bins <= 0 {
		bins = 20
	}
	if topN <= 0 {
		topN = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{dir: dir, bins: bins, topN: topN, logger: logger}, nil
}

// Build renders the price histogram, the vendor and product type bar
// charts, and the PDF report. Charts with no underlying data are
// skipped with a warning; the PDF is always written.
func (b *Builder) Build(snap snapshot.Snapshot, sum stats.Summary) (Artifacts, error) {
	var artifacts Artifacts

	prices := stats.Prices(snap.Products)
	if len(prices) == 0 {
		b.logger.Warn("no price data, skipping price chart")
	} else {
		path := filepath.Join(b.dir, priceChartFile)
		if err := b.priceHistogram(prices, path); err != nil {
			return Artifacts{}, fmt.Errorf("render price chart: %w", err)
		}
		artifacts.Charts = append(artifacts.Charts, path)
	}

	vendors := sum.Vendors.Top(b.topN)
	if len(vendors) == 0 {
		b.logger.Warn("no vendor data, skipping vendor chart")
	} else {
		path := filepath.Join(b.dir, vendorChartFile)
		if err := b.barChart("Vendor Distribution", vendors, path); err != nil {
			return Artifacts{}, fmt.Errorf("render vendor chart: %w", err)
		}
		artifacts.Charts = append(artifacts.Charts, path)
	}

	types := sum.Types.Top(b.topN)
	if len(types) == 0 {
		b.logger.Warn("no product type data, skipping type chart")
	} else {
		path := filepath.Join(b.dir, typeChartFile)
		if err := b.barChart("Product Type Distribution", types, path); err != nil {
			return Artifacts{}, fmt.Errorf("render type chart: %w", err)
		}
		artifacts.Charts = append(artifacts.Charts, path)
	}

	pdfPath := filepath.Join(b.dir, pdfFile)
	if err := b.buildPDF(snap, sum, artifacts.Charts, pdfPath); err != nil {
		return Artifacts{}, fmt.Errorf("render pdf: %w", err)
	}
	artifacts.PDF = pdfPath

	b.logger.Info("report built",
		zap.String("dir", b.dir),
		zap.Int("charts", len(artifacts.Charts)),
	)
	return artifacts, nil
}
