package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

// buildPDF writes the summary document: capture metadata, the numeric
// overview, the frequency tables, and one page per chart image.
func (b *Builder) buildPDF(snap snapshot.Snapshot, sum stats.Summary, charts []string, path string) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Catalog Report", true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, "Catalog Report", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(90, 90, 90)
	capturedAt := "unknown"
	if !snap.CapturedAt.IsZero() {
		capturedAt = snap.CapturedAt.UTC().Format(time.RFC3339)
	}
	doc.CellFormat(0, 5, tr("Store: "+orDash(snap.StoreURL)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 5, "Captured: "+capturedAt, "", 1, "L", false, 0, "")
	if snap.RunID != "" {
		doc.CellFormat(0, 5, "Run: "+snap.RunID, "", 1, "L", false, 0, "")
	}
	doc.SetTextColor(0, 0, 0)

	b.overviewSection(doc, sum)
	b.freqSection(doc, tr, "Top Tags", sum.Tags.Top(b.topN))
	b.freqSection(doc, tr, "Top Vendors", sum.Vendors.Top(b.topN))
	b.freqSection(doc, tr, "Top Product Types", sum.Types.Top(b.topN))

	for _, chart := range charts {
		doc.AddPage()
		doc.ImageOptions(chart, 15, 30, 180, 0, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (b *Builder) overviewSection(doc *fpdf.Fpdf, sum stats.Summary) {
	b.sectionTitle(doc, "Overview")
	rows := [][2]string{
		{"Products", strconv.Itoa(sum.Products)},
		{"Variants", strconv.Itoa(sum.Variants)},
		{"Priced variants", strconv.Itoa(sum.Price.Count)},
		{"Min price", formatPrice(sum.Price.Min)},
		{"Max price", formatPrice(sum.Price.Max)},
		{"Mean price", formatPrice(sum.Price.Mean)},
		{"Median price", formatPrice(sum.Price.Median)},
		{"In stock", strconv.Itoa(sum.Stock.Available)},
		{"Out of stock", strconv.Itoa(sum.Stock.Unavailable)},
	}
	for _, row := range rows {
		doc.CellFormat(60, 6, row[0], "1", 0, "L", false, 0, "")
		doc.CellFormat(40, 6, row[1], "1", 1, "R", false, 0, "")
	}
}

func (b *Builder) freqSection(doc *fpdf.Fpdf, tr func(string) string, title string, table stats.FreqTable) {
	if len(table) == 0 {
		return
	}
	b.sectionTitle(doc, title)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(80, 6, "Name", "1", 0, "L", true, 0, "")
	doc.CellFormat(20, 6, "Count", "1", 1, "R", true, 0, "")
	for _, entry := range table {
		doc.CellFormat(80, 6, tr(entry.Name), "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 6, strconv.Itoa(entry.Count), "1", 1, "R", false, 0, "")
	}
}

func (b *Builder) sectionTitle(doc *fpdf.Fpdf, title string) {
	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
