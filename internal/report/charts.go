package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

// priceHistogram renders the variant price distribution as a PNG.
func (b *Builder) priceHistogram(prices []float64, path string) error {
	p := plot.New()
	p.Title.Text = "Price Distribution"
	p.X.Label.Text = "Price"
	p.Y.Label.Text = "Variants"

	values := make(plotter.Values, len(prices))
	copy(values, prices)
	hist, err := plotter.NewHist(values, b.bins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	hist.FillColor = color.RGBA{R: 77, G: 136, B: 255, A: 255}
	p.Add(hist, plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}

// barChart renders one frequency table as a PNG with rotated category
// labels.
func (b *Builder) barChart(title string, table stats.FreqTable, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Products"

	values := make(plotter.Values, len(table))
	names := make([]string, len(table))
	for i, entry := range table {
		values[i] = float64(entry.Count)
		names[i] = entry.Name
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(2)
	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save bar chart: %w", err)
	}
	return nil
}
