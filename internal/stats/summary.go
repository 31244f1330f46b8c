// Package stats computes descriptive statistics over a product catalog:
// price distribution numbers, stock counts, and frequency tables for
// tags, vendors, and product types.
package stats

import (
	"sort"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
)

// UnknownLabel replaces empty vendor and product type values in
// frequency tables.
const UnknownLabel = "Unknown"

// PriceSummary describes the variant price distribution of a catalog.
// All prices across all variants count, one value per variant.
type PriceSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// StockSummary counts variants by availability.
type StockSummary struct {
	Available   int `json:"available"`
	Unavailable int `json:"unavailable"`
}

// Total returns the number of variants counted.
func (s StockSummary) Total() int { return s.Available + s.Unavailable }

// FreqEntry is one label with its occurrence count.
type FreqEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FreqTable is a frequency table ordered by count descending, ties
// broken by name ascending.
type FreqTable []FreqEntry

// Top returns at most n leading entries. n <= 0 returns the whole
// table.
func (t FreqTable) Top(n int) FreqTable {
	if n <= 0 || n >= len(t) {
		return t
	}
	return t[:n]
}

// Summary bundles every statistic computed for one catalog.
type Summary struct {
	Products int          `json:"products"`
	Variants int          `json:"variants"`
	Price    PriceSummary `json:"price"`
	Stock    StockSummary `json:"stock"`
	Tags     FreqTable    `json:"tags"`
	Vendors  FreqTable    `json:"vendors"`
	Types    FreqTable    `json:"product_types"`
}

// Summarize computes the full statistics bundle. Frequency tables are
// truncated to topN entries each; topN <= 0 keeps them complete.
func Summarize(products []catalog.Product, topN int) Summary {
	variants := 0
	for _, p := range products {
		variants += len(p.Variants)
	}
	return Summary{
		Products: len(products),
		Variants: variants,
		Price:    SummarizePrices(Prices(products)),
		Stock:    CountStock(products),
		Tags:     TagFrequencies(products).Top(topN),
		Vendors:  VendorFrequencies(products).Top(topN),
		Types:    TypeFrequencies(products).Top(topN),
	}
}

// Prices collects every variant price in catalog order.
func Prices(products []catalog.Product) []float64 {
	var out []float64
	for _, p := range products {
		for _, v := range p.Variants {
			out = append(out, v.Price.Float64())
		}
	}
	return out
}

// SummarizePrices computes min, max, mean, and median. The median of an
// even-sized sample averages the two middle values. An empty sample
// yields the zero summary.
func SummarizePrices(prices []float64) PriceSummary {
	n := len(prices)
	if n == 0 {
		return PriceSummary{}
	}
	sorted := make([]float64, n)
	copy(sorted, prices)
	sort.Float64s(sorted)

	sum := 0.0
	for _, p := range sorted {
		sum += p
	}
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return PriceSummary{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   sum / float64(n),
		Median: median,
	}
}

// CountStock tallies variant availability across the catalog.
func CountStock(products []catalog.Product) StockSummary {
	var s StockSummary
	for _, p := range products {
		for _, v := range p.Variants {
			if v.Available {
				s.Available++
			} else {
				s.Unavailable++
			}
		}
	}
	return s
}

// TagFrequencies counts how many products carry each tag.
func TagFrequencies(products []catalog.Product) FreqTable {
	counts := map[string]int{}
	for _, p := range products {
		for _, tag := range p.Tags {
			counts[tag]++
		}
	}
	return tabulate(counts)
}

// VendorFrequencies counts products per vendor. Products without a
// vendor fall under UnknownLabel.
func VendorFrequencies(products []catalog.Product) FreqTable {
	counts := map[string]int{}
	for _, p := range products {
		counts[labelOrUnknown(p.Vendor)]++
	}
	return tabulate(counts)
}

// TypeFrequencies counts products per product type. Products without a
// type fall under UnknownLabel.
func TypeFrequencies(products []catalog.Product) FreqTable {
	counts := map[string]int{}
	for _, p := range products {
		counts[labelOrUnknown(p.ProductType)]++
	}
	return tabulate(counts)
}

func labelOrUnknown(s string) string {
	if s == "" {
		return UnknownLabel
	}
	return s
}

func tabulate(counts map[string]int) FreqTable {
	if len(counts) == 0 {
		return nil
	}
	table := make(FreqTable, 0, len(counts))
	for name, count := range counts {
		table = append(table, FreqEntry{Name: name, Count: count})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return table[i].Name < table[j].Name
	})
	return table
}
