// Package catalog defines the product model shared by the scraper, the
// snapshot store, and the statistics code, together with the lenient
// decoding rules the public storefront endpoint requires.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Product is one catalog entry as served by /products.json.
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Handle      string     `json:"handle"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Tags        TagList    `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Variants    []Variant  `json:"variants"`
}

// Variant is one purchasable variation of a product.
type Variant struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	SKU            string  `json:"sku"`
	Price          Amount  `json:"price"`
	CompareAtPrice *Amount `json:"compare_at_price,omitempty"`
	Available      bool    `json:"available"`
	Grams          int64   `json:"grams"`
	Position       int     `json:"position"`
}

// Page is the wire envelope returned by the storefront endpoint.
type Page struct {
	Products []Product `json:"products"`
}

// Amount is a price in the shop's currency. Most storefronts serve
// prices as decimal strings ("24.00") but some themes emit bare
// numbers; Amount decodes both.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = 0
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse price %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return fmt.Errorf("decode price: %w", err)
	}
	*a = Amount(f)
	return nil
}

// Float64 returns the amount as a plain float for arithmetic.
func (a Amount) Float64() float64 { return float64(a) }

// TagList holds a product's tags in first-seen order. The storefront
// endpoint serves tags as a JSON array, while older themes and CSV
// exports collapse them into one comma-separated string; TagList
// decodes both forms, trims whitespace, and drops empties and
// duplicates.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = nil
		return nil
	}
	switch trimmed[0] {
	case '[':
		var raw []string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode tags: %w", err)
		}
		*t = cleanTags(raw)
	case '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode tags: %w", err)
		}
		*t = cleanTags(strings.Split(raw, ","))
	default:
		return fmt.Errorf("decode tags: unexpected JSON value %s", trimmed)
	}
	return nil
}

func cleanTags(raw []string) TagList {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make(TagList, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether the list contains tag exactly.
func (t TagList) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}
