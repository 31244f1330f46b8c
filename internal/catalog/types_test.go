package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageDecode(t *testing.T) {
	payload := []byte(`{
		"products": [
			{
				"id": 632910392,
				"title": "IPod Nano - 8GB",
				"handle": "ipod-nano",
				"vendor": "Apple",
				"product_type": "Cult Products",
				"tags": ["Emotive", "Flash Memory", "MP3"],
				"created_at": "2023-01-12T09:30:00-05:00",
				"updated_at": "2023-06-01T12:00:00-05:00",
				"published_at": "2023-01-13T08:00:00-05:00",
				"variants": [
					{
						"id": 808950810,
						"title": "Pink",
						"sku": "IPOD2008PINK",
						"price": "199.00",
						"compare_at_price": "249.00",
						"available": true,
						"grams": 567,
						"position": 1
					},
					{
						"id": 49148385,
						"title": "Red",
						"sku": "IPOD2008RED",
						"price": "199.00",
						"compare_at_price": null,
						"available": false,
						"grams": 567,
						"position": 2
					}
				]
			}
		]
	}`)

	var page Page
	require.NoError(t, json.Unmarshal(payload, &page))
	require.Len(t, page.Products, 1)

	p := page.Products[0]
	assert.Equal(t, int64(632910392), p.ID)
	assert.Equal(t, "IPod Nano - 8GB", p.Title)
	assert.Equal(t, "Apple", p.Vendor)
	assert.Equal(t, "Cult Products", p.ProductType)
	assert.Equal(t, TagList{"Emotive", "Flash Memory", "MP3"}, p.Tags)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, 2023, p.PublishedAt.Year())

	require.Len(t, p.Variants, 2)
	assert.Equal(t, Amount(199), p.Variants[0].Price)
	require.NotNil(t, p.Variants[0].CompareAtPrice)
	assert.Equal(t, Amount(249), *p.Variants[0].CompareAtPrice)
	assert.True(t, p.Variants[0].Available)
	assert.Nil(t, p.Variants[1].CompareAtPrice)
	assert.False(t, p.Variants[1].Available)
}

func TestAmountDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Amount
		wantErr bool
	}{
		{name: "decimal string", in: `"24.00"`, want: 24},
		{name: "integer string", in: `"1500"`, want: 1500},
		{name: "padded string", in: `" 9.99 "`, want: 9.99},
		{name: "bare number", in: `19.95`, want: 19.95},
		{name: "null", in: `null`, want: 0},
		{name: "empty string", in: `""`, want: 0},
		{name: "garbage", in: `"free"`, wantErr: true},
		{name: "object", in: `{}`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got Amount
			err := json.Unmarshal([]byte(tc.in), &got)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, float64(tc.want), float64(got), 1e-9)
		})
	}
}

func TestTagListDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    TagList
		wantErr bool
	}{
		{name: "array", in: `["vinyl","limited"]`, want: TagList{"vinyl", "limited"}},
		{name: "comma string", in: `"vinyl, limited , reissue"`, want: TagList{"vinyl", "limited", "reissue"}},
		{name: "duplicates dropped", in: `["sale","sale","new"]`, want: TagList{"sale", "new"}},
		{name: "blanks dropped", in: `["", "  ", "kept"]`, want: TagList{"kept"}},
		{name: "empty string", in: `""`, want: nil},
		{name: "empty array", in: `[]`, want: nil},
		{name: "null", in: `null`, want: nil},
		{name: "number", in: `7`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got TagList
			err := json.Unmarshal([]byte(tc.in), &got)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTagListHas(t *testing.T) {
	tags := TagList{"vinyl", "limited"}
	assert.True(t, tags.Has("vinyl"))
	assert.False(t, tags.Has("Vinyl"))
	assert.False(t, TagList(nil).Has("vinyl"))
}

func TestProductRoundTrip(t *testing.T) {
	published := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	original := Product{
		ID:          42,
		Title:       "Test Pressing",
		Handle:      "test-pressing",
		Vendor:      "Acme Records",
		ProductType: "Vinyl",
		Tags:        TagList{"limited", "2024"},
		CreatedAt:   time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 2, 15, 11, 0, 0, 0, time.UTC),
		PublishedAt: &published,
		Variants: []Variant{
			{ID: 1, Title: "Default", SKU: "TP-1", Price: 29.99, Available: true, Grams: 450, Position: 1},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Product
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
