package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
)

func product(id int64, title string, price catalog.Amount) catalog.Product {
	return catalog.Product{
		ID:    id,
		Title: title,
		Variants: []catalog.Variant{
			{ID: id * 10, Title: "Default", Price: price, Available: true},
		},
	}
}

func TestDiff(t *testing.T) {
	older := []catalog.Product{
		product(1, "Alpha", 10),
		product(2, "Beta", 20),
		product(3, "Gamma", 30),
	}
	newer := []catalog.Product{
		product(2, "Beta", 25), // price changed
		product(3, "Gamma", 30),
		product(4, "Delta", 40),
	}

	got, err := Diff(older, newer)
	require.NoError(t, err)

	assert.Equal(t, []Ref{{ID: 4, Title: "Delta"}}, got.Added)
	assert.Equal(t, []Ref{{ID: 1, Title: "Alpha"}}, got.Removed)
	assert.Equal(t, []Ref{{ID: 2, Title: "Beta"}}, got.Changed)
	assert.False(t, got.Empty())
}

func TestDiffAddedRemovedDisjoint(t *testing.T) {
	older := []catalog.Product{
		product(1, "A", 1), product(2, "B", 2), product(3, "C", 3), product(4, "D", 4),
	}
	newer := []catalog.Product{
		product(3, "C", 3), product(4, "D", 9), product(5, "E", 5), product(6, "F", 6),
	}

	got, err := Diff(older, newer)
	require.NoError(t, err)

	removed := map[int64]bool{}
	for _, r := range got.Removed {
		removed[r.ID] = true
	}
	for _, a := range got.Added {
		assert.False(t, removed[a.ID], "id %d in both added and removed", a.ID)
	}
}

func TestDiffIdentity(t *testing.T) {
	products := []catalog.Product{product(1, "A", 1), product(2, "B", 2)}

	got, err := Diff(products, products)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestDiffEmptySides(t *testing.T) {
	products := []catalog.Product{product(1, "A", 1), product(2, "B", 2)}

	fromEmpty, err := Diff(nil, products)
	require.NoError(t, err)
	assert.Len(t, fromEmpty.Added, 2)
	assert.Empty(t, fromEmpty.Removed)
	assert.Empty(t, fromEmpty.Changed)

	toEmpty, err := Diff(products, nil)
	require.NoError(t, err)
	assert.Empty(t, toEmpty.Added)
	assert.Len(t, toEmpty.Removed, 2)
}

func TestDiffResultsOrderedByID(t *testing.T) {
	newer := []catalog.Product{
		product(30, "Z", 3), product(10, "X", 1), product(20, "Y", 2),
	}

	got, err := Diff(nil, newer)
	require.NoError(t, err)
	require.Len(t, got.Added, 3)
	assert.Equal(t, int64(10), got.Added[0].ID)
	assert.Equal(t, int64(20), got.Added[1].ID)
	assert.Equal(t, int64(30), got.Added[2].ID)
}

func TestDiffDetectsMetadataChange(t *testing.T) {
	older := []catalog.Product{{ID: 1, Title: "Alpha", Tags: catalog.TagList{"old"}}}
	newer := []catalog.Product{{ID: 1, Title: "Alpha", Tags: catalog.TagList{"new"}}}

	got, err := Diff(older, newer)
	require.NoError(t, err)
	assert.Equal(t, []Ref{{ID: 1, Title: "Alpha"}}, got.Changed)
}

func TestFingerprint(t *testing.T) {
	a := product(1, "Alpha", 10)
	b := product(1, "Alpha", 10)
	c := product(1, "Alpha", 11)

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)
	fpC, err := Fingerprint(c)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
	assert.NotEqual(t, fpA, fpC)
	assert.Len(t, fpA, 64)
}
