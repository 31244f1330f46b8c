package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
)

// Ref identifies a product inside a diff result.
type Ref struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// DiffResult lists catalog membership changes between two captures.
// A product ID appears in at most one of Added and Removed.
type DiffResult struct {
	Added   []Ref `json:"added"`
	Removed []Ref `json:"removed"`
	Changed []Ref `json:"changed"`
}

// Empty reports whether the two captures had identical catalogs.
func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares two product lists by product ID. Products only in the
// newer list are added, products only in the older list are removed,
// and products present in both whose content fingerprint differs are
// changed. Each result list is ordered by product ID.
func Diff(older, newer []catalog.Product) (DiffResult, error) {
	oldByID := indexByID(older)
	newByID := indexByID(newer)

	var result DiffResult
	for id, np := range newByID {
		op, ok := oldByID[id]
		if !ok {
			result.Added = append(result.Added, Ref{ID: id, Title: np.Title})
			continue
		}
		oldFP, err := Fingerprint(op)
		if err != nil {
			return DiffResult{}, err
		}
		newFP, err := Fingerprint(np)
		if err != nil {
			return DiffResult{}, err
		}
		if oldFP != newFP {
			result.Changed = append(result.Changed, Ref{ID: id, Title: np.Title})
		}
	}
	for id, op := range oldByID {
		if _, ok := newByID[id]; !ok {
			result.Removed = append(result.Removed, Ref{ID: id, Title: op.Title})
		}
	}

	sortRefs(result.Added)
	sortRefs(result.Removed)
	sortRefs(result.Changed)
	return result, nil
}

// Fingerprint returns the SHA-256 hex digest of the product's canonical
// JSON encoding. Struct field order makes the encoding deterministic.
func Fingerprint(p catalog.Product) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode product %d: %w", p.ID, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func indexByID(products []catalog.Product) map[int64]catalog.Product {
	m := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		if _, dup := m[p.ID]; dup {
			continue
		}
		m[p.ID] = p
	}
	return m
}

func sortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
}
