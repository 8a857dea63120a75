package catalog

import (
	"time"

	"github.com/despensa-ai/order-engine/internal/textnorm"
)

// Index is the flattened, deduplicated set of catalog products plus a
// name-to-category-id lookup table holding both raw and normalized names.
// An Index is built once and read-only afterward; replacing it is an atomic
// swap in the Provider, never an in-place mutation.
type Index struct {
	Products    []Product      `json:"products"`
	CategoryIDs map[string]int `json:"category_ids"`
	BuiltAt     time.Time      `json:"built_at"`
}

// newIndex returns an empty index stamped with the current time.
func newIndex() *Index {
	return &Index{
		CategoryIDs: make(map[string]int),
		BuiltAt:     time.Now().UTC(),
	}
}

// registerCategory records a category id under both its raw and normalized
// name. Many names may map to one id; later registrations win, matching the
// reference crawl order.
func (idx *Index) registerCategory(name string, id int) {
	if name == "" || id == 0 {
		return
	}
	idx.CategoryIDs[name] = id
	idx.CategoryIDs[textnorm.Normalize(name)] = id
}

// CategoryID looks up a category id by name, trying the raw form first and
// the normalized form second.
func (idx *Index) CategoryID(name string) (int, bool) {
	if id, ok := idx.CategoryIDs[name]; ok {
		return id, true
	}
	id, ok := idx.CategoryIDs[textnorm.Normalize(name)]
	return id, ok
}

// Len reports the number of distinct products in the index.
func (idx *Index) Len() int {
	return len(idx.Products)
}

// Empty reports whether the index holds no products.
func (idx *Index) Empty() bool {
	return len(idx.Products) == 0
}
