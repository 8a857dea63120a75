package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/parse"
)

func testIndex(products ...catalog.Product) *catalog.Index {
	return &catalog.Index{Products: products, BuiltAt: time.Now()}
}

func mention(text string, qty float64) parse.ProductMention {
	return parse.ProductMention{Text: text, Quantity: qty}
}

func TestResolve_CheapestCandidateWins(t *testing.T) {
	idx := testIndex(
		catalog.Product{ID: 1, DisplayName: "Leche entera Hacendado", UnitPrice: 0.89},
		catalog.Product{ID: 2, DisplayName: "Leche desnatada", UnitPrice: 0.59},
		catalog.Product{ID: 3, DisplayName: "Pan de molde", UnitPrice: 1.15},
	)

	items, unmatched := NewResolver(nil).Resolve([]parse.ProductMention{mention("leche", 2)}, idx)
	require.Len(t, items, 1)
	assert.Empty(t, unmatched)
	assert.Equal(t, 2, items[0].Product.ID)
	assert.Equal(t, 2, items[0].CandidateCount)
	assert.Equal(t, 2.0, items[0].Mention.Quantity)
}

func TestResolve_MatchingIgnoresAccentsAndCase(t *testing.T) {
	idx := testIndex(
		catalog.Product{ID: 1, DisplayName: "Té verde en bolsitas", UnitPrice: 1.30},
		catalog.Product{ID: 2, DisplayName: "Azúcar blanco", UnitPrice: 0.99},
	)

	items, unmatched := NewResolver(nil).Resolve([]parse.ProductMention{
		mention("azucar", 1),
	}, idx)
	require.Len(t, items, 1)
	assert.Empty(t, unmatched)
	assert.Equal(t, 2, items[0].Product.ID)
}

func TestResolve_UnmatchedKeptSeparately(t *testing.T) {
	idx := testIndex(
		catalog.Product{ID: 1, DisplayName: "Leche entera", UnitPrice: 0.89},
	)

	items, unmatched := NewResolver(nil).Resolve([]parse.ProductMention{
		mention("leche", 1),
		mention("caviar", 1),
	}, idx)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"caviar"}, unmatched)
}

func TestResolve_PriceTieBrokenByIndexOrder(t *testing.T) {
	idx := testIndex(
		catalog.Product{ID: 7, DisplayName: "Leche entera", UnitPrice: 0.89},
		catalog.Product{ID: 8, DisplayName: "Leche semidesnatada", UnitPrice: 0.89},
	)

	items, _ := NewResolver(nil).Resolve([]parse.ProductMention{mention("leche", 1)}, idx)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Product.ID)
}

func TestResolve_EmptyIndex(t *testing.T) {
	items, unmatched := NewResolver(nil).Resolve([]parse.ProductMention{mention("leche", 1)}, testIndex())
	assert.Empty(t, items)
	assert.Equal(t, []string{"leche"}, unmatched)
}

func TestResolve_NoMentions(t *testing.T) {
	idx := testIndex(catalog.Product{ID: 1, DisplayName: "Leche entera", UnitPrice: 0.89})
	items, unmatched := NewResolver(nil).Resolve(nil, idx)
	assert.Empty(t, items)
	assert.Empty(t, unmatched)
}
