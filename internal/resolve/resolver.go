// Package resolve matches parsed product mentions against the catalog index.
package resolve

import (
	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/observability"
	"github.com/despensa-ai/order-engine/internal/parse"
	"github.com/despensa-ai/order-engine/internal/textnorm"
)

// ResolvedItem pairs a mention with the catalog product chosen for it.
// CandidateCount records how many products matched before price selection.
type ResolvedItem struct {
	Mention        parse.ProductMention
	Product        catalog.Product
	CandidateCount int
}

// Resolver selects catalog products for product mentions by normalized
// substring containment, breaking ties on unit price.
type Resolver struct {
	logger *observability.Logger
}

func NewResolver(logger *observability.Logger) *Resolver {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Resolver{logger: logger}
}

// Resolve maps each mention to the cheapest product whose display name
// contains the mention. Mentions with no candidates are returned separately
// in input order; they never fail the call.
func (r *Resolver) Resolve(mentions []parse.ProductMention, idx *catalog.Index) ([]ResolvedItem, []string) {
	items := make([]ResolvedItem, 0, len(mentions))
	var unmatched []string

	for _, mention := range mentions {
		needle := textnorm.Normalize(mention.Text)
		if needle == "" {
			continue
		}

		product, count := cheapestMatch(needle, idx)
		if count == 0 {
			r.logger.Debug().Str("mention", mention.Text).Msg("No catalog match for mention")
			unmatched = append(unmatched, mention.Text)
			continue
		}

		r.logger.Debug().
			Str("mention", mention.Text).
			Str("product", product.DisplayName).
			Int("candidates", count).
			Msg("Resolved mention to product")
		items = append(items, ResolvedItem{
			Mention:        mention,
			Product:        product,
			CandidateCount: count,
		})
	}

	return items, unmatched
}

// cheapestMatch scans the index once, keeping the lowest-priced candidate.
// Earlier index position wins price ties, so repeated runs over the same
// index are deterministic.
func cheapestMatch(needle string, idx *catalog.Index) (catalog.Product, int) {
	var (
		best  catalog.Product
		count int
	)
	for _, p := range idx.Products {
		if !textnorm.Contains(p.DisplayName, needle) {
			continue
		}
		count++
		if count == 1 || p.UnitPrice < best.UnitPrice {
			best = p
		}
	}
	return best, count
}
