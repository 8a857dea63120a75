// Package pricing turns resolved catalog items into a priced ledger.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/despensa-ai/order-engine/internal/observability"
	"github.com/despensa-ai/order-engine/internal/parse"
	"github.com/despensa-ai/order-engine/internal/resolve"
	"github.com/despensa-ai/order-engine/internal/textnorm"
)

// PricedLine is one product line of a priced order.
type PricedLine struct {
	ProductID   int     `json:"product_id"`
	DisplayName string  `json:"display_name"`
	Packaging   string  `json:"packaging,omitempty"`
	Category    string  `json:"category,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// Ledger is the monetary summary of an order. Discount is carried for the
// receipt layout but no discount rule exists yet, so it stays zero.
type Ledger struct {
	Lines             []PricedLine `json:"lines"`
	Subtotal          float64      `json:"subtotal"`
	Discount          float64      `json:"discount"`
	Total             float64      `json:"total"`
	DistinctLineCount int          `json:"distinct_line_count"`
	TotalUnits        float64      `json:"total_units"`
	Note              string       `json:"note,omitempty"`
}

// Engine prices resolved items against the quantities extracted from the
// utterance.
type Engine struct {
	logger *observability.Logger
}

func NewEngine(logger *observability.Logger) *Engine {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Engine{logger: logger}
}

// Price builds a ledger from resolved items, in item order. Each line's
// quantity comes from the parsed mentions via bidirectional substring lookup
// between the mention text and the product name; a miss prices one unit.
// A panic inside pricing is converted into an empty ledger with a note so a
// malformed order can never take the caller down.
func (e *Engine) Price(items []resolve.ResolvedItem, mentions []parse.ProductMention) (ledger Ledger) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Pricing failed, returning empty ledger")
			ledger = Ledger{Note: fmt.Sprintf("pricing failure: %v", r)}
		}
	}()

	ledger.Lines = make([]PricedLine, 0, len(items))
	for _, item := range items {
		qty := quantityFor(item, mentions)
		lineTotal := round2(item.Product.UnitPrice * qty)

		ledger.Lines = append(ledger.Lines, PricedLine{
			ProductID:   item.Product.ID,
			DisplayName: item.Product.DisplayName,
			Packaging:   item.Product.Packaging,
			Category:    item.Product.Lineage.Category.Name,
			Quantity:    qty,
			UnitPrice:   item.Product.UnitPrice,
			LineTotal:   lineTotal,
		})
		ledger.Subtotal += lineTotal
		ledger.TotalUnits += qty
	}

	ledger.Subtotal = round2(ledger.Subtotal)
	ledger.Total = round2(ledger.Subtotal - ledger.Discount)
	ledger.DistinctLineCount = len(ledger.Lines)

	e.logger.Debug().
		Int("lines", ledger.DistinctLineCount).
		Float64("total", ledger.Total).
		Msg("Priced order")
	return ledger
}

// quantityFor finds the quantity for a resolved item. The mention the item
// was resolved from is tried first; the parsed mentions are then scanned in
// utterance order for a text that contains, or is contained in, the product
// name or the item's mention text. Unknown quantities price one unit.
func quantityFor(item resolve.ResolvedItem, mentions []parse.ProductMention) float64 {
	for _, m := range mentions {
		if m.Text == item.Mention.Text {
			return m.Quantity
		}
	}
	if item.Mention.Quantity > 0 {
		return item.Mention.Quantity
	}

	name := textnorm.Normalize(item.Product.DisplayName)
	mention := textnorm.Normalize(item.Mention.Text)
	for _, m := range mentions {
		k := textnorm.Normalize(m.Text)
		if k == "" {
			continue
		}
		if strings.Contains(name, k) || strings.Contains(k, name) ||
			strings.Contains(mention, k) || strings.Contains(k, mention) {
			return m.Quantity
		}
	}
	return 1
}

// round2 rounds to two decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
