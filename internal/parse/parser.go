// Package parse turns a free-text shopping utterance into purchase intent,
// product mentions and per-product quantities using layered text heuristics.
package parse

import (
	"fmt"

	"github.com/despensa-ai/order-engine/internal/lexicon"
	"github.com/despensa-ai/order-engine/internal/textnorm"
)

// Intent classifies what the user wants from the utterance.
type Intent string

const (
	// IntentPurchase means the user is placing an order.
	IntentPurchase Intent = "purchase"
	// IntentInquiry means the user is asking about products or prices.
	IntentInquiry Intent = "inquiry"
)

// ProductMention is one product name extracted from free text, before it has
// been matched to a real catalog entry. Quantity is a positive rational
// ("media" yields 0.5) and defaults to 1 when no pattern matched.
type ProductMention struct {
	Text     string  `json:"text"`
	Quantity float64 `json:"quantity"`
}

// ParsedOrder is the immutable result of parsing one utterance.
type ParsedOrder struct {
	Intent     Intent           `json:"intent"`
	Mentions   []ProductMention `json:"mentions"`
	Confidence float64          `json:"confidence"`
	// Note carries a diagnostic when parsing degraded instead of failing.
	Note string `json:"note,omitempty"`
}

// Quantities returns the text→quantity view of the parse, keyed by the
// mention text as extracted. Later duplicates overwrite earlier ones.
func (p ParsedOrder) Quantities() map[string]float64 {
	out := make(map[string]float64, len(p.Mentions))
	for _, m := range p.Mentions {
		out[m.Text] = m.Quantity
	}
	return out
}

// Parser extracts intent, mentions and quantities from raw utterances.
type Parser struct {
	lex      *lexicon.Lexicon
	matchers []QuantityMatcher
}

// ParserConfig holds parser construction options.
type ParserConfig struct {
	// Lexicon supplies the keyword sets, stem dictionary and number words.
	// Defaults to the Spanish grocery lexicon.
	Lexicon *lexicon.Lexicon
	// Matchers overrides the ordered quantity matcher cascade. Defaults to
	// DefaultMatchers over the lexicon's number words.
	Matchers []QuantityMatcher
}

// NewParser creates a parser for the given configuration.
func NewParser(cfg ParserConfig) *Parser {
	lex := cfg.Lexicon
	if lex == nil {
		lex = lexicon.Spanish()
	}
	matchers := cfg.Matchers
	if matchers == nil {
		matchers = DefaultMatchers(lex.NumberWords)
	}
	return &Parser{lex: lex, matchers: matchers}
}

// Parse classifies the utterance and extracts mentions with quantities.
// It never panics outward: any internal failure degrades to a purchase-intent
// result with no mentions, zero confidence and a diagnostic note.
func (p *Parser) Parse(utterance string) (order ParsedOrder) {
	defer func() {
		if r := recover(); r != nil {
			order = ParsedOrder{
				Intent:     IntentPurchase,
				Mentions:   nil,
				Confidence: 0,
				Note:       fmt.Sprintf("parser failure: %v", r),
			}
		}
	}()

	text := textnorm.Normalize(utterance)

	intent, confidence := p.classifyIntent(text)
	mentions := p.extractMentions(text)

	for i := range mentions {
		mentions[i].Quantity = p.quantityFor(text, mentions[i].Text)
	}

	return ParsedOrder{
		Intent:     intent,
		Mentions:   mentions,
		Confidence: confidence,
	}
}

// quantityFor applies the matcher cascade in priority order, stopping at the
// first hit. No hit means a quantity of one.
func (p *Parser) quantityFor(text, mention string) float64 {
	for _, m := range p.matchers {
		if qty, ok := m.Match(text, mention); ok {
			return qty
		}
	}
	return 1
}
