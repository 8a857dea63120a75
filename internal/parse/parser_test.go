package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa-ai/order-engine/internal/lexicon"
)

func newTestParser() *Parser {
	return NewParser(ParserConfig{})
}

func TestParse_PurchaseWithQuantities(t *testing.T) {
	order := newTestParser().Parse("quiero 2 leches y 3 panes")

	assert.Equal(t, IntentPurchase, order.Intent)
	require.Len(t, order.Mentions, 2)
	assert.Equal(t, ProductMention{Text: "leche", Quantity: 2}, order.Mentions[0])
	assert.Equal(t, ProductMention{Text: "pan", Quantity: 3}, order.Mentions[1])
}

func TestParse_DefaultQuantityIsOne(t *testing.T) {
	order := newTestParser().Parse("necesito leche")

	require.Len(t, order.Mentions, 1)
	assert.Equal(t, ProductMention{Text: "leche", Quantity: 1}, order.Mentions[0])
}

func TestParse_QuantityCascade(t *testing.T) {
	tests := []struct {
		utterance string
		want      map[string]float64
	}{
		{"quiero 2 leches", map[string]float64{"leche": 2}},
		{"dame 3 panes y 2 leches", map[string]float64{"pan": 3, "leche": 2}},
		{"necesito tres leches, dos panes y cinco huevos", map[string]float64{"leche": 3, "pan": 2, "huevo": 5}},
		{"comprar leche x 4 y pan x 2", map[string]float64{"leche": 4, "pan": 2}},
		{"3 de leche y 5 de pan", map[string]float64{"leche": 3, "pan": 5}},
		{"quiero cinco de leche", map[string]float64{"leche": 5}},
		{"dame 10 huevos y 6 leches", map[string]float64{"huevo": 10, "leche": 6}},
		{"necesito leche", map[string]float64{"leche": 1}},
		{"2 leches, 3 panes, 4 huevos", map[string]float64{"leche": 2, "pan": 3, "huevo": 4}},
		{"media de leche", map[string]float64{"leche": 0.5}},
		{"leche x2", map[string]float64{"leche": 2}},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			order := p.Parse(tt.utterance)
			got := order.Quantities()
			require.Len(t, got, len(tt.want))
			for text, qty := range tt.want {
				assert.Equal(t, qty, got[text], "quantity for %q", text)
			}
		})
	}
}

func TestParse_QuantitiesNeverNegative(t *testing.T) {
	p := newTestParser()
	utterances := []string{
		"quiero leche y pan",
		"leche pan huevos queso",
		"0 leches",
		"x x x leche x",
		"",
	}
	for _, u := range utterances {
		for _, m := range p.Parse(u).Mentions {
			assert.GreaterOrEqual(t, m.Quantity, 0.0, "utterance %q mention %q", u, m.Text)
		}
	}
}

func TestParse_IntentClassification(t *testing.T) {
	tests := []struct {
		utterance  string
		wantIntent Intent
	}{
		{"quiero comprar leche", IntentPurchase},
		{"cuanto cuesta la leche", IntentInquiry},
		{"tienes pan integral", IntentInquiry},
		{"leche y pan", IntentPurchase}, // no signal, default path
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			order := p.Parse(tt.utterance)
			assert.Equal(t, tt.wantIntent, order.Intent)
		})
	}
}

func TestParse_DefaultIntentConfidence(t *testing.T) {
	order := newTestParser().Parse("leche y pan")
	assert.Equal(t, IntentPurchase, order.Intent)
	assert.Equal(t, 0.5, order.Confidence)
}

func TestParse_ConfidenceCapped(t *testing.T) {
	order := newTestParser().Parse("quiero comprar, dame, ponme y necesito leche")
	assert.LessOrEqual(t, order.Confidence, 1.0)
	assert.Greater(t, order.Confidence, 0.0)
}

func TestParse_ObjectPatternFallback(t *testing.T) {
	// "turrones" is not in the stem dictionary, so the object-pattern layer
	// has to pick it up from "quiero X".
	order := newTestParser().Parse("quiero turrones")

	require.Len(t, order.Mentions, 1)
	assert.Equal(t, "turrones", order.Mentions[0].Text)
	assert.Equal(t, 1.0, order.Mentions[0].Quantity)
}

func TestParse_MentionsDeduplicated(t *testing.T) {
	order := newTestParser().Parse("leche, mas leche y leches")

	count := 0
	for _, m := range order.Mentions {
		if m.Text == "leche" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestParse_MentionsKeepTextualOrder(t *testing.T) {
	order := newTestParser().Parse("2 panes y 3 leches")

	require.Len(t, order.Mentions, 2)
	assert.Equal(t, "pan", order.Mentions[0].Text)
	assert.Equal(t, "leche", order.Mentions[1].Text)
}

func TestParse_EmptyUtterance(t *testing.T) {
	order := newTestParser().Parse("")

	assert.Equal(t, IntentPurchase, order.Intent)
	assert.Empty(t, order.Mentions)
	assert.Equal(t, 0.5, order.Confidence)
}

func TestParse_InjectedLexicon(t *testing.T) {
	lex := &lexicon.Lexicon{
		PurchaseKeywords: []string{"need"},
		InquiryKeywords:  []string{"how much"},
		ProductStems:     []string{"milk", "bread"},
		NumberWords:      map[string]float64{"two": 2, "half": 0.5},
		ObjectPatterns:   []string{`\bbuy\s+(\w+)`},
		PluralSuffixes:   []string{"s"},
	}
	p := NewParser(ParserConfig{Lexicon: lex})

	order := p.Parse("I need two milks and half bread")
	got := order.Quantities()
	assert.Equal(t, IntentPurchase, order.Intent)
	assert.Equal(t, 2.0, got["milk"])
	assert.Equal(t, 0.5, got["bread"])
}
