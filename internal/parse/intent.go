package parse

import (
	"math"
	"strings"
)

const (
	// confidenceDivisor scales a keyword score into [0, 1].
	confidenceDivisor = 3.0
	// defaultConfidence applies when neither keyword set scored.
	defaultConfidence = 0.5
)

// classifyIntent scores the normalized utterance against the purchase and
// inquiry keyword sets. Purchase wins when it strictly outscores inquiry; a
// nonzero inquiry score wins otherwise; with no signal at all the parser
// defaults to purchase at low confidence.
func (p *Parser) classifyIntent(text string) (Intent, float64) {
	purchaseScore := keywordScore(text, p.lex.PurchaseKeywords)
	inquiryScore := keywordScore(text, p.lex.InquiryKeywords)

	switch {
	case purchaseScore > inquiryScore:
		return IntentPurchase, scoreConfidence(purchaseScore)
	case inquiryScore > 0:
		return IntentInquiry, scoreConfidence(inquiryScore)
	default:
		return IntentPurchase, defaultConfidence
	}
}

// keywordScore counts substring occurrences of every keyword in the text.
func keywordScore(text string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		score += strings.Count(text, kw)
	}
	return score
}

func scoreConfidence(score int) float64 {
	return math.Min(float64(score)/confidenceDivisor, 1.0)
}
