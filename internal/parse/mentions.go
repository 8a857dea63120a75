package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/despensa-ai/order-engine/internal/textnorm"
)

// minFallbackTokenLen is the shortest token the singularization and
// object-pattern fallbacks will accept as a product name.
const minFallbackTokenLen = 4

// extractMentions finds product mentions in the normalized utterance.
// Three layers apply in order: the stem dictionary scan, singularized plural
// tokens re-tested against the dictionary, and finally the object-pattern
// fallback when the first two layers found nothing. Mentions keep first-seen
// order and are deduplicated by normalized text.
func (p *Parser) extractMentions(text string) []ProductMention {
	type found struct {
		stem string
		pos  int
	}

	var hits []found
	seen := make(map[string]bool)

	// Layer 1: dictionary stems as substrings.
	for _, stem := range p.lex.ProductStems {
		if pos := strings.Index(text, stem); pos >= 0 && !seen[stem] {
			seen[stem] = true
			hits = append(hits, found{stem: stem, pos: pos})
		}
	}

	// Layer 2: singularize plural tokens and re-test against the dictionary.
	stems := make(map[string]bool, len(p.lex.ProductStems))
	for _, s := range p.lex.ProductStems {
		stems[s] = true
	}
	for _, token := range strings.Fields(text) {
		if len(token) <= minFallbackTokenLen-1 {
			continue
		}
		for _, suffix := range p.lex.PluralSuffixes {
			if !strings.HasSuffix(token, suffix) {
				continue
			}
			singular := strings.TrimSuffix(token, suffix)
			if stems[singular] && !seen[singular] {
				seen[singular] = true
				hits = append(hits, found{stem: singular, pos: strings.Index(text, token)})
				break
			}
		}
	}

	// Layer 3: object-pattern fallback, only when nothing matched so far.
	if len(hits) == 0 {
		for _, pattern := range p.lex.ObjectPatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				continue
			}
			m := re.FindStringSubmatchIndex(text)
			if m == nil {
				continue
			}
			token := textnorm.Normalize(text[m[2]:m[3]])
			if len(token) < minFallbackTokenLen || seen[token] {
				continue
			}
			seen[token] = true
			hits = append(hits, found{stem: token, pos: m[2]})
		}
	}

	// First-seen order means textual order of the first occurrence.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	mentions := make([]ProductMention, 0, len(hits))
	for _, h := range hits {
		mentions = append(mentions, ProductMention{Text: h.stem, Quantity: 1})
	}
	return mentions
}
