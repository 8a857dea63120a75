package parse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// QuantityMatcher is one strategy in the quantity cascade. Match inspects the
// normalized utterance around the mention and reports a quantity when its
// pattern applies. Matchers are pure and applied in slice order, first hit
// wins.
type QuantityMatcher struct {
	Name  string
	Match func(text, mention string) (float64, bool)
}

// proximityWindow is how far back (in bytes of normalized text) the last-resort
// matcher scans for a stray digit or number word.
const proximityWindow = 20

var (
	digitBeforeRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s+(?:de\s+)?$`)
	wordBeforeRe  = regexp.MustCompile(`([a-zñ]+)\s+$`)
	trailingNumRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\D*$`)
)

// DefaultMatchers returns the reference cascade, in priority order:
// a digit right before the mention (optionally joined by "de"), a spelled-out
// number word right before it, a trailing "x<digit>", a "<number> de <mention>"
// phrase anywhere, and finally a proximity scan of the preceding characters.
func DefaultMatchers(words map[string]float64) []QuantityMatcher {
	return []QuantityMatcher{
		{Name: "digit_before", Match: matchDigitBefore},
		{Name: "word_before", Match: matchWordBefore(words)},
		{Name: "x_suffix", Match: matchXSuffix},
		{Name: "number_de", Match: matchNumberDe(words)},
		{Name: "proximity", Match: matchProximity(words)},
	}
}

// matchDigitBefore covers "2 leches" and "3 de pan".
func matchDigitBefore(text, mention string) (float64, bool) {
	prefix, ok := prefixBefore(text, mention)
	if !ok {
		return 0, false
	}
	m := digitBeforeRe.FindStringSubmatch(prefix)
	if m == nil {
		return 0, false
	}
	return parseDecimal(m[1])
}

// matchWordBefore covers "tres leches" and "media leche".
func matchWordBefore(words map[string]float64) func(text, mention string) (float64, bool) {
	return func(text, mention string) (float64, bool) {
		prefix, ok := prefixBefore(text, mention)
		if !ok {
			return 0, false
		}
		m := wordBeforeRe.FindStringSubmatch(prefix)
		if m == nil {
			return 0, false
		}
		qty, known := words[m[1]]
		return qty, known
	}
}

// matchXSuffix covers "leche x2" and "leche x 4"; the mention's own plural
// suffix may sit between the mention and the marker.
func matchXSuffix(text, mention string) (float64, bool) {
	re, err := regexp.Compile(regexp.QuoteMeta(mention) + `[a-zñ]*\s*x\s*(\d+)`)
	if err != nil {
		return 0, false
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseDecimal(m[1])
}

// matchNumberDe covers "cinco de leche" anywhere in the utterance, the
// spelled-out sibling of the "de" variant in matchDigitBefore. Kept as an
// independent rule for robustness.
func matchNumberDe(words map[string]float64) func(text, mention string) (float64, bool) {
	return func(text, mention string) (float64, bool) {
		re, err := regexp.Compile(`(\d+(?:[.,]\d+)?|` + wordAlternation(words) + `)\s+de\s+` + regexp.QuoteMeta(mention))
		if err != nil {
			return 0, false
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		if qty, known := words[m[1]]; known {
			return qty, true
		}
		return parseDecimal(m[1])
	}
}

// matchProximity scans the window right before the mention's first occurrence
// for a trailing digit or an embedded number word.
func matchProximity(words map[string]float64) func(text, mention string) (float64, bool) {
	return func(text, mention string) (float64, bool) {
		prefix, ok := prefixBefore(text, mention)
		if !ok {
			return 0, false
		}
		if len(prefix) > proximityWindow {
			prefix = prefix[len(prefix)-proximityWindow:]
		}
		if m := trailingNumRe.FindStringSubmatch(prefix); m != nil {
			return parseDecimal(m[1])
		}
		for _, token := range strings.Fields(prefix) {
			if qty, known := words[token]; known {
				return qty, true
			}
		}
		return 0, false
	}
}

// prefixBefore returns the text preceding the mention's first occurrence.
func prefixBefore(text, mention string) (string, bool) {
	idx := strings.Index(text, mention)
	if idx < 0 {
		return "", false
	}
	return text[:idx], true
}

// wordAlternation builds a deterministic regex alternation of the number words.
func wordAlternation(words map[string]float64) string {
	alts := make([]string, 0, len(words))
	for w := range words {
		alts = append(alts, regexp.QuoteMeta(w))
	}
	// Longest first so "dieciseis" is not clipped to "seis" mid-match.
	sort.Slice(alts, func(i, j int) bool {
		if len(alts[i]) != len(alts[j]) {
			return len(alts[i]) > len(alts[j])
		}
		return alts[i] < alts[j]
	})
	return strings.Join(alts, "|")
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
