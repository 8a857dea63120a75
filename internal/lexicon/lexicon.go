// Package lexicon holds the language tables the order parser works from.
// The tables are injected configuration rather than package-level state so
// tests and alternate locales can substitute their own without touching the
// parsing algorithm.
package lexicon

// Lexicon bundles the keyword sets, the product stem dictionary and the
// number-word table for one locale.
type Lexicon struct {
	// PurchaseKeywords signal buying intent. Disjoint from InquiryKeywords.
	PurchaseKeywords []string
	// InquiryKeywords signal a question about products rather than an order.
	InquiryKeywords []string
	// ProductStems is the catalog-agnostic dictionary of common grocery item
	// stems scanned for as substrings of the normalized utterance.
	ProductStems []string
	// NumberWords maps spelled-out quantity words to their numeric value.
	NumberWords map[string]float64
	// ObjectPatterns are the ordered fallback patterns used when no stem
	// matched; each captures the token following a preposition or verb that
	// typically precedes a direct object.
	ObjectPatterns []string
	// PluralSuffixes are tried, longest first, when singularizing tokens.
	PluralSuffixes []string
}

// Spanish returns the default Spanish grocery lexicon.
func Spanish() *Lexicon {
	return &Lexicon{
		PurchaseKeywords: buildPurchaseKeywords(),
		InquiryKeywords:  buildInquiryKeywords(),
		ProductStems:     buildProductStems(),
		NumberWords:      buildNumberWords(),
		ObjectPatterns: []string{
			`\bde\s+(\w+)`,
			`\bun\s+(\w+)`,
			`\buna\s+(\w+)`,
			`\bcomprar\s+(\w+)`,
			`\bquiero\s+(\w+)`,
		},
		PluralSuffixes: []string{"es", "s"},
	}
}

func buildPurchaseKeywords() []string {
	return []string{
		"quiero", "comprar", "necesito", "dame", "ponme",
		"añade", "anade", "agrega", "llevar", "pedido",
		"traeme", "apunta", "compra",
	}
}

func buildInquiryKeywords() []string {
	return []string{
		"cuanto cuesta", "cuanto vale", "que precio", "precio de",
		"cuanto es", "hay ", "tienes", "teneis", "disponible",
		"que productos", "catalogo",
	}
}

func buildProductStems() []string {
	return []string{
		"leche", "pan", "huevo", "queso", "yogur", "mantequilla",
		"aceite", "arroz", "pasta", "macarron", "espagueti", "harina",
		"azucar", "sal", "cafe", "cacao", "galleta", "cereal",
		"tomate", "patata", "cebolla", "ajo", "zanahoria", "lechuga",
		"pimiento", "calabacin", "manzana", "platano", "naranja",
		"limon", "fresa", "pera", "uva", "melon", "sandia",
		"pollo", "ternera", "cerdo", "jamon", "chorizo", "salchicha",
		"atun", "salmon", "merluza", "gamba", "agua", "zumo",
		"cerveza", "vino", "refresco", "chocolate", "mermelada",
		"miel", "pizza", "helado", "lenteja", "garbanzo", "judia",
	}
}

func buildNumberWords() map[string]float64 {
	return map[string]float64{
		"un":         1,
		"una":        1,
		"uno":        1,
		"dos":        2,
		"tres":       3,
		"cuatro":     4,
		"cinco":      5,
		"seis":       6,
		"siete":      7,
		"ocho":       8,
		"nueve":      9,
		"diez":       10,
		"once":       11,
		"doce":       12,
		"trece":      13,
		"catorce":    14,
		"quince":     15,
		"dieciseis":  16,
		"diecisiete": 17,
		"dieciocho":  18,
		"diecinueve": 19,
		"veinte":     20,
		"media":      0.5,
		"medio":      0.5,
	}
}
