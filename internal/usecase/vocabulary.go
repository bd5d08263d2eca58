package usecase

import (
	"regexp"
	"strings"
)

// Vocabulary holds the locale-specific word tables used by the extractor and
// the classifier. It is passed into the components that need it so tests and
// other locales can swap it.
type Vocabulary struct {
	// ProcessedKeywords mark a title as PREPARED. Checked before BaseKeywords.
	ProcessedKeywords []string
	// BaseKeywords mark a title as BASE.
	BaseKeywords []string
	// Glossary maps a word in one language to its synonyms in the other.
	Glossary map[string][]string
	// QualityModifiers are dropped when deriving a base ingredient from a title.
	QualityModifiers []string
	// BaseIngredientPatterns are tried in order against the lowercased title;
	// the first full match is the base ingredient.
	BaseIngredientPatterns []*regexp.Regexp
	// DefaultQuantityLabel is used when a title carries no size.
	DefaultQuantityLabel string
}

// DefaultVocabulary returns the Spanish/English tables the store ships with.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		ProcessedKeywords: []string{
			"galleta", "cookie", "barra", "barrita", "snack", "chips",
			"salsa", "mermelada", "helado", "bebida", "jugo", "refresco",
			"pastel", "torta", "brownie", "granola", "cereal", "dulce",
			"caramelo", "chocolate", "untable", "aderezo", "mayonesa",
			"ketchup", "sopa", "preparado", "listo para", "hamburguesa",
			"pizza", "empanada", "crackers", "bizcocho", "alfajor",
		},
		BaseKeywords: []string{
			"aceite", "harina", "leche", "mantequilla", "proteína", "proteina",
			"semilla", "quinoa", "quinua", "arroz", "avena", "lenteja",
			"garbanzo", "frijol", "poroto", "almendra", "nuez", "nueces",
			"chía", "chia", "linaza", "cacao", "azúcar", "azucar", "miel",
			"huevo", "espinaca", "tomate", "cebolla", "vinagre", "levadura",
			"maní", "coco", "pollo", "carne", "pescado", "sésamo", "sesamo",
			"ajonjolí", "flour", "olive oil", "rice", "oats", "seeds",
		},
		Glossary: map[string][]string{
			"oil":       {"aceite"},
			"olive":     {"oliva"},
			"flour":     {"harina"},
			"milk":      {"leche"},
			"butter":    {"mantequilla"},
			"protein":   {"proteína", "proteina"},
			"seed":      {"semilla", "semillas"},
			"seeds":     {"semillas"},
			"rice":      {"arroz"},
			"oats":      {"avena"},
			"oat":       {"avena"},
			"almond":    {"almendra", "almendras"},
			"almonds":   {"almendras"},
			"walnut":    {"nuez", "nueces"},
			"chickpea":  {"garbanzo", "garbanzos"},
			"chickpeas": {"garbanzos"},
			"lentil":    {"lenteja", "lentejas"},
			"lentils":   {"lentejas"},
			"bean":      {"frijol", "poroto"},
			"beans":     {"frijoles", "porotos"},
			"spinach":   {"espinaca", "espinacas"},
			"tomato":    {"tomate"},
			"tomatoes":  {"tomates"},
			"onion":     {"cebolla"},
			"garlic":    {"ajo"},
			"sugar":     {"azúcar", "azucar"},
			"honey":     {"miel"},
			"egg":       {"huevo"},
			"eggs":      {"huevos"},
			"coconut":   {"coco"},
			"peanut":    {"maní", "mani"},
			"sesame":    {"sésamo", "sesamo", "ajonjolí"},
			"flaxseed":  {"linaza"},
			"cocoa":     {"cacao"},
			"vinegar":   {"vinagre"},
			"yeast":     {"levadura"},
			"chicken":   {"pollo"},
			"fish":      {"pescado"},
			"salt":      {"sal"},
			"wheat":     {"trigo"},
			"corn":      {"maíz", "maiz"},
		},
		QualityModifiers: []string{
			"extra", "virgen", "premium", "orgánico", "orgánica", "organico",
			"organica", "organic", "natural", "selecto", "selecta", "fino",
			"fina", "gourmet", "artesanal", "clásico", "clasico", "original",
			"tradicional", "especial", "calidad", "marca", "pack", "bolsa",
			"frasco", "botella", "caja", "sin", "con", "para",
		},
		BaseIngredientPatterns: []*regexp.Regexp{
			regexp.MustCompile(`aceite\s+de\s+\p{L}+`),
			regexp.MustCompile(`harina\s+de\s+\p{L}+`),
			regexp.MustCompile(`leche\s+de\s+\p{L}+`),
			regexp.MustCompile(`mantequilla\s+de\s+\p{L}+`),
			regexp.MustCompile(`prote[ií]na\s+de\s+\p{L}+`),
			regexp.MustCompile(`semillas?\s+de\s+\p{L}+`),
		},
		DefaultQuantityLabel: "1 unidad",
	}
}

// containsAny returns the first keyword contained in text, if any.
func containsAny(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}
