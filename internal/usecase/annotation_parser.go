package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recipematch/backend/internal/domain"
)

// wrapperKeys are the object fields a model sometimes nests the list under.
var wrapperKeys = []string{"items", "results", "classifications", "pairings", "matches", "data"}

// classificationItem is one entry of a classification annotation.
type classificationItem struct {
	Index          *int   `json:"index"`
	Category       string `json:"category"`
	BaseIngredient string `json:"base_ingredient"`
}

// pairingItem is one entry of an ingredient/group pairing annotation.
type pairingItem struct {
	Ingredient string `json:"ingredient"`
	Group      string `json:"group"`
	Reason     string `json:"reason"`
}

// parseAnnotationList decodes the JSON list held in a model answer into out.
// The answer may surround the JSON with prose or Markdown fences, and may
// wrap the list in an object.
func parseAnnotationList(text string, out interface{}) error {
	text = stripCodeFences(text)

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), out); err == nil {
			return nil
		}
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text[start:end+1]), &wrapper); err == nil {
			for _, key := range wrapperKeys {
				raw, ok := wrapper[key]
				if !ok {
					continue
				}
				if err := json.Unmarshal(raw, out); err == nil {
					return nil
				}
			}
		}
	}

	return fmt.Errorf("%w: no JSON list found", domain.ErrUnparseableAnnotation)
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// parseCategory maps an annotated category to BASE or PREPARED; anything
// unrecognized is PREPARED.
func parseCategory(s string) domain.Category {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BASE", "RAW", "INGREDIENT":
		return domain.CategoryBase
	default:
		return domain.CategoryPrepared
	}
}

func buildClassificationPrompt(titles []string) string {
	var b strings.Builder
	b.WriteString("You classify grocery store products for a recipe website.\n")
	b.WriteString("For each product decide whether it is a BASE ingredient (raw or whole food usable in a recipe: oils, flours, grains, seeds, produce, proteins) ")
	b.WriteString("or PREPARED (processed or ready to eat: cookies, bars, sauces, snacks, drinks).\n")
	b.WriteString("For BASE products also give base_ingredient: the short generic ingredient name in the product's language, lowercase, without brand or size.\n")
	b.WriteString("Answer ONLY with a JSON array like [{\"index\":0,\"category\":\"BASE\",\"base_ingredient\":\"harina de almendra\"}].\n")
	b.WriteString("Products:\n")
	for i, t := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i, t)
	}
	return b.String()
}

func buildPairingPrompt(ingredients, groupNames []string) string {
	var b strings.Builder
	b.WriteString("You match recipe ingredients to grocery product groups.\n")
	b.WriteString("For each ingredient pick the single best product group from the list, or skip it when none is a reasonable substitute.\n")
	b.WriteString("Use the group names exactly as written.\n")
	b.WriteString("Answer ONLY with a JSON array like [{\"ingredient\":\"...\",\"group\":\"...\",\"reason\":\"...\"}].\n")
	b.WriteString("Ingredients:\n")
	for _, ing := range ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}
	b.WriteString("Product groups:\n")
	for _, g := range groupNames {
		fmt.Fprintf(&b, "- %s\n", g)
	}
	return b.String()
}
