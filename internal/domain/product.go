package domain

// Variant is a purchasable variant of a catalog product. Price is nil when the
// catalog has no price for it.
type Variant struct {
	ID    string   `json:"id"`
	Price *float64 `json:"price,omitempty"`
}

// Product is a catalog product as returned by the store. It is read-only input
// to the matching pipeline.
type Product struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Handle    string    `json:"handle"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Variants  []Variant `json:"variants,omitempty"`
}

// PricedVariant returns the first variant that carries a price.
func (p Product) PricedVariant() (Variant, bool) {
	for _, v := range p.Variants {
		if v.Price != nil {
			return v, true
		}
	}
	return Variant{}, false
}

// HasAnyTag reports whether the product carries at least one of the given tags.
func (p Product) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return false
	}
	for _, want := range tags {
		for _, have := range p.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Category is the classification of a product for ingredient matching.
type Category string

const (
	CategoryBase     Category = "BASE"
	CategoryPrepared Category = "PREPARED"
	CategoryUnknown  Category = "UNKNOWN"
)

// ClassifiedProduct is a product plus its category for one pipeline run.
// BaseIngredient is only set for BASE products.
type ClassifiedProduct struct {
	Product
	Category       Category `json:"category"`
	BaseIngredient string   `json:"base_ingredient,omitempty"`
}

// ProductGroup clusters BASE products that share a normalized base ingredient.
// Primary is the cheapest member; Count is always 1 + len(Alternatives).
type ProductGroup struct {
	Key          string              `json:"key"`
	DisplayName  string              `json:"display_name"`
	Primary      ClassifiedProduct   `json:"primary"`
	Alternatives []ClassifiedProduct `json:"alternatives"`
	Count        int                 `json:"count"`
}

// Members returns the primary followed by the alternatives.
func (g *ProductGroup) Members() []ClassifiedProduct {
	members := make([]ClassifiedProduct, 0, g.Count)
	members = append(members, g.Primary)
	return append(members, g.Alternatives...)
}
