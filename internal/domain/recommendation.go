package domain

// IngredientRecommendation is the group chosen for one recipe ingredient.
// MatchedGroup is nil when nothing matched.
type IngredientRecommendation struct {
	IngredientName string        `json:"ingredient_name"`
	MatchedGroup   *ProductGroup `json:"matched_group"`
	Confidence     float64       `json:"confidence"` // 0.0-1.0
	Reason         string        `json:"reason"`
}

// RecommendedProduct is one entry of the final product list shown next to a
// recipe.
type RecommendedProduct struct {
	ProductID        string   `json:"product_id"`
	VariantID        string   `json:"variant_id"`
	Title            string   `json:"title"`
	Handle           string   `json:"handle"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	QuantityLabel    string   `json:"quantity_label"`
	Price            *float64 `json:"price,omitempty"`
	HasAlternatives  bool     `json:"has_alternatives"`
	AlternativeCount int      `json:"alternative_count"`
}

// MatchStats are the diagnostic counters of a smart-match run.
type MatchStats struct {
	TotalProducts    int `json:"total_products"`
	BaseProducts     int `json:"base_products"`
	PreparedProducts int `json:"prepared_products"`
	GroupsCreated    int `json:"groups_created"`
}

// SmartMatchResult is the output of the group-based recommendation pipeline.
type SmartMatchResult struct {
	Products []RecommendedProduct `json:"products"`
	Stats    MatchStats           `json:"stats"`
}

// SmartMatchRequest is the input of the group-based recommendation pipeline.
type SmartMatchRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
	DietIDs     []string `json:"diet_ids,omitempty"`
	MaxProducts int      `json:"max_products,omitempty"`
}

// DirectMatch records which product was assigned to an ingredient by the
// word-match strategy, and with what score.
type DirectMatch struct {
	IngredientName string  `json:"ingredient_name"`
	ProductID      string  `json:"product_id"`
	Score          float64 `json:"score"`
}

// DirectMatchResult is the output of the direct recipe-to-product matcher used
// during bulk recipe authoring.
type DirectMatchResult struct {
	Products []RecommendedProduct `json:"products"`
	Matches  []DirectMatch        `json:"matches"`
}
