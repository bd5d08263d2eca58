package usecase

import (
	"math"
	"sort"

	"github.com/recipematch/backend/internal/domain"
)

// Deduplicate clusters BASE products sharing a normalized base ingredient into
// groups. The cheapest member of each group is its primary; products without a
// priced variant sort last. Groups come out in order of first appearance and
// ties on price keep input order, so the result is reproducible.
func Deduplicate(classified []domain.ClassifiedProduct) []domain.ProductGroup {
	members := make(map[string][]domain.ClassifiedProduct)
	var order []string

	for _, cp := range classified {
		if cp.Category != domain.CategoryBase || cp.BaseIngredient == "" {
			continue
		}
		key := GroupKey(cp.BaseIngredient)
		if key == "" {
			continue
		}
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], cp)
	}

	groups := make([]domain.ProductGroup, 0, len(order))
	for _, key := range order {
		list := members[key]
		sort.SliceStable(list, func(i, j int) bool {
			return sortPrice(list[i].Product) < sortPrice(list[j].Product)
		})

		alternatives := make([]domain.ClassifiedProduct, len(list)-1)
		copy(alternatives, list[1:])

		groups = append(groups, domain.ProductGroup{
			Key:          key,
			DisplayName:  DisplayName(list[0].BaseIngredient),
			Primary:      list[0],
			Alternatives: alternatives,
			Count:        len(list),
		})
	}

	return groups
}

// sortPrice is the price of the first variant, or +Inf when it has none.
func sortPrice(p domain.Product) float64 {
	if len(p.Variants) == 0 || p.Variants[0].Price == nil {
		return math.Inf(1)
	}
	return *p.Variants[0].Price
}
