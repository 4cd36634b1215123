package catalog

import "strings"

type Category string

const (
	CategoryPlayingCards  Category = "playing-cards"
	CategoryPokerChips    Category = "poker-chips"
	CategoryAccessories   Category = "accessories"
	CategoryUncategorized Category = "uncategorized"
)

// Categories lists the display sections in storefront order.
var Categories = []Category{CategoryPlayingCards, CategoryPokerChips, CategoryAccessories}

// ParseCategory folds case and spaces. Unknown values land in CategoryUncategorized
// with known=false so the caller can warn at ingestion time.
func ParseCategory(s string) (c Category, known bool) {
	norm := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Categories {
		if norm == k {
			return k, true
		}
	}
	if norm == CategoryUncategorized {
		return CategoryUncategorized, true
	}
	return CategoryUncategorized, false
}

// GroupByCategory buckets products into their display sections.
func GroupByCategory(ps []Product) map[Category][]Product {
	out := make(map[Category][]Product, len(Categories)+1)
	for _, p := range ps {
		c, _ := ParseCategory(string(p.Category))
		out[c] = append(out[c], p)
	}
	return out
}
