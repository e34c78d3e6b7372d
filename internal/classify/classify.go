// Package classify maps directory provider type tags to store categories.
package classify

import "github.com/paymap-jp/paymap-cli/internal/model"

// rule maps any of a set of provider type tags to one category. Rules are
// evaluated in order and the first hit wins, so the more specific
// convenience-store tag takes precedence over the generic store tag.
type rule struct {
	types    []string
	category model.StoreCategory
}

var rules = []rule{
	{types: []string{"convenience_store"}, category: model.CategoryConvenience},
	{types: []string{"restaurant", "food"}, category: model.CategoryRestaurant},
	{types: []string{"supermarket"}, category: model.CategorySupermarket},
	{types: []string{"store", "shopping_mall"}, category: model.CategoryRetail},
}

// Classify returns the store category for a set of provider type tags.
// Total: unknown tag sets classify as other.
func Classify(types []string) model.StoreCategory {
	tagSet := make(map[string]struct{}, len(types))
	for _, t := range types {
		tagSet[t] = struct{}{}
	}
	for _, r := range rules {
		for _, t := range r.types {
			if _, ok := tagSet[t]; ok {
				return r.category
			}
		}
	}
	return model.CategoryOther
}
