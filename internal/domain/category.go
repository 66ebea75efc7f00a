package domain

// Category is one of the fixed storefront categories a product belongs to.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
)

var categoryLabels = map[Category]string{
	CategoryElectronics: "Electronics",
	CategoryClothing:    "Clothing",
	CategoryBooks:       "Books",
	CategoryHome:        "Home",
	CategorySports:      "Sports",
}

// Categories returns the category set in display order.
func Categories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryClothing,
		CategoryBooks,
		CategoryHome,
		CategorySports,
	}
}

// CategoryValues returns the category set as strings, for validation messages.
func CategoryValues() []string {
	cats := Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the human readable category name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// CategoryCount is a category together with the number of products in it.
type CategoryCount struct {
	Category     Category `json:"category"`
	Label        string   `json:"label"`
	ProductCount int      `json:"product_count"`
}

// CategoryGroup is a category bucket of products for the storefront listing.
type CategoryGroup struct {
	Category Category  `json:"category"`
	Label    string    `json:"label"`
	Products []Product `json:"products"`
}
