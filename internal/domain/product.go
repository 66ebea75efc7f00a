package domain

import (
	"time"
)

// Product ordering values accepted by the list endpoint. A leading "-"
// sorts descending.
const (
	OrderByName          = "name"
	OrderByNameDesc      = "-name"
	OrderByPrice         = "price"
	OrderByPriceDesc     = "-price"
	OrderByCreatedAt     = "created_at"
	OrderByCreatedAtDesc = "-created_at"

	DefaultProductOrdering = OrderByCreatedAtDesc
)

// Product represents a product in the catalog.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Price     `json:"price"`
	Image       string    `json:"image"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidOrderings returns the accepted product ordering values.
func ValidOrderings() []string {
	return []string{
		OrderByName, OrderByNameDesc,
		OrderByPrice, OrderByPriceDesc,
		OrderByCreatedAt, OrderByCreatedAtDesc,
	}
}

// IsValidOrdering checks whether o is an accepted ordering. Empty means default.
func IsValidOrdering(o string) bool {
	if o == "" {
		return true
	}
	for _, v := range ValidOrderings() {
		if v == o {
			return true
		}
	}
	return false
}

// AdminProductRow is one line of the admin product list.
type AdminProductRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	Price         Price    `json:"price"`
	ReviewCount   int      `json:"review_count"`
	AverageRating float64  `json:"average_rating"`
	ViewCount     int      `json:"view_count"`
}
