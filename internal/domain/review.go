package domain

import (
	"time"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a customer review of a product.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}

// ProductReviews is a product's reviews together with their summary.
type ProductReviews struct {
	ProductID string        `json:"product_id"`
	Summary   ReviewSummary `json:"summary"`
	Reviews   []Review      `json:"reviews"`
}

// IsValidRating reports whether r lies in [MinRating, MaxRating].
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
