package domain

import "time"

// ProductView records a single view of a product page. Rows are only ever
// inserted.
type ProductView struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductViewCount is the analytics record for one product.
type ProductViewCount struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ViewCount int    `json:"view_count"`
}

// TrendingProduct is a product ranked by views seen on the event stream.
type TrendingProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Views     int64  `json:"views"`
}

// ProductViewedEvent is the payload of a product.viewed event.
type ProductViewedEvent struct {
	ViewID    string    `json:"view_id"`
	ProductID string    `json:"product_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}
