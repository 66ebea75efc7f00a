package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httpclient"
)

type sampleProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       string          `json:"price"`
	Image       string          `json:"image"`
	Category    domain.Category `json:"category"`
	reviews     []sampleReview
}

type sampleReview struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

type sampleCarrier struct {
	Name      string `json:"name"`
	DelayDays int    `json:"delay_days"`
}

var sampleProducts = []sampleProduct{
	{
		Name: "Wireless Headphones", Price: "89.90", Category: domain.CategoryElectronics,
		Description: "Over-ear headphones with 30 hours of battery.",
		Image:       "products/headphones.png",
		reviews: []sampleReview{
			{AuthorName: "Alice", Rating: 5, Comment: "Great sound."},
			{AuthorName: "Bob", Rating: 3, Comment: "A bit tight on the head."},
		},
	},
	{
		Name: "Denim Jacket", Price: "64.00", Category: domain.CategoryClothing,
		Description: "Classic blue denim jacket.",
		Image:       "products/jacket.png",
		reviews: []sampleReview{
			{AuthorName: "Chloe", Rating: 4, Comment: "Fits well."},
		},
	},
	{
		Name: "The Go Programming Language", Price: "39.90", Category: domain.CategoryBooks,
		Description: "The classic introduction to Go.",
		Image:       "products/gopl.png",
		reviews: []sampleReview{
			{AuthorName: "Dan", Rating: 5, Comment: "Still the best book on Go."},
			{AuthorName: "Eve", Rating: 4},
		},
	},
	{
		Name: "Ceramic Teapot", Price: "24.50", Category: domain.CategoryHome,
		Description: "One liter teapot with infuser.",
		Image:       "products/teapot.png",
	},
	{
		Name: "Yoga Mat", Price: "19.99", Category: domain.CategorySports,
		Description: "Non-slip mat, 6 mm thick.",
		Image:       "products/yoga-mat.png",
		reviews: []sampleReview{
			{AuthorName: "Frank", Rating: 2, Comment: "Slides on parquet."},
		},
	},
}

var sampleCarriers = []sampleCarrier{
	{Name: "Colissimo", DelayDays: 3},
	{Name: "Chronopost", DelayDays: 1},
	{Name: "Mondial Relay", DelayDays: 5},
}

// summary counts what a seed run created.
type summary struct {
	Products int
	Reviews  int
	Carriers int
	Views    int
}

type seeder struct {
	client  httpclient.Doer
	baseURL string
	logger  *slog.Logger
}

func newSeeder(client httpclient.Doer, baseURL string, logger *slog.Logger) *seeder {
	return &seeder{client: client, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (s *seeder) url(format string, args ...any) string {
	return s.baseURL + fmt.Sprintf(format, args...)
}

// run posts the sample catalog and records views views for each product.
// Carriers that already exist are skipped so the tool can be rerun.
func (s *seeder) run(ctx context.Context, views int) (summary, error) {
	var sum summary

	for _, p := range sampleProducts {
		var created struct {
			Data domain.Product `json:"data"`
		}
		if err := httpclient.DoJSON(ctx, s.client, http.MethodPost, s.url("/api/products"), p, &created); err != nil {
			return sum, fmt.Errorf("create product %q: %w", p.Name, err)
		}
		sum.Products++
		s.logger.Info("product created", slog.String("id", created.Data.ID), slog.String("name", p.Name))

		for _, r := range p.reviews {
			body := struct {
				ProductID string `json:"product_id"`
				sampleReview
			}{created.Data.ID, r}
			if err := httpclient.DoJSON(ctx, s.client, http.MethodPost, s.url("/api/reviews"), body, nil); err != nil {
				return sum, fmt.Errorf("create review for %q: %w", p.Name, err)
			}
			sum.Reviews++
		}

		for i := 0; i < views; i++ {
			if err := httpclient.DoJSON(ctx, s.client, http.MethodPost, s.url("/api/products/%s/view", created.Data.ID), nil, nil); err != nil {
				return sum, fmt.Errorf("record view for %q: %w", p.Name, err)
			}
			sum.Views++
		}
	}

	for _, c := range sampleCarriers {
		err := httpclient.DoJSON(ctx, s.client, http.MethodPost, s.url("/api/carriers"), c, nil)
		switch {
		case errors.Is(err, apperrors.ErrAlreadyExists):
			s.logger.Info("carrier already exists, skipping", slog.String("name", c.Name))
		case err != nil:
			return sum, fmt.Errorf("create carrier %q: %w", c.Name, err)
		default:
			sum.Carriers++
		}
	}

	return sum, nil
}
