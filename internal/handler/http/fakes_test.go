package http

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

// store is an in-memory stand-in for the postgres repositories. Cascades and
// foreign keys behave like the real schema.
type store struct {
	mu       sync.Mutex
	products map[string]domain.Product
	reviews  map[string]domain.Review
	views    []domain.ProductView
	carriers map[string]domain.Carrier
}

func newStore() *store {
	return &store{
		products: make(map[string]domain.Product),
		reviews:  make(map[string]domain.Review),
		carriers: make(map[string]domain.Carrier),
	}
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// --- products ---

type memProducts struct{ s *store }

func (m memProducts) Create(_ context.Context, p *domain.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.products[p.ID] = *p
	return nil
}

func (m memProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

func (m memProducts) List(_ context.Context, f repository.ProductFilter) ([]domain.Product, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Product
	for _, p := range m.s.products {
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.Search != nil {
			q := strings.ToLower(*f.Search)
			if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
		}
		if f.MinPrice != nil && p.Price.LessThan(f.MinPrice.Decimal) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(f.MaxPrice.Decimal) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch f.Ordering {
		case domain.OrderByName:
			return a.Name < b.Name
		case domain.OrderByNameDesc:
			return a.Name > b.Name
		case domain.OrderByPrice:
			return a.Price.LessThan(b.Price.Decimal)
		case domain.OrderByPriceDesc:
			return a.Price.GreaterThan(b.Price.Decimal)
		case domain.OrderByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return window(out, f.Limit, f.Offset), len(out), nil
}

func (m memProducts) Update(_ context.Context, p *domain.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[p.ID]; !ok {
		return apperrors.NotFound("product", p.ID)
	}
	m.s.products[p.ID] = *p
	return nil
}

func (m memProducts) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return apperrors.NotFound("product", id)
	}
	delete(m.s.products, id)
	for rid, r := range m.s.reviews {
		if r.ProductID == id {
			delete(m.s.reviews, rid)
		}
	}
	kept := m.s.views[:0]
	for _, v := range m.s.views {
		if v.ProductID != id {
			kept = append(kept, v)
		}
	}
	m.s.views = kept
	return nil
}

func (m memProducts) Exists(_ context.Context, id string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.products[id]
	return ok, nil
}

func (m memProducts) CountByCategory(context.Context) (map[domain.Category]int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make(map[domain.Category]int)
	for _, p := range m.s.products {
		out[p.Category]++
	}
	return out, nil
}

func (m memProducts) NamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make(map[string]string)
	for _, id := range ids {
		if p, ok := m.s.products[id]; ok {
			out[id] = p.Name
		}
	}
	return out, nil
}

func (m memProducts) AdminList(_ context.Context, category *domain.Category) ([]domain.AdminProductRow, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var rows []domain.AdminProductRow
	for _, p := range m.s.products {
		if category != nil && p.Category != *category {
			continue
		}
		row := domain.AdminProductRow{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price}
		sum := 0
		for _, r := range m.s.reviews {
			if r.ProductID == p.ID {
				row.ReviewCount++
				sum += r.Rating
			}
		}
		if row.ReviewCount > 0 {
			row.AverageRating = float64(sum) / float64(row.ReviewCount)
		}
		for _, v := range m.s.views {
			if v.ProductID == p.ID {
				row.ViewCount++
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

// --- reviews ---

type memReviews struct{ s *store }

func (m memReviews) Create(_ context.Context, r *domain.Review) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[r.ProductID]; !ok {
		return apperrors.InvalidInput("product does not exist")
	}
	m.s.reviews[r.ID] = *r
	return nil
}

func (m memReviews) GetByID(_ context.Context, id string) (*domain.Review, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	return &r, nil
}

func (m memReviews) List(_ context.Context, f repository.ReviewFilter) ([]domain.Review, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Review
	for _, r := range m.s.reviews {
		if f.ProductID != nil && r.ProductID != *f.ProductID {
			continue
		}
		if f.Rating != nil && r.Rating != *f.Rating {
			continue
		}
		if f.MinRating != nil && r.Rating < *f.MinRating {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return window(out, f.Limit, f.Offset), len(out), nil
}

func (m memReviews) Update(_ context.Context, r *domain.Review) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.reviews[r.ID] = *r
	return nil
}

func (m memReviews) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.reviews[id]; !ok {
		return apperrors.NotFound("review", id)
	}
	delete(m.s.reviews, id)
	return nil
}

func (m memReviews) GetSummary(_ context.Context, productID string) (*domain.ReviewSummary, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var sum domain.ReviewSummary
	total := 0
	for _, r := range m.s.reviews {
		if r.ProductID == productID {
			sum.TotalCount++
			total += r.Rating
		}
	}
	if sum.TotalCount > 0 {
		sum.AverageRating = float64(total) / float64(sum.TotalCount)
	}
	return &sum, nil
}

// --- views ---

type memViews struct{ s *store }

func (m memViews) Record(_ context.Context, v *domain.ProductView) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[v.ProductID]; !ok {
		return apperrors.NotFound("product", v.ProductID)
	}
	m.s.views = append(m.s.views, *v)
	return nil
}

func (m memViews) CountsByProduct(context.Context) ([]domain.ProductViewCount, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[string]int)
	for _, v := range m.s.views {
		counts[v.ProductID]++
	}
	out := make([]domain.ProductViewCount, 0, len(m.s.products))
	for id, p := range m.s.products {
		out = append(out, domain.ProductViewCount{ProductID: id, Name: p.Name, ViewCount: counts[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ViewCount != out[j].ViewCount {
			return out[i].ViewCount > out[j].ViewCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// pausingViews holds the first CountsByProduct call after it has read the
// view log until release is closed.
type pausingViews struct {
	memViews
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (m *pausingViews) CountsByProduct(ctx context.Context) ([]domain.ProductViewCount, error) {
	counts, err := m.memViews.CountsByProduct(ctx)
	m.once.Do(func() {
		close(m.entered)
		<-m.release
	})
	return counts, err
}

func (m memViews) CountForProduct(_ context.Context, productID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, v := range m.s.views {
		if v.ProductID == productID {
			n++
		}
	}
	return n, nil
}

// --- carriers ---

type memCarriers struct{ s *store }

func (m memCarriers) Create(_ context.Context, c *domain.Carrier) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.carriers {
		if existing.Name == c.Name {
			return apperrors.AlreadyExists("carrier", "name", c.Name)
		}
	}
	m.s.carriers[c.ID] = *c
	return nil
}

func (m memCarriers) GetByID(_ context.Context, id string) (*domain.Carrier, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.carriers[id]
	if !ok {
		return nil, apperrors.NotFound("carrier", id)
	}
	return &c, nil
}

func (m memCarriers) List(context.Context) ([]domain.Carrier, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]domain.Carrier, 0, len(m.s.carriers))
	for _, c := range m.s.carriers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memCarriers) Update(_ context.Context, c *domain.Carrier) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, existing := range m.s.carriers {
		if id != c.ID && existing.Name == c.Name {
			return apperrors.Conflict(fmt.Sprintf("carrier name %q is used by another carrier", c.Name))
		}
	}
	m.s.carriers[c.ID] = *c
	return nil
}

func (m memCarriers) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.carriers[id]; !ok {
		return apperrors.NotFound("carrier", id)
	}
	delete(m.s.carriers, id)
	return nil
}

// --- cache and trending ---

type memCache struct {
	mu     sync.Mutex
	counts []domain.ProductViewCount
	ok     bool
	gen    int64
}

func (c *memCache) Get(context.Context) ([]domain.ProductViewCount, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts, c.ok, nil
}

func (c *memCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *memCache) Set(_ context.Context, gen int64, counts []domain.ProductViewCount) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false, nil
	}
	c.counts, c.ok = counts, true
	return true, nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts, c.ok = nil, false
	c.gen++
	return nil
}

type memTrending struct {
	mu     sync.Mutex
	scores map[string]int64
}

func (t *memTrending) Increment(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scores[id]++
	return nil
}

func (t *memTrending) Top(_ context.Context, n int) ([]domain.TrendingProduct, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TrendingProduct, 0, len(t.scores))
	for id, s := range t.scores {
		out = append(out, domain.TrendingProduct{ProductID: id, Views: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	return window(out, n, 0), nil
}

func (t *memTrending) Remove(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.scores, id)
	return nil
}
