package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/service"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httputil"
	"github.com/ThomasMo54/teaching-shop-example/pkg/pagination"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	products  *service.ProductService
	reviews   *service.ReviewService
	analytics *service.AnalyticsService
	logger    *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(
	products *service.ProductService,
	reviews *service.ReviewService,
	analytics *service.AnalyticsService,
	logger *slog.Logger,
) *ProductHandler {
	return &ProductHandler{
		products:  products,
		reviews:   reviews,
		analytics: analytics,
		logger:    logger,
	}
}

// --- Request DTOs ---

// ProductRequest is the JSON body for creating or replacing a product.
type ProductRequest struct {
	Name        string        `json:"name" validate:"required,notblank,max=255"`
	Description string        `json:"description"`
	Price       *domain.Price `json:"price" validate:"required"`
	Image       string        `json:"image" validate:"max=500"`
	Category    string        `json:"category" validate:"required,oneof=electronics clothing books home sports"`
}

func (req *ProductRequest) input() *service.ProductInput {
	return &service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		Category:    domain.Category(req.Category),
	}
}

// PatchProductRequest is the JSON body for a partial product update.
type PatchProductRequest struct {
	Name        *string       `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string       `json:"description"`
	Price       *domain.Price `json:"price"`
	Image       *string       `json:"image" validate:"omitempty,max=500"`
	Category    *string       `json:"category" validate:"omitempty,oneof=electronics clothing books home sports"`
}

// --- Handlers ---

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	minPrice, ok := queryPrice(w, r, "min_price")
	if !ok {
		return
	}
	maxPrice, ok := queryPrice(w, r, "max_price")
	if !ok {
		return
	}

	page := pagination.FromRequest(r)
	products, total, err := h.products.ListProducts(r.Context(), service.ListProductsInput{
		Category: queryCategory(r, "category"),
		Search:   r.URL.Query().Get("search"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Ordering: r.URL.Query().Get("ordering"),
		Limit:    page.Limit(),
		Offset:   page.Offset,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteList(w, products, total, page)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.products.CreateProduct(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, product)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.products.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id.String(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// PatchProduct handles PATCH /api/products/{id}
func (h *ProductHandler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req PatchProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := &service.PatchProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	}
	if req.Category != nil {
		c := domain.Category(*req.Category)
		input.Category = &c
	}

	product, err := h.products.PatchProduct(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GroupedProducts handles GET /api/products/grouped
func (h *ProductHandler) GroupedProducts(w http.ResponseWriter, r *http.Request) {
	groups, err := h.products.GroupByCategory(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, groups)
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.products.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteList(w, cats, len(cats), pagination.Params{})
}

// ProductReviews handles GET /api/products/{id}/reviews
func (h *ProductHandler) ProductReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	out, err := h.reviews.ProductReviews(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, out)
}

// productNotFoundBody is the fixed body clients of the view endpoint expect.
var productNotFoundBody = map[string]string{"error": "Product not found"}

// RecordView handles POST /api/products/{id}/view
func (h *ProductHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusNotFound, productNotFoundBody)
		return
	}

	if _, err := h.analytics.RecordView(r.Context(), id.String()); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, productNotFoundBody)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"status": "view recorded"})
}
