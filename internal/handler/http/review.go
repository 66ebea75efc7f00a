package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThomasMo54/teaching-shop-example/internal/service"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httputil"
	"github.com/ThomasMo54/teaching-shop-example/pkg/pagination"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// ReviewRequest is the JSON body for creating or replacing a review. The
// rating range is enforced by the service.
type ReviewRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	AuthorName string `json:"author_name" validate:"required,notblank,max=100"`
	Rating     *int   `json:"rating" validate:"required"`
	Comment    string `json:"comment"`
}

func (req *ReviewRequest) input() *service.ReviewInput {
	return &service.ReviewInput{
		ProductID:  req.ProductID,
		AuthorName: req.AuthorName,
		Rating:     *req.Rating,
		Comment:    req.Comment,
	}
}

// PatchReviewRequest is the JSON body for a partial review update.
type PatchReviewRequest struct {
	ProductID  *string `json:"product_id" validate:"omitempty,notblank"`
	AuthorName *string `json:"author_name" validate:"omitempty,notblank,max=100"`
	Rating     *int    `json:"rating"`
	Comment    *string `json:"comment"`
}

// ListReviews handles GET /api/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	minRating, ok := queryInt(w, r, "min_rating")
	if !ok {
		return
	}
	rating, ok := queryInt(w, r, "rating")
	if !ok {
		return
	}
	productID, ok := queryUUID(w, r, "product")
	if !ok {
		return
	}

	page := pagination.FromRequest(r)
	reviews, total, err := h.service.ListReviews(r.Context(), service.ListReviewsInput{
		ProductID: productID,
		Rating:    rating,
		MinRating: minRating,
		Limit:     page.Limit(),
		Offset:    page.Offset,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteList(w, reviews, total, page)
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, review)
}

// GetReview handles GET /api/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// UpdateReview handles PUT /api/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), id.String(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// PatchReview handles PATCH /api/reviews/{id}
func (h *ReviewHandler) PatchReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req PatchReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := h.service.PatchReview(r.Context(), id.String(), &service.PatchReviewInput{
		ProductID:  req.ProductID,
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
