package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThomasMo54/teaching-shop-example/internal/service"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httputil"
	"github.com/ThomasMo54/teaching-shop-example/pkg/pagination"
)

// AnalyticsHandler serves view analytics.
type AnalyticsHandler struct {
	service *service.AnalyticsService
	logger  *slog.Logger
}

func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc, logger: logger}
}

// ViewCounts handles GET /api/analytics. The list is never paginated.
func (h *AnalyticsHandler) ViewCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.ViewCounts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteList(w, counts, len(counts), pagination.Params{})
}

// ProductViewCount handles GET /api/products/{id}/views
func (h *AnalyticsHandler) ProductViewCount(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	count, err := h.service.ProductViewCount(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, count)
}

// Trending handles GET /api/analytics/trending
func (h *AnalyticsHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	n := 0
	if limit != nil {
		n = *limit
		if n == 0 {
			writeInvalidParameter(w, "limit must be between 1 and 50")
			return
		}
	}

	top, err := h.service.Trending(r.Context(), n)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteList(w, top, len(top), pagination.Params{})
}
