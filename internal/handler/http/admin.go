package http

import (
	"log/slog"
	"net/http"

	"github.com/ThomasMo54/teaching-shop-example/internal/service"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httputil"
	"github.com/ThomasMo54/teaching-shop-example/pkg/pagination"
)

// AdminHandler serves the admin login and the authenticated list views.
type AdminHandler struct {
	service *service.AdminService
	logger  *slog.Logger
}

func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, token)
}

// Products handles GET /api/admin/products
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Products(r.Context(), queryCategory(r, "category"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, rows, len(rows), pagination.Params{})
}

// Reviews handles GET /api/admin/reviews
func (h *AdminHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	rating, ok := queryInt(w, r, "rating")
	if !ok {
		return
	}
	productID, ok := queryUUID(w, r, "product")
	if !ok {
		return
	}

	reviews, err := h.service.Reviews(r.Context(), rating, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, reviews, len(reviews), pagination.Params{})
}

// carrierRow is the admin list_display of a carrier.
type carrierRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DelayDays int    `json:"delay_days"`
}

// Carriers handles GET /api/admin/carriers
func (h *AdminHandler) Carriers(w http.ResponseWriter, r *http.Request) {
	carriers, err := h.service.Carriers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rows := make([]carrierRow, 0, len(carriers))
	for _, c := range carriers {
		rows = append(rows, carrierRow{ID: c.ID, Name: c.Name, DelayDays: c.DelayDays})
	}
	httputil.WriteList(w, rows, len(rows), pagination.Params{})
}
