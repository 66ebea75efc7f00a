package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThomasMo54/teaching-shop-example/internal/service"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httputil"
	"github.com/ThomasMo54/teaching-shop-example/pkg/pagination"
)

// CarrierHandler handles HTTP requests for carrier endpoints.
type CarrierHandler struct {
	service *service.CarrierService
	logger  *slog.Logger
}

func NewCarrierHandler(svc *service.CarrierService, logger *slog.Logger) *CarrierHandler {
	return &CarrierHandler{service: svc, logger: logger}
}

type CarrierRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=100"`
	DelayDays *int   `json:"delay_days" validate:"required,gte=0"`
}

type PatchCarrierRequest struct {
	Name      *string `json:"name" validate:"omitempty,notblank,max=100"`
	DelayDays *int    `json:"delay_days" validate:"omitempty,gte=0"`
}

func (h *CarrierHandler) ListCarriers(w http.ResponseWriter, r *http.Request) {
	carriers, err := h.service.ListCarriers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, carriers, len(carriers), pagination.Params{})
}

func (h *CarrierHandler) CreateCarrier(w http.ResponseWriter, r *http.Request) {
	var req CarrierRequest
	if !decodeBody(w, r, &req) {
		return
	}

	carrier, err := h.service.CreateCarrier(r.Context(), &service.CarrierInput{Name: req.Name, DelayDays: *req.DelayDays})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, carrier)
}

func (h *CarrierHandler) GetCarrier(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	carrier, err := h.service.GetCarrier(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, carrier)
}

func (h *CarrierHandler) UpdateCarrier(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CarrierRequest
	if !decodeBody(w, r, &req) {
		return
	}

	carrier, err := h.service.UpdateCarrier(r.Context(), id.String(), &service.CarrierInput{Name: req.Name, DelayDays: *req.DelayDays})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, carrier)
}

func (h *CarrierHandler) PatchCarrier(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req PatchCarrierRequest
	if !decodeBody(w, r, &req) {
		return
	}

	carrier, err := h.service.PatchCarrier(r.Context(), id.String(), &service.PatchCarrierInput{Name: req.Name, DelayDays: req.DelayDays})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, carrier)
}

func (h *CarrierHandler) DeleteCarrier(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCarrier(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
