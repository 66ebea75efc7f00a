package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httputil"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

// maxBodyBytes caps request bodies at 1MB.
const maxBodyBytes = 1 << 20

// decodeBody reads and validates a JSON body into dst. On failure it writes
// the 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := validator.DecodeAndValidate(r, dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func writeInvalidParameter(w http.ResponseWriter, msg string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: msg},
	})
}

// queryInt parses the named query value. It writes a 400 and returns false
// when the value is present but not an integer.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeInvalidParameter(w, name+" must be a valid integer")
		return nil, false
	}
	return &v, true
}

// queryUUID parses the named query value as a UUID. It writes a 400 and
// returns false when the value is present but malformed.
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*string, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeInvalidParameter(w, name+" must be a valid UUID")
		return nil, false
	}
	v := id.String()
	return &v, true
}

func queryPrice(w http.ResponseWriter, r *http.Request, name string) (*domain.Price, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	p, err := domain.NewPrice(raw)
	if err != nil {
		writeInvalidParameter(w, name+" must be a valid decimal number")
		return nil, false
	}
	return &p, true
}

func queryCategory(r *http.Request, name string) *domain.Category {
	if v := r.URL.Query().Get(name); v != "" {
		c := domain.Category(v)
		return &c
	}
	return nil
}
