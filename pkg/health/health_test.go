package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, hf http.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	hf(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLive(t *testing.T) {
	h := NewHandler("1.0.0", time.Second)
	rec, resp := serve(t, h.Live)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReady_AllUp(t *testing.T) {
	h := NewHandler("1.0.0", time.Second)
	h.Register("postgres", func(context.Context) error { return nil })
	h.Register("redis", func(context.Context) error { return nil })

	rec, resp := serve(t, h.Ready)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReady_OneDown(t *testing.T) {
	h := NewHandler("1.0.0", time.Second)
	h.Register("postgres", func(context.Context) error { return nil })
	h.Register("redis", func(context.Context) error { return errors.New("connection refused") })

	rec, resp := serve(t, h.Ready)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["postgres"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
}

func TestReady_TimeoutPropagates(t *testing.T) {
	h := NewHandler("1.0.0", 10*time.Millisecond)
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	rec, resp := serve(t, h.Ready)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Checks["slow"].Status)
}

func TestNames_Sorted(t *testing.T) {
	h := NewHandler("", 0)
	h.Register("redis", nil)
	h.Register("postgres", nil)
	assert.Equal(t, []string{"postgres", "redis"}, h.Names())
}
