package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ThomasMo54/teaching-shop-example/pkg/logger"
)

// RequestLogger stores a logger enriched with the request's correlation id,
// principal and span ids in the context. Mount it after RequestLogging and
// Tracing so those values are already present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if sub := SubjectFromContext(ctx); sub != "" {
				ctx = logger.WithUserID(ctx, sub)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
