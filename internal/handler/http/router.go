package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ThomasMo54/teaching-shop-example/internal/auth"
	"github.com/ThomasMo54/teaching-shop-example/internal/service"
	"github.com/ThomasMo54/teaching-shop-example/pkg/health"
	"github.com/ThomasMo54/teaching-shop-example/pkg/httputil"
	"github.com/ThomasMo54/teaching-shop-example/pkg/middleware"
)

// Services groups the business services the router dispatches to.
type Services struct {
	Products  *service.ProductService
	Reviews   *service.ReviewService
	Analytics *service.AnalyticsService
	Carriers  *service.CarrierService
	Admin     *service.AdminService
}

// RouterConfig holds the cross-cutting router settings. Nil fields disable
// the corresponding feature.
type RouterConfig struct {
	ServiceName    string
	Version        string
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	ViewLimiter    *middleware.IPRateLimiter
	TokenValidator middleware.TokenValidator
}

// NewRouter creates a chi router with all catalog routes registered.
// Trailing slashes are optional on every route.
func NewRouter(svc Services, cfg RouterConfig, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.StripSlashes)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.CORS))

	// Health, metrics and profiling
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	productHandler := NewProductHandler(svc.Products, svc.Reviews, svc.Analytics, logger)
	reviewHandler := NewReviewHandler(svc.Reviews, logger)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics, logger)
	carrierHandler := NewCarrierHandler(svc.Carriers, logger)
	adminHandler := NewAdminHandler(svc.Admin, logger)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.CacheControl(300)).Get("/version", func(w http.ResponseWriter, _ *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"version": cfg.Version})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/grouped", productHandler.GroupedProducts)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", productHandler.GetProduct)
				r.Put("/", productHandler.UpdateProduct)
				r.Patch("/", productHandler.PatchProduct)
				r.Delete("/", productHandler.DeleteProduct)
				r.Get("/reviews", productHandler.ProductReviews)
				r.Get("/views", analyticsHandler.ProductViewCount)

				if cfg.ViewLimiter != nil {
					r.With(cfg.ViewLimiter.Middleware(logger)).Post("/view", productHandler.RecordView)
				} else {
					r.Post("/view", productHandler.RecordView)
				}
			})
		})

		r.Get("/categories", productHandler.ListCategories)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.ListReviews)
			r.Post("/", reviewHandler.CreateReview)
			r.Get("/{id}", reviewHandler.GetReview)
			r.Put("/{id}", reviewHandler.UpdateReview)
			r.Patch("/{id}", reviewHandler.PatchReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", analyticsHandler.ViewCounts)
			r.Get("/trending", analyticsHandler.Trending)
		})

		r.Route("/carriers", func(r chi.Router) {
			r.Get("/", carrierHandler.ListCarriers)
			r.Post("/", carrierHandler.CreateCarrier)
			r.Get("/{id}", carrierHandler.GetCarrier)
			r.Put("/{id}", carrierHandler.UpdateCarrier)
			r.Patch("/{id}", carrierHandler.PatchCarrier)
			r.Delete("/{id}", carrierHandler.DeleteCarrier)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.TokenValidator))
				r.Use(middleware.RequireRole(auth.RoleAdmin))

				r.Get("/products", adminHandler.Products)
				r.Get("/reviews", adminHandler.Reviews)
				r.Get("/carriers", adminHandler.Carriers)
			})
		})
	})

	return r
}
