package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RequestTimeout bounds every request handled by the router.
const RequestTimeout = 30 * time.Second

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(h *Handler, healthHandler *health.Handler, cors middleware.CORSConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cors))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.NewHTTPMetrics(prometheus.DefaultRegisterer).Handler)
	r.Use(middleware.Tracing(serviceName, "/health/", "/metrics"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session())
		r.Use(middleware.RequestLogger(logger))
		r.Use(LimitBody)
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.GetProducts)
			r.Post("/retry", h.RetryProducts)
			r.With(middleware.CacheControl(60)).Get("/{id}", h.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Route("/catalogue", func(r chi.Router) {
				r.Get("/", h.GetCatalogue)
				r.Get("/categories", h.GetCategories)
				r.Put("/category", h.SetCategory)
				r.Put("/search", h.SetSearch)
				r.Put("/sort", h.SetSort)
				r.Post("/more", h.LoadMore)
				r.Post("/reset", h.ResetFilters)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/items", h.AddItem)
				r.Put("/items/{productId}", h.UpdateItemQuantity)
				r.Delete("/items/{productId}", h.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", h.GetWishlist)
				r.Delete("/", h.ClearWishlist)
				r.Post("/toggle", h.ToggleWishlist)
				r.Delete("/items/{productId}", h.RemoveWishlistItem)
			})
		})
	})

	return r
}
