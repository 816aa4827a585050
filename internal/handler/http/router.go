package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/protyayrd/tweestbd-sub001/internal/service"
	"github.com/protyayrd/tweestbd-sub001/pkg/health"
	"github.com/protyayrd/tweestbd-sub001/pkg/middleware"
)

// RouterConfig bundles the dependencies the router needs.
type RouterConfig struct {
	OfferService   *service.OfferService
	PricingService *service.PricingService
	CartService    *service.CartService
	HealthHandler  *health.Handler
	Logger         *slog.Logger
	CORS           middleware.CORSConfig
	AdminToken     middleware.TokenValidator
}

// NewRouter creates a chi router with all pricing service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.PrometheusMetrics("pricing"))
	r.Use(middleware.Tracing("pricing"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	offerHandler := NewOfferHandler(cfg.OfferService, cfg.Logger)
	pricingHandler := NewPricingHandler(cfg.PricingService, cfg.Logger)
	cartHandler := NewCartHandler(cfg.CartService, cfg.Logger)

	// Public storefront endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/combo-offers/category/{categoryID}", offerHandler.GetActiveByCategory)

		r.Post("/pricing/quote", pricingHandler.Quote)
		r.Post("/pricing/potential-savings", pricingHandler.PotentialSavings)

		r.Route("/cart", func(r chi.Router) {
			r.Use(GuestIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Put("/", cartHandler.ReplaceCart)
			r.Delete("/", cartHandler.ClearCart)
		})

		// Admin offer management
		r.Route("/admin/combo-offers", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AdminToken))
			r.Use(middleware.RequireRole("admin"))

			r.Post("/", offerHandler.Create)
			r.Get("/", offerHandler.List)
			r.Get("/{offerID}", offerHandler.GetByID)
			r.Put("/{offerID}", offerHandler.Update)
			r.Post("/{offerID}/activate", offerHandler.Activate)
			r.Post("/{offerID}/deactivate", offerHandler.Deactivate)
		})
	})

	return r
}
