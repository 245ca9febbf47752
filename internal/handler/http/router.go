package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/health"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/middleware"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/catalog"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/service"
)

const serviceName = "storefront"

// RouterDeps carries everything the router needs to register routes.
type RouterDeps struct {
	Checkout      *service.CheckoutService
	Orders        *service.OrderService
	Catalog       *catalog.Client
	HealthHandler *health.Handler
	SyncSecret    string
	CORS          middleware.CORSConfig
	Logger        *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered. Every
// route is declared here; handlers never self-register, so this function is
// the single dispatch table for the service.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	checkoutHandler := NewCheckoutHandler(deps.Checkout, deps.Logger)
	orderHandler := NewOrderHandler(deps.Orders, deps.Logger)
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/sessions", checkoutHandler.CreateSession)
			r.Post("/abandoned", checkoutHandler.CaptureAbandoned)
		})

		// The webhook body must reach the handler raw for HMAC verification.
		r.Post("/webhooks/stripe", orderHandler.HandleWebhook)

		r.Get("/orders/lookup", orderHandler.LookupOrder)

		r.Route("/admin/catalog", func(r chi.Router) {
			r.Use(RequireSyncSecret(deps.SyncSecret))

			r.Get("/products", catalogHandler.Products)
			r.Get("/stock", catalogHandler.Stock)
			r.Post("/orders", catalogHandler.CreateOrder)
		})
	})

	return r
}
