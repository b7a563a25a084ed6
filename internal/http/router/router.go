package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/inventory-app/docs"
	"github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	mw "github.com/rogerio-castellano/inventory-app/internal/http/middleware"
	rl "github.com/rogerio-castellano/inventory-app/internal/http/rate_limiter"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Options struct {
	Logger logrus.FieldLogger
	// Limiter is optional; nil disables rate limiting.
	Limiter *rl.Limiter
}

func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if opts.Logger != nil {
		r.Use(mw.RequestLogger(opts.Logger))
	}
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.HealthHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Event streams are long lived and stay outside the rate limiter.
	r.Get("/events", h.EventsHandler)

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.GetProductsHandler)
			r.Post("/", h.CreateProductHandler)
			r.Patch("/", h.UpdateProductsHandler)
			r.Delete("/", h.DeleteProductsHandler)

			r.Post("/seed", h.SeedProductsHandler)
			r.Post("/import", h.ImportProductsHandler)
			r.Get("/export", h.ExportProductsHandler)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetProductByIDHandler)
				r.Patch("/", h.UpdateProductHandler)
				r.Delete("/", h.DeleteProductHandler)
				r.Post("/adjust", h.AdjustQuantityHandler)
				r.Post("/increment", h.IncrementQuantityHandler)
				r.Post("/decrement", h.DecrementQuantityHandler)
				r.Get("/order", h.OrderProductHandler)
			})
		})

		r.Get("/metrics/dashboard", h.GetDashboardMetricsHandler)
	})

	return r
}
