package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Vouchers *handler.VoucherHandler
	Catalog  *handler.CatalogHandler
	Book     *handler.ShippingAddressHandler
	Cart     *handler.CartHandler
}

// New creates the HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> Metrics -> CORS -> APIKeyAuth -> UserID
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))
	r.Use(middleware.UserID(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/category/{name}", h.Products.ListByCategory)
			r.Get("/{id}", h.Products.GetByID)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Catalog.ListCategories)
			r.Get("/tree", h.Catalog.CategoryTree)
			r.Get("/{id}", h.Catalog.GetCategory)
			r.Get("/{id}/descendants", h.Catalog.CategoryDescendants)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/cities", h.Catalog.Cities)
			r.Get("/cities/{code}/districts", h.Catalog.Districts)
			r.Get("/districts/{code}/wards", h.Catalog.Wards)
		})

		r.Route("/shipping-addresses", func(r chi.Router) {
			r.Post("/", h.Book.Create)
			r.Get("/", h.Book.List)
			r.Get("/{id}", h.Book.Get)
			r.Patch("/{id}", h.Book.Update)
			r.Delete("/{id}", h.Book.Delete)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/items", h.Cart.AddItem)
			r.Patch("/items/{id}", h.Cart.UpdateItem)
			r.Delete("/items/{id}", h.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Orders.Create)
			r.Get("/", h.Orders.List)
			r.Post("/calculate", h.Orders.Calculate)
			r.Get("/{id}", h.Orders.GetByID)
			r.Patch("/{id}/status", h.Orders.UpdateStatus)
		})
		r.Get("/shipping-fee", h.Orders.ShippingFee)

		r.Route("/vouchers", func(r chi.Router) {
			r.Post("/", h.Vouchers.Create)
			r.Get("/", h.Vouchers.List)
			r.Post("/validate", h.Vouchers.Validate)
			r.Post("/apply", h.Vouchers.Apply)
			r.Get("/{id}", h.Vouchers.Get)
			r.Put("/{id}", h.Vouchers.Update)
			r.Delete("/{id}", h.Vouchers.Delete)
		})
	})

	return r
}
