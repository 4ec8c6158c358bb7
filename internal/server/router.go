package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casarom/salesapi/internal/api"
	"github.com/casarom/salesapi/internal/api/handlers"
	"github.com/casarom/salesapi/internal/api/middleware"
)

type RouterConfig struct {
	SearchHandler  *handlers.SearchHandler
	ProductHandler *handlers.ProductHandler
	QuoteHandler   *handlers.QuoteHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]any{
			"service": "casa-rom-sales-api",
			"endpoints": []string{
				"GET /health",
				"GET /search",
				"GET /products/{sku}",
				"POST /quotes",
				"GET /quotes/{quote_id}",
			},
		})
	})

	r.Get("/search", cfg.SearchHandler.Search)

	r.Get("/products/{sku}", cfg.ProductHandler.Get)

	r.Route("/quotes", func(r chi.Router) {
		r.Post("/", cfg.QuoteHandler.Create)
		r.Get("/{quote_id}", cfg.QuoteHandler.Get)
	})

	return r
}
