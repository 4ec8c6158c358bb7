package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casarom/salesapi/internal/api"
	"github.com/casarom/salesapi/internal/domain"
)

type ProductService interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type ProductResponse struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Brand          string  `json:"brand,omitempty"`
	Category       string  `json:"category,omitempty"`
	UnitPrice      float64 `json:"unit_price"`
	SearchableText string  `json:"searchable_text,omitempty"`
	UpdatedAt      string  `json:"updated_at"`
}

func productToResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		SKU:            p.SKU,
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		UnitPrice:      p.UnitPrice,
		SearchableText: p.SearchableText,
		UpdatedAt:      p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Get handles GET /products/{sku}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if sku == "" {
		api.Error(w, http.StatusBadRequest, "sku is required")
		return
	}

	product, err := h.svc.GetBySKU(r.Context(), sku)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, productToResponse(product))
}
