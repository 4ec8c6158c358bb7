package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/casarom/salesapi/internal/api"
	"github.com/casarom/salesapi/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) ([]*service.SearchResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchResultResponse struct {
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Brand        string  `json:"brand,omitempty"`
	UnitPrice    float64 `json:"unit_price"`
	HybridScore  float64 `json:"hybrid_score"`
	LexicalScore float64 `json:"lexical_score"`
	VectorScore  float64 `json:"vector_score"`
}

type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []*SearchResultResponse `json:"results"`
}

// Search handles GET /search?q=...&limit=...&alpha=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := service.DefaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	alpha := service.DefaultSearchAlpha
	if alphaStr := r.URL.Query().Get("alpha"); alphaStr != "" {
		parsed, err := strconv.ParseFloat(alphaStr, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			api.Error(w, http.StatusBadRequest, "alpha must be a number between 0 and 1")
			return
		}
		alpha = parsed
	}

	results, err := h.svc.Search(r.Context(), service.SearchInput{
		Query: query,
		Limit: limit,
		Alpha: alpha,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*SearchResultResponse, len(results))
	for i, result := range results {
		responses[i] = &SearchResultResponse{
			SKU:          result.SKU,
			Name:         result.Name,
			Brand:        result.Brand,
			UnitPrice:    result.UnitPrice,
			HybridScore:  result.HybridScore,
			LexicalScore: result.LexicalScore,
			VectorScore:  result.VectorScore,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Query:   query,
		Results: responses,
	})
}
