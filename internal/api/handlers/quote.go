package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casarom/salesapi/internal/api"
	"github.com/casarom/salesapi/internal/domain"
	"github.com/casarom/salesapi/internal/service"
)

type QuoteService interface {
	CreateQuote(ctx context.Context, input service.CreateQuoteInput) (string, error)
	GetQuote(ctx context.Context, quoteID string) (*domain.Quote, error)
}

type QuoteHandler struct {
	svc QuoteService
}

func NewQuoteHandler(svc QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

type QuoteLineRequest struct {
	SKU        string         `json:"sku"`
	Qty        int            `json:"qty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type CreateQuoteRequest struct {
	CustomerRef string             `json:"customer_ref"`
	Lines       []QuoteLineRequest `json:"lines"`
}

type CreateQuoteResponse struct {
	QuoteID string `json:"quote_id"`
}

type QuoteLineResponse struct {
	LineNumber int            `json:"line_number"`
	SKU        string         `json:"sku"`
	Name       string         `json:"name"`
	Qty        int            `json:"qty"`
	UnitPrice  float64        `json:"unit_price"`
	LineTotal  float64        `json:"line_total"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type QuoteResponse struct {
	QuoteID           string               `json:"quote_id"`
	CustomerRef       string               `json:"customer_ref"`
	ValidUntil        string               `json:"valid_until"`
	ListTotal         float64              `json:"list_total"`
	TransferTotal     float64              `json:"transfer_total"`
	InstallmentsTotal float64              `json:"installments_total"`
	Notes             []string             `json:"notes"`
	CreatedAt         string               `json:"created_at"`
	Lines             []*QuoteLineResponse `json:"lines"`
}

func quoteToResponse(q *domain.Quote) *QuoteResponse {
	lines := make([]*QuoteLineResponse, len(q.Lines))
	for i, line := range q.Lines {
		lines[i] = &QuoteLineResponse{
			LineNumber: line.LineNumber,
			SKU:        line.SKU,
			Name:       line.Name,
			Qty:        line.Qty,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal,
			Attributes: line.Attributes,
		}
	}
	return &QuoteResponse{
		QuoteID:           q.ID,
		CustomerRef:       q.CustomerRef,
		ValidUntil:        q.ValidUntil.UTC().Format(time.RFC3339),
		ListTotal:         q.ListTotal,
		TransferTotal:     q.TransferTotal,
		InstallmentsTotal: q.InstallmentsTotal,
		Notes:             q.Notes,
		CreatedAt:         q.CreatedAt.UTC().Format(time.RFC3339),
		Lines:             lines,
	}
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.QuoteLineInput, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = service.QuoteLineInput{
			SKU:        line.SKU,
			Qty:        line.Qty,
			Attributes: line.Attributes,
		}
	}

	quoteID, err := h.svc.CreateQuote(r.Context(), service.CreateQuoteInput{
		CustomerRef: req.CustomerRef,
		Lines:       lines,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, CreateQuoteResponse{QuoteID: quoteID})
}

// Get handles GET /quotes/{quote_id}
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "quote_id")
	if quoteID == "" {
		api.Error(w, http.StatusBadRequest, "quote_id is required")
		return
	}

	quote, err := h.svc.GetQuote(r.Context(), quoteID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, quoteToResponse(quote))
}
