package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casarom/salesapi/internal/domain"
	"github.com/casarom/salesapi/internal/service"
)

type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) CreateQuote(ctx context.Context, input service.CreateQuoteInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockQuoteService) GetQuote(ctx context.Context, quoteID string) (*domain.Quote, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func quoteRequest(quoteID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/quotes/"+quoteID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("quote_id", quoteID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestQuoteHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockQuoteService)
	handler := NewQuoteHandler(mockSvc)

	mockSvc.On("CreateQuote", mock.Anything, mock.MatchedBy(func(input service.CreateQuoteInput) bool {
		return input.CustomerRef == "CUST-1" && len(input.Lines) == 2 &&
			input.Lines[0].SKU == "A" && input.Lines[0].Qty == 2
	})).Return("CRQ-4F2A1B3C", nil)

	body := `{"customer_ref":"CUST-1","lines":[{"sku":"A","qty":2},{"sku":"B","qty":1,"attributes":{"color":"white"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "CRQ-4F2A1B3C", data["quote_id"])
	mockSvc.AssertExpectations(t)
}

func TestQuoteHandler_Create_InvalidBody(t *testing.T) {
	mockSvc := new(MockQuoteService)
	handler := NewQuoteHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "CreateQuote", mock.Anything, mock.Anything)
}

func TestQuoteHandler_Create_ValidationError(t *testing.T) {
	mockSvc := new(MockQuoteService)
	handler := NewQuoteHandler(mockSvc)

	mockSvc.On("CreateQuote", mock.Anything, mock.Anything).
		Return("", domain.NewUnknownSKUError(2, "MISSING"))

	body := `{"customer_ref":"CUST-1","lines":[{"sku":"A","qty":2},{"sku":"MISSING","qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "MISSING")
	assert.Equal(t, domain.ErrCodeValidation, resp["code"])
}

func TestQuoteHandler_Create_PolicyMissing(t *testing.T) {
	mockSvc := new(MockQuoteService)
	handler := NewQuoteHandler(mockSvc)

	mockSvc.On("CreateQuote", mock.Anything, mock.Anything).
		Return("", domain.ErrPricingPolicyMissing)

	body := `{"customer_ref":"CUST-1","lines":[{"sku":"A","qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestQuoteHandler_Create_StorageFault(t *testing.T) {
	mockSvc := new(MockQuoteService)
	handler := NewQuoteHandler(mockSvc)

	mockSvc.On("CreateQuote", mock.Anything, mock.Anything).
		Return("", domain.NewStorageFault("quote creation failed", assert.AnError))

	body := `{"customer_ref":"CUST-1","lines":[{"sku":"A","qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQuoteHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockQuoteService)
	handler := NewQuoteHandler(mockSvc)

	now := time.Now().UTC()
	quote := &domain.Quote{
		ID:                "CRQ-4F2A1B3C",
		CustomerRef:       "CUST-1",
		ValidUntil:        now.Add(24 * time.Hour),
		ListTotal:         25.00,
		TransferTotal:     22.50,
		InstallmentsTotal: 30.00,
		Notes:             []string{domain.DefaultQuoteNote},
		CreatedAt:         now,
		Lines: []domain.QuoteLine{
			{QuoteID: "CRQ-4F2A1B3C", LineNumber: 1, SKU: "A", Name: "Widget A", Qty: 2, UnitPrice: 10, LineTotal: 20},
			{QuoteID: "CRQ-4F2A1B3C", LineNumber: 2, SKU: "B", Name: "Widget B", Qty: 1, UnitPrice: 5, LineTotal: 5},
		},
	}
	mockSvc.On("GetQuote", mock.Anything, "CRQ-4F2A1B3C").Return(quote, nil)

	w := httptest.NewRecorder()
	handler.Get(w, quoteRequest("CRQ-4F2A1B3C"))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "CRQ-4F2A1B3C", data["quote_id"])
	assert.Equal(t, 25.00, data["list_total"])
	lines := data["lines"].([]interface{})
	require.Len(t, lines, 2)
	firstLine := lines[0].(map[string]interface{})
	assert.Equal(t, float64(1), firstLine["line_number"])
	mockSvc.AssertExpectations(t)
}

func TestQuoteHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockQuoteService)
	handler := NewQuoteHandler(mockSvc)

	mockSvc.On("GetQuote", mock.Anything, "CRQ-MISSING").Return(nil, domain.ErrQuoteNotFound)

	w := httptest.NewRecorder()
	handler.Get(w, quoteRequest("CRQ-MISSING"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}
