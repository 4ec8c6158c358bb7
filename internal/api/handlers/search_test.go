package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casarom/salesapi/internal/domain"
	"github.com/casarom/salesapi/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) ([]*service.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.SearchResult), args.Error(1)
}

func TestSearchHandler_Search_Success(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	results := []*service.SearchResult{
		{SKU: "FA-2", Name: "Brass Faucet", Brand: "AquaLine", UnitPrice: 40, HybridScore: 0.6, VectorScore: 1.0},
		{SKU: "FA-1", Name: "Chrome Faucet", Brand: "AquaLine", UnitPrice: 25, HybridScore: 0.4, LexicalScore: 1.0},
	}
	mockSvc.On("Search", mock.Anything, service.SearchInput{
		Query: "faucet",
		Limit: service.DefaultSearchLimit,
		Alpha: service.DefaultSearchAlpha,
	}).Return(results, nil)

	req := httptest.NewRequest(http.MethodGet, "/search?q=faucet", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "faucet", data["query"])
	items := data["results"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "FA-2", first["sku"])
	assert.InDelta(t, 0.6, first["hybrid_score"], 1e-9)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Search_ExplicitParams(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, service.SearchInput{
		Query: "tile",
		Limit: 5,
		Alpha: 0.3,
	}).Return([]*service.SearchResult{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/search?q=tile&limit=5&alpha=0.3", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Search_EmptyQuery(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.MatchedBy(func(input service.SearchInput) bool {
		return input.Query == ""
	})).Return([]*service.SearchResult{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Empty(t, data["results"])
}

func TestSearchHandler_Search_InvalidLimit(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/search?q=faucet&limit=abc", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchHandler_Search_AlphaOutOfRange(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/search?q=faucet&alpha=1.5", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchHandler_Search_ServiceError(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.Anything).
		Return(nil, domain.NewStorageFault("search failed", assert.AnError))

	req := httptest.NewRequest(http.MethodGet, "/search?q=faucet", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
