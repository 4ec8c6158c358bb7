package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casarom/salesapi/internal/domain"
)

// MockEmbeddingProductSource is a mock implementation of EmbeddingProductSource
type MockEmbeddingProductSource struct {
	mock.Mock
}

func (m *MockEmbeddingProductSource) ListAll(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockEmbeddingProductSource) ListNeedingEmbedding(ctx context.Context, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// MockEmbeddingWriter is a mock implementation of EmbeddingWriter
type MockEmbeddingWriter struct {
	mock.Mock
}

func (m *MockEmbeddingWriter) Upsert(ctx context.Context, embedding *domain.Embedding) error {
	args := m.Called(ctx, embedding)
	return args.Error(0)
}

func TestEmbedProduct(t *testing.T) {
	encoder := new(MockEncoder)
	writer := new(MockEmbeddingWriter)

	encoder.On("Encode", mock.Anything, "Chrome Faucet bathroom chrome").
		Return([]float32{0.1, 0.2}, nil)

	var stored *domain.Embedding
	writer.On("Upsert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Embedding) }).
		Return(nil)

	svc := NewEmbeddingService(encoder, new(MockEmbeddingProductSource), writer, "text-embedding-ada-002")
	ok, err := svc.EmbedProduct(context.Background(), &domain.Product{
		SKU:            "FA-1",
		Name:           "Chrome Faucet",
		SearchableText: "bathroom chrome",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NotNil(t, stored)
	assert.Equal(t, "FA-1", stored.SKU)
	assert.Equal(t, 2, stored.Dims)
	assert.Equal(t, "text-embedding-ada-002", stored.Model)
}

func TestEmbedProduct_SkipsEmptyText(t *testing.T) {
	encoder := new(MockEncoder)
	writer := new(MockEmbeddingWriter)

	svc := NewEmbeddingService(encoder, new(MockEmbeddingProductSource), writer, "text-embedding-ada-002")
	ok, err := svc.EmbedProduct(context.Background(), &domain.Product{SKU: "FA-1"})
	require.NoError(t, err)
	assert.False(t, ok)

	encoder.AssertNotCalled(t, "Encode")
	writer.AssertNotCalled(t, "Upsert")
}

func TestEmbedAll(t *testing.T) {
	encoder := new(MockEncoder)
	source := new(MockEmbeddingProductSource)
	writer := new(MockEmbeddingWriter)

	source.On("ListAll", mock.Anything).Return([]*domain.Product{
		{SKU: "FA-1", Name: "Chrome Faucet"},
		{SKU: "FA-2"},
		{SKU: "FA-3", Name: "Kitchen Mixer"},
	}, nil)
	encoder.On("Encode", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	writer.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	svc := NewEmbeddingService(encoder, source, writer, "text-embedding-ada-002")
	embedded, skipped, err := svc.EmbedAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, embedded)
	assert.Equal(t, 1, skipped)
}

func TestEmbedStale(t *testing.T) {
	encoder := new(MockEncoder)
	source := new(MockEmbeddingProductSource)
	writer := new(MockEmbeddingWriter)

	source.On("ListNeedingEmbedding", mock.Anything, 50).Return([]*domain.Product{
		{SKU: "FA-1", Name: "Chrome Faucet"},
	}, nil)
	encoder.On("Encode", mock.Anything, "Chrome Faucet").Return([]float32{0.5}, nil)
	writer.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	svc := NewEmbeddingService(encoder, source, writer, "text-embedding-ada-002")
	embedded, err := svc.EmbedStale(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
}

func TestEmbedAll_PropagatesEncoderError(t *testing.T) {
	encoder := new(MockEncoder)
	source := new(MockEmbeddingProductSource)
	writer := new(MockEmbeddingWriter)

	source.On("ListAll", mock.Anything).Return([]*domain.Product{
		{SKU: "FA-1", Name: "Chrome Faucet"},
	}, nil)
	encoder.On("Encode", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	svc := NewEmbeddingService(encoder, source, writer, "text-embedding-ada-002")
	_, _, err := svc.EmbedAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode product FA-1")
}
