package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductEmbeddingText(t *testing.T) {
	p := &Product{SKU: "FA-1", Name: "Chrome Faucet", SearchableText: "bathroom faucet chrome"}
	assert.Equal(t, "Chrome Faucet bathroom faucet chrome", p.EmbeddingText())

	empty := &Product{SKU: "FA-2"}
	assert.Equal(t, "", empty.EmbeddingText())

	nameOnly := &Product{SKU: "FA-3", Name: "Valve"}
	assert.Equal(t, "Valve", nameOnly.EmbeddingText())
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		product *Product
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid product",
			product: &Product{SKU: "FA-1", Name: "Chrome Faucet", UnitPrice: 49.90},
			wantErr: false,
		},
		{
			name:    "nil product",
			product: nil,
			wantErr: true,
			errMsg:  "product cannot be nil",
		},
		{
			name:    "missing SKU",
			product: &Product{Name: "Chrome Faucet", UnitPrice: 49.90},
			wantErr: true,
			errMsg:  "product SKU is required",
		},
		{
			name:    "missing name",
			product: &Product{SKU: "FA-1", UnitPrice: 49.90},
			wantErr: true,
			errMsg:  "product name is required",
		},
		{
			name:    "negative price",
			product: &Product{SKU: "FA-1", Name: "Chrome Faucet", UnitPrice: -1},
			wantErr: true,
			errMsg:  "product unit price cannot be negative",
		},
		{
			name:    "zero price is allowed",
			product: &Product{SKU: "FA-1", Name: "Chrome Faucet", UnitPrice: 0},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProduct(tt.product)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
