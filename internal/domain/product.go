package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product represents a catalog entry. The catalog is owned by an external
// system; this service only ever reads it.
type Product struct {
	SKU            string
	Name           string
	Brand          string
	Category       string
	UnitPrice      float64
	SearchableText string
	UpdatedAt      time.Time
}

// EmbeddingText builds the text embedded for a product: the name plus the
// indexed searchable text. Returns "" when the product has no text content.
func (p *Product) EmbeddingText() string {
	return strings.TrimSpace(p.Name + " " + p.SearchableText)
}

// ValidateProduct validates a Product instance
func ValidateProduct(p *Product) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}

	if p.SKU == "" {
		return fmt.Errorf("product SKU is required")
	}

	if p.Name == "" {
		return fmt.Errorf("product name is required")
	}

	if p.UnitPrice < 0 {
		return fmt.Errorf("product unit price cannot be negative")
	}

	return nil
}
