package domain

import (
	"fmt"
	"time"
)

// Embedding represents the precomputed vector for a single catalog SKU.
// At most one embedding exists per SKU; rows are written only by the offline
// generator and read by the vector scorer.
type Embedding struct {
	SKU       string
	Vector    []float32
	Dims      int
	Model     string
	UpdatedAt time.Time
}

// NewEmbedding creates a new Embedding instance
func NewEmbedding(sku string, vector []float32, model string, updatedAt time.Time) *Embedding {
	return &Embedding{
		SKU:       sku,
		Vector:    vector,
		Dims:      len(vector),
		Model:     model,
		UpdatedAt: updatedAt,
	}
}

// ValidateEmbedding validates an Embedding instance
func ValidateEmbedding(e *Embedding) error {
	if e == nil {
		return fmt.Errorf("embedding cannot be nil")
	}

	if e.SKU == "" {
		return fmt.Errorf("embedding SKU is required")
	}

	if len(e.Vector) == 0 {
		return fmt.Errorf("embedding vector cannot be empty")
	}

	if e.Dims != len(e.Vector) {
		return fmt.Errorf("embedding Dims is %d but vector has %d components", e.Dims, len(e.Vector))
	}

	if e.Model == "" {
		return fmt.Errorf("embedding model identifier is required")
	}

	return nil
}
