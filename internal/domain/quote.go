package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultQuoteNote is attached to every quote at creation time.
const DefaultQuoteNote = "Stock will be confirmed before fulfillment."

// Quote is an immutable priced offer. Totals are fixed at creation time using
// the pricing policy then in effect and are never recomputed.
type Quote struct {
	ID                string
	CustomerRef       string
	ValidUntil        time.Time
	ListTotal         float64
	TransferTotal     float64
	InstallmentsTotal float64
	Notes             []string
	CreatedAt         time.Time
	Lines             []QuoteLine
}

// QuoteLine is one priced line of a quote. Name and unit price are snapshots
// taken from the catalog at creation time, deliberately decoupled from later
// catalog changes.
type QuoteLine struct {
	QuoteID    string
	LineNumber int
	SKU        string
	Name       string
	Qty        int
	UnitPrice  float64
	LineTotal  float64
	Attributes map[string]any
}

// totalsTolerance bounds the float drift accepted between a stored total and
// the recomputed sum of its parts.
const totalsTolerance = 1e-6

// ValidateQuote checks the internal consistency of a fully built quote:
// contiguous 1-based line numbers, per-line totals, and the list total.
func ValidateQuote(q *Quote) error {
	if q == nil {
		return fmt.Errorf("quote cannot be nil")
	}

	if q.ID == "" {
		return fmt.Errorf("quote ID is required")
	}

	if q.CustomerRef == "" {
		return fmt.Errorf("quote customer reference is required")
	}

	if len(q.Lines) == 0 {
		return fmt.Errorf("quote must have at least one line")
	}

	sum := 0.0
	for i, line := range q.Lines {
		if line.LineNumber != i+1 {
			return fmt.Errorf("line %d has line number %d, expected %d", i+1, line.LineNumber, i+1)
		}
		if line.SKU == "" {
			return fmt.Errorf("line %d: SKU is required", i+1)
		}
		if line.Qty <= 0 {
			return fmt.Errorf("line %d: quantity must be positive", i+1)
		}
		if line.UnitPrice < 0 {
			return fmt.Errorf("line %d: unit price cannot be negative", i+1)
		}
		if math.Abs(line.LineTotal-line.UnitPrice*float64(line.Qty)) > totalsTolerance {
			return fmt.Errorf("line %d: line total %v does not match unit price x qty", i+1, line.LineTotal)
		}
		sum += line.LineTotal
	}

	if math.Abs(sum-q.ListTotal) > totalsTolerance {
		return fmt.Errorf("list total %v does not match sum of line totals %v", q.ListTotal, sum)
	}

	return nil
}
