package domain

import "fmt"

// PricingPolicy is the singleton pricing configuration read at quote-creation
// time. TransferDiscount is the fraction taken off the list total for bank
// transfer payment; InstallmentsMarkup is the fraction added for installment
// payment. The quote engine never mutates it.
type PricingPolicy struct {
	TransferDiscount   float64
	InstallmentsMarkup float64
}

// ValidatePricingPolicy validates a PricingPolicy instance
func ValidatePricingPolicy(p *PricingPolicy) error {
	if p == nil {
		return fmt.Errorf("pricing policy cannot be nil")
	}

	if p.TransferDiscount < 0 || p.TransferDiscount >= 1 {
		return fmt.Errorf("transfer discount must be in [0, 1): %v", p.TransferDiscount)
	}

	if p.InstallmentsMarkup < 0 {
		return fmt.Errorf("installments markup cannot be negative: %v", p.InstallmentsMarkup)
	}

	return nil
}

// TransferTotal applies the transfer discount to a list total.
func (p *PricingPolicy) TransferTotal(listTotal float64) float64 {
	return listTotal * (1 - p.TransferDiscount)
}

// InstallmentsTotal applies the installments markup to a list total.
func (p *PricingPolicy) InstallmentsTotal(listTotal float64) float64 {
	return listTotal * (1 + p.InstallmentsMarkup)
}
