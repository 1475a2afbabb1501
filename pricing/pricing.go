package pricing

import (
	"fmt"
	"math"

	"restaurant-ordering-api/errs"
)

const (
	// TaxRate is applied to the subtotal
	TaxRate = 0.0875
	// ServiceFeeRate is a percentage surcharge capped at ServiceFeeCap
	ServiceFeeRate = 0.05
	ServiceFeeCap  = 0.50
)

// Breakdown is the priced result of a checkout subtotal
type Breakdown struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	ServiceFee float64 `json:"service_fee"`
	Total      float64 `json:"total"`
}

// Compute derives tax, service fee and total from a subtotal. Pure
// function, no I/O. Negative subtotal is a caller error.
func Compute(subtotal float64) (Breakdown, error) {
	if subtotal < 0 {
		return Breakdown{}, fmt.Errorf("%w: subtotal must be non-negative", errs.ErrInvalidInput)
	}
	tax := round2(subtotal * TaxRate)
	serviceFee := round2(math.Min(subtotal*ServiceFeeRate, ServiceFeeCap))
	return Breakdown{
		Subtotal:   subtotal,
		Tax:        tax,
		ServiceFee: serviceFee,
		Total:      round2(subtotal + tax + serviceFee),
	}, nil
}

// round2 rounds to cents, half away from zero
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
