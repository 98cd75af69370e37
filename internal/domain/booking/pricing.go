package booking

// DefaultPlatformFeePercent is the surcharge added on top of the service price.
const DefaultPlatformFeePercent = 10

// Pricing is the derived price breakdown of a draft, in whole currency units.
// TotalAmount == BasePrice + PlatformFee - Discount always holds.
type Pricing struct {
	BasePrice   int64 `json:"base_price"`
	PlatformFee int64 `json:"platform_fee"`
	Discount    int64 `json:"discount"`
	TotalAmount int64 `json:"total_amount"`
}

// IsZero reports whether nothing has been priced yet.
func (p Pricing) IsZero() bool {
	return p == Pricing{}
}

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the price breakdown for the given parameters.
	Calculate(params PricingParams) Pricing
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	BasePrice int64
	Discount  int64
}

// StandardPricingStrategy charges a fixed percentage platform fee.
type StandardPricingStrategy struct {
	feePercent int64
}

// NewStandardPricingStrategy creates a StandardPricingStrategy with the 10% fee.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{feePercent: DefaultPlatformFeePercent}
}

// NewPricingStrategyWithFee creates a StandardPricingStrategy with a custom fee.
func NewPricingStrategyWithFee(feePercent int64) *StandardPricingStrategy {
	if feePercent < 0 {
		feePercent = 0
	}
	return &StandardPricingStrategy{feePercent: feePercent}
}

// Calculate computes the breakdown.
//
// Pricing formula:
//   - Platform fee: round(base * fee%), halves round up
//   - Discount: clamped to [0, base + fee]; no promotions exist, callers pass 0
//   - Total: base + fee - discount
//
// A non-positive base price (no service selected) prices to all zeros.
func (s *StandardPricingStrategy) Calculate(params PricingParams) Pricing {
	if params.BasePrice <= 0 {
		return Pricing{}
	}

	fee := roundPercent(params.BasePrice, s.feePercent)

	discount := params.Discount
	if discount < 0 {
		discount = 0
	}
	if discount > params.BasePrice+fee {
		discount = params.BasePrice + fee
	}

	return Pricing{
		BasePrice:   params.BasePrice,
		PlatformFee: fee,
		Discount:    discount,
		TotalAmount: params.BasePrice + fee - discount,
	}
}

// roundPercent returns round(amount * percent / 100) for non-negative inputs.
func roundPercent(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}
