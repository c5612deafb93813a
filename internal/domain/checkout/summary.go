// internal/domain/checkout/summary.go
package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
)

// Pricing is the policy applied to a non-empty cart
type Pricing struct {
	DiscountRate decimal.Decimal
	ShippingFee  decimal.Decimal
	Currency     string
}

// PricingFromConfig builds the pricing policy from configuration
func PricingFromConfig(cfg config.PricingConfig) Pricing {
	return Pricing{
		DiscountRate: cfg.DiscountRate,
		ShippingFee:  cfg.ShippingFee,
		Currency:     cfg.Currency,
	}
}

// DefaultPricing is 10% off plus a flat shipping fee of 10
func DefaultPricing() Pricing {
	return Pricing{
		DiscountRate: decimal.NewFromFloat(0.10),
		ShippingFee:  decimal.NewFromInt(10),
		Currency:     "USD",
	}
}

// Summary is the computed order summary of a cart
type Summary struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Currency string
	Items    int
}

// MarshalJSON renders all amounts with two decimals
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal string `json:"subtotal"`
		Discount string `json:"discount"`
		Shipping string `json:"shipping_fee"`
		Total    string `json:"total"`
		Currency string `json:"currency"`
		Items    int    `json:"items"`
	}{
		Subtotal: s.Subtotal.StringFixed(2),
		Discount: s.Discount.StringFixed(2),
		Shipping: s.Shipping.StringFixed(2),
		Total:    s.Total.StringFixed(2),
		Currency: s.Currency,
		Items:    s.Items,
	})
}

// Empty reports whether the summary belongs to an empty cart
func (s Summary) Empty() bool {
	return s.Items == 0
}

// Calculate computes the summary of the given line items.
// Amounts are exact; rounding happens only when rendering.
func Calculate(items []cart.LineItem, pricing Pricing) (Summary, error) {
	summary := Summary{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
		Currency: pricing.Currency,
	}

	for _, item := range items {
		line, err := item.LineTotal()
		if err != nil {
			return Summary{}, fmt.Errorf("failed to price %s: %w", item.Key(), err)
		}
		summary.Subtotal = summary.Subtotal.Add(line)
		summary.Items += item.Quantity
	}

	if len(items) == 0 {
		return summary, nil
	}

	summary.Discount = summary.Subtotal.Mul(pricing.DiscountRate)
	summary.Shipping = pricing.ShippingFee
	summary.Total = summary.Subtotal.Sub(summary.Discount).Add(summary.Shipping)

	return summary, nil
}
