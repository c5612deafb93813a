package pdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

func receiptOrder() *order.Order {
	placed := time.Date(2025, time.December, 23, 10, 0, 0, 0, time.UTC)
	return &order.Order{
		OrderNumber:    "ORD-000123",
		Status:         order.OrderStatusShipped,
		SubtotalAmount: decimal.RequireFromString("169.70"),
		DiscountAmount: decimal.RequireFromString("16.97"),
		ShippingAmount: decimal.NewFromInt(10),
		TotalAmount:    decimal.RequireFromString("162.73"),
		Currency:       "USD",
		ShippingAddress: order.Address{
			Name:    "Jane Doe",
			Address: "1 Main St",
			City:    "Springfield",
		},
		PaymentMethod:     "•••• •••• •••• 4242",
		TrackingNumber:    "1ZABCDEF0123456789",
		PlacedAt:          placed,
		EstimatedDelivery: placed.AddDate(0, 0, 5),
		Items: []order.OrderItem{
			{Title: "Under Armour StormFleece", Size: "M", Color: "#000000", Quantity: 1,
				UnitPrice: decimal.RequireFromString("49.90"), TotalPrice: decimal.RequireFromString("49.90")},
			{Title: "Nike Air Max 270", Size: "42", Color: "#808080", Quantity: 2,
				UnitPrice: decimal.RequireFromString("59.90"), TotalPrice: decimal.RequireFromString("119.80")},
		},
	}
}

func TestRenderHTML(t *testing.T) {
	svc := NewService(config.AppConfig{StoreName: "TrendLama", SupportMail: "support@trendlama.com"})

	html, err := svc.RenderHTML(receiptOrder())
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "<title>Receipt ORD-000123</title>")
	assert.Contains(t, body, "TrendLama")
	assert.Contains(t, body, "December 23, 2025")
	assert.Contains(t, body, "December 28, 2025")
	assert.Contains(t, body, "SHIPPED")
	assert.Contains(t, body, "Jane Doe, 1 Main St, Springfield")
	assert.Contains(t, body, "1ZABCDEF0123456789")
	assert.Contains(t, body, "$119.80")
	assert.Contains(t, body, "-$16.97")
	assert.Contains(t, body, "$162.73")
}

func TestRenderHTMLWithoutTracking(t *testing.T) {
	svc := NewService(config.AppConfig{StoreName: "TrendLama"})
	o := receiptOrder()
	o.TrackingNumber = ""

	html, err := svc.RenderHTML(o)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<strong>Tracking</strong>")
}

func TestRenderHTMLEscapesInput(t *testing.T) {
	svc := NewService(config.AppConfig{StoreName: "TrendLama"})
	o := receiptOrder()
	o.ShippingAddress.Name = "<script>alert(1)</script>"

	html, err := svc.RenderHTML(o)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}
