package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyOrder() *Order {
	placed := time.Date(2025, time.December, 20, 10, 0, 0, 0, time.UTC)
	return &Order{
		OrderNumber:       "ORD-789123",
		Status:            OrderStatusShipped,
		TotalAmount:       decimal.RequireFromString("137.95"),
		Currency:          "USD",
		TrackingNumber:    "1Z999AA1234567890",
		PlacedAt:          placed,
		EstimatedDelivery: placed.AddDate(0, 0, 7),
		Items: []OrderItem{
			{Title: "Adidas CoreFit T-Shirt", Quantity: 1, UnitPrice: decimal.RequireFromString("39.90"), TotalPrice: decimal.RequireFromString("39.90"), Image: "/products/1g.png"},
			{Title: "Nike Air Essentials Pullover", Quantity: 2, UnitPrice: decimal.RequireFromString("49.00"), TotalPrice: decimal.RequireFromString("98.00"), Image: "/products/3b.png"},
		},
	}
}

func TestNewHistoryEntry(t *testing.T) {
	entry := NewHistoryEntry(historyOrder())

	assert.Equal(t, "ORD-789123", entry.OrderNumber)
	assert.Equal(t, "December 20, 2025", entry.Date)
	assert.Equal(t, OrderStatusShipped, entry.Status)
	assert.Equal(t, "$137.95", entry.Total)
	assert.Equal(t, "1Z999AA1234567890", entry.TrackingNumber)

	require.Len(t, entry.Items, 2)
	assert.Equal(t, HistoryEntryItem{
		Title:    "Nike Air Essentials Pullover",
		Quantity: 2,
		Price:    "$49.00",
		Image:    "/products/3b.png",
	}, entry.Items[1])
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$10.00", FormatMoney(decimal.NewFromInt(10), ""))
	assert.Equal(t, "$0.50", FormatMoney(decimal.RequireFromString("0.5"), "USD"))
	assert.Equal(t, "EUR 12.30", FormatMoney(decimal.RequireFromString("12.3"), "EUR"))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.ok, o.CanTransition(tt.to))
		})
	}
}

func TestNewTrackingNewestFirst(t *testing.T) {
	o := historyOrder()
	base := o.PlacedAt
	o.AddStatusHistory(OrderStatusHistory{Status: OrderStatusProcessing, Label: "Order Processed", Location: "Warehouse", CreatedAt: base})
	o.AddStatusHistory(OrderStatusHistory{Status: OrderStatusShipped, Label: "In Transit", Location: "Chicago, IL", CreatedAt: base.Add(26 * time.Hour)})

	tracking := NewTracking(o)
	require.Len(t, tracking.Events, 2)
	assert.Equal(t, "In Transit", tracking.Events[0].Status)
	assert.Equal(t, "Dec 21, 2025", tracking.Events[0].Date)
	assert.Equal(t, "12:00 PM", tracking.Events[0].Time)
	assert.Equal(t, "Chicago, IL", tracking.CurrentLocation)
	assert.Equal(t, "In Transit", tracking.StatusLabel)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("delivered")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDelivered, status)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
