// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrNoConfirmation       = errors.New("no order awaiting confirmation")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// StatusFilterAll selects every status in history queries
const StatusFilterAll = "all"

// ParseStatus validates a status name
func ParseStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Order represents a placed order
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:20" json:"order_number"`
	UserID      string      `gorm:"index;size:255" json:"user_id,omitempty"` // Identity subject, empty for guests
	SessionID   string      `gorm:"index;size:64" json:"-"`
	Status      OrderStatus `gorm:"not null;size:20;default:'processing'" json:"status"`

	// Financial Information
	SubtotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"discount_amount"`
	ShippingAmount decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"shipping_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency       string          `gorm:"size:3;default:'USD'" json:"currency"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	PaymentMethod  string `gorm:"size:50" json:"payment_method"` // Masked card
	TransactionID  string `gorm:"size:100" json:"-"`
	TrackingNumber string `gorm:"size:100" json:"tracking_number,omitempty"`

	EstimatedDelivery time.Time      `json:"estimated_delivery"`
	PlacedAt          time.Time      `gorm:"index" json:"placed_at"`
	ShippedAt         *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents items in an order
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Title      string          `gorm:"not null;size:255" json:"title"`
	Image      string          `gorm:"size:255" json:"image"`
	Size       string          `gorm:"size:20" json:"size"`
	Color      string          `gorm:"size:20" json:"color"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"` // Quantity * UnitPrice
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderStatusHistory is one tracking event
type OrderStatusHistory struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderID     uint        `gorm:"not null;index" json:"order_id"`
	Status      OrderStatus `gorm:"not null;size:20" json:"status"`
	Label       string      `gorm:"size:50" json:"label"`
	Location    string      `gorm:"size:255" json:"location"`
	Description string      `gorm:"type:text" json:"description"`
	CreatedBy   string      `gorm:"size:255" json:"created_by,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

// Address is the shipping contact embedded in Order
type Address struct {
	Name    string `gorm:"size:255" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:255" json:"address"`
	City    string `gorm:"size:100" json:"city"`
}

// Line renders the address on one line
func (a Address) Line() string {
	if a.City == "" {
		return a.Address
	}
	return fmt.Sprintf("%s, %s", a.Address, a.City)
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// Business methods for Order

// GenerateOrderNumber formats the order number of an order placed at t
func GenerateOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%06d", t.UnixMilli()%1_000_000)
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// AddStatusHistory adds a new tracking event
func (o *Order) AddStatusHistory(event OrderStatusHistory) {
	event.OrderID = o.ID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	o.StatusHistory = append(o.StatusHistory, event)
}

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {
		OrderStatusShipped,
		OrderStatusCancelled,
	},
	OrderStatusShipped: {
		OrderStatusShipped, // In transit scan
		OrderStatusDelivered,
	},
}

// CanTransition reports whether the order may move to status
func (o *Order) CanTransition(to OrderStatus) bool {
	for _, status := range validTransitions[o.Status] {
		if status == to {
			return true
		}
	}
	return false
}

// eventLabel is the tracking label of a status change
func eventLabel(from, to OrderStatus) string {
	switch to {
	case OrderStatusProcessing:
		return "Order Processed"
	case OrderStatusShipped:
		if from == OrderStatusShipped {
			return "In Transit"
		}
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	}
	return string(to)
}

// Snapshot is what the confirmation page shows right after placement
type Snapshot struct {
	OrderNumber       string            `json:"order_number"`
	OrderDate         string            `json:"order_date"`
	Total             string            `json:"total"`
	Items             []SnapshotItem    `json:"items"`
	ShippingAddress   SnapshotAddress   `json:"shipping_address"`
	PaymentMethod     string            `json:"payment_method"`
	EstimatedDelivery string            `json:"estimated_delivery"`
	Summary           map[string]string `json:"summary,omitempty"`
}

// SnapshotItem is one line of the snapshot
type SnapshotItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"` // Line price
}

// SnapshotAddress is the shipping name and address line
type SnapshotAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// DisplayDate is the long date format used on customer facing pages
const DisplayDate = "January 2, 2006"

// FormatMoney renders an amount with the currency symbol
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" || currency == "USD" {
		return "$" + amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}

// NewSnapshot builds the confirmation snapshot of an order
func NewSnapshot(o *Order) *Snapshot {
	items := make([]SnapshotItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, SnapshotItem{
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    FormatMoney(item.TotalPrice, o.Currency),
		})
	}

	return &Snapshot{
		OrderNumber: o.OrderNumber,
		OrderDate:   o.PlacedAt.Format(DisplayDate),
		Total:       FormatMoney(o.TotalAmount, o.Currency),
		Items:       items,
		ShippingAddress: SnapshotAddress{
			Name:    o.ShippingAddress.Name,
			Address: o.ShippingAddress.Line(),
		},
		PaymentMethod:     o.PaymentMethod,
		EstimatedDelivery: o.EstimatedDelivery.Format(DisplayDate),
		Summary: map[string]string{
			"subtotal":     FormatMoney(o.SubtotalAmount, o.Currency),
			"discount":     FormatMoney(o.DiscountAmount, o.Currency),
			"shipping_fee": FormatMoney(o.ShippingAmount, o.Currency),
			"total":        FormatMoney(o.TotalAmount, o.Currency),
		},
	}
}

// Tracking is the public tracking view of an order
type Tracking struct {
	OrderNumber       string          `json:"order_number"`
	Status            OrderStatus     `json:"status"`
	StatusLabel       string          `json:"status_label"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	EstimatedDelivery string          `json:"estimated_delivery"`
	CurrentLocation   string          `json:"current_location"`
	Events            []TrackingEvent `json:"events"`
}

// TrackingEvent is one entry of the tracking timeline
type TrackingEvent struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// NewTracking builds the timeline, newest event first
func NewTracking(o *Order) *Tracking {
	events := make([]TrackingEvent, 0, len(o.StatusHistory))
	for i := len(o.StatusHistory) - 1; i >= 0; i-- {
		h := o.StatusHistory[i]
		events = append(events, TrackingEvent{
			Date:        h.CreatedAt.Format("Jan 2, 2006"),
			Time:        h.CreatedAt.Format("3:04 PM"),
			Status:      h.Label,
			Location:    h.Location,
			Description: h.Description,
		})
	}

	tracking := &Tracking{
		OrderNumber:       o.OrderNumber,
		Status:            o.Status,
		StatusLabel:       eventLabel("", o.Status),
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery.Format(DisplayDate),
		Events:            events,
	}
	if len(events) > 0 {
		tracking.CurrentLocation = events[0].Location
		tracking.StatusLabel = events[0].Status
	}
	return tracking
}

// HistoryEntry is one row of the order history page
type HistoryEntry struct {
	OrderNumber    string             `json:"order_number"`
	Date           string             `json:"date"`
	Status         OrderStatus        `json:"status"`
	Total          string             `json:"total"`
	TrackingNumber string             `json:"tracking_number,omitempty"`
	Items          []HistoryEntryItem `json:"items"`
}

// HistoryEntryItem is a line of a history row
type HistoryEntryItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"` // Unit price
	Image    string `json:"image"`
}

// NewHistoryEntry renders an order for the history page
func NewHistoryEntry(o *Order) HistoryEntry {
	items := make([]HistoryEntryItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, HistoryEntryItem{
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    FormatMoney(item.UnitPrice, o.Currency),
			Image:    item.Image,
		})
	}

	return HistoryEntry{
		OrderNumber:    o.OrderNumber,
		Date:           o.PlacedAt.Format(DisplayDate),
		Status:         o.Status,
		Total:          FormatMoney(o.TotalAmount, o.Currency),
		TrackingNumber: o.TrackingNumber,
		Items:          items,
	}
}
