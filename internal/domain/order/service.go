// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	placeAttempts   = 3
	warehouseOrigin = "New York, NY"
)

// Notifier is told about lifecycle events of an order. Calls must not block.
type Notifier interface {
	OrderPlaced(o *Order)
	StatusChanged(o *Order)
}

type nopNotifier struct{}

func (nopNotifier) OrderPlaced(*Order)   {}
func (nopNotifier) StatusChanged(*Order) {}

// Service handles order business logic
type Service struct {
	repo          Repository
	confirmations ConfirmationStore
	notifier      Notifier
	deliveryDays  int
	logger        *logrus.Entry
	now           func() time.Time
}

// NewService creates a new order service
func NewService(repo Repository, confirmations ConfirmationStore, deliveryDays int, logger *logrus.Entry) *Service {
	return &Service{
		repo:          repo,
		confirmations: confirmations,
		notifier:      nopNotifier{},
		deliveryDays:  deliveryDays,
		logger:        logger,
		now:           time.Now,
	}
}

// WithNotifier sets the receiver of order lifecycle events
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// PlaceRequest is a paid checkout ready to be recorded
type PlaceRequest struct {
	SessionID     string
	UserID        string
	Contact       Address
	Items         []ItemInput
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	Currency      string
	PaymentMethod string
	TransactionID string
}

// ItemInput is one priced line of a checkout
type ItemInput struct {
	ProductID uint
	Title     string
	Image     string
	Size      string
	Color     string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status      OrderStatus `json:"status" binding:"required"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
}

// Place records the order in history and stores its confirmation snapshot
func (s *Service) Place(ctx context.Context, req *PlaceRequest) (*Order, *Snapshot, error) {
	placedAt := s.now().UTC()

	o := &Order{
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		Status:         OrderStatusProcessing,
		SubtotalAmount: req.Subtotal,
		DiscountAmount: req.Discount,
		ShippingAmount: req.Shipping,
		TotalAmount:    req.Total,
		Currency:       req.Currency,
		ShippingAddress: Address{
			Name:    req.Contact.Name,
			Email:   req.Contact.Email,
			Phone:   req.Contact.Phone,
			Address: req.Contact.Address,
			City:    req.Contact.City,
		},
		PaymentMethod:     req.PaymentMethod,
		TransactionID:     req.TransactionID,
		TrackingNumber:    newTrackingNumber(),
		EstimatedDelivery: placedAt.AddDate(0, 0, s.deliveryDays),
		PlacedAt:          placedAt,
	}

	for _, item := range req.Items {
		o.Items = append(o.Items, OrderItem{
			ProductID:  item.ProductID,
			Title:      item.Title,
			Image:      item.Image,
			Size:       item.Size,
			Color:      item.Color,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.LineTotal,
			CreatedAt:  placedAt,
		})
	}

	o.AddStatusHistory(OrderStatusHistory{
		Status:      OrderStatusProcessing,
		Label:       eventLabel("", OrderStatusProcessing),
		Location:    warehouseOrigin,
		Description: "Your order has been processed and is ready for shipment",
		CreatedBy:   req.UserID,
		CreatedAt:   placedAt,
	})

	if err := s.create(ctx, o, placedAt); err != nil {
		return nil, nil, err
	}

	snapshot := NewSnapshot(o)
	if err := s.confirmations.Save(ctx, req.SessionID, snapshot); err != nil {
		s.logger.WithError(err).WithField("order_number", o.OrderNumber).Warn("failed to store order confirmation")
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": o.OrderNumber,
		"session_id":   req.SessionID,
		"total":        o.TotalAmount.StringFixed(2),
	}).Info("order placed")
	s.notifier.OrderPlaced(o)

	return o, snapshot, nil
}

// create assigns the order number, retrying on the rare collision of the millisecond suffix
func (s *Service) create(ctx context.Context, o *Order, placedAt time.Time) error {
	var err error
	for attempt := 0; attempt < placeAttempts; attempt++ {
		o.OrderNumber = GenerateOrderNumber(placedAt.Add(time.Duration(attempt) * time.Millisecond))
		err = s.repo.Create(ctx, o)
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			return err
		}
	}
	return err
}

// Confirmation returns the pending snapshot of the session once
func (s *Service) Confirmation(ctx context.Context, sessionID string) (*Snapshot, error) {
	if sessionID == "" {
		return nil, ErrNoConfirmation
	}
	return s.confirmations.Take(ctx, sessionID)
}

// History lists a user's orders filtered by status ("all" or empty for every status)
func (s *Service) History(ctx context.Context, userID, status string) ([]Order, error) {
	var filter OrderStatus
	if status != "" && status != StatusFilterAll {
		parsed, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}

	return s.repo.ListByUser(ctx, userID, filter)
}

// GetForUser returns an order owned by userID; other users' orders read as not found
func (s *Service) GetForUser(ctx context.Context, orderNumber, userID string) (*Order, error) {
	o, err := s.repo.GetByNumber(ctx, normalizeNumber(orderNumber))
	if err != nil {
		return nil, err
	}
	if o.UserID == "" || o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// Track returns the public tracking timeline of an order
func (s *Service) Track(ctx context.Context, orderNumber string) (*Tracking, error) {
	o, err := s.repo.GetByNumber(ctx, normalizeNumber(orderNumber))
	if err != nil {
		return nil, err
	}
	return NewTracking(o), nil
}

// UpdateStatus moves an order along its lifecycle and records a tracking event
func (s *Service) UpdateStatus(ctx context.Context, orderNumber string, req *UpdateStatusRequest, actor string) (*Order, error) {
	to, err := ParseStatus(string(req.Status))
	if err != nil {
		return nil, err
	}

	o, err := s.repo.GetByNumber(ctx, normalizeNumber(orderNumber))
	if err != nil {
		return nil, err
	}

	if !o.CanTransition(to) {
		return nil, fmt.Errorf("%w from %s to %s", ErrInvalidTransition, o.Status, to)
	}

	now := s.now().UTC()
	from := o.Status
	o.Status = to
	switch to {
	case OrderStatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	}

	event := OrderStatusHistory{
		OrderID:     o.ID,
		Status:      to,
		Label:       eventLabel(from, to),
		Location:    req.Location,
		Description: req.Description,
		CreatedBy:   actor,
		CreatedAt:   now,
	}
	if event.Description == "" {
		event.Description = defaultDescription(event.Label)
	}

	if err := s.repo.UpdateStatus(ctx, o, event); err != nil {
		return nil, err
	}
	o.StatusHistory = append(o.StatusHistory, event)

	s.logger.WithFields(logrus.Fields{
		"order_number": o.OrderNumber,
		"from":         from,
		"to":           to,
		"actor":        actor,
	}).Info("order status updated")
	s.notifier.StatusChanged(o)

	return o, nil
}

func defaultDescription(label string) string {
	switch label {
	case "Shipped":
		return "Package has been shipped from our warehouse"
	case "In Transit":
		return "Package is in transit to the next facility"
	case "Delivered":
		return "Package has been delivered"
	case "Cancelled":
		return "Order has been cancelled"
	}
	return label
}

func normalizeNumber(orderNumber string) string {
	return strings.ToUpper(strings.TrimSpace(orderNumber))
}

func newTrackingNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "1Z" + raw[:16]
}
