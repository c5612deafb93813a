// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// ConfirmationRoute is where the client goes after a successful payment
const ConfirmationRoute = "/order-confirmation"

// Carts hands out the hydrated cart of a session
type Carts interface {
	Store(ctx context.Context, sessionID string) (*cart.Store, error)
}

// OrderPlacer records paid orders
type OrderPlacer interface {
	Place(ctx context.Context, req *order.PlaceRequest) (*order.Order, *order.Snapshot, error)
}

// Service handles checkout business logic
type Service struct {
	carts     Carts
	drafts    DraftStore
	orders    OrderPlacer
	gateway   PaymentGateway
	validator *Validator
	pricing   Pricing
	logger    *logrus.Entry

	// session IDs with a PlaceOrder in flight
	placing sync.Map
}

// NewService creates a new checkout service
func NewService(carts Carts, drafts DraftStore, orders OrderPlacer, gateway PaymentGateway, pricing Pricing, logger *logrus.Entry) *Service {
	return &Service{
		carts:     carts,
		drafts:    drafts,
		orders:    orders,
		gateway:   gateway,
		validator: NewValidator(),
		pricing:   pricing,
		logger:    logger,
	}
}

// State is everything a checkout page needs to render one step
type State struct {
	Step       Step            `json:"step"`
	Label      string          `json:"label"`
	Steps      []StepInfo      `json:"steps"`
	Items      []cart.LineItem `json:"items"`
	Summary    Summary         `json:"summary"`
	Hydrated   bool            `json:"hydrated"`
	Shipping   *ShippingForm   `json:"shipping,omitempty"`
	CanAdvance bool            `json:"can_advance"`
	CanRetreat bool            `json:"can_retreat"`
}

// NavigationResult is a transition plus the state it lands on
type NavigationResult struct {
	Transition Transition `json:"transition"`
	State      *State     `json:"state"`
}

// PlaceOrderResult is returned after a successful payment
type PlaceOrderResult struct {
	Order    *order.Snapshot `json:"order"`
	Redirect string          `json:"redirect"`
}

// GetState returns the checkout state at step
func (s *Service) GetState(ctx context.Context, sessionID string, step Step) (*State, error) {
	step = clamp(step)

	store, err := s.carts.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items := store.Items()

	summary, err := Calculate(items, s.pricing)
	if err != nil {
		return nil, err
	}

	shipping, err := s.shippingDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	guards := Guards{CartEmpty: len(items) == 0, ShippingValidated: shipping != nil}

	return &State{
		Step:       step,
		Label:      step.Label(),
		Steps:      Steps(step),
		Items:      items,
		Summary:    summary,
		Hydrated:   store.Hydrated(),
		Shipping:   shipping,
		CanAdvance: CanAdvance(step, guards),
		CanRetreat: step > FirstStep,
	}, nil
}

// Advance tries to move forward from step
func (s *Service) Advance(ctx context.Context, sessionID string, step Step) (*NavigationResult, error) {
	state, err := s.GetState(ctx, sessionID, step)
	if err != nil {
		return nil, err
	}

	t := Advance(state.Step, Guards{
		CartEmpty:         len(state.Items) == 0,
		ShippingValidated: state.Shipping != nil,
	})
	return s.land(ctx, sessionID, t, state)
}

// Retreat moves back from step
func (s *Service) Retreat(ctx context.Context, sessionID string, step Step) (*NavigationResult, error) {
	state, err := s.GetState(ctx, sessionID, step)
	if err != nil {
		return nil, err
	}
	return s.land(ctx, sessionID, Retreat(state.Step), state)
}

func (s *Service) land(ctx context.Context, sessionID string, t Transition, current *State) (*NavigationResult, error) {
	if !t.Allowed {
		return &NavigationResult{Transition: t, State: current}, nil
	}

	next, err := s.GetState(ctx, sessionID, t.To)
	if err != nil {
		return nil, err
	}
	return &NavigationResult{Transition: t, State: next}, nil
}

// SubmitShipping validates the shipping form, stores it and advances to payment
func (s *Service) SubmitShipping(ctx context.Context, sessionID string, form *ShippingForm) (*NavigationResult, error) {
	if err := s.validator.Shipping(form); err != nil {
		return nil, err
	}

	if err := s.drafts.SaveShipping(ctx, sessionID, form); err != nil {
		return nil, err
	}

	return s.Advance(ctx, sessionID, StepShipping)
}

// PlaceOrder charges the payment and records the order. Only one placement runs per session;
// a second call while the first is in flight gets ErrOrderInProgress. The ordered lines and the
// shipping draft are only cleared once the order exists; any earlier failure leaves both
// untouched.
func (s *Service) PlaceOrder(ctx context.Context, sessionID, userID string, form *PaymentForm) (*PlaceOrderResult, error) {
	if err := s.validator.Payment(form); err != nil {
		return nil, err
	}

	if _, busy := s.placing.LoadOrStore(sessionID, struct{}{}); busy {
		return nil, ErrOrderInProgress
	}
	defer s.placing.Delete(sessionID)

	store, err := s.carts.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items := store.Items()
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	shipping, err := s.shippingDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if shipping == nil {
		return nil, ErrShippingIncomplete
	}

	summary, err := Calculate(items, s.pricing)
	if err != nil {
		return nil, err
	}

	reference := sessionID
	if len(reference) > 8 {
		reference = reference[:8]
	}
	receipt, err := s.gateway.Charge(ctx, Charge{
		Reference:  reference,
		Amount:     summary.Total,
		Currency:   summary.Currency,
		NameOnCard: form.NameOnCard,
		CardNumber: form.CardNumber,
		Expiry:     form.ExpirationDate,
	})
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("payment failed")
		return nil, err
	}

	req, err := placeRequest(sessionID, userID, items, shipping, summary)
	if err != nil {
		return nil, err
	}
	req.PaymentMethod = form.MaskedCard()
	req.TransactionID = receipt.TransactionID

	_, snapshot, err := s.orders.Place(ctx, req)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"session_id":     sessionID,
			"transaction_id": receipt.TransactionID,
		}).Error("payment captured but order could not be recorded")
		return nil, err
	}

	// Lines added while the charge was running stay in the cart
	store.Deduct(ctx, items)
	if err := s.drafts.DeleteShipping(ctx, sessionID); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("failed to delete shipping draft")
	}

	return &PlaceOrderResult{Order: snapshot, Redirect: ConfirmationRoute}, nil
}

func (s *Service) shippingDraft(ctx context.Context, sessionID string) (*ShippingForm, error) {
	form, err := s.drafts.GetShipping(ctx, sessionID)
	if errors.Is(err, ErrNoDraft) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return form, nil
}

func placeRequest(sessionID, userID string, items []cart.LineItem, shipping *ShippingForm, summary Summary) (*order.PlaceRequest, error) {
	req := &order.PlaceRequest{
		SessionID: sessionID,
		UserID:    userID,
		Contact: order.Address{
			Name:    shipping.Name,
			Email:   shipping.Email,
			Phone:   shipping.Phone,
			Address: shipping.Address,
			City:    shipping.City,
		},
		Subtotal: summary.Subtotal,
		Discount: summary.Discount,
		Shipping: summary.Shipping,
		Total:    summary.Total,
		Currency: summary.Currency,
	}

	for _, item := range items {
		price, err := item.UnitPrice()
		if err != nil {
			return nil, err
		}
		line, err := item.LineTotal()
		if err != nil {
			return nil, fmt.Errorf("failed to price %s: %w", item.Key(), err)
		}
		req.Items = append(req.Items, order.ItemInput{
			ProductID: item.ID,
			Title:     item.Title,
			Image:     item.ImageFor(item.SelectedColor),
			Size:      item.SelectedSize,
			Color:     item.SelectedColor,
			Quantity:  item.Quantity,
			UnitPrice: price,
			LineTotal: line,
		})
	}
	return req, nil
}
