package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

type recordingPlacer struct {
	mu       sync.Mutex
	requests []*order.PlaceRequest
	err      error
}

func (p *recordingPlacer) Place(_ context.Context, req *order.PlaceRequest) (*order.Order, *order.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, nil, p.err
	}
	p.requests = append(p.requests, req)
	o := &order.Order{
		OrderNumber:     "ORD-000042",
		TotalAmount:     req.Total,
		SubtotalAmount:  req.Subtotal,
		Currency:        req.Currency,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.Contact,
		PlacedAt:        time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC),
	}
	return o, order.NewSnapshot(o), nil
}

// heldGateway parks every charge until release is closed
type heldGateway struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newHeldGateway() *heldGateway {
	return &heldGateway{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *heldGateway) Charge(ctx context.Context, _ Charge) (*Receipt, error) {
	g.calls.Add(1)
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
		return &Receipt{TransactionID: "txn_held", ProcessedAt: time.Now()}, nil
	case <-ctx.Done():
		return nil, ErrPaymentUnavailable
	}
}

type fixture struct {
	svc     *Service
	carts   *cart.Service
	drafts  *RedisDraftStore
	placer  *recordingPlacer
	gateway *flakyGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	_, client := newTestRedis(t)
	log := logger.Discard().WithField("test", t.Name())

	catalog, err := product.NewCatalog(product.DefaultProducts())
	require.NoError(t, err)

	sessions := cart.NewSessions(cart.NewRedisPersister(client, time.Hour), log, time.Hour)
	carts := cart.NewService(sessions, catalog, log)
	drafts := NewRedisDraftStore(client, time.Hour)
	placer := &recordingPlacer{}
	gateway := &flakyGateway{}

	return &fixture{
		svc:     NewService(carts, drafts, placer, gateway, DefaultPricing(), log),
		carts:   carts,
		drafts:  drafts,
		placer:  placer,
		gateway: gateway,
	}
}

func (f *fixture) fillCart(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, sessionID, &cart.AddItemRequest{ProductID: 1, Size: "M", Color: "#FF0000"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = f.carts.AddItem(ctx, sessionID, &cart.AddItemRequest{ProductID: 2, Size: "42", Color: "#808080"})
		require.NoError(t, err)
	}
}

func TestGetState_EmptyCart(t *testing.T) {
	f := newFixture(t)

	state, err := f.svc.GetState(context.Background(), "abc", StepCart)
	require.NoError(t, err)

	assert.Equal(t, StepCart, state.Step)
	assert.True(t, state.Hydrated)
	assert.Empty(t, state.Items)
	assert.True(t, state.Summary.Total.IsZero())
	assert.False(t, state.CanAdvance)
	assert.False(t, state.CanRetreat)
}

func TestAdvance_BlockedOnEmptyCart(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Advance(context.Background(), "abc", StepCart)
	require.NoError(t, err)

	assert.False(t, res.Transition.Allowed)
	assert.ErrorIs(t, res.Transition.Err(), ErrCartEmpty)
	assert.Equal(t, StepCart, res.State.Step)
}

func TestAdvance_ShippingRequiresValidForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "abc")

	res, err := f.svc.Advance(ctx, "abc", StepCart)
	require.NoError(t, err)
	require.True(t, res.Transition.Allowed)
	assert.Equal(t, StepShipping, res.State.Step)
	assert.Equal(t, "162.73", res.State.Summary.Total.StringFixed(2))

	res, err = f.svc.Advance(ctx, "abc", StepShipping)
	require.NoError(t, err)
	assert.False(t, res.Transition.Allowed)
	assert.ErrorIs(t, res.Transition.Err(), ErrShippingIncomplete)

	form := validShipping()
	form.Email = "nope"
	_, err = f.svc.SubmitShipping(ctx, "abc", form)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	state, err := f.svc.GetState(ctx, "abc", StepShipping)
	require.NoError(t, err)
	assert.Nil(t, state.Shipping, "an invalid form is never stored")
	assert.False(t, state.CanAdvance)

	res, err = f.svc.SubmitShipping(ctx, "abc", validShipping())
	require.NoError(t, err)
	assert.True(t, res.Transition.Allowed)
	assert.Equal(t, StepPayment, res.State.Step)
	assert.Equal(t, validShipping(), res.State.Shipping)
}

func TestRetreat_FromPayment(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Retreat(context.Background(), "abc", StepPayment)
	require.NoError(t, err)

	assert.True(t, res.Transition.Allowed)
	assert.Equal(t, StepShipping, res.State.Step)
	assert.True(t, res.State.CanRetreat)
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "abc")
	_, err := f.svc.SubmitShipping(ctx, "abc", validShipping())
	require.NoError(t, err)

	res, err := f.svc.PlaceOrder(ctx, "abc", "user_1", validPayment())
	require.NoError(t, err)

	assert.Equal(t, ConfirmationRoute, res.Redirect)
	assert.Equal(t, "ORD-000042", res.Order.OrderNumber)
	assert.Equal(t, "•••• •••• •••• 4242", res.Order.PaymentMethod)
	assert.Equal(t, "Jane Doe", res.Order.ShippingAddress.Name)

	require.Len(t, f.placer.requests, 1)
	req := f.placer.requests[0]
	assert.Equal(t, "user_1", req.UserID)
	assert.Equal(t, "162.73", req.Total.StringFixed(2))
	assert.Equal(t, "123 Main St", req.Contact.Address)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "119.80", req.Items[1].LineTotal.StringFixed(2))

	count, err := f.carts.GetItemCount(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "placing an order clears the cart")

	_, err = f.drafts.GetShipping(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestPlaceOrder_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid payment form", func(t *testing.T) {
		f := newFixture(t)
		form := validPayment()
		form.ExpirationDate = "13/30"

		_, err := f.svc.PlaceOrder(ctx, "abc", "", form)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "expiration_date")
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.PlaceOrder(ctx, "abc", "", validPayment())

		assert.ErrorIs(t, err, ErrCartEmpty)
	})

	t.Run("missing shipping", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t, "abc")

		_, err := f.svc.PlaceOrder(ctx, "abc", "", validPayment())

		assert.ErrorIs(t, err, ErrShippingIncomplete)
		assert.Equal(t, int32(0), f.gateway.calls.Load())
	})
}

func TestPlaceOrder_PaymentFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "abc")
	_, err := f.svc.SubmitShipping(ctx, "abc", validShipping())
	require.NoError(t, err)
	f.gateway.err = ErrPaymentDeclined

	_, err = f.svc.PlaceOrder(ctx, "abc", "", validPayment())
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	count, err := f.carts.GetItemCount(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Empty(t, f.placer.requests)

	draft, err := f.drafts.GetShipping(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, validShipping(), draft)
}

func TestPlaceOrder_RecordFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "abc")
	_, err := f.svc.SubmitShipping(ctx, "abc", validShipping())
	require.NoError(t, err)
	f.placer.err = errors.New("database down")

	_, err = f.svc.PlaceOrder(ctx, "abc", "", validPayment())
	require.Error(t, err)

	count, err := f.carts.GetItemCount(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPlaceOrder_OnePlacementPerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "abc")
	_, err := f.svc.SubmitShipping(ctx, "abc", validShipping())
	require.NoError(t, err)
	gateway := newHeldGateway()
	f.svc.gateway = gateway

	type outcome struct {
		res *PlaceOrderResult
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := f.svc.PlaceOrder(ctx, "abc", "user_1", validPayment())
		first <- outcome{res, err}
	}()

	select {
	case <-gateway.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first placement never reached the gateway")
	}

	_, err = f.svc.PlaceOrder(ctx, "abc", "user_1", validPayment())
	assert.ErrorIs(t, err, ErrOrderInProgress)

	// Another session is not held up
	f.fillCart(t, "other")
	state, err := f.svc.GetState(ctx, "other", StepCart)
	require.NoError(t, err)
	assert.Len(t, state.Items, 2)

	close(gateway.release)
	var got outcome
	select {
	case got = <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("first placement did not finish")
	}
	require.NoError(t, got.err)
	assert.Equal(t, "ORD-000042", got.res.Order.OrderNumber)

	assert.Equal(t, int32(1), gateway.calls.Load())
	assert.Len(t, f.placer.requests, 1)

	// The cart is empty now, so a late retry cannot charge again
	_, err = f.svc.PlaceOrder(ctx, "abc", "user_1", validPayment())
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Equal(t, int32(1), gateway.calls.Load())
}

func TestPlaceOrder_KeepsItemsAddedDuringCharge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "abc")
	_, err := f.svc.SubmitShipping(ctx, "abc", validShipping())
	require.NoError(t, err)
	gateway := newHeldGateway()
	f.svc.gateway = gateway

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.PlaceOrder(ctx, "abc", "", validPayment())
		done <- err
	}()

	select {
	case <-gateway.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("placement never reached the gateway")
	}
	_, err = f.carts.AddItem(ctx, "abc", &cart.AddItemRequest{ProductID: 2, Size: "42", Color: "#808080"})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "abc", &cart.AddItemRequest{ProductID: 1, Size: "L", Color: "#000000"})
	require.NoError(t, err)

	close(gateway.release)
	require.NoError(t, <-done)

	require.Len(t, f.placer.requests, 1)
	assert.Equal(t, "162.73", f.placer.requests[0].Total.StringFixed(2))

	state, err := f.svc.GetState(ctx, "abc", StepCart)
	require.NoError(t, err)
	require.Len(t, state.Items, 2)
	assert.Equal(t, uint(2), state.Items[0].ID)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, "L", state.Items[1].SelectedSize)
}
