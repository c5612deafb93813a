// internal/domain/checkout/payment.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrPaymentDeclined    = errors.New("payment was declined")
	ErrPaymentUnavailable = errors.New("payment service is temporarily unavailable")
)

// DeclinedTestCard is always declined by the simulated gateway
const DeclinedTestCard = "4000 0000 0000 0002"

// Charge is a payment request
type Charge struct {
	Reference  string
	Amount     decimal.Decimal
	Currency   string
	NameOnCard string
	CardNumber string
	Expiry     string
}

// Receipt is the gateway's answer to a successful charge
type Receipt struct {
	TransactionID string
	ProcessedAt   time.Time
}

// PaymentGateway charges a card
type PaymentGateway interface {
	Charge(ctx context.Context, charge Charge) (*Receipt, error)
}

// SimulatedGateway approves every card except the declined test card after a fixed delay
type SimulatedGateway struct {
	delay time.Duration
	now   func() time.Time
}

// NewSimulatedGateway creates the simulated gateway
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{delay: delay, now: time.Now}
}

// Charge waits out the processing delay, honouring ctx cancellation. Every approved charge
// gets its own transaction ID.
func (g *SimulatedGateway) Charge(ctx context.Context, charge Charge) (*Receipt, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	if normalizeCard(charge.CardNumber) == normalizeCard(DeclinedTestCard) {
		return nil, ErrPaymentDeclined
	}

	return &Receipt{
		TransactionID: "txn_" + uuid.NewString(),
		ProcessedAt:   g.now(),
	}, nil
}

func normalizeCard(number string) string {
	out := make([]rune, 0, len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}

// BreakerGateway guards a gateway with a circuit breaker.
// Declines are business outcomes and do not count as failures.
type BreakerGateway struct {
	next    PaymentGateway
	breaker *gobreaker.CircuitBreaker[*Receipt]
}

// NewBreakerGateway wraps next; the breaker opens after maxFailures consecutive failures
func NewBreakerGateway(next PaymentGateway, maxFailures uint32, openFor time.Duration, logger *logrus.Entry) *BreakerGateway {
	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPaymentDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("payment circuit breaker changed state")
		},
	}

	return &BreakerGateway{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*Receipt](settings),
	}
}

// Charge forwards to the wrapped gateway unless the breaker is open
func (b *BreakerGateway) Charge(ctx context.Context, charge Charge) (*Receipt, error) {
	receipt, err := b.breaker.Execute(func() (*Receipt, error) {
		return b.next.Charge(ctx, charge)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	return receipt, err
}

// State exposes the breaker state for readiness reporting
func (b *BreakerGateway) State() string {
	return b.breaker.State().String()
}
