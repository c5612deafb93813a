// internal/domain/checkout/step.go
package checkout

import (
	"errors"
	"strconv"
)

// Step is a position in the checkout flow
type Step int

const (
	StepCart     Step = 1
	StepShipping Step = 2
	StepPayment  Step = 3

	FirstStep = StepCart
	LastStep  = StepPayment
)

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrShippingIncomplete = errors.New("shipping details have not been validated")
	ErrOrderInProgress    = errors.New("an order is already being placed for this session")
	ErrLastStep           = errors.New("already at the last step")
	ErrFirstStep          = errors.New("already at the first step")
)

var stepLabels = map[Step]string{
	StepCart:     "Shopping Cart",
	StepShipping: "Shipping Address",
	StepPayment:  "Payment Method",
}

// ParseStep reads the step query parameter. Absent or unparsable values mean the first step,
// anything else is clamped to the valid range.
func ParseStep(raw string) Step {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return FirstStep
	}
	return clamp(Step(n))
}

func clamp(s Step) Step {
	if s < FirstStep {
		return FirstStep
	}
	if s > LastStep {
		return LastStep
	}
	return s
}

// Label returns the display label of the step
func (s Step) Label() string {
	return stepLabels[clamp(s)]
}

// StepInfo describes one step for the progress indicator
type StepInfo struct {
	ID        Step   `json:"id"`
	Label     string `json:"label"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}

// Steps returns the progress indicator as seen from the current step
func Steps(current Step) []StepInfo {
	current = clamp(current)
	steps := make([]StepInfo, 0, int(LastStep))
	for s := FirstStep; s <= LastStep; s++ {
		steps = append(steps, StepInfo{
			ID:        s,
			Label:     s.Label(),
			Active:    s == current,
			Completed: s < current,
		})
	}
	return steps
}

// Guards is what the flow needs to know to decide whether a step can be left
type Guards struct {
	CartEmpty         bool
	ShippingValidated bool
}

// Transition is the result of a navigation attempt
type Transition struct {
	From    Step   `json:"from"`
	To      Step   `json:"to"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`

	err error
}

// Err returns the reason a transition was blocked, or nil
func (t Transition) Err() error {
	return t.err
}

func blocked(from Step, err error) Transition {
	return Transition{From: from, To: from, Allowed: false, Reason: err.Error(), err: err}
}

// Advance moves one step forward when the guards of the current step hold
func Advance(from Step, g Guards) Transition {
	from = clamp(from)

	if from == LastStep {
		return blocked(from, ErrLastStep)
	}
	if err := g.check(from); err != nil {
		return blocked(from, err)
	}

	return Transition{From: from, To: from + 1, Allowed: true}
}

// Retreat moves one step back
func Retreat(from Step) Transition {
	from = clamp(from)

	if from == FirstStep {
		return blocked(from, ErrFirstStep)
	}
	return Transition{From: from, To: from - 1, Allowed: true}
}

// CanAdvance reports whether Advance would be allowed
func CanAdvance(from Step, g Guards) bool {
	return Advance(from, g).Allowed
}

func (g Guards) check(leaving Step) error {
	switch leaving {
	case StepCart:
		if g.CartEmpty {
			return ErrCartEmpty
		}
	case StepShipping:
		if g.CartEmpty {
			return ErrCartEmpty
		}
		if !g.ShippingValidated {
			return ErrShippingIncomplete
		}
	}
	return nil
}
