// internal/domain/checkout/validation.go
package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{4} \s?\d{4} \s?\d{4} \s?\d{4}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	digitsPattern     = regexp.MustCompile(`^[0-9]+$`)
)

// ShippingForm is the shipping step input
type ShippingForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=7,max=15,digits"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
}

// PaymentForm is the payment step input
type PaymentForm struct {
	NameOnCard     string `json:"name_on_card" validate:"required"`
	CardNumber     string `json:"card_number" validate:"required,cardnumber"`
	ExpirationDate string `json:"expiration_date" validate:"required,expiry"`
}

// LastFour returns the last four digits of the card number
func (p *PaymentForm) LastFour() string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, p.CardNumber)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// MaskedCard renders the card the way it is shown on receipts
func (p *PaymentForm) MaskedCard() string {
	return "•••• •••• •••• " + p.LastFour()
}

// ValidationError carries field level messages keyed by the json field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks checkout forms
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the checkout rules registered
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		return cardNumberPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Shipping validates the shipping form
func (v *Validator) Shipping(form *ShippingForm) error {
	return v.check(form)
}

// Payment validates the payment form
func (v *Validator) Payment(form *PaymentForm) error {
	return v.check(form)
}

func (v *Validator) check(form interface{}) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

var requiredMessages = map[string]string{
	"name":            "Name is required",
	"email":           "Invalid email address",
	"phone":           "Phone is required",
	"address":         "Address is required",
	"city":            "City is required",
	"name_on_card":    "Name on card is required",
	"card_number":     "Card number is required",
	"expiration_date": "Invalid expiration date (MM/YY)",
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		return "Phone is required"
	case "max":
		return "Phone is too long"
	case "digits":
		return "Phone must contain only numbers"
	case "cardnumber":
		return "Invalid card number format"
	case "expiry":
		return "Invalid expiration date (MM/YY)"
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}
