package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShipping() *ShippingForm {
	return &ShippingForm{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "5551234567",
		Address: "123 Main St",
		City:    "Springfield",
	}
}

func validPayment() *PaymentForm {
	return &PaymentForm{
		NameOnCard:     "Jane Doe",
		CardNumber:     "4242 4242 4242 4242",
		ExpirationDate: "12/29",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestShippingValidation(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Shipping(validShipping()))

	tests := []struct {
		name   string
		mutate func(*ShippingForm)
		field  string
		msg    string
	}{
		{"missing name", func(f *ShippingForm) { f.Name = "" }, "name", "Name is required"},
		{"bad email", func(f *ShippingForm) { f.Email = "not-an-email" }, "email", "Invalid email address"},
		{"short phone", func(f *ShippingForm) { f.Phone = "12345" }, "phone", "Phone is required"},
		{"long phone", func(f *ShippingForm) { f.Phone = "1234567890123456" }, "phone", "Phone is too long"},
		{"letters in phone", func(f *ShippingForm) { f.Phone = "555-123-4567" }, "phone", "Phone must contain only numbers"},
		{"missing address", func(f *ShippingForm) { f.Address = "" }, "address", "Address is required"},
		{"missing city", func(f *ShippingForm) { f.City = "" }, "city", "City is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validShipping()
			tt.mutate(form)

			fields := fieldErrors(t, v.Shipping(form))
			assert.Len(t, fields, 1)
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

func TestShippingValidation_EmptyFormReportsEveryField(t *testing.T) {
	fields := fieldErrors(t, NewValidator().Shipping(&ShippingForm{}))

	assert.Len(t, fields, 5)
	for _, f := range []string{"name", "email", "phone", "address", "city"} {
		assert.Contains(t, fields, f)
	}
}

func TestPaymentValidation(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Payment(validPayment()))

	tests := []struct {
		name   string
		mutate func(*PaymentForm)
		field  string
	}{
		{"missing name", func(f *PaymentForm) { f.NameOnCard = "" }, "name_on_card"},
		{"unspaced card", func(f *PaymentForm) { f.CardNumber = "4242424242424242" }, "card_number"},
		{"short card", func(f *PaymentForm) { f.CardNumber = "4242 4242 4242" }, "card_number"},
		{"month 13", func(f *PaymentForm) { f.ExpirationDate = "13/29" }, "expiration_date"},
		{"month 00", func(f *PaymentForm) { f.ExpirationDate = "00/29" }, "expiration_date"},
		{"long year", func(f *PaymentForm) { f.ExpirationDate = "12/2029" }, "expiration_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validPayment()
			tt.mutate(form)

			fields := fieldErrors(t, v.Payment(form))
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestMaskedCard(t *testing.T) {
	form := &PaymentForm{CardNumber: "4111 1111 1111 1234"}

	assert.Equal(t, "1234", form.LastFour())
	assert.Equal(t, "•••• •••• •••• 1234", form.MaskedCard())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"email": "Invalid email address", "city": "City is required"}}

	assert.Equal(t, "validation failed: city: City is required; email: Invalid email address", err.Error())
}
