package model

import (
	"math"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxCustomerNameLength = 100
	MaxStreetLength       = 200
	MaxCityLength         = 100
	MaxStateLength        = 100
	MaxZipCodeLength      = 20
	MaxCountryLength      = 100
	MaxNotesLength        = 500
	DefaultCountry        = "USA"

	// MaxQuantity matches the INTEGER range of book stock.
	MaxQuantity = math.MaxInt32
)

var (
	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

func enumValues[T any](values []T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var (
	statusValues        = enumValues(OrderStatuses)
	paymentMethodValues = enumValues(PaymentMethods)
	paymentStatusValues = enumValues(PaymentStatuses)
)

// =====================================================
// FIELD RULES
// =====================================================

func customerNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Customer name is required"),
		validation.RuneLength(0, MaxCustomerNameLength).Error("Customer name cannot exceed 100 characters"),
	}
}

func customerEmailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Customer email is required"),
		is.EmailFormat.Error("Invalid email format"),
	}
}

var phoneRule = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s == "" {
		return nil
	}
	if !phonePattern.MatchString(phoneSeparators.ReplaceAllString(s, "")) {
		return validation.NewError("validation_phone", "Invalid phone number format")
	}
	return nil
})

func nonNegative(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		var d decimal.Decimal
		switch v := value.(type) {
		case decimal.Decimal:
			d = v
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			d = *v
		default:
			return nil
		}
		if d.IsNegative() {
			return validation.NewError("validation_negative", message)
		}
		return nil
	})
}

var quantityRule = validation.By(func(value interface{}) error {
	n, _ := value.(int)
	if n < 1 {
		return validation.NewError("validation_quantity_min", "Quantity must be at least 1")
	}
	if n > MaxQuantity {
		return validation.NewError("validation_quantity_max", "Quantity cannot exceed "+strconv.Itoa(MaxQuantity))
	}
	return nil
})

var bookRefRule = validation.By(func(value interface{}) error {
	if id, _ := value.(uuid.UUID); id == uuid.Nil {
		return validation.NewError("validation_book_required", "Book reference is required")
	}
	return nil
})

// =====================================================
// ENTITY VALIDATION
// =====================================================

// Validate checks the address. Country is expected to be defaulted already.
func (a ShippingAddress) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Street,
			validation.Required.Error("Street address is required"),
			validation.RuneLength(0, MaxStreetLength).Error("Street address cannot exceed 200 characters"),
		),
		validation.Field(&a.City,
			validation.Required.Error("City is required"),
			validation.RuneLength(0, MaxCityLength).Error("City cannot exceed 100 characters"),
		),
		validation.Field(&a.State,
			validation.Required.Error("State is required"),
			validation.RuneLength(0, MaxStateLength).Error("State cannot exceed 100 characters"),
		),
		validation.Field(&a.ZipCode,
			validation.Required.Error("Zip code is required"),
			validation.RuneLength(0, MaxZipCodeLength).Error("Zip code cannot exceed 20 characters"),
		),
		validation.Field(&a.Country,
			validation.Required.Error("Country is required"),
			validation.RuneLength(0, MaxCountryLength).Error("Country cannot exceed 100 characters"),
		),
	)
}

func (it OrderItem) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.BookID, bookRefRule),
		validation.Field(&it.Quantity, quantityRule),
		validation.Field(&it.Price, nonNegative("Price cannot be negative")),
	)
}

// Validate checks a complete order document.
func (o Order) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.CustomerName, customerNameRules()...),
		validation.Field(&o.CustomerEmail, customerEmailRules()...),
		validation.Field(&o.CustomerPhone, phoneRule),
		validation.Field(&o.ShippingAddress),
		validation.Field(&o.Items, validation.Required.Error("Order must contain at least one item")),
		validation.Field(&o.Status,
			validation.Required.Error("Status is required"),
			validation.In(statusValues...).Error("Invalid order status"),
		),
		validation.Field(&o.PaymentMethod,
			validation.Required.Error("Payment method is required"),
			validation.In(paymentMethodValues...).Error("Invalid payment method"),
		),
		validation.Field(&o.PaymentStatus,
			validation.Required.Error("Payment status is required"),
			validation.In(paymentStatusValues...).Error("Invalid payment status"),
		),
		validation.Field(&o.Subtotal, nonNegative("Subtotal cannot be negative")),
		validation.Field(&o.Tax, nonNegative("Tax cannot be negative")),
		validation.Field(&o.Shipping, nonNegative("Shipping cannot be negative")),
		validation.Field(&o.Total, nonNegative("Total cannot be negative")),
		validation.Field(&o.Notes,
			validation.RuneLength(0, MaxNotesLength).Error("Notes cannot exceed 500 characters"),
		),
	)
}
