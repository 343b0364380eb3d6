package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := NotFound("BOOK_NOT_FOUND", "Book not found")
	dynamic := sentinel.WithMessage("Book with ID x not found")
	wrapped := fmt.Errorf("repository: %w", dynamic)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, NotFound("AUTHOR_NOT_FOUND", "Author not found")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		Invalid("bad"):                          http.StatusBadRequest,
		NotFound("X", "missing"):                http.StatusNotFound,
		Conflict("X", "dup"):                    http.StatusBadRequest,
		BusinessRule("X", "rule"):               http.StatusBadRequest,
		InvalidID():                             http.StatusBadRequest,
		Unavailable("down", errors.New("boom")): http.StatusServiceUnavailable,
		Internal("oops", errors.New("boom")):    http.StatusInternalServerError,
	}
	for e, status := range cases {
		assert.Equal(t, status, e.HTTPStatus(), e.Message)
	}
}

func TestValidationFlattensNestedErrors(t *testing.T) {
	err := validation.Errors{
		"title": errors.New("Book title is required"),
		"shippingAddress": validation.Errors{
			"city": errors.New("City is required"),
		},
		"items": validation.Errors{
			"0": validation.Errors{"quantity": errors.New("Quantity must be at least 1")},
		},
		"pages": nil,
	}

	ve := Validation(err)
	require.Equal(t, KindValidation, ve.Kind)
	assert.Equal(t, "Validation Error", ve.Message)
	assert.Equal(t, []FieldError{
		{Field: "items.0.quantity", Message: "Quantity must be at least 1"},
		{Field: "shippingAddress.city", Message: "City is required"},
		{Field: "title", Message: "Book title is required"},
	}, ve.Fields)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("wrap: %w", Conflict("DUP", "dup"))))
}
