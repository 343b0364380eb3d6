package model

import (
	"fmt"

	"github.com/google/uuid"

	"bookstore-api/internal/shared/apperror"
)

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound     = "ORD001"
	ErrCodeOrderCannotDelete = "ORD002"
	ErrCodeInsufficientStock = "ORD004"
	ErrCodeBookNotFound      = "ORD010"
	ErrCodeInvalidStatus     = "ORD015"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound     = apperror.NotFound(ErrCodeOrderNotFound, "Order not found")
	ErrOrderCannotDelete = apperror.BusinessRule(ErrCodeOrderCannotDelete, "Can only delete pending or cancelled orders")
	ErrInsufficientStock = apperror.BusinessRule(ErrCodeInsufficientStock, "Insufficient stock")
	ErrBookNotFound      = apperror.BusinessRule(ErrCodeBookNotFound, "Book not found")
	ErrInvalidStatus     = apperror.New(apperror.KindValidation, ErrCodeInvalidStatus, "Invalid order status")
)

func NewInsufficientStockError(title string, available, requested int) *apperror.Error {
	return ErrInsufficientStock.WithMessage(fmt.Sprintf(
		"Insufficient stock for \"%s\". Available: %d, Requested: %d", title, available, requested,
	))
}

func NewBookNotFoundError(id uuid.UUID) *apperror.Error {
	return ErrBookNotFound.WithMessage(fmt.Sprintf("Book with ID %s not found", id))
}

// =====================================================
// STORE ERRORS
// =====================================================

// StockConflict is returned by OrderRepository.Place when a line cannot be
// satisfied. Nothing has been written when it is returned.
type StockConflict struct {
	BookID uuid.UUID
	// Found is false when the book no longer exists.
	Found     bool
	Available int
	Requested int
}

func (e *StockConflict) Error() string {
	if !e.Found {
		return fmt.Sprintf("book %s not found", e.BookID)
	}
	return fmt.Sprintf("insufficient stock for book %s: available %d, requested %d", e.BookID, e.Available, e.Requested)
}
