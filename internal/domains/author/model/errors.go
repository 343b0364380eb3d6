package model

import (
	"fmt"

	"bookstore-api/internal/shared/apperror"
)

const (
	ErrCodeAuthorNotFound = "AUTHOR_NOT_FOUND"
	ErrCodeAuthorHasBooks = "AUTHOR_HAS_BOOKS"
)

var (
	ErrAuthorNotFound = apperror.NotFound(ErrCodeAuthorNotFound, "Author not found")
	ErrAuthorHasBooks = apperror.BusinessRule(ErrCodeAuthorHasBooks, "Cannot delete author with linked books")
)

// NewAuthorHasBooksError reports how many books block the delete.
func NewAuthorHasBooksError(count int64) *apperror.Error {
	return ErrAuthorHasBooks.WithMessage(fmt.Sprintf(
		"Cannot delete author. They have %d book(s) in the system. Please reassign or delete the books first.",
		count,
	))
}
