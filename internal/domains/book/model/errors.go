package model

import (
	"bookstore-api/internal/shared/apperror"
)

const (
	ErrCodeBookNotFound      = "BOOK_NOT_FOUND"
	ErrCodeISBNAlreadyExists = "ISBN_ALREADY_EXISTS"
	ErrCodeAuthorNotFound    = "BOOK_AUTHOR_NOT_FOUND"
)

var (
	ErrBookNotFound      = apperror.NotFound(ErrCodeBookNotFound, "Book not found")
	ErrISBNAlreadyExists = apperror.Conflict(ErrCodeISBNAlreadyExists, "isbn already exists")
	// ErrAuthorNotFound is a 400: the request names an author that does not exist.
	ErrAuthorNotFound = apperror.BusinessRule(ErrCodeAuthorNotFound, "Author not found")
	ErrInvalidStock   = apperror.Invalid("Valid stock quantity is required")
)
