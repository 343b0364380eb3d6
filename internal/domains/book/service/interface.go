package service

import (
	"context"

	"github.com/google/uuid"

	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/shared/utils"
)

// ServiceInterface defines book business logic.
type ServiceInterface interface {
	// ListBooks returns one page of books, newest first, with the author
	// expanded to id, name and nationality.
	ListBooks(ctx context.Context, filter model.BookFilter, page utils.Pagination) ([]*model.BookResponse, int64, error)

	// GetBook returns the book with the author's biography and website.
	GetBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)

	// CreateBook validates and stores a new book.
	// Business rules:
	//   - the author must exist (400 "Author not found")
	//   - the normalized ISBN must be unique (400 "isbn already exists")
	//   - stock defaults to 0
	CreateBook(ctx context.Context, req model.BookRequest) (*model.BookResponse, error)

	// ReplaceBook overwrites every writable field with the create rules.
	ReplaceBook(ctx context.Context, id uuid.UUID, req model.BookRequest) (*model.BookResponse, error)

	// PatchBook validates and applies only the supplied fields.
	// Business rules:
	//   - a supplied author is checked for existence
	PatchBook(ctx context.Context, id uuid.UUID, req model.BookPatchRequest) (*model.BookResponse, error)

	// UpdateStock sets the stock level.
	// Business rules:
	//   - a missing or negative stock is rejected with "Valid stock quantity is required"
	UpdateStock(ctx context.Context, id uuid.UUID, stock *int) (*model.BookResponse, error)

	// DeleteBook removes the book. Orders keep their line snapshots.
	DeleteBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)

	// ExportBooks renders every book matching filter as an xlsx workbook.
	ExportBooks(ctx context.Context, filter model.BookFilter) ([]byte, error)
}
