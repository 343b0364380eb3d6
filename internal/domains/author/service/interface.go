package service

import (
	"context"

	"github.com/google/uuid"

	"bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/shared/utils"
)

// ServiceInterface defines author business logic.
type ServiceInterface interface {
	// ListAuthors returns one page of authors sorted by name.
	// nationality is a case-insensitive substring filter; empty means all.
	ListAuthors(ctx context.Context, nationality string, page utils.Pagination) ([]*model.AuthorResponse, int64, error)

	// GetAuthor returns the author with a summary of every book they wrote.
	GetAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorDetailResponse, error)

	// CreateAuthor validates and stores a new author.
	// Business rules:
	//   - email is trimmed and lower-cased before validation
	//   - birth date and award years may not be in the future
	CreateAuthor(ctx context.Context, req model.AuthorRequest) (*model.AuthorResponse, error)

	// ReplaceAuthor overwrites every writable field with the same rules as create.
	ReplaceAuthor(ctx context.Context, id uuid.UUID, req model.AuthorRequest) (*model.AuthorResponse, error)

	// DeleteAuthor removes an author that no book references.
	// Business rules:
	//   - refused with the number of linked books when there are any
	DeleteAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorResponse, error)
}
