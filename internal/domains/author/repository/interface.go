package repository

import (
	"context"

	"github.com/google/uuid"

	"bookstore-api/internal/domains/author/model"
)

// RepositoryInterface defines author persistence. Implementations exist for
// postgres, bolt and redis and behave identically.
type RepositoryInterface interface {
	// Create assigns ID, CreatedAt and UpdatedAt and stores the author.
	Create(ctx context.Context, a *model.Author) error

	// FindByID returns model.ErrAuthorNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error)

	// FindByIDs returns the authors that exist, keyed by id. Missing ids are
	// simply absent from the map.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Author, error)

	// List filters by case-insensitive nationality substring, sorts by name
	// then id, and returns the page plus the total match count.
	// A Limit of zero returns every match.
	List(ctx context.Context, filter model.AuthorFilter) ([]*model.Author, int64, error)

	// Update is an atomic read-modify-write. fn receives the current author
	// and may return an error to abort; ID and CreatedAt are preserved.
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Author) error) (*model.Author, error)

	// Delete removes and returns the author.
	// Business rules:
	//   - model.ErrAuthorHasBooks if any book still references the author,
	//     checked in the same transaction as the delete
	//   - model.ErrAuthorNotFound when absent
	Delete(ctx context.Context, id uuid.UUID) (*model.Author, error)
}
