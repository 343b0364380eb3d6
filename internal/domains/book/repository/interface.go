package repository

import (
	"context"

	"github.com/google/uuid"

	"bookstore-api/internal/domains/book/model"
)

// RepositoryInterface defines book persistence for postgres, bolt and redis.
type RepositoryInterface interface {
	// Create assigns ID and timestamps and stores the book.
	// Business rules:
	//   - model.ErrAuthorNotFound if AuthorID does not reference an author
	//   - model.ErrISBNAlreadyExists if another book has the same normalized ISBN
	Create(ctx context.Context, b *model.Book) error

	// FindByID returns model.ErrBookNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// FindByIDs returns the books that exist, keyed by id.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Book, error)

	// List filters by exact genre and by a case-insensitive substring of
	// title or description, newest first (ties by id). Returns the page and
	// the total match count.
	List(ctx context.Context, filter model.BookFilter) ([]*model.Book, int64, error)

	// ListByAuthor returns every book of the author, newest first.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Book, error)

	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)

	// Update is an atomic read-modify-write; concurrent stock changes from
	// order placement are never lost. The create rules apply to the result.
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Book) error) (*model.Book, error)

	// Delete removes and returns the book. Orders keep their line snapshots.
	Delete(ctx context.Context, id uuid.UUID) (*model.Book, error)
}
