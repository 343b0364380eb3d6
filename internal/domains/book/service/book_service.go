package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	authormodel "bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/domains/book/repository"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/apperror"
	"bookstore-api/internal/shared/utils"
)

// AuthorLookup is the part of the author store the book service reads.
type AuthorLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*authormodel.Author, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*authormodel.Author, error)
}

type BookService struct {
	repo    repository.RepositoryInterface
	authors AuthorLookup
	clock   shared.Clocker
}

func NewService(repo repository.RepositoryInterface, authors AuthorLookup, clock shared.Clocker) ServiceInterface {
	return &BookService{
		repo:    repo,
		authors: authors,
		clock:   clock,
	}
}

// ════════════════════════════════════════════════════════════
// QUERIES
// ════════════════════════════════════════════════════════════

func (s *BookService) ListBooks(ctx context.Context, filter model.BookFilter, page utils.Pagination) ([]*model.BookResponse, int64, error) {
	filter.Offset = page.Offset()
	filter.Limit = page.Limit

	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out, err := s.expand(ctx, books)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *BookService) GetBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ref := model.AuthorRef{ID: b.AuthorID}
	a, err := s.authors.FindByID(ctx, b.AuthorID)
	switch {
	case err == nil:
		ref = model.AuthorRef{
			ID:          a.ID,
			Name:        a.Name,
			Nationality: a.Nationality,
			Biography:   a.Biography,
			Website:     a.Website,
		}
	case !errors.Is(err, authormodel.ErrAuthorNotFound):
		return nil, err
	}
	return model.ToBookResponse(b, ref), nil
}

// expand resolves authors for a page of books in one lookup.
func (s *BookService) expand(ctx context.Context, books []*model.Book) ([]*model.BookResponse, error) {
	ids := make([]uuid.UUID, len(books))
	for i, b := range books {
		ids[i] = b.AuthorID
	}

	authors, err := s.authors.FindByIDs(ctx, utils.UniqueIDs(ids))
	if err != nil {
		return nil, err
	}

	out := make([]*model.BookResponse, len(books))
	for i, b := range books {
		out[i] = model.ToBookResponse(b, shortRef(authors[b.AuthorID]))
	}
	return out, nil
}

func (s *BookService) expandOne(ctx context.Context, b *model.Book) (*model.BookResponse, error) {
	out, err := s.expand(ctx, []*model.Book{b})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func shortRef(a *authormodel.Author) model.AuthorRef {
	if a == nil {
		return model.AuthorRef{}
	}
	return model.AuthorRef{ID: a.ID, Name: a.Name, Nationality: a.Nationality}
}

// ════════════════════════════════════════════════════════════
// COMMANDS
// ════════════════════════════════════════════════════════════

func (s *BookService) CreateBook(ctx context.Context, req model.BookRequest) (*model.BookResponse, error) {
	req.Normalize()
	if err := req.Validate(s.clock.Now()); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := s.requireAuthor(ctx, req.AuthorID()); err != nil {
		return nil, err
	}

	b := &model.Book{}
	req.ApplyTo(b)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return s.expandOne(ctx, b)
}

func (s *BookService) ReplaceBook(ctx context.Context, id uuid.UUID, req model.BookRequest) (*model.BookResponse, error) {
	req.Normalize()
	if err := req.Validate(s.clock.Now()); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := s.requireAuthor(ctx, req.AuthorID()); err != nil {
		return nil, err
	}

	b, err := s.repo.Update(ctx, id, func(current *model.Book) error {
		req.ApplyTo(current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, b)
}

func (s *BookService) PatchBook(ctx context.Context, id uuid.UUID, req model.BookPatchRequest) (*model.BookResponse, error) {
	req.Normalize()
	if err := req.Validate(s.clock.Now()); err != nil {
		return nil, apperror.Validation(err)
	}
	if authorID, ok := req.AuthorChanged(); ok {
		if err := s.requireAuthor(ctx, authorID); err != nil {
			return nil, err
		}
	}

	b, err := s.repo.Update(ctx, id, func(current *model.Book) error {
		req.ApplyTo(current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, b)
}

func (s *BookService) UpdateStock(ctx context.Context, id uuid.UUID, stock *int) (*model.BookResponse, error) {
	if stock == nil || *stock < 0 || *stock > model.MaxStock {
		return nil, model.ErrInvalidStock
	}

	b, err := s.repo.Update(ctx, id, func(current *model.Book) error {
		current.Stock = *stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, b)
}

func (s *BookService) DeleteBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	b, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ToBookResponse(b, model.AuthorRef{}), nil
}

// requireAuthor maps a missing author to the 400 book error.
func (s *BookService) requireAuthor(ctx context.Context, id uuid.UUID) error {
	_, err := s.authors.FindByID(ctx, id)
	if errors.Is(err, authormodel.ErrAuthorNotFound) {
		return model.ErrAuthorNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup author: %w", err)
	}
	return nil
}
