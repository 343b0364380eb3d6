package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/domains/author/repository"
	bookmodel "bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/apperror"
	"bookstore-api/internal/shared/utils"
)

// BookLookup is the part of the book store the author service reads.
type BookLookup interface {
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*bookmodel.Book, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type authorService struct {
	repo  repository.RepositoryInterface
	books BookLookup
	clock shared.Clocker
}

// NewAuthorService creates a new author service instance
func NewAuthorService(repo repository.RepositoryInterface, books BookLookup, clock shared.Clocker) ServiceInterface {
	return &authorService{
		repo:  repo,
		books: books,
		clock: clock,
	}
}

func (s *authorService) ListAuthors(ctx context.Context, nationality string, page utils.Pagination) ([]*model.AuthorResponse, int64, error) {
	authors, total, err := s.repo.List(ctx, model.AuthorFilter{
		Nationality: nationality,
		Offset:      page.Offset(),
		Limit:       page.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	now := s.clock.Now()
	out := make([]*model.AuthorResponse, len(authors))
	for i, a := range authors {
		out[i] = a.ToResponse(now)
	}
	return out, total, nil
}

func (s *authorService) GetAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorDetailResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	books, err := s.books.ListByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.BookSummary, len(books))
	for i, b := range books {
		summaries[i] = model.BookSummary{
			ID:            b.ID,
			Title:         b.Title,
			ISBN:          b.ISBN,
			Genre:         string(b.Genre),
			Price:         b.Price,
			Stock:         b.Stock,
			PublishedDate: b.PublishedDate,
		}
	}

	return &model.AuthorDetailResponse{
		AuthorResponse: *a.ToResponse(s.clock.Now()),
		Books:          summaries,
	}, nil
}

func (s *authorService) validate(req *model.AuthorRequest) error {
	req.Normalize()
	if err := req.Validate(s.clock.Now()); err != nil {
		return apperror.Validation(err)
	}
	return nil
}

func (s *authorService) CreateAuthor(ctx context.Context, req model.AuthorRequest) (*model.AuthorResponse, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	a := &model.Author{}
	req.ApplyTo(a)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a.ToResponse(s.clock.Now()), nil
}

func (s *authorService) ReplaceAuthor(ctx context.Context, id uuid.UUID, req model.AuthorRequest) (*model.AuthorResponse, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	a, err := s.repo.Update(ctx, id, func(current *model.Author) error {
		req.ApplyTo(current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a.ToResponse(s.clock.Now()), nil
}

func (s *authorService) DeleteAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorResponse, error) {
	count, err := s.books.CountByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, model.NewAuthorHasBooksError(count)
	}

	a, err := s.repo.Delete(ctx, id)
	if errors.Is(err, model.ErrAuthorHasBooks) {
		// A book was linked between the count and the delete.
		if count, cerr := s.books.CountByAuthor(ctx, id); cerr == nil && count > 0 {
			return nil, model.NewAuthorHasBooksError(count)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return a.ToResponse(s.clock.Now()), nil
}
