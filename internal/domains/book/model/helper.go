package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-api/internal/shared"
)

// AuthorRef is the expanded author on a book response. Only ID is set when
// the author no longer resolves.
type AuthorRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Biography   string    `json:"biography,omitempty"`
	Website     string    `json:"website,omitempty"`
}

type BookResponse struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Author        AuthorRef       `json:"author"`
	ISBN          string          `json:"isbn"`
	Genre         Genre           `json:"genre"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	InStock       bool            `json:"inStock"`
	Description   string          `json:"description,omitempty"`
	PublishedDate *shared.Date    `json:"publishedDate,omitempty"`
	Pages         *int            `json:"pages,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToBookResponse converts Book to BookResponse with the given author expansion.
func ToBookResponse(b *Book, author AuthorRef) *BookResponse {
	if author.ID == uuid.Nil {
		author.ID = b.AuthorID
	}
	return &BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        author,
		ISBN:          b.ISBN,
		Genre:         b.Genre,
		Price:         b.Price,
		Stock:         b.Stock,
		InStock:       b.InStock(),
		Description:   b.Description,
		PublishedDate: b.PublishedDate,
		Pages:         b.Pages,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
