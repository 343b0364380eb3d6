package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-api/internal/shared"
)

type Award struct {
	Name string `json:"name,omitempty"`
	Year int    `json:"year,omitempty"`
}

// Author is the stored author document.
type Author struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email,omitempty"`
	Nationality string       `json:"nationality,omitempty"`
	BirthDate   *shared.Date `json:"birthDate,omitempty"`
	Biography   string       `json:"biography,omitempty"`
	Website     string       `json:"website,omitempty"`
	Awards      []Award      `json:"awards"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Age returns whole years lived at now, or nil without a birth date.
func (a *Author) Age(now time.Time) *int {
	if a.BirthDate == nil || a.BirthDate.IsZero() {
		return nil
	}
	born := a.BirthDate.Time
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return &age
}

type AuthorFilter struct {
	Nationality string
	Offset      int
	Limit       int
}

// BookSummary is the per-book view embedded in an author detail response.
type BookSummary struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	ISBN          string          `json:"isbn"`
	Genre         string          `json:"genre"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	PublishedDate *shared.Date    `json:"publishedDate,omitempty"`
}

type AuthorResponse struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email,omitempty"`
	Nationality string       `json:"nationality,omitempty"`
	BirthDate   *shared.Date `json:"birthDate,omitempty"`
	Biography   string       `json:"biography,omitempty"`
	Website     string       `json:"website,omitempty"`
	Awards      []Award      `json:"awards"`
	Age         *int         `json:"age"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// AuthorDetailResponse - GET /api/authors/:id
type AuthorDetailResponse struct {
	AuthorResponse
	Books []BookSummary `json:"books"`
}

// ToResponse converts Author to AuthorResponse
func (a *Author) ToResponse(now time.Time) *AuthorResponse {
	awards := a.Awards
	if awards == nil {
		awards = []Award{}
	}
	return &AuthorResponse{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Nationality: a.Nationality,
		BirthDate:   a.BirthDate,
		Biography:   a.Biography,
		Website:     a.Website,
		Awards:      awards,
		Age:         a.Age(now),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
