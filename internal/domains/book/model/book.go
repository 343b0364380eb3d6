package model

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-api/internal/shared"
)

// Genre represents valid book genres
type Genre string

const (
	GenreFiction    Genre = "Fiction"
	GenreNonFiction Genre = "Non-Fiction"
	GenreMystery    Genre = "Mystery"
	GenreRomance    Genre = "Romance"
	GenreSciFi      Genre = "Sci-Fi"
	GenreFantasy    Genre = "Fantasy"
	GenreBiography  Genre = "Biography"
	GenreHistory    Genre = "History"
	GenreSelfHelp   Genre = "Self-Help"
	GenreTechnical  Genre = "Technical"
)

var Genres = []Genre{
	GenreFiction, GenreNonFiction, GenreMystery, GenreRomance, GenreSciFi,
	GenreFantasy, GenreBiography, GenreHistory, GenreSelfHelp, GenreTechnical,
}

func (g Genre) IsValid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

func (g Genre) String() string {
	return string(g)
}

var (
	isbnSeparators = regexp.MustCompile(`[-\s]`)
	isbnPattern    = regexp.MustCompile(`^(\d{10}|\d{13})$`)
)

// NormalizeISBN strips hyphens and whitespace.
func NormalizeISBN(isbn string) string {
	return isbnSeparators.ReplaceAllString(isbn, "")
}

// ValidISBN reports whether isbn has 10 or 13 digits once normalized.
func ValidISBN(isbn string) bool {
	return isbnPattern.MatchString(NormalizeISBN(isbn))
}

// Book represents the main book entity. Author holds the author id.
type Book struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	AuthorID      uuid.UUID       `json:"author"`
	ISBN          string          `json:"isbn"`
	Genre         Genre           `json:"genre"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Description   string          `json:"description,omitempty"`
	PublishedDate *shared.Date    `json:"publishedDate,omitempty"`
	Pages         *int            `json:"pages,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (b *Book) InStock() bool {
	return b.Stock > 0
}

func (b *Book) NormalizedISBN() string {
	return NormalizeISBN(b.ISBN)
}

// BookFilter - list query. A Limit of zero returns every match.
type BookFilter struct {
	Genre  Genre
	Query  string
	Offset int
	Limit  int
}
