package model

import (
	"math"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000

	// Stock and page counts are stored as INTEGER columns.
	MaxStock = math.MaxInt32
	MaxPages = math.MaxInt32
)

var genreValues = func() []interface{} {
	out := make([]interface{}, len(Genres))
	for i, g := range Genres {
		out[i] = g
	}
	return out
}()

// BookRequest - POST /api/books, PUT /api/books/:id
type BookRequest struct {
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	ISBN          string           `json:"isbn"`
	Genre         Genre            `json:"genre"`
	Price         *decimal.Decimal `json:"price"`
	Stock         *int             `json:"stock"`
	Description   string           `json:"description"`
	PublishedDate *shared.Date     `json:"publishedDate"`
	Pages         *int             `json:"pages"`
}

func (r *BookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.ISBN = strings.TrimSpace(r.ISBN)
	r.Description = strings.TrimSpace(r.Description)
}

func (r BookRequest) Validate(now time.Time) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("Book title is required"),
			validation.RuneLength(0, MaxTitleLength).Error("Title cannot exceed 200 characters"),
		),
		validation.Field(&r.Author,
			validation.Required.Error("Author is required"),
			utils.UUIDString("Invalid author ID format"),
		),
		validation.Field(&r.ISBN,
			validation.Required.Error("ISBN is required"),
			isbnRule,
		),
		validation.Field(&r.Genre,
			validation.Required.Error("Genre is required"),
			validation.In(genreValues...).Error("Invalid genre"),
		),
		validation.Field(&r.Price, validation.Required.Error("Price is required"), priceRule),
		validation.Field(&r.Stock, stockRule),
		validation.Field(&r.Description,
			validation.RuneLength(0, MaxDescriptionLength).Error("Description cannot exceed 1000 characters"),
		),
		validation.Field(&r.PublishedDate, utils.NotFuture(now, "Published date cannot be in the future")),
		validation.Field(&r.Pages, pagesRule),
	)
}

// AuthorID is valid once Validate has passed.
func (r BookRequest) AuthorID() uuid.UUID {
	return utils.ParseStringToUUID(r.Author)
}

// ApplyTo overwrites every writable field of b. Stock defaults to 0.
func (r BookRequest) ApplyTo(b *Book) {
	b.Title = r.Title
	b.AuthorID = r.AuthorID()
	b.ISBN = r.ISBN
	b.Genre = r.Genre
	if r.Price != nil {
		b.Price = *r.Price
	}
	b.Stock = 0
	if r.Stock != nil {
		b.Stock = *r.Stock
	}
	b.Description = r.Description
	b.PublishedDate = r.PublishedDate
	b.Pages = r.Pages
}

// BookPatchRequest - PATCH /api/books/:id. Nil fields are left untouched.
type BookPatchRequest struct {
	Title         *string          `json:"title"`
	Author        *string          `json:"author"`
	ISBN          *string          `json:"isbn"`
	Genre         *Genre           `json:"genre"`
	Price         *decimal.Decimal `json:"price"`
	Stock         *int             `json:"stock"`
	Description   *string          `json:"description"`
	PublishedDate *shared.Date     `json:"publishedDate"`
	Pages         *int             `json:"pages"`
}

func (r *BookPatchRequest) Normalize() {
	for _, s := range []*string{r.Title, r.Author, r.ISBN, r.Description} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// Validate checks only the supplied fields.
func (r BookPatchRequest) Validate(now time.Time) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("Book title is required"),
			validation.RuneLength(0, MaxTitleLength).Error("Title cannot exceed 200 characters"),
		),
		validation.Field(&r.Author,
			validation.NilOrNotEmpty.Error("Author is required"),
			utils.UUIDString("Invalid author ID format"),
		),
		validation.Field(&r.ISBN,
			validation.NilOrNotEmpty.Error("ISBN is required"),
			isbnRule,
		),
		validation.Field(&r.Genre,
			validation.NilOrNotEmpty.Error("Genre is required"),
			validation.In(genreValues...).Error("Invalid genre"),
		),
		validation.Field(&r.Price, priceRule),
		validation.Field(&r.Stock, stockRule),
		validation.Field(&r.Description,
			validation.RuneLength(0, MaxDescriptionLength).Error("Description cannot exceed 1000 characters"),
		),
		validation.Field(&r.PublishedDate, utils.NotFuture(now, "Published date cannot be in the future")),
		validation.Field(&r.Pages, pagesRule),
	)
}

// AuthorChanged returns the new author id when the patch sets one.
func (r BookPatchRequest) AuthorChanged() (uuid.UUID, bool) {
	if r.Author == nil {
		return uuid.Nil, false
	}
	return utils.ParseStringToUUID(*r.Author), true
}

func (r BookPatchRequest) ApplyTo(b *Book) {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if id, ok := r.AuthorChanged(); ok {
		b.AuthorID = id
	}
	if r.ISBN != nil {
		b.ISBN = *r.ISBN
	}
	if r.Genre != nil {
		b.Genre = *r.Genre
	}
	if r.Price != nil {
		b.Price = *r.Price
	}
	if r.Stock != nil {
		b.Stock = *r.Stock
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.PublishedDate != nil {
		b.PublishedDate = r.PublishedDate
	}
	if r.Pages != nil {
		b.Pages = r.Pages
	}
}

// StockRequest - PATCH /api/books/:id/stock
type StockRequest struct {
	Stock *int `json:"stock"`
}

var isbnRule = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s != "" && !ValidISBN(s) {
		return validation.NewError("validation_isbn", "Invalid ISBN format")
	}
	return nil
})

var priceRule = validation.By(func(value interface{}) error {
	p, _ := value.(*decimal.Decimal)
	if p == nil {
		return nil
	}
	if p.IsNegative() {
		return validation.NewError("validation_price_negative", "Price cannot be negative")
	}
	if !p.Equal(p.Truncate(2)) {
		return validation.NewError("validation_price_precision", "Price must have at most 2 decimal places")
	}
	return nil
})

var stockRule = validation.By(func(value interface{}) error {
	n, _ := value.(*int)
	switch {
	case n == nil:
		return nil
	case *n < 0:
		return validation.NewError("validation_stock_negative", "Stock cannot be negative")
	case *n > MaxStock:
		return validation.NewError("validation_stock_max", "Stock cannot exceed "+strconv.Itoa(MaxStock))
	}
	return nil
})

var pagesRule = validation.By(func(value interface{}) error {
	n, _ := value.(*int)
	switch {
	case n == nil:
		return nil
	case *n < 1:
		return validation.NewError("validation_pages_min", "Pages must be at least 1")
	case *n > MaxPages:
		return validation.NewError("validation_pages_max", "Pages cannot exceed "+strconv.Itoa(MaxPages))
	}
	return nil
})
