package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

const (
	MaxNameLength        = 100
	MaxNationalityLength = 50
	MaxBiographyLength   = 2000
	MaxAwardNameLength   = 200
	MinAwardYear         = 1900
)

var websitePattern = regexp.MustCompile(`^https?://.+`)

// AuthorRequest - POST /api/authors, PUT /api/authors/:id
type AuthorRequest struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Nationality string       `json:"nationality"`
	BirthDate   *shared.Date `json:"birthDate"`
	Biography   string       `json:"biography"`
	Website     string       `json:"website"`
	Awards      []Award      `json:"awards"`
}

// Normalize trims text fields and lower-cases the email.
func (r *AuthorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Nationality = strings.TrimSpace(r.Nationality)
	r.Biography = strings.TrimSpace(r.Biography)
	r.Website = strings.TrimSpace(r.Website)
	for i := range r.Awards {
		r.Awards[i].Name = strings.TrimSpace(r.Awards[i].Name)
	}
}

// Validate checks the request against the author rules. now bounds the
// birth date and award years.
func (r AuthorRequest) Validate(now time.Time) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("Author name is required"),
			validation.RuneLength(0, MaxNameLength).Error("Name cannot exceed 100 characters"),
		),
		validation.Field(&r.Email, is.EmailFormat.Error("Invalid email format")),
		validation.Field(&r.Nationality,
			validation.RuneLength(0, MaxNationalityLength).Error("Nationality cannot exceed 50 characters"),
		),
		validation.Field(&r.BirthDate, utils.NotFuture(now, "Birth date cannot be in the future")),
		validation.Field(&r.Biography,
			validation.RuneLength(0, MaxBiographyLength).Error("Biography cannot exceed 2000 characters"),
		),
		validation.Field(&r.Website, validation.Match(websitePattern).Error("Invalid website URL")),
		validation.Field(&r.Awards, validation.Each(validation.By(func(value interface{}) error {
			award, _ := value.(Award)
			return validation.ValidateStruct(&award,
				validation.Field(&award.Name,
					validation.RuneLength(0, MaxAwardNameLength).Error("Award name cannot exceed 200 characters"),
				),
				validation.Field(&award.Year,
					validation.Min(MinAwardYear).Error("Year must be after 1900"),
					validation.Max(now.Year()).Error("Year cannot be in the future"),
				),
			)
		}))),
	)
}

// ApplyTo overwrites every writable field of a.
func (r AuthorRequest) ApplyTo(a *Author) {
	a.Name = r.Name
	a.Email = r.Email
	a.Nationality = r.Nationality
	a.BirthDate = r.BirthDate
	a.Biography = r.Biography
	a.Website = r.Website
	a.Awards = append([]Award{}, r.Awards...)
}
