package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	authormodel "bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/domains/book/service"
	"bookstore-api/internal/infrastructure/storetest"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/apperror"
	"bookstore-api/internal/shared/utils"
)

var now = time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    service.ServiceInterface
	stores storetest.Stores
	author *authormodel.Author
}

func setup(t *testing.T) fixture {
	stores := storetest.NewBoltStores(t)
	author := storetest.MustAuthor(t, stores, "Ursula Le Guin", "American")
	return fixture{
		svc:    service.NewService(stores.Books, stores.Authors, shared.FixedClock{At: now}),
		stores: stores,
		author: author,
	}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int { return &n }

func (f fixture) request(title, isbn string) model.BookRequest {
	return model.BookRequest{
		Title:  title,
		Author: f.author.ID.String(),
		ISBN:   isbn,
		Genre:  model.GenreFantasy,
		Price:  price("12.99"),
	}
}

func TestCreateBook(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	got, err := f.svc.CreateBook(ctx, f.request(" A Wizard of Earthsea ", "978-0-547-77374-2"))
	require.NoError(t, err)

	assert.Equal(t, "A Wizard of Earthsea", got.Title)
	assert.Equal(t, 0, got.Stock)
	assert.False(t, got.InStock)
	assert.Equal(t, f.author.ID, got.Author.ID)
	assert.Equal(t, "Ursula Le Guin", got.Author.Name)
	assert.Equal(t, "American", got.Author.Nationality)

	t.Run("duplicate isbn", func(t *testing.T) {
		_, err := f.svc.CreateBook(ctx, f.request("Copy", "9780547773742"))
		assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)
		assert.EqualError(t, err, "isbn already exists")
	})

	t.Run("unknown author", func(t *testing.T) {
		req := f.request("Orphan", "1234567890")
		req.Author = uuid.NewString()
		_, err := f.svc.CreateBook(ctx, req)
		assert.ErrorIs(t, err, model.ErrAuthorNotFound)

		ae, _ := apperror.As(err)
		assert.Equal(t, 400, ae.HTTPStatus())
	})
}

func TestCreateBookValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateBook(context.Background(), model.BookRequest{
		Author:        "not-a-uuid",
		ISBN:          "12-34",
		Genre:         "Poetry",
		Price:         price("10.999"),
		Stock:         intPtr(-1),
		PublishedDate: &shared.Date{Time: now.AddDate(0, 0, 1)},
		Pages:         intPtr(0),
	})

	ae, ok := apperror.As(err)
	require.True(t, ok)
	require.Equal(t, apperror.KindValidation, ae.Kind)

	messages := map[string]string{}
	for _, fe := range ae.Fields {
		messages[fe.Field] = fe.Message
	}
	assert.Equal(t, map[string]string{
		"title":         "Book title is required",
		"author":        "Invalid author ID format",
		"isbn":          "Invalid ISBN format",
		"genre":         "Invalid genre",
		"price":         "Price must have at most 2 decimal places",
		"stock":         "Stock cannot be negative",
		"publishedDate": "Published date cannot be in the future",
		"pages":         "Pages must be at least 1",
	}, messages)
}

func TestListBooks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	storetest.MustBook(t, f.stores, f.author.ID, "The Left Hand of Darkness", "9780441478125", 3, "9.99")
	storetest.MustBook(t, f.stores, f.author.ID, "The Dispossessed", "9780061054884", 0, "10.99")

	books, total, err := f.svc.ListBooks(ctx, model.BookFilter{Query: "darkness"}, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, "The Left Hand of Darkness", books[0].Title)
	assert.True(t, books[0].InStock)
	assert.Equal(t, "Ursula Le Guin", books[0].Author.Name)
	assert.Empty(t, books[0].Author.Biography)

	_, total, err = f.svc.ListBooks(ctx, model.BookFilter{Genre: model.GenreHistory}, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	books, total, err = f.svc.ListBooks(ctx, model.BookFilter{}, utils.Pagination{Page: 1000000000000000000, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Empty(t, books)
}

func TestCreateBookRejectsOversizedCounts(t *testing.T) {
	f := setup(t)

	req := f.request("Always Coming Home", "9780520227354")
	req.Stock = intPtr(3000000000)
	req.Pages = intPtr(3000000000)
	_, err := f.svc.CreateBook(context.Background(), req)

	ae, ok := apperror.As(err)
	require.True(t, ok)
	require.Equal(t, apperror.KindValidation, ae.Kind)

	messages := map[string]string{}
	for _, fe := range ae.Fields {
		messages[fe.Field] = fe.Message
	}
	assert.Equal(t, "Stock cannot exceed 2147483647", messages["stock"])
	assert.Equal(t, "Pages cannot exceed 2147483647", messages["pages"])
}

func TestGetBookExpandsAuthor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.stores.Authors.Update(ctx, f.author.ID, func(a *authormodel.Author) error {
		a.Biography = "Wrote Earthsea."
		a.Website = "https://www.ursulakleguin.com"
		return nil
	})
	require.NoError(t, err)
	b := storetest.MustBook(t, f.stores, f.author.ID, "Lavinia", "9780151014248", 1, "15.00")

	got, err := f.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wrote Earthsea.", got.Author.Biography)
	assert.Equal(t, "https://www.ursulakleguin.com", got.Author.Website)

	_, err = f.svc.GetBook(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.EqualError(t, err, "Book not found")
}

func TestReplaceAndPatchBook(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateBook(ctx, f.request("Tehanu", "9780689845338"))
	require.NoError(t, err)

	req := f.request("Tehanu: The Last Book of Earthsea", "9780689845338")
	req.Stock = intPtr(4)
	replaced, err := f.svc.ReplaceBook(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Tehanu: The Last Book of Earthsea", replaced.Title)
	assert.Equal(t, 4, replaced.Stock)
	assert.True(t, created.CreatedAt.Equal(replaced.CreatedAt))

	title := "Tehanu"
	patched, err := f.svc.PatchBook(ctx, created.ID, model.BookPatchRequest{Title: &title, Price: price("7.50")})
	require.NoError(t, err)
	assert.Equal(t, "Tehanu", patched.Title)
	assert.True(t, patched.Price.Equal(decimal.RequireFromString("7.50")))
	assert.Equal(t, 4, patched.Stock, "untouched fields are kept")

	missing := uuid.NewString()
	_, err = f.svc.PatchBook(ctx, created.ID, model.BookPatchRequest{Author: &missing})
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)

	empty := ""
	_, err = f.svc.PatchBook(ctx, created.ID, model.BookPatchRequest{Title: &empty})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.PatchBook(ctx, uuid.New(), model.BookPatchRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestUpdateStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := storetest.MustBook(t, f.stores, f.author.ID, "Voices", "9780152062439", 1, "11.00")

	got, err := f.svc.UpdateStock(ctx, b.ID, intPtr(25))
	require.NoError(t, err)
	assert.Equal(t, 25, got.Stock)

	_, err = f.svc.UpdateStock(ctx, b.ID, nil)
	assert.EqualError(t, err, "Valid stock quantity is required")

	_, err = f.svc.UpdateStock(ctx, b.ID, intPtr(-3))
	assert.ErrorIs(t, err, model.ErrInvalidStock)

	_, err = f.svc.UpdateStock(ctx, b.ID, intPtr(model.MaxStock+1))
	assert.ErrorIs(t, err, model.ErrInvalidStock)

	_, err = f.svc.UpdateStock(ctx, uuid.New(), intPtr(1))
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := storetest.MustBook(t, f.stores, f.author.ID, "Powers", "9780152057701", 1, "11.00")

	deleted, err := f.svc.DeleteBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.ID)

	_, err = f.svc.DeleteBook(ctx, b.ID)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestExportBooks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	storetest.MustBook(t, f.stores, f.author.ID, "Gifts", "9780152051235", 2, "6.99")
	storetest.MustBook(t, f.stores, f.author.ID, "Changing Planes", "9780151009718", 0, "14.00")

	data, err := f.svc.ExportBooks(ctx, model.BookFilter{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Books")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0][1])
	assert.Equal(t, "Ursula Le Guin", rows[1][2])

	titles := []string{rows[1][1], rows[2][1]}
	assert.ElementsMatch(t, []string{"Gifts", "Changing Planes"}, titles)
}
