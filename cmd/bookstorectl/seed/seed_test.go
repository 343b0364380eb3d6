package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-api/cmd/bookstorectl/seed"
	authorService "bookstore-api/internal/domains/author/service"
	bookmodel "bookstore-api/internal/domains/book/model"
	bookService "bookstore-api/internal/domains/book/service"
	orderService "bookstore-api/internal/domains/order/service"
	"bookstore-api/internal/infrastructure/storetest"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

func TestParseDemo(t *testing.T) {
	ds, err := seed.Parse(seed.Demo())
	require.NoError(t, err)

	assert.Len(t, ds.Authors, 6)
	assert.Len(t, ds.Books, 8)
	assert.Len(t, ds.Orders, 2)

	mapping := make([]int, len(ds.Books))
	for i, b := range ds.Books {
		mapping[i] = b.Author
		assert.Contains(t, bookmodel.Genres, bookmodel.Genre(b.Genre), b.Title)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 0, 1}, mapping)
	assert.Equal(t, "400001", ds.Orders[0].ShippingAddress.ZipCode)
}

func TestParseRejectsDanglingReferences(t *testing.T) {
	_, err := seed.Parse([]byte("authors: []\nbooks:\n  - title: Orphan\n    author: 2\n"))
	assert.ErrorContains(t, err, "author index 2 out of range")

	_, err = seed.Parse([]byte("orders:\n  - items:\n      - { book: 0, quantity: 1 }\n"))
	assert.ErrorContains(t, err, "book index 0 out of range")
}

func TestRunThroughServices(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewBoltStores(t)
	clock := shared.SystemClock{}

	books := bookService.NewService(s.Books, s.Authors, clock)
	sink := seed.Services{
		Authors: authorService.NewAuthorService(s.Authors, s.Books, clock),
		Books:   books,
		Orders:  orderService.NewOrderService(s.Orders, s.Books),
	}

	ds, err := seed.Parse(seed.Demo())
	require.NoError(t, err)

	var seen []string
	sum, err := seed.Run(ctx, sink, ds, func(kind, _ string) { seen = append(seen, kind) })
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Authors: 6, Books: 8, Orders: 2}, sum)
	assert.Len(t, seen, 16)

	list, total, err := books.ListBooks(ctx, bookmodel.BookFilter{Query: "suitable"}, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, 44, list[0].Stock)

	// a second run collides on ISBN
	sum, err = seed.Run(ctx, sink, ds, nil)
	assert.Error(t, err)
	assert.Equal(t, 6, sum.Authors)
	assert.Zero(t, sum.Books)
}
