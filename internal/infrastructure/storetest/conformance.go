package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authormodel "bookstore-api/internal/domains/author/model"
	bookmodel "bookstore-api/internal/domains/book/model"
	ordermodel "bookstore-api/internal/domains/order/model"
)

// Factory returns empty stores for one subtest.
type Factory func(t *testing.T) Stores

// RunConformance exercises the behaviour every backend must share.
func RunConformance(t *testing.T, newStores Factory) {
	t.Run("authors", func(t *testing.T) { testAuthors(t, newStores(t)) })
	t.Run("author delete guard", func(t *testing.T) { testAuthorDeleteGuard(t, newStores(t)) })
	t.Run("books", func(t *testing.T) { testBooks(t, newStores(t)) })
	t.Run("book filters", func(t *testing.T) { testBookFilters(t, newStores(t)) })
	t.Run("place order", func(t *testing.T) { testPlaceOrder(t, newStores(t)) })
	t.Run("place order conflict", func(t *testing.T) { testPlaceOrderConflict(t, newStores(t)) })
	t.Run("concurrent orders do not oversell", func(t *testing.T) { testConcurrentPlace(t, newStores(t)) })
	t.Run("remove order", func(t *testing.T) { testRemoveOrder(t, newStores(t)) })
	t.Run("order list and update", func(t *testing.T) { testOrderListAndUpdate(t, newStores(t)) })
}

func testAuthors(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Ursula Le Guin", "American")
	MustAuthor(t, s, "Chinua Achebe", "Nigerian")
	MustAuthor(t, s, "Ernest Hemingway", "American")

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := s.Authors.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.Email, got.Email)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, "1950-03-01", got.BirthDate.String())
	assert.Equal(t, a.Awards, got.Awards)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	_, err = s.Authors.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, authormodel.ErrAuthorNotFound)

	t.Run("list filters by nationality and sorts by name", func(t *testing.T) {
		authors, total, err := s.Authors.List(ctx, authormodel.AuthorFilter{Nationality: "ameri"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, authors, 2)
		assert.Equal(t, "Ernest Hemingway", authors[0].Name)
		assert.Equal(t, "Ursula Le Guin", authors[1].Name)

		page, total, err := s.Authors.List(ctx, authormodel.AuthorFilter{Offset: 1, Limit: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, page, 1)
		assert.Equal(t, "Ernest Hemingway", page[0].Name)
	})

	t.Run("find by ids skips missing", func(t *testing.T) {
		found, err := s.Authors.FindByIDs(ctx, []uuid.UUID{a.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, found, 1)
		assert.Contains(t, found, a.ID)
	})

	t.Run("update preserves identity", func(t *testing.T) {
		updated, err := s.Authors.Update(ctx, a.ID, func(cur *authormodel.Author) error {
			cur.Biography = "Wrote Earthsea."
			cur.ID = uuid.New()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, a.ID, updated.ID)
		assert.True(t, a.CreatedAt.Equal(updated.CreatedAt))
		assert.False(t, updated.UpdatedAt.Before(a.UpdatedAt))

		got, err := s.Authors.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Wrote Earthsea.", got.Biography)
	})

	t.Run("update aborts on callback error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.Authors.Update(ctx, a.ID, func(cur *authormodel.Author) error {
			cur.Name = "Changed"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Authors.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ursula Le Guin", got.Name)
	})

	t.Run("update and delete missing", func(t *testing.T) {
		_, err := s.Authors.Update(ctx, uuid.New(), func(*authormodel.Author) error { return nil })
		assert.ErrorIs(t, err, authormodel.ErrAuthorNotFound)

		_, err = s.Authors.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, authormodel.ErrAuthorNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := s.Authors.Delete(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, deleted.ID)

		_, err = s.Authors.FindByID(ctx, a.ID)
		assert.ErrorIs(t, err, authormodel.ErrAuthorNotFound)
	})
}

func testAuthorDeleteGuard(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Octavia Butler", "American")
	b := MustBook(t, s, a.ID, "Kindred", "9780807083697", 3, "14.99")

	_, err := s.Authors.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, authormodel.ErrAuthorHasBooks)

	_, err = s.Books.Delete(ctx, b.ID)
	require.NoError(t, err)

	_, err = s.Authors.Delete(ctx, a.ID)
	assert.NoError(t, err)
}

func testBooks(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Frank Herbert", "American")
	other := MustAuthor(t, s, "Stanislaw Lem", "Polish")
	b := MustBook(t, s, a.ID, "Dune", "978-0-441-17271-9", 5, "9.99")

	got, err := s.Books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, a.ID, got.AuthorID)
	assert.Equal(t, 5, got.Stock)
	assert.True(t, got.Price.Equal(b.Price))
	require.NotNil(t, got.Pages)
	assert.Equal(t, 320, *got.Pages)
	require.NotNil(t, got.PublishedDate)
	assert.Equal(t, "2001-06-15", got.PublishedDate.String())

	_, err = s.Books.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, bookmodel.ErrBookNotFound)

	t.Run("create requires author", func(t *testing.T) {
		orphan := &bookmodel.Book{
			Title: "Orphan", AuthorID: uuid.New(), ISBN: "1234567890",
			Genre: bookmodel.GenreMystery, Price: b.Price,
		}
		assert.ErrorIs(t, s.Books.Create(ctx, orphan), bookmodel.ErrAuthorNotFound)
	})

	t.Run("isbn is unique on digits", func(t *testing.T) {
		dup := &bookmodel.Book{
			Title: "Dune again", AuthorID: a.ID, ISBN: "9780441172719",
			Genre: bookmodel.GenreSciFi, Price: b.Price,
		}
		assert.ErrorIs(t, s.Books.Create(ctx, dup), bookmodel.ErrISBNAlreadyExists)
	})

	t.Run("update keeps own isbn and moves author", func(t *testing.T) {
		updated, err := s.Books.Update(ctx, b.ID, func(cur *bookmodel.Book) error {
			cur.AuthorID = other.ID
			cur.Stock = 8
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, other.ID, updated.AuthorID)
		assert.Equal(t, 8, stockOf(t, s, b.ID))
		assert.True(t, b.CreatedAt.Equal(updated.CreatedAt))

		n, err := s.Books.CountByAuthor(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)

		books, err := s.Books.ListByAuthor(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, b.ID, books[0].ID)
	})

	t.Run("update rejects taken isbn and missing author", func(t *testing.T) {
		second := MustBook(t, s, a.ID, "Solaris", "9780156027601", 1, "12.00")

		_, err := s.Books.Update(ctx, second.ID, func(cur *bookmodel.Book) error {
			cur.ISBN = "978-0441172719"
			return nil
		})
		assert.ErrorIs(t, err, bookmodel.ErrISBNAlreadyExists)

		_, err = s.Books.Update(ctx, second.ID, func(cur *bookmodel.Book) error {
			cur.AuthorID = uuid.New()
			return nil
		})
		assert.ErrorIs(t, err, bookmodel.ErrAuthorNotFound)

		got, err := s.Books.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "9780156027601", got.ISBN)
		assert.Equal(t, a.ID, got.AuthorID)
	})

	t.Run("delete frees isbn", func(t *testing.T) {
		deleted, err := s.Books.Delete(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, deleted.ID)

		_, err = s.Books.Delete(ctx, b.ID)
		assert.ErrorIs(t, err, bookmodel.ErrBookNotFound)

		again := MustBook(t, s, a.ID, "Dune", "9780441172719", 1, "9.99")
		assert.NotEqual(t, b.ID, again.ID)
	})
}

func testBookFilters(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Agatha Christie", "British")
	first := MustBook(t, s, a.ID, "Murder on the Orient Express", "9780062693662", 4, "8.50")
	second := MustBook(t, s, a.ID, "And Then There Were None", "9780062073488", 0, "7.25")
	_, err := s.Books.Update(ctx, second.ID, func(cur *bookmodel.Book) error {
		cur.Genre = bookmodel.GenreMystery
		cur.Description = "Ten strangers on an ISLAND"
		return nil
	})
	require.NoError(t, err)

	all, total, err := s.Books.List(ctx, bookmodel.BookFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, all, 2)
	assert.False(t, all[0].CreatedAt.Before(all[1].CreatedAt), "newest first")

	mystery, total, err := s.Books.List(ctx, bookmodel.BookFilter{Genre: bookmodel.GenreMystery})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mystery, 1)
	assert.Equal(t, second.ID, mystery[0].ID)

	byDescription, _, err := s.Books.List(ctx, bookmodel.BookFilter{Query: "island"})
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, second.ID, byDescription[0].ID)

	byTitle, _, err := s.Books.List(ctx, bookmodel.BookFilter{Query: "ORIENT"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, first.ID, byTitle[0].ID)

	page, total, err := s.Books.List(ctx, bookmodel.BookFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)

	empty, total, err := s.Books.List(ctx, bookmodel.BookFilter{Offset: 10, Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Empty(t, empty)

	n, err := s.Books.CountByAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func testPlaceOrder(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Isaac Asimov", "American")
	foundation := MustBook(t, s, a.ID, "Foundation", "9780553293357", 10, "15.00")
	robots := MustBook(t, s, a.ID, "I, Robot", "9780553382563", 3, "12.50")

	o := NewOrder(map[*bookmodel.Book]int{foundation: 2, robots: 1})
	// The same book twice is aggregated into one decrement.
	o.Items = append(o.Items, ordermodel.OrderItem{BookID: foundation.ID, Quantity: 1, Price: foundation.Price})
	ordermodel.CalculateOrderAmounts(o.Items).Apply(o)

	require.NoError(t, s.Orders.Place(ctx, o))
	assert.NotEqual(t, uuid.Nil, o.ID)

	assert.Equal(t, 7, stockOf(t, s, foundation.ID))
	assert.Equal(t, 2, stockOf(t, s, robots.ID))

	got, err := s.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, ordermodel.OrderStatusPending, got.Status)
	assert.Len(t, got.Items, 3)
	assert.Equal(t, 4, got.TotalItems())
	assert.True(t, o.Total.Equal(got.Total), "total %s != %s", o.Total, got.Total)
	assert.True(t, o.Tax.Equal(got.Tax))
	assert.Equal(t, o.ShippingAddress, got.ShippingAddress)
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))

	_, err = s.Orders.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ordermodel.ErrOrderNotFound)
}

func testPlaceOrderConflict(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Mary Shelley", "British")
	plenty := MustBook(t, s, a.ID, "Frankenstein", "9780486282114", 10, "5.00")
	scarce := MustBook(t, s, a.ID, "The Last Man", "9780199552351", 1, "11.00")

	o := NewOrder(map[*bookmodel.Book]int{plenty: 2, scarce: 2})
	err := s.Orders.Place(ctx, o)

	var conflict *ordermodel.StockConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, scarce.ID, conflict.BookID)
	assert.True(t, conflict.Found)
	assert.Equal(t, 1, conflict.Available)
	assert.Equal(t, 2, conflict.Requested)

	// Nothing was written.
	assert.Equal(t, 10, stockOf(t, s, plenty.ID))
	assert.Equal(t, 1, stockOf(t, s, scarce.ID))
	_, total, err := s.Orders.List(ctx, ordermodel.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	t.Run("missing book", func(t *testing.T) {
		ghost := &bookmodel.Book{ID: uuid.New(), Price: plenty.Price}
		o := NewOrder(map[*bookmodel.Book]int{plenty: 1, ghost: 1})

		err := s.Orders.Place(ctx, o)
		var conflict *ordermodel.StockConflict
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, ghost.ID, conflict.BookID)
		assert.False(t, conflict.Found)
		assert.Equal(t, 10, stockOf(t, s, plenty.ID))
	})

	t.Run("largest quantity", func(t *testing.T) {
		o := NewOrder(map[*bookmodel.Book]int{plenty: ordermodel.MaxQuantity})

		err := s.Orders.Place(ctx, o)
		var conflict *ordermodel.StockConflict
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, ordermodel.MaxQuantity, conflict.Requested)
		assert.Equal(t, 10, stockOf(t, s, plenty.ID))
	})
}

func testConcurrentPlace(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Jules Verne", "French")
	b := MustBook(t, s, a.ID, "Around the World in Eighty Days", "9780140449068", 5, "6.00")

	const buyers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		placed    int
		conflicts int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Orders.Place(ctx, NewOrder(map[*bookmodel.Book]int{b: 1}))

			mu.Lock()
			defer mu.Unlock()
			var conflict *ordermodel.StockConflict
			switch {
			case err == nil:
				placed++
			case errors.As(err, &conflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, buyers-5, conflicts)
	assert.Equal(t, 0, stockOf(t, s, b.ID))
}

func testRemoveOrder(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "Jane Austen", "British")
	pride := MustBook(t, s, a.ID, "Pride and Prejudice", "9780141439518", 10, "7.99")
	emma := MustBook(t, s, a.ID, "Emma", "9780141439587", 10, "8.99")

	place := func(status ordermodel.OrderStatus, lines map[*bookmodel.Book]int) *ordermodel.Order {
		o := NewOrder(lines)
		require.NoError(t, s.Orders.Place(ctx, o))
		if status != ordermodel.OrderStatusPending {
			_, err := s.Orders.Update(ctx, o.ID, func(cur *ordermodel.Order) error {
				cur.Status = status
				return nil
			})
			require.NoError(t, err)
		}
		return o
	}

	t.Run("pending restocks", func(t *testing.T) {
		o := place(ordermodel.OrderStatusPending, map[*bookmodel.Book]int{pride: 3})
		assert.Equal(t, 7, stockOf(t, s, pride.ID))

		removed, err := s.Orders.Remove(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, removed.ID)
		assert.Equal(t, 10, stockOf(t, s, pride.ID))

		_, err = s.Orders.FindByID(ctx, o.ID)
		assert.ErrorIs(t, err, ordermodel.ErrOrderNotFound)
	})

	t.Run("cancelled does not restock", func(t *testing.T) {
		o := place(ordermodel.OrderStatusCancelled, map[*bookmodel.Book]int{pride: 2})
		_, err := s.Orders.Remove(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, stockOf(t, s, pride.ID))
	})

	t.Run("shipped is refused", func(t *testing.T) {
		o := place(ordermodel.OrderStatusShipped, map[*bookmodel.Book]int{emma: 1})
		_, err := s.Orders.Remove(ctx, o.ID)
		assert.ErrorIs(t, err, ordermodel.ErrOrderCannotDelete)

		_, err = s.Orders.FindByID(ctx, o.ID)
		assert.NoError(t, err)
		assert.Equal(t, 9, stockOf(t, s, emma.ID))
	})

	t.Run("deleted books are skipped", func(t *testing.T) {
		gone := MustBook(t, s, a.ID, "Persuasion", "9780141439686", 2, "6.50")
		o := place(ordermodel.OrderStatusPending, map[*bookmodel.Book]int{gone: 1, emma: 2})
		_, err := s.Books.Delete(ctx, gone.ID)
		require.NoError(t, err)

		_, err = s.Orders.Remove(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, 9, stockOf(t, s, emma.ID))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Orders.Remove(ctx, uuid.New())
		assert.ErrorIs(t, err, ordermodel.ErrOrderNotFound)
	})
}

func testOrderListAndUpdate(t *testing.T, s Stores) {
	ctx := context.Background()

	a := MustAuthor(t, s, "George Orwell", "British")
	b := MustBook(t, s, a.ID, "Animal Farm", "9780451526342", 20, "9.99")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		o := NewOrder(map[*bookmodel.Book]int{b: 1})
		require.NoError(t, s.Orders.Place(ctx, o))
		ids = append(ids, o.ID)
	}

	updated, err := s.Orders.Update(ctx, ids[0], func(cur *ordermodel.Order) error {
		cur.Status = ordermodel.OrderStatusConfirmed
		cur.Notes = "leave at the door"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ids[0], updated.ID)
	assert.Equal(t, 17, stockOf(t, s, b.ID), "update never touches stock")

	all, total, err := s.Orders.List(ctx, ordermodel.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt), "newest first")
	}

	confirmed, total, err := s.Orders.List(ctx, ordermodel.OrderFilter{Status: ordermodel.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "leave at the door", confirmed[0].Notes)

	page, total, err := s.Orders.List(ctx, ordermodel.OrderFilter{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)

	_, err = s.Orders.Update(ctx, uuid.New(), func(*ordermodel.Order) error { return nil })
	assert.ErrorIs(t, err, ordermodel.ErrOrderNotFound)
}
