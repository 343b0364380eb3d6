package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	authormodel "bookstore-api/internal/domains/author/model"
	bookmodel "bookstore-api/internal/domains/book/model"
	ordermodel "bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/shared"
)

func date(y int, m time.Month, d int) *shared.Date {
	v := shared.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

// MustAuthor stores an author with the given name and nationality.
func MustAuthor(t testing.TB, s Stores, name, nationality string) *authormodel.Author {
	t.Helper()

	a := &authormodel.Author{
		Name:        name,
		Email:       fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Nationality: nationality,
		BirthDate:   date(1950, time.March, 1),
		Awards:      []authormodel.Award{{Name: "Hugo Award", Year: 1980}},
	}
	require.NoError(t, s.Authors.Create(context.Background(), a))
	return a
}

// MustBook stores a book by author with the given stock and price.
func MustBook(t testing.TB, s Stores, author uuid.UUID, title, isbn string, stock int, price string) *bookmodel.Book {
	t.Helper()

	pages := 320
	b := &bookmodel.Book{
		Title:         title,
		AuthorID:      author,
		ISBN:          isbn,
		Genre:         bookmodel.GenreFiction,
		Price:         decimal.RequireFromString(price),
		Stock:         stock,
		Description:   "A story about " + title,
		PublishedDate: date(2001, time.June, 15),
		Pages:         &pages,
	}
	require.NoError(t, s.Books.Create(context.Background(), b))
	return b
}

// NewOrder builds a pending order for the lines, priced from the books.
func NewOrder(lines map[*bookmodel.Book]int) *ordermodel.Order {
	items := make([]ordermodel.OrderItem, 0, len(lines))
	for b, qty := range lines {
		items = append(items, ordermodel.OrderItem{BookID: b.ID, Quantity: qty, Price: b.Price})
	}

	o := &ordermodel.Order{
		CustomerName:  "Jane Reader",
		CustomerEmail: "jane@example.com",
		ShippingAddress: ordermodel.ShippingAddress{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
			Country: "USA",
		},
		Items:         items,
		Status:        ordermodel.OrderStatusPending,
		PaymentMethod: ordermodel.PaymentMethodCreditCard,
		PaymentStatus: ordermodel.PaymentStatusPending,
	}
	ordermodel.CalculateOrderAmounts(items).Apply(o)
	return o
}

func stockOf(t testing.TB, s Stores, id uuid.UUID) int {
	t.Helper()
	b, err := s.Books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.Stock
}
