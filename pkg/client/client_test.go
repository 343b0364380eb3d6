package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorHandler "bookstore-api/internal/domains/author/handler"
	authormodel "bookstore-api/internal/domains/author/model"
	authorService "bookstore-api/internal/domains/author/service"
	bookHandler "bookstore-api/internal/domains/book/handler"
	bookmodel "bookstore-api/internal/domains/book/model"
	bookService "bookstore-api/internal/domains/book/service"
	orderHandler "bookstore-api/internal/domains/order/handler"
	ordermodel "bookstore-api/internal/domains/order/model"
	orderService "bookstore-api/internal/domains/order/service"
	"bookstore-api/internal/infrastructure/storetest"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/middleware"
	"bookstore-api/pkg/client"
)

func newServer(t *testing.T) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := storetest.NewBoltStores(t)
	clock := shared.SystemClock{}

	r := gin.New()
	r.Use(middleware.CORS([]string{"https://shop.example"}))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "uptime": 1.5, "environment": "test"})
	})
	api := r.Group("/api")
	authorHandler.NewAuthorHandler(authorService.NewAuthorService(s.Authors, s.Books, clock)).RegisterRoutes(api)
	bookHandler.NewHandler(bookService.NewService(s.Books, s.Authors, clock)).RegisterRoutes(api)
	orderHandler.NewOrderHandler(orderService.NewOrderService(s.Orders, s.Books)).RegisterRoutes(api)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return client.New(srv.URL + "/")
}

func intPtr(n int) *int { return &n }

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", h.Status)

	author, err := c.CreateAuthor(ctx, authormodel.AuthorRequest{Name: "Ursula K. Le Guin"})
	require.NoError(t, err)

	price := decimal.RequireFromString("15.00")
	book, err := c.CreateBook(ctx, bookmodel.BookRequest{
		Title:  "The Dispossessed",
		Author: author.ID.String(),
		ISBN:   "9780060512750",
		Genre:  bookmodel.GenreSciFi,
		Price:  &price,
		Stock:  intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ursula K. Le Guin", book.Author.Name)

	list, err := c.ListBooks(ctx, bookmodel.GenreSciFi, "dispossessed", 1, 5)
	require.NoError(t, err)
	require.Len(t, list.Books, 1)
	assert.EqualValues(t, 1, list.Pagination.TotalCount)

	order, err := c.CreateOrder(ctx, ordermodel.CreateOrderRequest{
		CustomerName:  "Shevek",
		CustomerEmail: "shevek@anarres.example",
		ShippingAddress: ordermodel.ShippingAddress{
			Street: "1 Square", City: "Abbenay", State: "AN", ZipCode: "00001",
		},
		Items:         []ordermodel.CreateOrderItem{{Book: book.ID.String(), Quantity: 4}},
		PaymentMethod: ordermodel.PaymentMethodCashOnDelivery,
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("64.80")), order.Total.String())

	got, err := c.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.False(t, got.InStock)

	require.NoError(t, c.DeleteOrder(ctx, order.ID))

	got, err = c.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	_, err := c.GetBook(ctx, uuid.New())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Book not found", apiErr.Message)

	_, err = c.CreateAuthor(ctx, authormodel.AuthorRequest{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.NotEmpty(t, apiErr.Fields)
	assert.Equal(t, "name", apiErr.Fields[0].Field)
}

func TestClientPreflight(t *testing.T) {
	c := newServer(t)

	allowed, err := c.Preflight(context.Background(), "/api/books", "https://shop.example")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example", allowed)

	allowed, err = c.Preflight(context.Background(), "/api/books", "https://evil.example")
	require.NoError(t, err)
	assert.Empty(t, allowed)
}
