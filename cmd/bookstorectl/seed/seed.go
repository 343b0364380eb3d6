// Package seed loads a YAML catalogue of authors, books and orders into a
// running store, either through the services or over the REST API.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	authormodel "bookstore-api/internal/domains/author/model"
	authorService "bookstore-api/internal/domains/author/service"
	bookmodel "bookstore-api/internal/domains/book/model"
	bookService "bookstore-api/internal/domains/book/service"
	ordermodel "bookstore-api/internal/domains/order/model"
	orderService "bookstore-api/internal/domains/order/service"
	"bookstore-api/internal/shared"
)

//go:embed demo.yaml
var demo []byte

// Demo returns the bundled catalogue.
func Demo() []byte {
	return demo
}

type Dataset struct {
	Authors []Author `yaml:"authors"`
	Books   []Book   `yaml:"books"`
	Orders  []Order  `yaml:"orders"`
}

type Author struct {
	Name        string  `yaml:"name"`
	Email       string  `yaml:"email"`
	Nationality string  `yaml:"nationality"`
	Biography   string  `yaml:"biography"`
	BirthDate   string  `yaml:"birthDate"`
	Website     string  `yaml:"website"`
	Awards      []Award `yaml:"awards"`
}

type Award struct {
	Name string `yaml:"name"`
	Year int    `yaml:"year"`
}

// Book.Author is an index into Dataset.Authors.
type Book struct {
	Title         string `yaml:"title"`
	Author        int    `yaml:"author"`
	ISBN          string `yaml:"isbn"`
	Genre         string `yaml:"genre"`
	Price         string `yaml:"price"`
	Stock         *int   `yaml:"stock"`
	Description   string `yaml:"description"`
	PublishedDate string `yaml:"publishedDate"`
	Pages         *int   `yaml:"pages"`
}

type Order struct {
	CustomerName    string      `yaml:"customerName"`
	CustomerEmail   string      `yaml:"customerEmail"`
	CustomerPhone   string      `yaml:"customerPhone"`
	ShippingAddress Address     `yaml:"shippingAddress"`
	Items           []OrderItem `yaml:"items"`
	PaymentMethod   string      `yaml:"paymentMethod"`
	Notes           string      `yaml:"notes"`
}

type Address struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	ZipCode string `yaml:"zipCode"`
	Country string `yaml:"country"`
}

// OrderItem.Book is an index into Dataset.Books.
type OrderItem struct {
	Book     int `yaml:"book"`
	Quantity int `yaml:"quantity"`
}

// Parse decodes a catalogue and checks its cross references.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, b := range ds.Books {
		if b.Author < 0 || b.Author >= len(ds.Authors) {
			return nil, fmt.Errorf("book %d (%s): author index %d out of range", i, b.Title, b.Author)
		}
	}
	for i, o := range ds.Orders {
		for _, it := range o.Items {
			if it.Book < 0 || it.Book >= len(ds.Books) {
				return nil, fmt.Errorf("order %d: book index %d out of range", i, it.Book)
			}
		}
	}
	return &ds, nil
}

// Sink receives the catalogue. pkg/client.Client satisfies it directly;
// Services adapts the in-process services.
type Sink interface {
	CreateAuthor(ctx context.Context, req authormodel.AuthorRequest) (*authormodel.AuthorResponse, error)
	CreateBook(ctx context.Context, req bookmodel.BookRequest) (*bookmodel.BookResponse, error)
	CreateOrder(ctx context.Context, req ordermodel.CreateOrderRequest) (*ordermodel.OrderResponse, error)
}

type Services struct {
	Authors authorService.ServiceInterface
	Books   bookService.ServiceInterface
	Orders  orderService.OrderService
}

func (s Services) CreateAuthor(ctx context.Context, req authormodel.AuthorRequest) (*authormodel.AuthorResponse, error) {
	return s.Authors.CreateAuthor(ctx, req)
}

func (s Services) CreateBook(ctx context.Context, req bookmodel.BookRequest) (*bookmodel.BookResponse, error) {
	return s.Books.CreateBook(ctx, req)
}

func (s Services) CreateOrder(ctx context.Context, req ordermodel.CreateOrderRequest) (*ordermodel.OrderResponse, error) {
	return s.Orders.PlaceOrder(ctx, req)
}

// Summary counts what was created.
type Summary struct {
	Authors int
	Books   int
	Orders  int
}

// Progress is called after each created record.
type Progress func(kind, name string)

// Run loads ds into sink in order authors, books, orders. It stops at the
// first failure and reports what was created so far.
func Run(ctx context.Context, sink Sink, ds *Dataset, progress Progress) (Summary, error) {
	var sum Summary
	if progress == nil {
		progress = func(string, string) {}
	}

	authorIDs := make([]uuid.UUID, len(ds.Authors))
	for i, a := range ds.Authors {
		req, err := a.request()
		if err != nil {
			return sum, err
		}
		created, err := sink.CreateAuthor(ctx, req)
		if err != nil {
			return sum, fmt.Errorf("create author %q: %w", a.Name, err)
		}
		authorIDs[i] = created.ID
		sum.Authors++
		progress("author", a.Name)
	}

	bookIDs := make([]uuid.UUID, len(ds.Books))
	for i, b := range ds.Books {
		req, err := b.request(authorIDs[b.Author])
		if err != nil {
			return sum, err
		}
		created, err := sink.CreateBook(ctx, req)
		if err != nil {
			return sum, fmt.Errorf("create book %q: %w", b.Title, err)
		}
		bookIDs[i] = created.ID
		sum.Books++
		progress("book", b.Title)
	}

	for _, o := range ds.Orders {
		if _, err := sink.CreateOrder(ctx, o.request(bookIDs)); err != nil {
			return sum, fmt.Errorf("create order for %q: %w", o.CustomerName, err)
		}
		sum.Orders++
		progress("order", o.CustomerName)
	}

	return sum, nil
}

func (a Author) request() (authormodel.AuthorRequest, error) {
	req := authormodel.AuthorRequest{
		Name:        a.Name,
		Email:       a.Email,
		Nationality: a.Nationality,
		Biography:   a.Biography,
		Website:     a.Website,
	}
	for _, aw := range a.Awards {
		req.Awards = append(req.Awards, authormodel.Award{Name: aw.Name, Year: aw.Year})
	}
	if a.BirthDate != "" {
		d, err := shared.ParseDate(a.BirthDate)
		if err != nil {
			return req, fmt.Errorf("author %q: %w", a.Name, err)
		}
		req.BirthDate = &d
	}
	return req, nil
}

func (b Book) request(author uuid.UUID) (bookmodel.BookRequest, error) {
	req := bookmodel.BookRequest{
		Title:       b.Title,
		Author:      author.String(),
		ISBN:        b.ISBN,
		Genre:       bookmodel.Genre(b.Genre),
		Stock:       b.Stock,
		Description: b.Description,
		Pages:       b.Pages,
	}
	if b.Price != "" {
		price, err := decimal.NewFromString(b.Price)
		if err != nil {
			return req, fmt.Errorf("book %q: invalid price %q", b.Title, b.Price)
		}
		req.Price = &price
	}
	if b.PublishedDate != "" {
		d, err := shared.ParseDate(b.PublishedDate)
		if err != nil {
			return req, fmt.Errorf("book %q: %w", b.Title, err)
		}
		req.PublishedDate = &d
	}
	return req, nil
}

func (o Order) request(bookIDs []uuid.UUID) ordermodel.CreateOrderRequest {
	req := ordermodel.CreateOrderRequest{
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: ordermodel.ShippingAddress(o.ShippingAddress),
		PaymentMethod:   ordermodel.PaymentMethod(o.PaymentMethod),
		Notes:           o.Notes,
	}
	for _, it := range o.Items {
		req.Items = append(req.Items, ordermodel.CreateOrderItem{
			Book:     bookIDs[it.Book].String(),
			Quantity: it.Quantity,
		})
	}
	return req
}
