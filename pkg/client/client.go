// Package client is a typed HTTP client for the bookstore REST API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	authormodel "bookstore-api/internal/domains/author/model"
	bookmodel "bookstore-api/internal/domains/book/model"
	ordermodel "bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/shared/apperror"
	"bookstore-api/internal/shared/response"
)

const defaultTimeout = 10 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Code    string
	Fields  []apperror.FieldError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Health is the /health payload.
type Health struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}

// BookList is one page of books.
type BookList struct {
	Books      []*bookmodel.BookResponse
	Pagination response.Pagination
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return &h, nil
}

// ListBooks fetches one page. Zero page or limit leaves the server default.
func (c *Client) ListBooks(ctx context.Context, genre bookmodel.Genre, query string, page, limit int) (*BookList, error) {
	q := url.Values{}
	if genre != "" {
		q.Set("genre", string(genre))
	}
	if query != "" {
		q.Set("q", query)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/books"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out BookList
	env, err := c.do(ctx, http.MethodGet, path, nil, &out.Books)
	if err != nil {
		return nil, err
	}
	if env.Pagination != nil {
		out.Pagination = *env.Pagination
	}
	return &out, nil
}

func (c *Client) GetBook(ctx context.Context, id uuid.UUID) (*bookmodel.BookResponse, error) {
	var out bookmodel.BookResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/books/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAuthor(ctx context.Context, req authormodel.AuthorRequest) (*authormodel.AuthorResponse, error) {
	var out authormodel.AuthorResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/authors", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBook(ctx context.Context, req bookmodel.BookRequest) (*bookmodel.BookResponse, error) {
	var out bookmodel.BookResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/books", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req ordermodel.CreateOrderRequest) (*ordermodel.OrderResponse, error) {
	var out ordermodel.OrderResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/orders/"+id.String(), nil, nil)
	return err
}

// Preflight sends a CORS preflight for path as origin and returns the
// Access-Control-Allow-Origin the server answered with.
func (c *Client) Preflight(ctx context.Context, path, origin string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return resp.Header.Get("Access-Control-Allow-Origin"), nil
}

// do sends body as JSON and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}

	if resp.StatusCode >= 300 || !env.Success {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: env.Message,
			Code:    env.Error,
			Fields:  env.Errors,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return &env, nil
}

// envelope mirrors response.Response with data left undecoded.
type envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       jsoniter.RawMessage   `json:"data"`
	Pagination *response.Pagination  `json:"pagination"`
	Error      string                `json:"error"`
	Errors     []apperror.FieldError `json:"errors"`
}
