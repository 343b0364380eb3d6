package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookstore-api/internal/domains/book/handler"
	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/shared/apperror"
	"bookstore-api/internal/shared/response"
	"bookstore-api/internal/shared/utils"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListBooks(ctx context.Context, filter model.BookFilter, page utils.Pagination) ([]*model.BookResponse, int64, error) {
	args := m.Called(ctx, filter, page)
	books, _ := args.Get(0).([]*model.BookResponse)
	return books, args.Get(1).(int64), args.Error(2)
}

func (m *mockService) GetBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.BookResponse)
	return b, args.Error(1)
}

func (m *mockService) CreateBook(ctx context.Context, req model.BookRequest) (*model.BookResponse, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*model.BookResponse)
	return b, args.Error(1)
}

func (m *mockService) ReplaceBook(ctx context.Context, id uuid.UUID, req model.BookRequest) (*model.BookResponse, error) {
	args := m.Called(ctx, id, req)
	b, _ := args.Get(0).(*model.BookResponse)
	return b, args.Error(1)
}

func (m *mockService) PatchBook(ctx context.Context, id uuid.UUID, req model.BookPatchRequest) (*model.BookResponse, error) {
	args := m.Called(ctx, id, req)
	b, _ := args.Get(0).(*model.BookResponse)
	return b, args.Error(1)
}

func (m *mockService) UpdateStock(ctx context.Context, id uuid.UUID, stock *int) (*model.BookResponse, error) {
	args := m.Called(ctx, id, stock)
	b, _ := args.Get(0).(*model.BookResponse)
	return b, args.Error(1)
}

func (m *mockService) DeleteBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.BookResponse)
	return b, args.Error(1)
}

func (m *mockService) ExportBooks(ctx context.Context, filter model.BookFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func newRouter(svc *mockService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestListBooks(t *testing.T) {
	svc := new(mockService)
	books := []*model.BookResponse{{ID: uuid.New(), Title: "Dune", Price: decimal.NewFromInt(10)}}
	svc.On("ListBooks", mock.Anything,
		model.BookFilter{Genre: model.GenreSciFi, Query: "dune"},
		utils.Pagination{Page: 2, Limit: 5},
	).Return(books, int64(11), nil)

	w, env := do(newRouter(svc), http.MethodGet, "/api/books?genre=Sci-Fi&q=dune&page=2&limit=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, response.Pagination{
		CurrentPage: 2, TotalPages: 3, TotalCount: 11, HasNextPage: true, HasPrevPage: true,
	}, *env.Pagination)
	svc.AssertExpectations(t)
}

func TestListBooksRejectsBadPaging(t *testing.T) {
	svc := new(mockService)

	w, env := do(newRouter(svc), http.MethodGet, "/api/books?limit=500", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, apperror.CodeValidation, env.Error)
	svc.AssertNotCalled(t, "ListBooks", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetBook(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()
	svc.On("GetBook", mock.Anything, id).Return(nil, model.ErrBookNotFound)

	r := newRouter(svc)

	w, env := do(r, http.MethodGet, "/api/books/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book not found", env.Message)
	assert.Equal(t, model.ErrCodeBookNotFound, env.Error)

	w, env = do(r, http.MethodGet, "/api/books/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", env.Message)
	assert.Equal(t, apperror.CodeInvalidID, env.Error)
}

func TestCreateBook(t *testing.T) {
	svc := new(mockService)
	created := &model.BookResponse{ID: uuid.New(), Title: "Dune"}
	svc.On("CreateBook", mock.Anything, mock.MatchedBy(func(req model.BookRequest) bool {
		return req.Title == "Dune" && req.Price != nil && req.Price.Equal(decimal.RequireFromString("9.99"))
	})).Return(created, nil)

	r := newRouter(svc)

	w, env := do(r, http.MethodPost, "/api/books", `{"title":"Dune","price":9.99}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Book created successfully", env.Message)

	w, env = do(r, http.MethodPost, "/api/books", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", env.Message)
	assert.Equal(t, apperror.CodeValidation, env.Error)
}

func TestCreateBookInternalError(t *testing.T) {
	svc := new(mockService)
	svc.On("CreateBook", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	w, env := do(newRouter(svc), http.MethodPost, "/api/books", `{"title":"Dune"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to create book", env.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestUpdateStock(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()
	svc.On("UpdateStock", mock.Anything, id, mock.MatchedBy(func(n *int) bool { return n != nil && *n == 7 })).
		Return(&model.BookResponse{ID: id, Stock: 7, InStock: true}, nil)
	svc.On("UpdateStock", mock.Anything, id, (*int)(nil)).Return(nil, model.ErrInvalidStock)

	r := newRouter(svc)

	w, env := do(r, http.MethodPatch, "/api/books/"+id.String()+"/stock", `{"stock":7}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book stock updated successfully", env.Message)

	w, env = do(r, http.MethodPatch, "/api/books/"+id.String()+"/stock", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Valid stock quantity is required", env.Message)
}

func TestDeleteBook(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()
	svc.On("DeleteBook", mock.Anything, id).Return(&model.BookResponse{ID: id}, nil)

	w, env := do(newRouter(svc), http.MethodDelete, "/api/books/"+id.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book deleted successfully", env.Message)
}

func TestExportBooks(t *testing.T) {
	svc := new(mockService)
	svc.On("ExportBooks", mock.Anything, model.BookFilter{Genre: model.GenreFantasy}).Return([]byte("xlsx"), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/books/export?genre=Fantasy", nil)
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "books.xlsx")
	assert.Equal(t, "xlsx", w.Body.String())
}
