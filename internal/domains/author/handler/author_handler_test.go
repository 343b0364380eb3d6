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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookstore-api/internal/domains/author/handler"
	"bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/shared/response"
	"bookstore-api/internal/shared/utils"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListAuthors(ctx context.Context, nationality string, page utils.Pagination) ([]*model.AuthorResponse, int64, error) {
	args := m.Called(ctx, nationality, page)
	out, _ := args.Get(0).([]*model.AuthorResponse)
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *mockService) GetAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorDetailResponse, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.AuthorDetailResponse)
	return out, args.Error(1)
}

func (m *mockService) CreateAuthor(ctx context.Context, req model.AuthorRequest) (*model.AuthorResponse, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*model.AuthorResponse)
	return out, args.Error(1)
}

func (m *mockService) ReplaceAuthor(ctx context.Context, id uuid.UUID, req model.AuthorRequest) (*model.AuthorResponse, error) {
	args := m.Called(ctx, id, req)
	out, _ := args.Get(0).(*model.AuthorResponse)
	return out, args.Error(1)
}

func (m *mockService) DeleteAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorResponse, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.AuthorResponse)
	return out, args.Error(1)
}

func serve(svc *mockService, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewAuthorHandler(svc).RegisterRoutes(r.Group("/api"))

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestListAuthorsDefaultsPaging(t *testing.T) {
	svc := new(mockService)
	svc.On("ListAuthors", mock.Anything, "british", utils.Pagination{Page: 1, Limit: 10}).
		Return([]*model.AuthorResponse{}, int64(0), nil)

	w, env := serve(svc, http.MethodGet, "/api/authors?nationality=british", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 0, env.Pagination.TotalPages)
	assert.False(t, env.Pagination.HasNextPage)
	svc.AssertExpectations(t)
}

func TestCreateAuthor(t *testing.T) {
	svc := new(mockService)
	svc.On("CreateAuthor", mock.Anything, mock.MatchedBy(func(req model.AuthorRequest) bool {
		return req.Name == "Zadie Smith" && req.BirthDate != nil && req.BirthDate.String() == "1975-10-25"
	})).Return(&model.AuthorResponse{ID: uuid.New(), Name: "Zadie Smith"}, nil)

	w, env := serve(svc, http.MethodPost, "/api/authors", `{"name":"Zadie Smith","birthDate":"1975-10-25"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Author created successfully", env.Message)
	svc.AssertExpectations(t)
}

func TestDeleteAuthorWithBooks(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()
	svc.On("DeleteAuthor", mock.Anything, id).Return(nil, model.NewAuthorHasBooksError(3))

	w, env := serve(svc, http.MethodDelete, "/api/authors/"+id.String(), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t,
		"Cannot delete author. They have 3 book(s) in the system. Please reassign or delete the books first.",
		env.Message)
	assert.Equal(t, model.ErrCodeAuthorHasBooks, env.Error)
}

func TestGetAuthorNotFound(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()
	svc.On("GetAuthor", mock.Anything, id).Return(nil, model.ErrAuthorNotFound)

	w, env := serve(svc, http.MethodGet, "/api/authors/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Author not found", env.Message)
}

func TestUpdateAuthor(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()
	svc.On("ReplaceAuthor", mock.Anything, id, mock.Anything).
		Return(&model.AuthorResponse{ID: id, Name: "Renamed"}, nil)

	w, env := serve(svc, http.MethodPut, "/api/authors/"+id.String(), `{"name":"Renamed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Author updated successfully", env.Message)
}
