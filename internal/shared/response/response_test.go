package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bookstore-api/internal/shared/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, &Pagination{CurrentPage: 2, TotalPages: 3, TotalCount: 25, HasNextPage: true, HasPrevPage: true}, p)

	p = NewPagination(3, 10, 25)
	assert.False(t, p.HasNextPage)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}

func render(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/things?x=1", nil)
	fn(c)
	return w
}

func TestHandleError(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		w := render(func(c *gin.Context) {
			HandleError(c, apperror.Validation(errors.New("Book title is required")), "Failed")
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Validation Error","error":"VALIDATION_ERROR","errors":[{"field":"","message":"Book title is required"}]}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		w := render(func(c *gin.Context) {
			HandleError(c, apperror.NotFound("BOOK_NOT_FOUND", "Book not found"), "Failed")
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Book not found","error":"BOOK_NOT_FOUND"}`, w.Body.String())
	})

	t.Run("unclassified", func(t *testing.T) {
		w := render(func(c *gin.Context) {
			HandleError(c, errors.New("connection reset"), "Failed to fetch books")
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Failed to fetch books","error":"INTERNAL_ERROR"}`, w.Body.String())
	})
}

func TestNotFoundRoute(t *testing.T) {
	w := render(NotFoundRoute)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route /api/things?x=1 not found","error":"Not Found"}`, w.Body.String())
}
