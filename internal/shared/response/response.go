package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookstore-api/internal/shared/apperror"
)

// Response is the JSON envelope shared by every endpoint.
type Response struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message,omitempty"`
	Data       interface{}           `json:"data,omitempty"`
	Pagination *Pagination           `json:"pagination,omitempty"`
	Error      string                `json:"error,omitempty"`
	Errors     []apperror.FieldError `json:"errors,omitempty"`
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes the pagination envelope for page/limit over total items.
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Success responses
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, "", data)
}

func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

func SuccessWithPagination(c *gin.Context, data interface{}, pagination *Pagination) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}

// Error responses
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Error:   code,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, apperror.CodeValidation, message)
}

func InvalidID(c *gin.Context) {
	HandleError(c, apperror.InvalidID(), "")
}

// NotFoundRoute renders the envelope for unmatched routes.
func NotFoundRoute(c *gin.Context) {
	Error(c, http.StatusNotFound, "Not Found", "Route "+c.Request.URL.String()+" not found")
}

// HandleError renders err with the status of its kind. Errors outside the
// taxonomy are logged and answered with fallback as a generic 500.
func HandleError(c *gin.Context, err error, fallback string) {
	ae, ok := apperror.As(err)
	if !ok || ae.Kind == apperror.KindInternal {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("request failed")

		if fallback == "" {
			fallback = "Internal Server Error"
		}
		Error(c, http.StatusInternalServerError, apperror.CodeInternal, fallback)
		return
	}

	if ae.Kind == apperror.KindUnavailable {
		log.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("dependency unavailable")
	}

	c.JSON(ae.HTTPStatus(), Response{
		Success: false,
		Message: ae.Message,
		Error:   ae.Code,
		Errors:  ae.Fields,
	})
}
