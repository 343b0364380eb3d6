package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/domains/book/service"
	"bookstore-api/internal/shared/response"
	"bookstore-api/internal/shared/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler - HTTP Handler (single file)
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes mounts the book endpoints under /books.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	books := router.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/export", h.ExportBooks)
		books.GET("/:id", h.GetBook)
		books.POST("", h.CreateBook)
		books.PUT("/:id", h.ReplaceBook)
		books.PATCH("/:id", h.PatchBook)
		books.PATCH("/:id/stock", h.UpdateStock)
		books.DELETE("/:id", h.DeleteBook)
	}
}

func listFilter(c *gin.Context) model.BookFilter {
	return model.BookFilter{
		Genre: model.Genre(c.Query("genre")),
		Query: c.Query("q"),
	}
}

// ════════════════════════════════════════════════════════════
// READ
// ════════════════════════════════════════════════════════════

// ListBooks - GET /api/books
// Query params: page, limit, genre, q
func (h *Handler) ListBooks(c *gin.Context) {
	page, err := utils.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	books, total, err := h.service.ListBooks(c.Request.Context(), listFilter(c), page)
	if err != nil {
		response.HandleError(c, err, "Failed to fetch books")
		return
	}

	response.SuccessWithPagination(c, books, response.NewPagination(page.Page, page.Limit, total))
}

// ExportBooks - GET /api/books/export
// Same filters as ListBooks, without paging.
func (h *Handler) ExportBooks(c *gin.Context) {
	data, err := h.service.ExportBooks(c.Request.Context(), listFilter(c))
	if err != nil {
		response.HandleError(c, err, "Failed to export books")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="books.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetBook - GET /api/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, "Failed to fetch book")
		return
	}

	response.OK(c, book)
}

// ════════════════════════════════════════════════════════════
// WRITE
// ════════════════════════════════════════════════════════════

// CreateBook - POST /api/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err, "Failed to create book")
		return
	}

	response.Created(c, "Book created successfully", book)
}

// ReplaceBook - PUT /api/books/:id
func (h *Handler) ReplaceBook(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.service.ReplaceBook(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err, "Failed to update book")
		return
	}

	response.Success(c, http.StatusOK, "Book updated successfully", book)
}

// PatchBook - PATCH /api/books/:id
func (h *Handler) PatchBook(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	var req model.BookPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	book, err := h.service.PatchBook(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err, "Failed to update book")
		return
	}

	response.Success(c, http.StatusOK, "Book updated successfully", book)
}

// UpdateStock - PATCH /api/books/:id/stock
func (h *Handler) UpdateStock(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	var req model.StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, model.ErrInvalidStock, "")
		return
	}

	book, err := h.service.UpdateStock(c.Request.Context(), id, req.Stock)
	if err != nil {
		response.HandleError(c, err, "Failed to update book stock")
		return
	}

	response.Success(c, http.StatusOK, "Book stock updated successfully", book)
}

// DeleteBook - DELETE /api/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	book, err := h.service.DeleteBook(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, "Failed to delete book")
		return
	}

	response.Success(c, http.StatusOK, "Book deleted successfully", book)
}
