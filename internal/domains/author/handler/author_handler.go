package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/domains/author/service"
	"bookstore-api/internal/shared/response"
	"bookstore-api/internal/shared/utils"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
	}
}

func (h *AuthorHandler) RegisterRoutes(router *gin.RouterGroup) {
	authors := router.Group("/authors")
	{
		authors.GET("", h.GetAll)
		authors.GET("/:id", h.GetByID)
		authors.POST("", h.Create)
		authors.PUT("/:id", h.Update)
		authors.DELETE("/:id", h.Delete)
	}
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /api/authors
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.CreateAuthor(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err, "Failed to create author")
		return
	}

	response.Created(c, "Author created successfully", resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GetByID - GET /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	resp, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, "Failed to fetch author")
		return
	}

	response.OK(c, resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GetAll - GET /api/authors?page=1&limit=10&nationality=
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) GetAll(c *gin.Context) {
	page, err := utils.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	authors, total, err := h.service.ListAuthors(c.Request.Context(), c.Query("nationality"), page)
	if err != nil {
		response.HandleError(c, err, "Failed to fetch authors")
		return
	}

	response.SuccessWithPagination(c, authors, response.NewPagination(page.Page, page.Limit, total))
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PUT /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	var req model.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.ReplaceAuthor(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err, "Failed to update author")
		return
	}

	response.Success(c, http.StatusOK, "Author updated successfully", resp)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	resp, err := h.service.DeleteAuthor(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, "Failed to delete author")
		return
	}

	response.Success(c, http.StatusOK, "Author deleted successfully", resp)
}
