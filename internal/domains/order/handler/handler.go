package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/domains/order/service"
	"bookstore-api/internal/shared/response"
	"bookstore-api/internal/shared/utils"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)                   // POST /api/orders
		orders.GET("", h.ListOrders)                     // GET /api/orders?page=1&limit=10&status=pending
		orders.GET("/:id", h.GetOrderDetail)             // GET /api/orders/:id
		orders.PUT("/:id", h.UpdateOrder)                // PUT /api/orders/:id
		orders.PATCH("/:id/status", h.UpdateOrderStatus) // PATCH /api/orders/:id/status
		orders.DELETE("/:id", h.DeleteOrder)             // DELETE /api/orders/:id
	}
}

// =====================================================
// CREATE ORDER
// =====================================================

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		response.HandleError(c, err, "Failed to create order")
		return
	}

	response.Created(c, "Order created successfully", order)
}

// =====================================================
// QUERIES
// =====================================================

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, err := utils.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), model.OrderStatus(c.Query("status")), page)
	if err != nil {
		response.HandleError(c, err, "Failed to fetch orders")
		return
	}

	response.SuccessWithPagination(c, orders, response.NewPagination(page.Page, page.Limit, total))
}

func (h *OrderHandler) GetOrderDetail(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, "Failed to fetch order")
		return
	}

	response.OK(c, order)
}

// =====================================================
// UPDATES
// =====================================================

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	var req model.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.ReplaceOrder(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err, "Failed to update order")
		return
	}

	response.Success(c, http.StatusOK, "Order updated successfully", order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		response.HandleError(c, err, "Failed to update order status")
		return
	}

	response.Success(c, http.StatusOK, "Order status updated successfully", order)
}

// =====================================================
// DELETE ORDER
// =====================================================

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "")
		return
	}

	order, err := h.orderService.RemoveOrder(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err, "Failed to delete order")
		return
	}

	response.Success(c, http.StatusOK, "Order deleted successfully", order)
}
