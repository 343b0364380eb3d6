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
	"github.com/stretchr/testify/require"

	"bookstore-api/internal/domains/order/handler"
	"bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/shared/apperror"
	"bookstore-api/internal/shared/response"
	"bookstore-api/internal/shared/utils"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, req model.CreateOrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*model.OrderResponse)
	return out, args.Error(1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.OrderResponse)
	return out, args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, status model.OrderStatus, page utils.Pagination) ([]*model.OrderResponse, int64, error) {
	args := m.Called(ctx, status, page)
	out, _ := args.Get(0).([]*model.OrderResponse)
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	out, _ := args.Get(0).(*model.OrderResponse)
	return out, args.Error(1)
}

func (m *mockOrderService) ReplaceOrder(ctx context.Context, id uuid.UUID, req model.UpdateOrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	out, _ := args.Get(0).(*model.OrderResponse)
	return out, args.Error(1)
}

func (m *mockOrderService) RemoveOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*model.OrderResponse)
	return out, args.Error(1)
}

func serve(svc *mockOrderService, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewOrderHandler(svc).RegisterRoutes(r.Group("/api"))

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreateOrder(t *testing.T) {
	svc := new(mockOrderService)
	bookID := uuid.New()
	svc.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req model.CreateOrderRequest) bool {
		return len(req.Items) == 1 && req.Items[0].Book == bookID.String() && req.Items[0].Quantity == 3
	})).Return(&model.OrderResponse{ID: uuid.New(), Status: model.OrderStatusPending}, nil)

	body := `{"customerName":"Jane","customerEmail":"jane@example.com","items":[{"book":"` + bookID.String() + `","quantity":3}],"paymentMethod":"paypal"}`
	w, env := serve(svc, http.MethodPost, "/api/orders", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Order created successfully", env.Message)
	svc.AssertExpectations(t)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc := new(mockOrderService)
	svc.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(nil, model.NewInsufficientStockError("Dune", 2, 3))

	w, env := serve(svc, http.MethodPost, "/api/orders", `{"items":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Insufficient stock for "Dune". Available: 2, Requested: 3`, env.Message)
	assert.Equal(t, model.ErrCodeInsufficientStock, env.Error)
}

func TestCreateOrderValidationErrors(t *testing.T) {
	svc := new(mockOrderService)
	verr := apperror.Validation(apperror.Invalid("Customer name is required"))
	verr.Fields = []apperror.FieldError{{Field: "customerName", Message: "Customer name is required"}}
	svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, verr)

	w, env := serve(svc, http.MethodPost, "/api/orders", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation Error", env.Message)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "customerName", env.Errors[0].Field)
}

func TestListOrdersPassesStatus(t *testing.T) {
	svc := new(mockOrderService)
	svc.On("ListOrders", mock.Anything, model.OrderStatusShipped, utils.Pagination{Page: 1, Limit: 10}).
		Return([]*model.OrderResponse{}, int64(0), nil)

	w, _ := serve(svc, http.MethodGet, "/api/orders?status=shipped", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := new(mockOrderService)
	id := uuid.New()
	svc.On("UpdateStatus", mock.Anything, id, model.UpdateStatusRequest{Status: model.OrderStatusConfirmed}).
		Return(&model.OrderResponse{ID: id, Status: model.OrderStatusConfirmed}, nil)

	w, env := serve(svc, http.MethodPatch, "/api/orders/"+id.String()+"/status", `{"status":"confirmed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order status updated successfully", env.Message)
}

func TestDeleteOrder(t *testing.T) {
	svc := new(mockOrderService)
	id := uuid.New()
	svc.On("RemoveOrder", mock.Anything, id).Return(nil, model.ErrOrderCannotDelete)

	w, env := serve(svc, http.MethodDelete, "/api/orders/"+id.String(), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Can only delete pending or cancelled orders", env.Message)

	w, _ = serve(svc, http.MethodDelete, "/api/orders/123", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
