package service

import (
	"context"

	"github.com/google/uuid"

	"bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/shared/utils"
)

// =====================================================
// ORDER SERVICE INTERFACE
// =====================================================
type OrderService interface {
	// Place a new order. Prices are snapshotted from the books and stock is
	// decremented atomically with the insert.
	// Business rules:
	//   - every referenced book must exist ("Book with ID <id> not found")
	//   - quantities for the same book are summed before the stock check
	//   - subtotal > 50 ships free, otherwise 9.99; tax is 8% of subtotal
	//   - status and payment status start as pending
	PlaceOrder(ctx context.Context, req model.CreateOrderRequest) (*model.OrderResponse, error)

	// Get order detail by ID
	GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// List orders, newest first, optionally with one status
	ListOrders(ctx context.Context, status model.OrderStatus, page utils.Pagination) ([]*model.OrderResponse, int64, error)

	// Set the status. No transition graph is enforced.
	UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) (*model.OrderResponse, error)

	// Replace order fields outside the workflow.
	// Business rules:
	//   - the merged document must satisfy the full order rules
	//   - stock and totals are left as supplied
	ReplaceOrder(ctx context.Context, id uuid.UUID, req model.UpdateOrderRequest) (*model.OrderResponse, error)

	// Remove an order.
	// Business rules:
	//   - only pending or cancelled orders can be removed
	//   - pending orders return their quantities to stock
	RemoveOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}
