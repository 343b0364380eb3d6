package repository

import (
	"context"

	"github.com/google/uuid"

	"bookstore-api/internal/domains/order/model"
)

// =====================================================
// ORDER REPOSITORY INTERFACE
// =====================================================
type OrderRepository interface {
	// Place assigns ID and timestamps, then in one storage transaction
	// decrements stock for every model.StockLines entry and stores the order.
	// Business rules:
	//   - each decrement is conditional on stock >= quantity
	//   - on any failed line nothing is written and a *model.StockConflict
	//     naming the first failing book (in StockLines order) is returned
	Place(ctx context.Context, o *model.Order) error

	// FindByID returns model.ErrOrderNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List filters by exact status, newest first (ties by id).
	List(ctx context.Context, filter model.OrderFilter) ([]*model.Order, int64, error)

	// Update is an atomic read-modify-write. It never touches stock.
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Order) error) (*model.Order, error)

	// Remove deletes and returns the order in one storage transaction.
	// Business rules:
	//   - model.ErrOrderCannotDelete unless Status.Deletable()
	//   - when Status.RestocksOnDelete(), each line's quantity is returned to
	//     its book; books deleted since are skipped
	Remove(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
