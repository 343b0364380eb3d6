package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	bookmodel "bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/domains/order/repository"
	"bookstore-api/internal/shared/apperror"
	"bookstore-api/internal/shared/utils"
	"bookstore-api/pkg/logger"
)

// BookLookup is the part of the book store the order workflow reads.
type BookLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*bookmodel.Book, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*bookmodel.Book, error)
}

// =====================================================
// ORDER SERVICE IMPLEMENTATION
// =====================================================
type orderService struct {
	orderRepo repository.OrderRepository
	books     BookLookup
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository, books BookLookup) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		books:     books,
	}
}

// =====================================================
// PLACE ORDER - MAIN BUSINESS LOGIC
// =====================================================

func (s *orderService) PlaceOrder(ctx context.Context, req model.CreateOrderRequest) (*model.OrderResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	// 1. Fetch books and snapshot prices
	books, items, err := s.validateAndFetchBookItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// 2. Build order
	order := &model.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
		Status:          model.OrderStatusPending,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		Notes:           req.Notes,
	}
	model.CalculateOrderAmounts(items).Apply(order)

	// 3. Decrement stock and insert in one transaction
	if err := s.orderRepo.Place(ctx, order); err != nil {
		var conflict *model.StockConflict
		if errors.As(err, &conflict) {
			return nil, s.conflictError(ctx, conflict)
		}
		return nil, err
	}

	logger.Info("order placed", map[string]interface{}{
		"order_id": order.ID.String(),
		"items":    order.TotalItems(),
		"total":    order.Total.String(),
	})

	return model.ToOrderResponse(order, bookRefs(books)), nil
}

// validateAndFetchBookItems resolves every line and checks the summed
// quantity per book against the current stock.
func (s *orderService) validateAndFetchBookItems(ctx context.Context, reqItems []model.CreateOrderItem) (map[uuid.UUID]*bookmodel.Book, []model.OrderItem, error) {
	ids := make([]uuid.UUID, len(reqItems))
	for i, it := range reqItems {
		ids[i] = it.BookID()
	}

	books, err := s.books.FindByIDs(ctx, utils.UniqueIDs(ids))
	if err != nil {
		return nil, nil, err
	}

	requested := make(map[uuid.UUID]int, len(books))
	items := make([]model.OrderItem, len(reqItems))
	for i, it := range reqItems {
		b, ok := books[ids[i]]
		if !ok {
			return nil, nil, model.NewBookNotFoundError(ids[i])
		}
		// requested never exceeds stock, so the subtraction cannot wrap.
		if it.Quantity > b.Stock-requested[b.ID] {
			return nil, nil, model.NewInsufficientStockError(b.Title, b.Stock, model.AddQuantity(requested[b.ID], it.Quantity))
		}
		requested[b.ID] += it.Quantity
		items[i] = model.OrderItem{BookID: b.ID, Quantity: it.Quantity, Price: b.Price}
	}
	return books, items, nil
}

// conflictError turns a failed stock decrement into the client message,
// re-reading the book for its title.
func (s *orderService) conflictError(ctx context.Context, c *model.StockConflict) error {
	if !c.Found {
		return model.NewBookNotFoundError(c.BookID)
	}
	b, err := s.books.FindByID(ctx, c.BookID)
	if errors.Is(err, bookmodel.ErrBookNotFound) {
		return model.NewBookNotFoundError(c.BookID)
	}
	if err != nil {
		return err
	}
	return model.NewInsufficientStockError(b.Title, c.Available, c.Requested)
}

// =====================================================
// QUERIES
// =====================================================

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildOrderResponse(ctx, order)
}

func (s *orderService) ListOrders(ctx context.Context, status model.OrderStatus, page utils.Pagination) ([]*model.OrderResponse, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, model.ErrInvalidStatus
	}

	orders, total, err := s.orderRepo.List(ctx, model.OrderFilter{
		Status: status,
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	for _, o := range orders {
		ids = append(ids, o.BookIDs()...)
	}
	books, err := s.books.FindByIDs(ctx, utils.UniqueIDs(ids))
	if err != nil {
		return nil, 0, err
	}
	refs := bookRefs(books)

	out := make([]*model.OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = model.ToOrderResponse(o, refs)
	}
	return out, total, nil
}

// =====================================================
// UPDATES
// =====================================================

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) (*model.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	order, err := s.orderRepo.Update(ctx, id, func(o *model.Order) error {
		o.Status = req.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buildOrderResponse(ctx, order)
}

func (s *orderService) ReplaceOrder(ctx context.Context, id uuid.UUID, req model.UpdateOrderRequest) (*model.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	order, err := s.orderRepo.Update(ctx, id, func(o *model.Order) error {
		req.ApplyTo(o)
		if err := o.Validate(); err != nil {
			return apperror.Validation(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buildOrderResponse(ctx, order)
}

func (s *orderService) RemoveOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	current, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.Deletable() {
		return nil, model.ErrOrderCannotDelete
	}

	order, err := s.orderRepo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info("order removed", map[string]interface{}{
		"order_id":  order.ID.String(),
		"status":    string(order.Status),
		"restocked": order.Status.RestocksOnDelete(),
	})

	return s.buildOrderResponse(ctx, order)
}

// =====================================================
// HELPERS
// =====================================================

func (s *orderService) buildOrderResponse(ctx context.Context, order *model.Order) (*model.OrderResponse, error) {
	books, err := s.books.FindByIDs(ctx, order.BookIDs())
	if err != nil {
		return nil, err
	}
	return model.ToOrderResponse(order, bookRefs(books)), nil
}

func bookRefs(books map[uuid.UUID]*bookmodel.Book) map[uuid.UUID]model.BookRef {
	refs := make(map[uuid.UUID]model.BookRef, len(books))
	for id, b := range books {
		authorID := b.AuthorID
		price := b.Price
		refs[id] = model.BookRef{
			ID:     b.ID,
			Title:  b.Title,
			Author: &authorID,
			ISBN:   b.ISBN,
			Price:  &price,
			Genre:  string(b.Genre),
		}
	}
	return refs
}
