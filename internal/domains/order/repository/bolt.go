package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	bookmodel "bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/infrastructure/boltdb"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

type boltOrderRepository struct {
	db *bolt.DB
}

// NewBoltOrderRepository provides an instance of bolt-based order storage.
// Stock adjustments and order writes share one bolt read-write transaction.
func NewBoltOrderRepository(db *bolt.DB) OrderRepository {
	return &boltOrderRepository{db: db}
}

func decodeOrder(data []byte) (*model.Order, error) {
	var o model.Order
	if err := codec.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}

func putOrder(tx *bolt.Tx, o *model.Order) error {
	data, err := codec.Marshal(o)
	if err != nil {
		return err
	}
	return tx.Bucket(boltdb.BucketOrders).Put([]byte(o.ID.String()), data)
}

// adjustStock adds delta to a book's stock unless the result would be
// negative. It returns the stock before the change and whether the book exists.
func adjustStock(tx *bolt.Tx, bookID uuid.UUID, delta int, now time.Time) (int, bool, error) {
	books := tx.Bucket(boltdb.BucketBooks)
	key := []byte(bookID.String())
	data := books.Get(key)
	if data == nil {
		return 0, false, nil
	}

	var b bookmodel.Book
	if err := codec.Unmarshal(data, &b); err != nil {
		return 0, true, fmt.Errorf("decode book: %w", err)
	}
	before := b.Stock
	if delta < 0 && before < -delta {
		return before, true, nil
	}

	b.Stock += delta
	b.UpdatedAt = now
	encoded, err := codec.Marshal(&b)
	if err != nil {
		return before, true, err
	}
	return before, true, books.Put(key, encoded)
}

func (r *boltOrderRepository) Place(_ context.Context, o *model.Order) error {
	now := shared.Timestamp()
	o.ID = uuid.New()
	o.CreatedAt = now
	o.UpdatedAt = now

	return r.db.Update(func(tx *bolt.Tx) error {
		for _, line := range model.StockLines(o.Items) {
			available, found, err := adjustStock(tx, line.BookID, -line.Quantity, now)
			if err != nil {
				return err
			}
			if !found || available < line.Quantity {
				return &model.StockConflict{
					BookID:    line.BookID,
					Found:     found,
					Available: available,
					Requested: line.Quantity,
				}
			}
		}
		return putOrder(tx, o)
	})
}

func (r *boltOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	var o *model.Order
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketOrders).Get([]byte(id.String()))
		if data == nil {
			return model.ErrOrderNotFound
		}
		var err error
		o, err = decodeOrder(data)
		return err
	})
	return o, err
}

func sortOrders(orders []*model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID.String() < orders[j].ID.String()
	})
}

func (r *boltOrderRepository) List(_ context.Context, filter model.OrderFilter) ([]*model.Order, int64, error) {
	orders := make([]*model.Order, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketOrders).ForEach(func(_, v []byte) error {
			o, err := decodeOrder(v)
			if err != nil {
				return err
			}
			if filter.Status != "" && o.Status != filter.Status {
				return nil
			}
			orders = append(orders, o)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	sortOrders(orders)
	return utils.Page(orders, filter.Offset, filter.Limit), int64(len(orders)), nil
}

func (r *boltOrderRepository) Update(_ context.Context, id uuid.UUID, fn func(*model.Order) error) (*model.Order, error) {
	var updated *model.Order
	err := r.db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketOrders).Get([]byte(id.String()))
		if data == nil {
			return model.ErrOrderNotFound
		}
		o, err := decodeOrder(data)
		if err != nil {
			return err
		}

		createdAt := o.CreatedAt
		if err := fn(o); err != nil {
			return err
		}
		o.ID = id
		o.CreatedAt = createdAt
		o.UpdatedAt = shared.Timestamp()

		if err := putOrder(tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	return updated, err
}

func (r *boltOrderRepository) Remove(_ context.Context, id uuid.UUID) (*model.Order, error) {
	var removed *model.Order
	err := r.db.Update(func(tx *bolt.Tx) error {
		orders := tx.Bucket(boltdb.BucketOrders)
		key := []byte(id.String())
		data := orders.Get(key)
		if data == nil {
			return model.ErrOrderNotFound
		}
		o, err := decodeOrder(data)
		if err != nil {
			return err
		}
		if !o.Status.Deletable() {
			return model.ErrOrderCannotDelete
		}

		if o.Status.RestocksOnDelete() {
			now := shared.Timestamp()
			for _, line := range model.StockLines(o.Items) {
				if _, _, err := adjustStock(tx, line.BookID, line.Quantity, now); err != nil {
					return err
				}
			}
		}

		if err := orders.Delete(key); err != nil {
			return err
		}
		removed = o
		return nil
	})
	return removed, err
}
