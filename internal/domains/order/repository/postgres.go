package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/shared"
	pkgdb "bookstore-api/pkg/database"
)

var orderColumns = []interface{}{
	"id", "customer_name", "customer_email", "customer_phone", "shipping_address", "items",
	"status", "payment_method", "payment_status", "subtotal", "tax", "shipping", "total",
	"notes", "created_at", "updated_at",
}

const orderColumnList = `id, customer_name, customer_email, customer_phone, shipping_address, items,
	status, payment_method, payment_status, subtotal, tax, shipping, total, notes, created_at, updated_at`

type postgresOrderRepository struct {
	pool *pgxpool.Pool
	qb   goqu.DialectWrapper
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{
		pool: pool,
		qb:   goqu.Dialect("postgres"),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                              model.Order
		phone, notes                   pgtype.Text
		address, items                 []byte
		status, method, paymentStatus  string
		subtotal, tax, shipping, total pgtype.Numeric
	)

	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.CustomerEmail,
		&phone,
		&address,
		&items,
		&status,
		&method,
		&paymentStatus,
		&subtotal,
		&tax,
		&shipping,
		&total,
		&notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := codec.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if err := codec.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	o.CustomerPhone = phone.String
	o.Notes = notes.String
	o.Status = model.OrderStatus(status)
	o.PaymentMethod = model.PaymentMethod(method)
	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	o.Subtotal = pkgdb.Decimal(subtotal)
	o.Tax = pkgdb.Decimal(tax)
	o.Shipping = pkgdb.Decimal(shipping)
	o.Total = pkgdb.Decimal(total)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()

	return &o, nil
}

func orderArgs(o *model.Order) ([]interface{}, error) {
	address, err := codec.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, err
	}
	items, err := codec.Marshal(o.Items)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		o.ID,
		o.CustomerName,
		o.CustomerEmail,
		pkgdb.Text(o.CustomerPhone),
		address,
		items,
		string(o.Status),
		string(o.PaymentMethod),
		string(o.PaymentStatus),
		pkgdb.Numeric(o.Subtotal),
		pkgdb.Numeric(o.Tax),
		pkgdb.Numeric(o.Shipping),
		pkgdb.Numeric(o.Total),
		pkgdb.Text(o.Notes),
		o.CreatedAt,
		o.UpdatedAt,
	}, nil
}

// =====================================================
// PLACE
// =====================================================

func (r *postgresOrderRepository) Place(ctx context.Context, o *model.Order) error {
	now := shared.Timestamp()
	o.ID = uuid.New()
	o.CreatedAt = now
	o.UpdatedAt = now

	args, err := orderArgs(o)
	if err != nil {
		return err
	}

	return pkgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, line := range model.StockLines(o.Items) {
			if err := decrementStock(ctx, tx, line, now); err != nil {
				return err
			}
		}

		query := `INSERT INTO orders (` + orderColumnList + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

func decrementStock(ctx context.Context, tx pkgdb.Querier, line model.StockLine, now time.Time) error {
	tag, err := tx.Exec(ctx,
		`UPDATE books SET stock = stock - $2, updated_at = $3 WHERE id = $1 AND stock >= $2`,
		line.BookID, line.Quantity, now,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	conflict := &model.StockConflict{BookID: line.BookID, Requested: line.Quantity}
	err = tx.QueryRow(ctx, `SELECT stock FROM books WHERE id = $1`, line.BookID).Scan(&conflict.Available)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to read stock: %w", err)
	}
	conflict.Found = err == nil
	return conflict
}

// =====================================================
// READ
// =====================================================

func (r *postgresOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumnList+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}
	return o, nil
}

func (r *postgresOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]*model.Order, int64, error) {
	ds := r.qb.From("orders").Prepared(true)
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	sel := ds.Select(orderColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc()).
		Offset(uint(filter.Offset))
	if filter.Limit > 0 {
		sel = sel.Limit(uint(filter.Limit))
	}

	query, args, err := sel.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// =====================================================
// UPDATE
// =====================================================

func (r *postgresOrderRepository) lock(ctx context.Context, tx pkgdb.Querier, id uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumnList+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return o, nil
}

func (r *postgresOrderRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Order) error) (*model.Order, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Order, error) {
		o, err := r.lock(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		createdAt := o.CreatedAt
		if err := fn(o); err != nil {
			return nil, err
		}
		o.ID = id
		o.CreatedAt = createdAt
		o.UpdatedAt = shared.Timestamp()

		args, err := orderArgs(o)
		if err != nil {
			return nil, err
		}

		query := `
			UPDATE orders
			SET customer_name = $2, customer_email = $3, customer_phone = $4, shipping_address = $5,
			    items = $6, status = $7, payment_method = $8, payment_status = $9, subtotal = $10,
			    tax = $11, shipping = $12, total = $13, notes = $14, created_at = $15, updated_at = $16
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to update order: %w", err)
		}
		return o, nil
	})
}

// =====================================================
// REMOVE
// =====================================================

func (r *postgresOrderRepository) Remove(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Order, error) {
		o, err := r.lock(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if !o.Status.Deletable() {
			return nil, model.ErrOrderCannotDelete
		}

		if o.Status.RestocksOnDelete() {
			now := shared.Timestamp()
			for _, line := range model.StockLines(o.Items) {
				// Books deleted since the order was placed match no row.
				_, err := tx.Exec(ctx,
					`UPDATE books SET stock = stock + $2, updated_at = $3 WHERE id = $1`,
					line.BookID, line.Quantity, now,
				)
				if err != nil {
					return nil, fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to delete order: %w", err)
		}
		return o, nil
	})
}
