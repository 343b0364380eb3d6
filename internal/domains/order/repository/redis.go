package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bookstore-api/internal/domains/order/model"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/infrastructure/redisdb"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

// placeOrderScript checks every line, then decrements stock and stores the
// order. Nothing is written unless all lines fit.
//
// KEYS[1] books hash, KEYS[2] stock hash, KEYS[3] orders hash.
// ARGV[1] order id, ARGV[2] order document, ARGV[3..] book id / quantity pairs.
// Returns {"ok"}, {"missing", id} or {"short", id, available}.
var placeOrderScript = redis.NewScript(`
for i = 3, #ARGV, 2 do
  local id = ARGV[i]
  local qty = tonumber(ARGV[i + 1])
  if redis.call('HEXISTS', KEYS[1], id) == 0 then
    return {'missing', id}
  end
  local stock = tonumber(redis.call('HGET', KEYS[2], id) or '0')
  if stock < qty then
    return {'short', id, stock}
  end
end
for i = 3, #ARGV, 2 do
  redis.call('HINCRBY', KEYS[2], ARGV[i], -tonumber(ARGV[i + 1]))
end
redis.call('HSET', KEYS[3], ARGV[1], ARGV[2])
return {'ok'}
`)

// removeOrderScript deletes an order whose status is in the deletable set
// and returns stock for statuses in the restocking set.
//
// KEYS[1] orders hash, KEYS[2] books hash, KEYS[3] stock hash.
// ARGV[1] order id, ARGV[2] deletable statuses, ARGV[3] restocking statuses
// (comma separated). Returns {"ok", doc}, {"missing"} or {"locked", status}.
var removeOrderScript = redis.NewScript(`
local doc = redis.call('HGET', KEYS[1], ARGV[1])
if not doc then
  return {'missing'}
end
local order = cjson.decode(doc)
local function member(list, value)
  for s in string.gmatch(list, '[^,]+') do
    if s == value then
      return true
    end
  end
  return false
end
if not member(ARGV[2], order.status) then
  return {'locked', order.status}
end
if member(ARGV[3], order.status) then
  for _, item in ipairs(order.items) do
    if redis.call('HEXISTS', KEYS[2], item.book) == 1 then
      redis.call('HINCRBY', KEYS[3], item.book, item.quantity)
    end
  end
end
redis.call('HDEL', KEYS[1], ARGV[1])
return {'ok', doc}
`)

type redisOrderRepository struct {
	rdb *redisdb.RedisClient
}

// NewRedisOrderRepository provides an instance of redis-based order storage.
// Place and Remove run as Lua scripts so the stock check and the write are
// a single server-side step.
func NewRedisOrderRepository(rdb *redisdb.RedisClient) OrderRepository {
	return &redisOrderRepository{rdb: rdb}
}

func (r *redisOrderRepository) ordersKey() string { return r.rdb.Key(redisdb.KeyOrders) }
func (r *redisOrderRepository) booksKey() string  { return r.rdb.Key(redisdb.KeyBooks) }
func (r *redisOrderRepository) stockKey() string  { return r.rdb.Key(redisdb.KeyStock) }

func statusList(match func(model.OrderStatus) bool) string {
	var out []string
	for _, s := range model.OrderStatuses {
		if match(s) {
			out = append(out, string(s))
		}
	}
	return strings.Join(out, ",")
}

func replyStrings(res interface{}) ([]interface{}, string, error) {
	parts, ok := res.([]interface{})
	if !ok || len(parts) == 0 {
		return nil, "", fmt.Errorf("unexpected script reply %T", res)
	}
	tag, _ := parts[0].(string)
	return parts, tag, nil
}

func (r *redisOrderRepository) Place(ctx context.Context, o *model.Order) error {
	now := shared.Timestamp()
	o.ID = uuid.New()
	o.CreatedAt = now
	o.UpdatedAt = now

	doc, err := codec.Marshal(o)
	if err != nil {
		return err
	}

	lines := model.StockLines(o.Items)
	args := make([]interface{}, 0, 2+2*len(lines))
	args = append(args, o.ID.String(), doc)
	for _, line := range lines {
		args = append(args, line.BookID.String(), line.Quantity)
	}

	res, err := placeOrderScript.Run(ctx, r.rdb.Client,
		[]string{r.booksKey(), r.stockKey(), r.ordersKey()}, args...,
	).Result()
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	parts, tag, err := replyStrings(res)
	if err != nil {
		return err
	}
	if tag == "ok" {
		return nil
	}

	bookID, _ := parts[1].(string)
	conflict := &model.StockConflict{BookID: utils.ParseStringToUUID(bookID)}
	for _, line := range lines {
		if line.BookID == conflict.BookID {
			conflict.Requested = line.Quantity
		}
	}
	if tag == "short" {
		conflict.Found = true
		available, _ := parts[2].(int64)
		conflict.Available = int(available)
	}
	return conflict
}

func (r *redisOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	data, err := r.rdb.Client.HGet(ctx, r.ordersKey(), id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}
	return decodeOrder(data)
}

func (r *redisOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]*model.Order, int64, error) {
	values, err := r.rdb.Client.HVals(ctx, r.ordersKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*model.Order, 0, len(values))
	for _, v := range values {
		o, err := decodeOrder([]byte(v))
		if err != nil {
			return nil, 0, err
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		orders = append(orders, o)
	}

	sortOrders(orders)
	return utils.Page(orders, filter.Offset, filter.Limit), int64(len(orders)), nil
}

func (r *redisOrderRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Order) error) (*model.Order, error) {
	key := r.ordersKey()
	var updated *model.Order

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, key, id.String()).Bytes()
		if errors.Is(err, redis.Nil) {
			return model.ErrOrderNotFound
		}
		if err != nil {
			return err
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

		encoded, err := codec.Marshal(o)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id.String(), encoded)
			return nil
		})
		if err != nil {
			return err
		}
		updated = o
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *redisOrderRepository) Remove(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	res, err := removeOrderScript.Run(ctx, r.rdb.Client,
		[]string{r.ordersKey(), r.booksKey(), r.stockKey()},
		id.String(),
		statusList(model.OrderStatus.Deletable),
		statusList(model.OrderStatus.RestocksOnDelete),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to remove order: %w", err)
	}

	parts, tag, err := replyStrings(res)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "missing":
		return nil, model.ErrOrderNotFound
	case "locked":
		return nil, model.ErrOrderCannotDelete
	}

	doc, _ := parts[1].(string)
	return decodeOrder([]byte(doc))
}
