package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/infrastructure/redisdb"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

// redisRepository stores book documents in one hash and stock counts in a
// second hash keyed by the same id, so order scripts can adjust stock with
// HINCRBY. The stock value inside the document is ignored on read.
type redisRepository struct {
	rdb *redisdb.RedisClient
}

// NewRedisRepository provides an instance of redis-based book storage.
func NewRedisRepository(rdb *redisdb.RedisClient) RepositoryInterface {
	return &redisRepository{rdb: rdb}
}

func (r *redisRepository) booksKey() string   { return r.rdb.Key(redisdb.KeyBooks) }
func (r *redisRepository) stockKey() string   { return r.rdb.Key(redisdb.KeyStock) }
func (r *redisRepository) isbnKey() string    { return r.rdb.Key(redisdb.KeyISBN) }
func (r *redisRepository) authorsKey() string { return r.rdb.Key(redisdb.KeyAuthors) }

func (r *redisRepository) authorBooksKey(authorID uuid.UUID) string {
	return r.rdb.Key(redisdb.KeyAuthorBooks, authorID.String())
}

func withStock(data string, stock interface{}) (*model.Book, error) {
	b, err := decodeBook([]byte(data))
	if err != nil {
		return nil, err
	}
	if s, ok := stock.(string); ok && s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("decode stock: %w", err)
		}
		b.Stock = n
	}
	return b, nil
}

// hashGetter is satisfied by both *redis.Client and a watched *redis.Tx.
type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func (r *redisRepository) load(ctx context.Context, cmd hashGetter, id uuid.UUID) (*model.Book, error) {
	data, err := cmd.HGet(ctx, r.booksKey(), id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	stock, err := cmd.HGet(ctx, r.stockKey(), id.String()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return withStock(data, stock)
}

// checkWrite enforces the author reference and ISBN uniqueness inside a
// watched transaction.
func (r *redisRepository) checkWrite(ctx context.Context, tx *redis.Tx, b *model.Book) error {
	exists, err := tx.HExists(ctx, r.authorsKey(), b.AuthorID.String()).Result()
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrAuthorNotFound
	}

	owner, err := tx.HGet(ctx, r.isbnKey(), b.NormalizedISBN()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if err == nil && owner != b.ID.String() {
		return model.ErrISBNAlreadyExists
	}
	return nil
}

func (r *redisRepository) write(ctx context.Context, pipe redis.Pipeliner, b, prev *model.Book) error {
	data, err := codec.Marshal(b)
	if err != nil {
		return err
	}
	id := b.ID.String()
	pipe.HSet(ctx, r.booksKey(), id, data)
	pipe.HSet(ctx, r.stockKey(), id, b.Stock)

	if prev != nil && prev.NormalizedISBN() != b.NormalizedISBN() {
		pipe.HDel(ctx, r.isbnKey(), prev.NormalizedISBN())
	}
	pipe.HSet(ctx, r.isbnKey(), b.NormalizedISBN(), id)

	if prev != nil && prev.AuthorID != b.AuthorID {
		pipe.SRem(ctx, r.authorBooksKey(prev.AuthorID), id)
	}
	pipe.SAdd(ctx, r.authorBooksKey(b.AuthorID), id)
	return nil
}

func (r *redisRepository) Create(ctx context.Context, b *model.Book) error {
	now := shared.Timestamp()
	b.ID = uuid.New()
	b.CreatedAt = now
	b.UpdatedAt = now

	return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		if err := r.checkWrite(ctx, tx, b); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return r.write(ctx, pipe, b, nil)
		})
		return err
	}, r.authorsKey(), r.isbnKey())
}

func (r *redisRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := r.load(ctx, r.rdb.Client, id)
	if err != nil && !errors.Is(err, model.ErrBookNotFound) {
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return b, err
}

func (r *redisRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Book, error) {
	ids = utils.UniqueIDs(ids)
	out := make(map[uuid.UUID]*model.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = id.String()
	}

	pipe := r.rdb.Client.Pipeline()
	docsCmd := pipe.HMGet(ctx, r.booksKey(), fields...)
	stockCmd := pipe.HMGet(ctx, r.stockKey(), fields...)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get books by ids: %w", err)
	}

	stocks := stockCmd.Val()
	for i, v := range docsCmd.Val() {
		data, ok := v.(string)
		if !ok {
			continue
		}
		b, err := withStock(data, stocks[i])
		if err != nil {
			return nil, err
		}
		out[ids[i]] = b
	}
	return out, nil
}

func (r *redisRepository) all(ctx context.Context, match func(*model.Book) bool) ([]*model.Book, error) {
	pipe := r.rdb.Client.Pipeline()
	docsCmd := pipe.HGetAll(ctx, r.booksKey())
	stockCmd := pipe.HGetAll(ctx, r.stockKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	stocks := stockCmd.Val()
	books := make([]*model.Book, 0, len(docsCmd.Val()))
	for id, data := range docsCmd.Val() {
		var stock interface{}
		if s, ok := stocks[id]; ok {
			stock = s
		}
		b, err := withStock(data, stock)
		if err != nil {
			return nil, err
		}
		if match(b) {
			books = append(books, b)
		}
	}
	sortBooks(books)
	return books, nil
}

func (r *redisRepository) List(ctx context.Context, filter model.BookFilter) ([]*model.Book, int64, error) {
	books, err := r.all(ctx, matchFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return utils.Page(books, filter.Offset, filter.Limit), int64(len(books)), nil
}

func (r *redisRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Book, error) {
	members, err := r.rdb.Client.SMembers(ctx, r.authorBooksKey(authorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list books by author: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if id, err := uuid.Parse(m); err == nil {
			ids = append(ids, id)
		}
	}

	found, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	books := make([]*model.Book, 0, len(found))
	for _, b := range found {
		books = append(books, b)
	}
	sortBooks(books)
	return books, nil
}

func (r *redisRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	n, err := r.rdb.Client.SCard(ctx, r.authorBooksKey(authorID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count books by author: %w", err)
	}
	return n, nil
}

// Update watches the stock hash too, so an order placed between the read
// and the write forces a retry instead of being overwritten.
func (r *redisRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Book) error) (*model.Book, error) {
	var updated *model.Book

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		prev, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		b := *prev

		if err := fn(&b); err != nil {
			return err
		}
		b.ID = id
		b.CreatedAt = prev.CreatedAt
		b.UpdatedAt = shared.Timestamp()

		if err := r.checkWrite(ctx, tx, &b); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return r.write(ctx, pipe, &b, prev)
		})
		if err != nil {
			return err
		}
		updated = &b
		return nil
	}, r.booksKey(), r.stockKey(), r.authorsKey(), r.isbnKey())
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *redisRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	var deleted *model.Book

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		b, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		owner, err := tx.HGet(ctx, r.isbnKey(), b.NormalizedISBN()).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, r.booksKey(), id.String())
			pipe.HDel(ctx, r.stockKey(), id.String())
			if owner == id.String() {
				pipe.HDel(ctx, r.isbnKey(), b.NormalizedISBN())
			}
			pipe.SRem(ctx, r.authorBooksKey(b.AuthorID), id.String())
			return nil
		})
		if err != nil {
			return err
		}
		deleted = b
		return nil
	}, r.booksKey(), r.stockKey(), r.isbnKey())
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
