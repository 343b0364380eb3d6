package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/infrastructure/redisdb"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

// deleteAuthorScript removes an author unless its book set is non-empty.
// Returns the deleted document, the blocking book count, or nil when absent.
//
// KEYS[1] authors hash, KEYS[2] author's book set. ARGV[1] author id.
var deleteAuthorScript = redis.NewScript(`
local doc = redis.call('HGET', KEYS[1], ARGV[1])
if not doc then
  return false
end
local books = redis.call('SCARD', KEYS[2])
if books > 0 then
  return books
end
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return doc
`)

type redisRepository struct {
	rdb *redisdb.RedisClient
}

// NewRedisRepository provides an instance of redis-based author storage.
func NewRedisRepository(rdb *redisdb.RedisClient) RepositoryInterface {
	return &redisRepository{rdb: rdb}
}

func (r *redisRepository) authorsKey() string {
	return r.rdb.Key(redisdb.KeyAuthors)
}

func (r *redisRepository) Create(ctx context.Context, a *model.Author) error {
	now := shared.Timestamp()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Awards == nil {
		a.Awards = []model.Award{}
	}

	data, err := codec.Marshal(a)
	if err != nil {
		return err
	}
	if err := r.rdb.Client.HSet(ctx, r.authorsKey(), a.ID.String(), data).Err(); err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

func (r *redisRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	data, err := r.rdb.Client.HGet(ctx, r.authorsKey(), id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}
	return decodeAuthor(data)
}

func (r *redisRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Author, error) {
	ids = utils.UniqueIDs(ids)
	out := make(map[uuid.UUID]*model.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = id.String()
	}

	values, err := r.rdb.Client.HMGet(ctx, r.authorsKey(), fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get authors by ids: %w", err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		a, err := decodeAuthor([]byte(s))
		if err != nil {
			return nil, err
		}
		out[ids[i]] = a
	}
	return out, nil
}

func (r *redisRepository) List(ctx context.Context, filter model.AuthorFilter) ([]*model.Author, int64, error) {
	values, err := r.rdb.Client.HVals(ctx, r.authorsKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}

	authors := make([]*model.Author, 0, len(values))
	for _, v := range values {
		a, err := decodeAuthor([]byte(v))
		if err != nil {
			return nil, 0, err
		}
		if filter.Nationality != "" && !utils.ContainsFold(a.Nationality, filter.Nationality) {
			continue
		}
		authors = append(authors, a)
	}

	sortAuthors(authors)
	return utils.Page(authors, filter.Offset, filter.Limit), int64(len(authors)), nil
}

func (r *redisRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Author) error) (*model.Author, error) {
	key := r.authorsKey()
	var updated *model.Author

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, key, id.String()).Bytes()
		if errors.Is(err, redis.Nil) {
			return model.ErrAuthorNotFound
		}
		if err != nil {
			return err
		}

		a, err := decodeAuthor(data)
		if err != nil {
			return err
		}
		createdAt := a.CreatedAt
		if err := fn(a); err != nil {
			return err
		}
		a.ID = id
		a.CreatedAt = createdAt
		a.UpdatedAt = shared.Timestamp()
		if a.Awards == nil {
			a.Awards = []model.Award{}
		}

		encoded, err := codec.Marshal(a)
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
		updated = a
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *redisRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	res, err := deleteAuthorScript.Run(ctx, r.rdb.Client,
		[]string{r.authorsKey(), r.rdb.Key(redisdb.KeyAuthorBooks, id.String())},
		id.String(),
	).Result()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete author: %w", err)
	}

	switch v := res.(type) {
	case int64:
		return nil, model.ErrAuthorHasBooks
	case string:
		return decodeAuthor([]byte(v))
	default:
		return nil, fmt.Errorf("unexpected delete reply %T", v)
	}
}
