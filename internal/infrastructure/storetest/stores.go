// Package storetest holds the behaviour every storage backend must share and
// helpers that build the three repositories over one backend.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	authorrepo "bookstore-api/internal/domains/author/repository"
	bookrepo "bookstore-api/internal/domains/book/repository"
	orderrepo "bookstore-api/internal/domains/order/repository"
	"bookstore-api/internal/infrastructure/boltdb"
	"bookstore-api/internal/infrastructure/redisdb"
)

// Stores is one backend's set of repositories.
type Stores struct {
	Authors authorrepo.RepositoryInterface
	Books   bookrepo.RepositoryInterface
	Orders  orderrepo.OrderRepository
}

func BoltStores(db *bolt.DB) Stores {
	return Stores{
		Authors: authorrepo.NewBoltRepository(db),
		Books:   bookrepo.NewBoltRepository(db),
		Orders:  orderrepo.NewBoltOrderRepository(db),
	}
}

func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Authors: authorrepo.NewPostgresRepository(pool),
		Books:   bookrepo.NewPostgresRepository(pool),
		Orders:  orderrepo.NewPostgresOrderRepository(pool),
	}
}

func RedisStores(rdb *redisdb.RedisClient) Stores {
	return Stores{
		Authors: authorrepo.NewRedisRepository(rdb),
		Books:   bookrepo.NewRedisRepository(rdb),
		Orders:  orderrepo.NewRedisOrderRepository(rdb),
	}
}

// NewBoltStores opens a bolt file in a temp dir that is removed with the test.
func NewBoltStores(t testing.TB) Stores {
	t.Helper()

	db, err := boltdb.Open(boltdb.Config{Path: filepath.Join(t.TempDir(), "bookstore.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return BoltStores(db.DB)
}
