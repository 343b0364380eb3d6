package boltdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/rs/zerolog/log"
)

// Bucket names. Every bucket lives in the same file so that one bolt
// transaction can span authors, books and orders.
var (
	BucketAuthors   = []byte("authors")
	BucketBooks     = []byte("books")
	BucketOrders    = []byte("orders")
	BucketISBNIndex = []byte("isbn_index")
)

var allBuckets = [][]byte{BucketAuthors, BucketBooks, BucketOrders, BucketISBNIndex}

type Config struct {
	Path    string
	Timeout time.Duration
}

// BoltDB wraps the embedded database handle.
type BoltDB struct {
	DB     *bolt.DB
	Config Config
}

// Open opens (or creates) the database file and its buckets.
func Open(cfg Config) (*BoltDB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create bolt directory: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, errB := tx.CreateBucketIfNotExists(name); errB != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, errB)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set up buckets: %w", err)
	}

	log.Info().Str("path", cfg.Path).Msg("[BOLT] Database opened")
	return &BoltDB{DB: db, Config: cfg}, nil
}

// HealthCheck runs an empty read transaction.
func (b *BoltDB) HealthCheck(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("bolt database is not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.DB.View(func(tx *bolt.Tx) error {
		if tx.Bucket(BucketBooks) == nil {
			return fmt.Errorf("bucket %s missing", BucketBooks)
		}
		return nil
	})
}

// Reset empties every bucket.
func (b *BoltDB) Reset() error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltDB) Close() error {
	if b.DB == nil {
		return nil
	}
	err := b.DB.Close()
	b.DB = nil
	return err
}
