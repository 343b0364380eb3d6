package repository

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/infrastructure/boltdb"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

type boltRepository struct {
	db *bolt.DB
}

// NewBoltRepository provides an instance of bolt-based book storage.
// Normalized ISBNs are indexed in their own bucket.
func NewBoltRepository(db *bolt.DB) RepositoryInterface {
	return &boltRepository{db: db}
}

func decodeBook(data []byte) (*model.Book, error) {
	var b model.Book
	if err := codec.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode book: %w", err)
	}
	return &b, nil
}

// putBook writes b and its ISBN index entry after checking the author
// reference and ISBN uniqueness. prev is the stored version, nil on create.
func putBook(tx *bolt.Tx, b, prev *model.Book) error {
	if tx.Bucket(boltdb.BucketAuthors).Get([]byte(b.AuthorID.String())) == nil {
		return model.ErrAuthorNotFound
	}

	id := []byte(b.ID.String())
	index := tx.Bucket(boltdb.BucketISBNIndex)
	isbn := []byte(b.NormalizedISBN())
	if owner := index.Get(isbn); owner != nil && !bytes.Equal(owner, id) {
		return model.ErrISBNAlreadyExists
	}

	if prev != nil && prev.NormalizedISBN() != b.NormalizedISBN() {
		if err := index.Delete([]byte(prev.NormalizedISBN())); err != nil {
			return err
		}
	}
	if err := index.Put(isbn, id); err != nil {
		return err
	}

	data, err := codec.Marshal(b)
	if err != nil {
		return err
	}
	return tx.Bucket(boltdb.BucketBooks).Put(id, data)
}

func (r *boltRepository) Create(_ context.Context, b *model.Book) error {
	now := shared.Timestamp()
	b.ID = uuid.New()
	b.CreatedAt = now
	b.UpdatedAt = now

	return r.db.Update(func(tx *bolt.Tx) error {
		return putBook(tx, b, nil)
	})
}

func (r *boltRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	var b *model.Book
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketBooks).Get([]byte(id.String()))
		if data == nil {
			return model.ErrBookNotFound
		}
		var err error
		b, err = decodeBook(data)
		return err
	})
	return b, err
}

func (r *boltRepository) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Book, error) {
	out := make(map[uuid.UUID]*model.Book, len(ids))
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltdb.BucketBooks)
		for _, id := range utils.UniqueIDs(ids) {
			data := bucket.Get([]byte(id.String()))
			if data == nil {
				continue
			}
			b, err := decodeBook(data)
			if err != nil {
				return err
			}
			out[id] = b
		}
		return nil
	})
	return out, err
}

func (r *boltRepository) scan(match func(*model.Book) bool) ([]*model.Book, error) {
	books := make([]*model.Book, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketBooks).ForEach(func(_, v []byte) error {
			b, err := decodeBook(v)
			if err != nil {
				return err
			}
			if match(b) {
				books = append(books, b)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortBooks(books)
	return books, nil
}

// matchFilter applies the list filter the same way the SQL query does.
func matchFilter(filter model.BookFilter) func(*model.Book) bool {
	return func(b *model.Book) bool {
		if filter.Genre != "" && b.Genre != filter.Genre {
			return false
		}
		if filter.Query != "" &&
			!utils.ContainsFold(b.Title, filter.Query) &&
			!utils.ContainsFold(b.Description, filter.Query) {
			return false
		}
		return true
	}
}

func sortBooks(books []*model.Book) {
	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID.String() < books[j].ID.String()
	})
}

func (r *boltRepository) List(_ context.Context, filter model.BookFilter) ([]*model.Book, int64, error) {
	books, err := r.scan(matchFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return utils.Page(books, filter.Offset, filter.Limit), int64(len(books)), nil
}

func (r *boltRepository) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]*model.Book, error) {
	return r.scan(func(b *model.Book) bool { return b.AuthorID == authorID })
}

func (r *boltRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	books, err := r.ListByAuthor(ctx, authorID)
	if err != nil {
		return 0, err
	}
	return int64(len(books)), nil
}

func (r *boltRepository) Update(_ context.Context, id uuid.UUID, fn func(*model.Book) error) (*model.Book, error) {
	var updated *model.Book
	err := r.db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketBooks).Get([]byte(id.String()))
		if data == nil {
			return model.ErrBookNotFound
		}
		prev, err := decodeBook(data)
		if err != nil {
			return err
		}
		b, err := decodeBook(data)
		if err != nil {
			return err
		}

		if err := fn(b); err != nil {
			return err
		}
		b.ID = id
		b.CreatedAt = prev.CreatedAt
		b.UpdatedAt = shared.Timestamp()

		if err := putBook(tx, b, prev); err != nil {
			return err
		}
		updated = b
		return nil
	})
	return updated, err
}

func (r *boltRepository) Delete(_ context.Context, id uuid.UUID) (*model.Book, error) {
	var deleted *model.Book
	err := r.db.Update(func(tx *bolt.Tx) error {
		key := []byte(id.String())
		data := tx.Bucket(boltdb.BucketBooks).Get(key)
		if data == nil {
			return model.ErrBookNotFound
		}
		b, err := decodeBook(data)
		if err != nil {
			return err
		}

		index := tx.Bucket(boltdb.BucketISBNIndex)
		isbn := []byte(b.NormalizedISBN())
		if bytes.Equal(index.Get(isbn), key) {
			if err := index.Delete(isbn); err != nil {
				return err
			}
		}
		if err := tx.Bucket(boltdb.BucketBooks).Delete(key); err != nil {
			return err
		}
		deleted = b
		return nil
	})
	return deleted, err
}
