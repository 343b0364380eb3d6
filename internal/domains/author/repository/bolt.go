package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/infrastructure/boltdb"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
)

type boltRepository struct {
	db *bolt.DB
}

// NewBoltRepository provides an instance of bolt-based author storage.
func NewBoltRepository(db *bolt.DB) RepositoryInterface {
	return &boltRepository{db: db}
}

func decodeAuthor(data []byte) (*model.Author, error) {
	var a model.Author
	if err := codec.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode author: %w", err)
	}
	if a.Awards == nil {
		a.Awards = []model.Award{}
	}
	return &a, nil
}

func putAuthor(tx *bolt.Tx, a *model.Author) error {
	if a.Awards == nil {
		a.Awards = []model.Award{}
	}
	data, err := codec.Marshal(a)
	if err != nil {
		return err
	}
	return tx.Bucket(boltdb.BucketAuthors).Put([]byte(a.ID.String()), data)
}

func (r *boltRepository) Create(_ context.Context, a *model.Author) error {
	now := shared.Timestamp()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now

	return r.db.Update(func(tx *bolt.Tx) error {
		return putAuthor(tx, a)
	})
}

func (r *boltRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Author, error) {
	var a *model.Author
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketAuthors).Get([]byte(id.String()))
		if data == nil {
			return model.ErrAuthorNotFound
		}
		var err error
		a, err = decodeAuthor(data)
		return err
	})
	return a, err
}

func (r *boltRepository) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Author, error) {
	out := make(map[uuid.UUID]*model.Author, len(ids))
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltdb.BucketAuthors)
		for _, id := range utils.UniqueIDs(ids) {
			data := b.Get([]byte(id.String()))
			if data == nil {
				continue
			}
			a, err := decodeAuthor(data)
			if err != nil {
				return err
			}
			out[id] = a
		}
		return nil
	})
	return out, err
}

func (r *boltRepository) List(_ context.Context, filter model.AuthorFilter) ([]*model.Author, int64, error) {
	var authors []*model.Author
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketAuthors).ForEach(func(_, v []byte) error {
			a, err := decodeAuthor(v)
			if err != nil {
				return err
			}
			if filter.Nationality != "" && !utils.ContainsFold(a.Nationality, filter.Nationality) {
				return nil
			}
			authors = append(authors, a)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	sortAuthors(authors)
	return utils.Page(authors, filter.Offset, filter.Limit), int64(len(authors)), nil
}

func sortAuthors(authors []*model.Author) {
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].Name != authors[j].Name {
			return authors[i].Name < authors[j].Name
		}
		return authors[i].ID.String() < authors[j].ID.String()
	})
}

func (r *boltRepository) Update(_ context.Context, id uuid.UUID, fn func(*model.Author) error) (*model.Author, error) {
	var updated *model.Author
	err := r.db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketAuthors).Get([]byte(id.String()))
		if data == nil {
			return model.ErrAuthorNotFound
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

		if err := putAuthor(tx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	return updated, err
}

// bookAuthorRef decodes only the author reference of a stored book.
type bookAuthorRef struct {
	Author uuid.UUID `json:"author"`
}

func (r *boltRepository) Delete(_ context.Context, id uuid.UUID) (*model.Author, error) {
	var deleted *model.Author
	err := r.db.Update(func(tx *bolt.Tx) error {
		authors := tx.Bucket(boltdb.BucketAuthors)
		key := []byte(id.String())
		data := authors.Get(key)
		if data == nil {
			return model.ErrAuthorNotFound
		}

		err := tx.Bucket(boltdb.BucketBooks).ForEach(func(_, v []byte) error {
			var ref bookAuthorRef
			if err := codec.Unmarshal(v, &ref); err != nil {
				return err
			}
			if ref.Author == id {
				return model.ErrAuthorHasBooks
			}
			return nil
		})
		if err != nil {
			return err
		}

		a, err := decodeAuthor(data)
		if err != nil {
			return err
		}
		if err := authors.Delete(key); err != nil {
			return err
		}
		deleted = a
		return nil
	})
	return deleted, err
}
