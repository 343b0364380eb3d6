package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore-api/internal/domains/book/model"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
	pkgdb "bookstore-api/pkg/database"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var bookColumns = []interface{}{
	"id", "title", "author_id", "isbn", "genre", "price", "stock",
	"description", "published_date", "pages", "created_at", "updated_at",
}

const selectBookSQL = `
	SELECT id, title, author_id, isbn, genre, price, stock, description, published_date, pages, created_at, updated_at
	FROM books
`

type postgresRepository struct {
	pool *pgxpool.Pool
	qb   goqu.DialectWrapper
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
		qb:   goqu.Dialect("postgres"),
	}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var (
		b             model.Book
		genre         string
		price         pgtype.Numeric
		description   pgtype.Text
		publishedDate pgtype.Date
		pages         pgtype.Int4
	)

	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.AuthorID,
		&b.ISBN,
		&genre,
		&price,
		&b.Stock,
		&description,
		&publishedDate,
		&pages,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Genre = model.Genre(genre)
	b.Price = pkgdb.Decimal(price)
	b.Description = description.String
	b.PublishedDate = shared.DateFromPtr(pkgdb.TimePtr(publishedDate))
	b.Pages = pkgdb.IntPtr(pages)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()

	return &b, nil
}

// mapWriteError translates constraint violations raised by INSERT/UPDATE.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return model.ErrISBNAlreadyExists
		case pgForeignKeyViolation:
			return model.ErrAuthorNotFound
		}
	}
	return err
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	now := shared.Timestamp()
	b.ID = uuid.New()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `
		INSERT INTO books (id, title, author_id, isbn, genre, price, stock, description, published_date, pages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Title,
		b.AuthorID,
		b.ISBN,
		string(b.Genre),
		pkgdb.Numeric(b.Price),
		b.Stock,
		pkgdb.Text(b.Description),
		pkgdb.Date(b.PublishedDate.TimePtr()),
		pkgdb.Int4(b.Pages),
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, selectBookSQL+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Book, error) {
	out := make(map[uuid.UUID]*model.Book, len(ids))
	ids = utils.UniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	books, err := queryBooks(ctx, r.pool, selectBookSQL+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get books by ids: %w", err)
	}
	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

func queryBooks(ctx context.Context, q pkgdb.Querier, sql string, args ...interface{}) ([]*model.Book, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]*model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, filter model.BookFilter) ([]*model.Book, int64, error) {
	ds := r.qb.From("books").Prepared(true)
	if filter.Genre != "" {
		ds = ds.Where(goqu.C("genre").Eq(string(filter.Genre)))
	}
	if filter.Query != "" {
		pattern := utils.LikeContains(filter.Query)
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("description").ILike(pattern),
		))
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	sel := ds.Select(bookColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc()).
		Offset(uint(filter.Offset))
	if filter.Limit > 0 {
		sel = sel.Limit(uint(filter.Limit))
	}

	query, args, err := sel.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	books, err := queryBooks(ctx, r.pool, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}

	return books, total, nil
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Book, error) {
	books, err := queryBooks(ctx, r.pool, selectBookSQL+` WHERE author_id = $1 ORDER BY created_at DESC, id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books by author: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE author_id = $1`, authorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count books by author: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Book) error) (*model.Book, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		b, err := scanBook(tx.QueryRow(ctx, selectBookSQL+` WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrBookNotFound
			}
			return nil, fmt.Errorf("failed to lock book: %w", err)
		}

		createdAt := b.CreatedAt
		if err := fn(b); err != nil {
			return nil, err
		}
		b.ID = id
		b.CreatedAt = createdAt
		b.UpdatedAt = shared.Timestamp()

		query := `
			UPDATE books
			SET title = $2, author_id = $3, isbn = $4, genre = $5, price = $6, stock = $7,
			    description = $8, published_date = $9, pages = $10, updated_at = $11
			WHERE id = $1
		`
		_, err = tx.Exec(ctx, query,
			b.ID,
			b.Title,
			b.AuthorID,
			b.ISBN,
			string(b.Genre),
			pkgdb.Numeric(b.Price),
			b.Stock,
			pkgdb.Text(b.Description),
			pkgdb.Date(b.PublishedDate.TimePtr()),
			pkgdb.Int4(b.Pages),
			b.UpdatedAt,
		)
		if err != nil {
			if mapped := mapWriteError(err); mapped != err {
				return nil, mapped
			}
			return nil, fmt.Errorf("failed to update book: %w", err)
		}

		return b, nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx,
		`DELETE FROM books WHERE id = $1
		 RETURNING id, title, author_id, isbn, genre, price, stock, description, published_date, pages, created_at, updated_at`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	return b, nil
}
