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

	"bookstore-api/internal/domains/author/model"
	"bookstore-api/internal/infrastructure/codec"
	"bookstore-api/internal/shared"
	"bookstore-api/internal/shared/utils"
	pkgdb "bookstore-api/pkg/database"
)

const pgForeignKeyViolation = "23503"

var authorColumns = []interface{}{
	"id", "name", "email", "nationality", "birth_date",
	"biography", "website", "awards", "created_at", "updated_at",
}

const selectAuthorSQL = `
	SELECT id, name, email, nationality, birth_date, biography, website, awards, created_at, updated_at
	FROM authors
`

// postgresRepository implements RepositoryInterface on pgxpool.
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

func scanAuthor(row pgx.Row) (*model.Author, error) {
	var (
		a                                      model.Author
		email, nationality, biography, website pgtype.Text
		birthDate                              pgtype.Date
		awards                                 []byte
	)

	err := row.Scan(
		&a.ID,
		&a.Name,
		&email,
		&nationality,
		&birthDate,
		&biography,
		&website,
		&awards,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Email = email.String
	a.Nationality = nationality.String
	a.BirthDate = shared.DateFromPtr(pkgdb.TimePtr(birthDate))
	a.Biography = biography.String
	a.Website = website.String
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	a.Awards = []model.Award{}
	if len(awards) > 0 {
		if err := codec.Unmarshal(awards, &a.Awards); err != nil {
			return nil, fmt.Errorf("decode awards: %w", err)
		}
	}

	return &a, nil
}

func encodeAwards(awards []model.Award) ([]byte, error) {
	if awards == nil {
		awards = []model.Award{}
	}
	return codec.Marshal(awards)
}

// Create inserts new author with generated ID and timestamps
func (r *postgresRepository) Create(ctx context.Context, a *model.Author) error {
	awards, err := encodeAwards(a.Awards)
	if err != nil {
		return err
	}

	now := shared.Timestamp()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO authors (id, name, email, nationality, birth_date, biography, website, awards, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		a.ID,
		a.Name,
		pkgdb.Text(a.Email),
		pkgdb.Text(a.Nationality),
		pkgdb.Date(a.BirthDate.TimePtr()),
		pkgdb.Text(a.Biography),
		pkgdb.Text(a.Website),
		awards,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	a, err := scanAuthor(r.pool.QueryRow(ctx, selectAuthorSQL+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Author, error) {
	out := make(map[uuid.UUID]*model.Author, len(ids))
	ids = utils.UniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, selectAuthorSQL+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get authors by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		out[a.ID] = a
	}

	return out, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, filter model.AuthorFilter) ([]*model.Author, int64, error) {
	ds := r.qb.From("authors").Prepared(true)
	if filter.Nationality != "" {
		ds = ds.Where(goqu.C("nationality").ILike(utils.LikeContains(filter.Nationality)))
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	sel := ds.Select(authorColumns...).
		Order(goqu.L(`name COLLATE "C"`).Asc(), goqu.C("id").Asc()).
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
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]*model.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return authors, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Author) error) (*model.Author, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Author, error) {
		a, err := scanAuthor(tx.QueryRow(ctx, selectAuthorSQL+` WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrAuthorNotFound
			}
			return nil, fmt.Errorf("failed to lock author: %w", err)
		}

		createdAt := a.CreatedAt
		if err := fn(a); err != nil {
			return nil, err
		}
		a.ID = id
		a.CreatedAt = createdAt
		a.UpdatedAt = shared.Timestamp()

		awards, err := encodeAwards(a.Awards)
		if err != nil {
			return nil, err
		}

		query := `
			UPDATE authors
			SET name = $2, email = $3, nationality = $4, birth_date = $5,
			    biography = $6, website = $7, awards = $8, updated_at = $9
			WHERE id = $1
		`
		_, err = tx.Exec(ctx, query,
			a.ID,
			a.Name,
			pkgdb.Text(a.Email),
			pkgdb.Text(a.Nationality),
			pkgdb.Date(a.BirthDate.TimePtr()),
			pkgdb.Text(a.Biography),
			pkgdb.Text(a.Website),
			awards,
			a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update author: %w", err)
		}

		return a, nil
	})
}

// Delete relies on the books.author_id foreign key (ON DELETE RESTRICT) to
// refuse authors that still own books.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	a, err := scanAuthor(r.pool.QueryRow(ctx,
		`DELETE FROM authors WHERE id = $1
		 RETURNING id, name, email, nationality, birth_date, biography, website, awards, created_at, updated_at`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, model.ErrAuthorHasBooks
		}
		return nil, fmt.Errorf("failed to delete author: %w", err)
	}
	return a, nil
}
