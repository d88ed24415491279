package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laudier3/urlcurt/internal/shortener"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO short_urls (slug, original_url, short_link, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		string(shortURL.Slug),
		shortURL.OriginalURL,
		shortURL.ShortLink,
		shortURL.OwnerID,
		shortURL.CreatedAt,
	).Scan(&shortURL.ID)
	if isUniqueViolation(err) {
		return shortener.ErrDuplicateSlug
	}

	return err
}

func (p *PostgresStore) GetBySlug(ctx context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	query := `
		SELECT id, slug, original_url, short_link, owner_id, visits, created_at
		FROM short_urls
		WHERE slug = $1
	`

	return p.scanOne(p.pool.QueryRow(ctx, query, string(slug)))
}

func (p *PostgresStore) GetByID(ctx context.Context, id int64) (*shortener.ShortURL, error) {
	query := `
		SELECT id, slug, original_url, short_link, owner_id, visits, created_at
		FROM short_urls
		WHERE id = $1
	`

	return p.scanOne(p.pool.QueryRow(ctx, query, id))
}

func (p *PostgresStore) ListByOwner(ctx context.Context, ownerID int64) ([]*shortener.ShortURL, error) {
	query := `
		SELECT id, slug, original_url, short_link, owner_id, visits, created_at
		FROM short_urls
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := p.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*shortener.ShortURL

	for rows.Next() {
		var u shortener.ShortURL

		if err := rows.Scan(
			&u.ID, &u.Slug, &u.OriginalURL, &u.ShortLink, &u.OwnerID, &u.Visits, &u.CreatedAt,
		); err != nil {
			return nil, err
		}

		out = append(out, &u)
	}

	return out, rows.Err()
}

func (p *PostgresStore) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64

	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM short_urls WHERE owner_id = $1`, ownerID,
	).Scan(&count)

	return count, err
}

func (p *PostgresStore) SlugExists(ctx context.Context, slug shortener.Slug) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM short_urls WHERE slug = $1)`, string(slug),
	).Scan(&exists)

	return exists, err
}

func (p *PostgresStore) Update(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		UPDATE short_urls
		SET slug = $2, original_url = $3, short_link = $4
		WHERE id = $1
	`

	tag, err := p.pool.Exec(ctx, query,
		shortURL.ID,
		string(shortURL.Slug),
		shortURL.OriginalURL,
		shortURL.ShortLink,
	)
	if isUniqueViolation(err) {
		return shortener.ErrDuplicateSlug
	}

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM short_urls WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// IncrementVisits bumps the counter inside the database so concurrent
// redirects never lose updates.
func (p *PostgresStore) IncrementVisits(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE short_urls SET visits = visits + 1 WHERE id = $1`, id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) scanOne(row pgx.Row) (*shortener.ShortURL, error) {
	var u shortener.ShortURL

	err := row.Scan(&u.ID, &u.Slug, &u.OriginalURL, &u.ShortLink, &u.OwnerID, &u.Visits, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
