package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laudier3/urlcurt/internal/user"
)

// PostgresUserStore is a PostgreSQL implementation of user.Repository.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a new PostgreSQL-backed user store.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (p *PostgresUserStore) Save(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, phone, age, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.Phone, u.Age, u.CreatedAt,
	).Scan(&u.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return user.ErrPhoneTaken
		}

		return user.ErrEmailTaken
	}

	return err
}

func (p *PostgresUserStore) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return p.getBy(ctx, `WHERE id = $1`, id)
}

func (p *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return p.getBy(ctx, `WHERE email = $1`, email)
}

func (p *PostgresUserStore) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	return p.getBy(ctx, `WHERE phone = $1`, phone)
}

// Delete removes a user; short_urls and visits cascade via foreign keys.
func (p *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (p *PostgresUserStore) getBy(ctx context.Context, where string, arg any) (*user.User, error) {
	query := `
		SELECT id, name, email, password_hash, phone, age, created_at
		FROM users
	` + where

	var u user.User

	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Age, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, err
	}

	return &u, nil
}

// Compile-time check.
var _ user.Repository = (*PostgresUserStore)(nil)
