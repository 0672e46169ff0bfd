package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fseda/Vidly/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgInvalidTextEncoding = "22P02"
)

// PostgresStore handles user CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist. Emails are unique
// regardless of case.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name       VARCHAR(50)   NOT NULL,
			email      VARCHAR(255)  UNIQUE NOT NULL,
			password   VARCHAR(1024) NOT NULL,
			is_admin   BOOLEAN       NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email))`)
	if err != nil {
		return fmt.Errorf("migrate users email index: %w", err)
	}
	return nil
}

// CreateUser inserts a user whose Password is already hashed.
func (s *PostgresStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.Password, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password, is_admin, created_at FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// GetUserByID returns ErrNotFound for ids that are not UUIDs.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, ErrNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password, is_admin, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsAdmin, &u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextEncoding) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
