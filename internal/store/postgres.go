package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"konkan-properties/internal/models"
)

const (
	uniqueViolation = "23505"
	invalidTextRep  = "22P02" // e.g. a path id that is not a UUID
)

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRep
}

// UserStore handles user CRUD against PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *UserStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name       VARCHAR(100)  NOT NULL,
			email      VARCHAR(255)  UNIQUE NOT NULL,
			password   VARCHAR(255)  NOT NULL,
			phone      VARCHAR(30)   NOT NULL,
			address    TEXT          NOT NULL,
			is_admin   BOOLEAN       NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ   DEFAULT NOW()
		)
	`)
	return err
}

func (s *UserStore) CreateUser(ctx context.Context, name, email, hashedPassword, phone, address string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password, phone, address)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, email, phone, address, is_admin, created_at`,
		name, email, hashedPassword, phone, address,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password, phone, address, is_admin, created_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, address, is_admin, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetUsersByID fetches the given users in one query, keyed by id. Missing
// ids are simply absent from the result.
func (s *UserStore) GetUsersByID(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, phone, address, is_admin, created_at
		 FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users[u.ID] = &u
	}
	return users, rows.Err()
}

// ListUsers returns every user, newest first.
func (s *UserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, phone, address, is_admin, created_at
		 FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetAdmin flips the user's admin flag on. There is no demote path.
func (s *UserStore) SetAdmin(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET is_admin = TRUE WHERE id = $1
		 RETURNING id, name, email, phone, address, is_admin, created_at`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
