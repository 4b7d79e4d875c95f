package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO users (id, name, email, password_hash, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, email, password_hash, role, created_at
`, params.ID, params.Name, params.Email, params.PasswordHash, string(params.Role))

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, users.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, name, email, password_hash, role, created_at
  FROM users
 WHERE email = $1
 LIMIT 1
`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, name, email, password_hash, role, created_at
  FROM users
 WHERE id = $1
 LIMIT 1
`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var data struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		Role         string
		CreatedAt    time.Time
	}
	if err := row.Scan(
		&data.ID,
		&data.Name,
		&data.Email,
		&data.PasswordHash,
		&data.Role,
		&data.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &users.User{
		ID:           data.ID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         auth.NormalizeRole(data.Role),
		CreatedAt:    data.CreatedAt,
	}, nil
}
