package users

import (
	"context"
	"errors"
	"time"

	"github.com/gatherly/server/internal/auth"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}

type CreateParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         auth.Role
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
