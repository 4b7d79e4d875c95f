package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherly/server/internal/audit"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/ids"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt password hashing.
const BcryptCost = 12

// ErrRoleNotAllowed is returned when signup requests a role outside
// the self-service set. ADMIN accounts come only from the bootstrap
// path.
var ErrRoleNotAllowed = errors.New("role not allowed at signup")

type Service struct {
	repo        Repository
	validator   *validator.Validate
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewService(repo Repository, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		validator:   validator.New(),
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "users").Logger(),
	}
}

type SignupParams struct {
	Name     string `validate:"required,min=1,max=200"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
	Role     string `validate:"required"`
}

// Signup registers a new account. Role is fixed at creation; there is
// no role-change flow.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*User, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if err := s.validator.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid signup: %w", err)
	}

	if !auth.IsValidRole(params.Role) {
		return nil, ErrRoleNotAllowed
	}
	role := auth.NormalizeRole(params.Role)
	if role == auth.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	existing, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		ID:           ids.NewUUID(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.auditLogger.LogSuccess("user.signup", user.Email, "user", user.ID, map[string]string{
		"role": string(user.Role),
	})
	return user, nil
}

// Authenticate verifies email/password credentials. The caller gets
// ErrInvalidCredentials for both a missing user and a wrong password,
// so login responses do not reveal which one failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
