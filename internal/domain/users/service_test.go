package users

import (
	"context"
	"strings"
	"testing"

	"github.com/gatherly/server/internal/auth"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(_ context.Context, params CreateParams) (*User, error) {
	key := strings.ToLower(params.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, ErrEmailTaken
	}
	user := &User{
		ID:           params.ID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
	}
	r.byEmail[key] = user
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, zerolog.Nop())
}

func TestSignup(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	user, err := service.Signup(context.Background(), SignupParams{
		Name:     "Jordan",
		Email:    "Jordan@Example.COM",
		Password: "correct-horse",
		Role:     "event_owner",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "jordan@example.com", user.Email)
	require.Equal(t, auth.RoleEventOwner, user.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestSignup_RejectsAdminRole(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	_, err := service.Signup(context.Background(), SignupParams{
		Name:     "Sneaky",
		Email:    "sneaky@example.com",
		Password: "correct-horse",
		Role:     "ADMIN",
	})
	require.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestSignup_RejectsUnknownRole(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	_, err := service.Signup(context.Background(), SignupParams{
		Name:     "Guesser",
		Email:    "guesser@example.com",
		Password: "correct-horse",
		Role:     "SUPERUSER",
	})
	require.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestSignup_EmailTaken(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	params := SignupParams{
		Name:     "Jordan",
		Email:    "jordan@example.com",
		Password: "correct-horse",
		Role:     "STAFF",
	}
	_, err := service.Signup(context.Background(), params)
	require.NoError(t, err)

	params.Email = "JORDAN@example.com"
	_, err = service.Signup(context.Background(), params)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignup_Validation(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	tests := []struct {
		name   string
		params SignupParams
	}{
		{
			name:   "missing email",
			params: SignupParams{Name: "Jordan", Password: "correct-horse", Role: "STAFF"},
		},
		{
			name:   "bad email",
			params: SignupParams{Name: "Jordan", Email: "not-an-email", Password: "correct-horse", Role: "STAFF"},
		},
		{
			name:   "short password",
			params: SignupParams{Name: "Jordan", Email: "jordan@example.com", Password: "short", Role: "STAFF"},
		},
		{
			name:   "missing name",
			params: SignupParams{Email: "jordan@example.com", Password: "correct-horse", Role: "STAFF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Signup(context.Background(), tt.params)
			require.Error(t, err)
			var validationErrs validator.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	_, err := service.Signup(context.Background(), SignupParams{
		Name:     "Jordan",
		Email:    "jordan@example.com",
		Password: "correct-horse",
		Role:     "EVENT_OWNER",
	})
	require.NoError(t, err)

	user, err := service.Authenticate(context.Background(), "  JORDAN@example.com ", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "jordan@example.com", user.Email)

	_, err = service.Authenticate(context.Background(), "jordan@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(context.Background(), "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
