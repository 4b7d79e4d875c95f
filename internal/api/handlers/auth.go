package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	Users      *users.Service
	JWTManager *auth.JWTManager
	Env        string
}

func NewAuthHandler(userService *users.Service, jwtManager *auth.JWTManager, env string) *AuthHandler {
	return &AuthHandler{Users: userService, JWTManager: jwtManager, Env: env}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expires_at"`
	User      userInfo `json:"user"`
}

type userInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Signup handles POST /api/v1/auth/signup. Accounts choose
// EVENT_OWNER or STAFF; ADMIN comes only from the bootstrap path.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.Signup(r.Context(), users.SignupParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			problem.Write(w, r, http.StatusConflict, ProblemConflict, "Email is already taken", nil, h.Env)
		case errors.Is(err, users.ErrRoleNotAllowed):
			problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, h.Env)
		default:
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, h.Env)
				return
			}
			problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusCreated, userInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
}

// Login handles POST /api/v1/auth/login. The token is issued both as
// an HttpOnly cookie for browser clients and in the body for API
// clients sending Bearer headers.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil || h.JWTManager == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, h.Env)
		return
	}

	if req.Email == "" || req.Password == "" {
		problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", nil, h.Env,
			problem.WithDetail("Email and password are required"))
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, ProblemUnauthorized, "Invalid credentials", nil, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	token, err := h.JWTManager.Generate(user.ID, user.Role)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	expiresAt := time.Now().Add(h.JWTManager.Expiry())

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User: userInfo{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
	})
}

// Logout handles POST /api/v1/auth/logout by expiring the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
