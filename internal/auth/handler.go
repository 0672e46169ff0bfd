package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fseda/Vidly/internal/apperr"
	"github.com/fseda/Vidly/internal/httpx"
	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/store"
	"github.com/fseda/Vidly/internal/validation"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// Throttle limits repeated failed logins for one email.
type Throttle interface {
	Allow(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

var errInvalidCredentials = apperr.Validation("Invalid email or password.")

// Handler holds user registration and login handlers.
type Handler struct {
	users    UserStore
	tokens   *TokenManager
	throttle Throttle
	validate *validation.Validator
	log      logrus.FieldLogger
}

func NewHandler(users UserStore, tokens *TokenManager, throttle Throttle, validate *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{users: users, tokens: tokens, throttle: throttle, validate: validate, log: log}
}

// Register creates a user and returns its token in the x-auth-token header.
// Only an admin caller may create another admin.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	isAdmin := req.IsAdmin != nil && *req.IsAdmin
	if isAdmin {
		if caller, ok := IdentityFrom(r.Context()); !ok || !caller.IsAdmin {
			httpx.Error(w, r, h.log, apperr.Forbidden("Only an admin can create admin users."))
			return
		}
	}

	user, err := CreateUser(r.Context(), h.users, req.Name, req.Email, req.Password, isAdmin)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to generate token", err))
		return
	}

	w.Header().Set(TokenHeader, token)
	httpx.JSON(w, http.StatusOK, models.RegisterResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

// Login verifies credentials and returns a fresh token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	ctx := r.Context()

	allowed, err := h.throttle.Allow(ctx, req.Email)
	if err != nil {
		h.log.WithError(err).Warn("login throttle unavailable, allowing attempt")
		allowed = true
	}
	if !allowed {
		httpx.Error(w, r, h.log, apperr.TooManyRequests("Too many failed login attempts. Try again later."))
		return
	}

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		httpx.Error(w, r, h.log, apperr.Internal("failed to fetch user", err))
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		if ferr := h.throttle.Fail(ctx, req.Email); ferr != nil {
			h.log.WithError(ferr).Warn("record failed login")
		}
		httpx.Error(w, r, h.log, errInvalidCredentials)
		return
	}

	if err := h.throttle.Reset(ctx, req.Email); err != nil {
		h.log.WithError(err).Warn("reset login throttle")
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to generate token", err))
		return
	}
	httpx.JSON(w, http.StatusOK, models.LoginResponse{Token: token})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, r, h.log, apperr.Unauthenticated("Access denied. No token provided."))
		return
	}

	user, err := h.users.GetUserByID(r.Context(), caller.UserID)
	if errors.Is(err, store.ErrNotFound) {
		httpx.Error(w, r, h.log, apperr.NotFound("User not found."))
		return
	}
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to fetch user", err))
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// CreateUser hashes password and stores a new user. It is shared by the
// registration endpoint and the seed command.
func CreateUser(ctx context.Context, users UserStore, name, email, password string, isAdmin bool) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Internal("failed to hash password", err)
	}

	user, err := users.CreateUser(ctx, models.User{
		Name:     strings.TrimSpace(name),
		Email:    models.NormalizeEmail(email),
		Password: string(hashed),
		IsAdmin:  isAdmin,
	})
	if errors.Is(err, store.ErrConflict) {
		return models.User{}, apperr.Conflict("User already registered.")
	}
	if err != nil {
		return models.User{}, apperr.Internal("failed to create user", err)
	}
	return user, nil
}
