package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/blogpost/internal/events"
	"github.com/Skotchmaster/blogpost/internal/hash"
	"github.com/Skotchmaster/blogpost/internal/logging"
	"github.com/Skotchmaster/blogpost/internal/models"
	"github.com/Skotchmaster/blogpost/internal/repo"
	"github.com/Skotchmaster/blogpost/internal/tokens"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	Users  UserStore
	Tokens *tokens.Service
	Events events.Publisher

	// HashPassword defaults to the argon2id hasher with default parameters.
	HashPassword func(password string) (string, error)
	Now          func() time.Time
}

type Session struct {
	User   *models.User
	Tokens tokens.Pair
}

type Credentials struct {
	Username string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) hashPassword(password string) (string, error) {
	if s.HashPassword != nil {
		return s.HashPassword(password)
	}
	return hash.HashPassword(password)
}

// Register creates the account and immediately logs it in.
func (s *AuthService) Register(ctx context.Context, in Credentials) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	pwHash, err := s.hashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.Users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			l.Warn("register_error", "status", 400, "reason", "user already exists")
			return nil, ErrConflict
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return s.Login(ctx, in.Email, in.Password)
}

// Login distinguishes an unknown email from a wrong password internally only;
// the HTTP layer reports both the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidUser
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssuePair(user.Email)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return &Session{User: user, Tokens: pair}, nil
}

// Refresh re-issues both tokens for the subject of a valid refresh token,
// which also restarts the refresh token's own lifetime.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, ErrNoSession
	}

	user, err := s.resolve(ctx, refreshToken, tokens.TypeRefresh)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return nil, err
	}

	pair, err := s.Tokens.IssuePair(user.Email)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}
	return &Session{User: user, Tokens: pair}, nil
}

// Authenticate maps an access token to its user. Nothing is cached: the token
// is the whole session state.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}
	return s.resolve(ctx, accessToken, tokens.TypeAccess)
}

func (s *AuthService) resolve(ctx context.Context, raw string, typ tokens.Type) (*models.User, error) {
	subject, err := s.Tokens.Verify(raw, typ)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	user, err := s.Users.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
