package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blogpost/internal/logging"
	"github.com/Skotchmaster/blogpost/internal/models"
	"github.com/Skotchmaster/blogpost/internal/service"
	"github.com/Skotchmaster/blogpost/internal/session"
)

const userKey = "user"

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type Gate struct {
	Auth Authenticator
}

func NewGate(a Authenticator) *Gate {
	return &Gate{Auth: a}
}

// RequireAuth resolves the access cookie to a user on every request.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "require_auth")

		raw := session.Value(c, session.AccessCookie)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "access token missing")
		}

		user, err := g.Auth.Authenticate(ctx, raw)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrUserNotFound):
			l.Warn("auth_failed", "status", 401, "reason", "user not found")
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		case errors.Is(err, service.ErrInvalidSession), errors.Is(err, service.ErrNoSession):
			l.Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		default:
			l.Error("auth_failed", "status", 500, "error", err)
			return err
		}

		c.Set(userKey, user)
		c.SetRequest(c.Request().WithContext(logging.With(ctx, "user_id", user.ID)))
		return next(c)
	}
}

// CurrentUser is nil outside of RequireAuth.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}
