package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blogpost/internal/logging"
	authmw "github.com/Skotchmaster/blogpost/internal/middleware/auth"
	"github.com/Skotchmaster/blogpost/internal/service"
	"github.com/Skotchmaster/blogpost/internal/session"
)

type AuthService interface {
	Register(ctx context.Context, in service.Credentials) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*service.Session, error)
}

type AuthHandler struct {
	Auth    AuthService
	Cookies session.Cookies
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type statusResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	s, err := h.Auth.Register(c.Request().Context(), service.Credentials{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return authError(err)
	}
	return h.loggedIn(c, s)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	s, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authError(err)
	}
	return h.loggedIn(c, s)
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	if session.Value(c, session.AccessCookie) == "" {
		return c.JSON(http.StatusOK, statusResponse{Message: "user already logged out", Success: true})
	}
	h.Cookies.ClearSession(c)
	return c.JSON(http.StatusOK, statusResponse{Message: "user logged out", Success: true})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := session.Value(c, session.RefreshCookie)
	if raw == "" {
		return c.JSON(http.StatusOK, statusResponse{Message: "refresh token not found", Success: false})
	}

	s, err := h.Auth.Refresh(c.Request().Context(), raw)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) || errors.Is(err, service.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		return err
	}

	h.Cookies.SetSession(c, s.Tokens)
	return c.JSON(http.StatusOK, statusResponse{Message: "session refreshed", Success: true})
}

func (h *AuthHandler) CurrentUser(c echo.Context) error {
	u := authmw.CurrentUser(c)
	if u == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "access token missing")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) loggedIn(c echo.Context, s *service.Session) error {
	h.Cookies.SetSession(c, s.Tokens)
	logging.FromContext(c.Request().Context()).Info("login_ok", "user_id", s.User.ID)
	return c.JSON(http.StatusOK, statusResponse{Message: "successfully logged in", Success: true})
}

func authError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	case errors.Is(err, service.ErrInvalidUser), errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	default:
		return err
	}
}
