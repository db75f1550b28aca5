package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/blogpost/internal/models"
	"github.com/Skotchmaster/blogpost/internal/service"
	"github.com/Skotchmaster/blogpost/internal/session"
	"github.com/Skotchmaster/blogpost/internal/tokens"
)

type stubAuth struct {
	user *models.User
	err  error
	seen string
}

func (s *stubAuth) Authenticate(_ context.Context, raw string) (*models.User, error) {
	s.seen = raw
	return s.user, s.err
}

func run(t *testing.T, a *stubAuth, cookie string) (*models.User, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/get/user", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: cookie})
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *models.User
	called := false
	err := NewGate(a).RequireAuth(func(c echo.Context) error {
		called = true
		got = CurrentUser(c)
		return nil
	})(c)
	return got, called, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	return he.Code
}

func TestRequireAuth_Missing(t *testing.T) {
	a := &stubAuth{}
	_, called, err := run(t, a, "")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Empty(t, a.seen)
}

func TestRequireAuth_Invalid(t *testing.T) {
	a := &stubAuth{err: errors.Join(service.ErrInvalidSession, tokens.ErrTokenExpired)}
	_, called, err := run(t, a, "tok")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireAuth_UserGone(t *testing.T) {
	a := &stubAuth{err: service.ErrUserNotFound}
	_, called, err := run(t, a, "tok")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireAuth_StoreFailure(t *testing.T) {
	boom := errors.New("db down")
	_, called, err := run(t, &stubAuth{err: boom}, "tok")
	assert.False(t, called)
	assert.ErrorIs(t, err, boom)
}

func TestRequireAuth_OK(t *testing.T) {
	u := &models.User{ID: "1", Username: "a", Email: "a@x.com"}
	a := &stubAuth{user: u}
	got, called, err := run(t, a, "tok")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "tok", a.seen)
	assert.Same(t, u, got)
}

func TestCurrentUser_Unset(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, CurrentUser(c))
}
