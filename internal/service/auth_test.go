package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/blogpost/internal/tokens"
)

func TestRegister_CreatesUserAndLogsIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.auth.Register(ctx, Credentials{Username: "a", Email: " A@X.com ", Password: "p1"})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", s.User.Email)
	assert.NotEqual(t, "p1", s.User.PasswordHash)
	assert.Zero(t, s.User.UserCost)
	assert.True(t, s.User.RegisteredAt.Equal(f.now))
	assert.NotEmpty(t, s.Tokens.Access.Value)
	assert.NotEmpty(t, s.Tokens.Refresh.Value)

	sub, err := f.auth.Tokens.Verify(s.Tokens.Access.Value, tokens.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)

	assert.Equal(t, []string{"user_registered", "user_logged_in"}, f.events.types())
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	for _, in := range []Credentials{
		{Email: "a@x.com", Password: "p"},
		{Username: "a", Password: "p"},
		{Username: "a", Email: "a@x.com"},
	} {
		_, err := f.auth.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestRegister_DuplicateEmailOrUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a", "a@x.com", "p1")

	_, err := f.auth.Register(ctx, Credentials{Username: "b", Email: "a@x.com", Password: "p2"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.auth.Register(ctx, Credentials{Username: "a", Email: "b@x.com", Password: "p2"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a", "a@x.com", "p1")

	s, err := f.auth.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, "a", s.User.Username)

	_, err = f.auth.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "nobody@x.com", "p1")
	assert.ErrorIs(t, err, ErrInvalidUser)

	_, err = f.auth.Login(ctx, "", "p1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a", "a@x.com", "p1")

	s, err := f.auth.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	u, err := f.auth.Authenticate(ctx, s.Tokens.Access.Value)
	require.NoError(t, err)
	assert.Equal(t, "a", u.Username)

	_, err = f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.auth.Authenticate(ctx, s.Tokens.Refresh.Value)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, err, tokens.ErrWrongTokenType)

	_, err = f.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)
}

func TestAuthenticate_UserGone(t *testing.T) {
	f := newFixture(t)
	ghost, err := f.auth.Tokens.IssueAccess("ghost@x.com")
	require.NoError(t, err)

	_, err = f.auth.Authenticate(context.Background(), ghost.Value)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a", "a@x.com", "p1")

	s, err := f.auth.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.auth.Refresh(ctx, s.Tokens.Access.Value)
	assert.ErrorIs(t, err, tokens.ErrWrongTokenType)

	next, err := f.auth.Refresh(ctx, s.Tokens.Refresh.Value)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", next.User.Email)
	assert.NotEqual(t, s.Tokens.Refresh.Value, next.Tokens.Refresh.Value)
	assert.True(t, next.Tokens.Refresh.ExpiresAt.Equal(f.now.Add(7*24*time.Hour)))
}

func TestRefresh_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a", "a@x.com", "p1")

	later := f.now.Add(7 * 24 * time.Hour)
	old, err := f.auth.Tokens.IssueRefresh("a@x.com")
	require.NoError(t, err)

	ts, err := tokens.NewService([]byte("service-test-secret"), "HS256", time.Hour, 7*24*time.Hour,
		tokens.WithClock(func() time.Time { return later }))
	require.NoError(t, err)
	f.auth.Tokens = ts

	_, err = f.auth.Refresh(ctx, old.Value)
	assert.ErrorIs(t, err, tokens.ErrTokenExpired)
}
