package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/session"
	"feedback-backend/internal/testutil"
	"feedback-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T) (*Gateway, *repository.Stores) {
	t.Helper()
	stores := testutil.NewStores(t)
	clk := testutil.NewClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), time.Millisecond)
	sessions := session.NewStore(stores.Sessions, "test-secret", time.Hour, clk, zap.NewNop())
	g := NewGateway(stores.Users, stores.Admins, sessions, clk, zap.NewNop())
	require.NoError(t, g.SeedAdmin(context.Background(), "admin", "admin-password"))
	return g, stores
}

func register(t *testing.T, g *Gateway, username string) *models.User {
	t.Helper()
	user, err := g.Register(context.Background(), Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func TestGateway_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a user with a hashed password", func(t *testing.T) {
		g, stores := newTestGateway(t)
		user := register(t, g, "alice")

		stored, err := stores.Users.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, user.ID, stored.ID)
		assert.NotEqual(t, "password123", stored.PasswordHash)
	})

	t.Run("Should reject duplicate usernames and emails", func(t *testing.T) {
		g, _ := newTestGateway(t)
		register(t, g, "alice")

		_, err := g.Register(ctx, Registration{Username: "alice", Email: "other@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrUsernameTaken)

		_, err = g.Register(ctx, Registration{Username: "bob", Email: "ALICE@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("Should validate fields", func(t *testing.T) {
		g, _ := newTestGateway(t)
		cases := map[string]Registration{
			"password": {Username: "bob", Email: "bob@example.com", Password: "short"},
			"email":    {Username: "bob", Email: "not-an-email", Password: "password123"},
			"username": {Username: "   ", Email: "bob@example.com", Password: "password123"},
		}
		for field, reg := range cases {
			_, err := g.Register(ctx, reg)
			var fe *validation.FieldError
			require.True(t, errors.As(err, &fe), field)
			assert.Equal(t, field, fe.Field)
		}
	})
}

func TestGateway_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Should issue a user-scoped token", func(t *testing.T) {
		g, _ := newTestGateway(t)
		user := register(t, g, "alice")

		token, err := g.Login(ctx, "alice", "password123", models.ScopeUser)
		require.NoError(t, err)
		subject, err := g.Authorize(ctx, token, models.ScopeUser)
		require.NoError(t, err)
		assert.Equal(t, user.ID, subject)
	})

	t.Run("Should issue an admin-scoped token", func(t *testing.T) {
		g, _ := newTestGateway(t)
		token, err := g.Login(ctx, "admin", "admin-password", models.ScopeAdmin)
		require.NoError(t, err)
		_, err = g.Authorize(ctx, token, models.ScopeAdmin)
		assert.NoError(t, err)
	})

	t.Run("Should reject wrong passwords and unknown users", func(t *testing.T) {
		g, _ := newTestGateway(t)
		register(t, g, "alice")

		_, err := g.Login(ctx, "alice", "wrong-password", models.ScopeUser)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = g.Login(ctx, "nobody", "password123", models.ScopeUser)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = g.Login(ctx, "", "", models.ScopeUser)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Should keep identity spaces apart", func(t *testing.T) {
		g, _ := newTestGateway(t)
		register(t, g, "alice")

		_, err := g.Login(ctx, "alice", "password123", models.ScopeAdmin)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NotErrorIs(t, err, ErrUnauthorized)

		_, err = g.Login(ctx, "admin", "admin-password", models.ScopeUser)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGateway_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("Should wrap session failures as unauthorized", func(t *testing.T) {
		g, _ := newTestGateway(t)
		_, err := g.Authorize(ctx, "bogus", models.ScopeUser)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, session.ErrInvalidSession)
	})

	t.Run("Should invalidate a session presented in the wrong scope", func(t *testing.T) {
		g, _ := newTestGateway(t)
		register(t, g, "alice")
		token, err := g.Login(ctx, "alice", "password123", models.ScopeUser)
		require.NoError(t, err)

		_, err = g.Authorize(ctx, token, models.ScopeAdmin)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, session.ErrScopeMismatch)

		_, err = g.Authorize(ctx, token, models.ScopeUser)
		assert.ErrorIs(t, err, session.ErrInvalidSession)
	})

	t.Run("Should refuse but keep an admin session on a user operation", func(t *testing.T) {
		g, _ := newTestGateway(t)
		token, err := g.Login(ctx, "admin", "admin-password", models.ScopeAdmin)
		require.NoError(t, err)

		_, err = g.Authorize(ctx, token, models.ScopeUser)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, session.ErrScopeMismatch)

		_, err = g.Authorize(ctx, token, models.ScopeAdmin)
		assert.NoError(t, err)
	})
}

func TestGateway_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("Should be idempotent", func(t *testing.T) {
		g, _ := newTestGateway(t)
		token, err := g.Login(ctx, "admin", "admin-password", models.ScopeAdmin)
		require.NoError(t, err)

		g.Logout(ctx, token)
		g.Logout(ctx, token)
		g.Logout(ctx, "never-issued")

		_, err = g.Authorize(ctx, token, models.ScopeAdmin)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestGateway_SeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("Should rotate the password of an existing admin", func(t *testing.T) {
		g, stores := newTestGateway(t)
		before, err := stores.Admins.FindByUsername(ctx, "admin")
		require.NoError(t, err)

		require.NoError(t, g.SeedAdmin(ctx, "admin", "new-admin-password"))
		after, err := stores.Admins.FindByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)

		_, err = g.Login(ctx, "admin", "admin-password", models.ScopeAdmin)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = g.Login(ctx, "admin", "new-admin-password", models.ScopeAdmin)
		assert.NoError(t, err)
	})

	t.Run("Should require credentials", func(t *testing.T) {
		g, _ := newTestGateway(t)
		assert.Error(t, g.SeedAdmin(ctx, "", "x"))
	})
}
