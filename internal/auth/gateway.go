// Package auth authenticates users and admins against their separate identity
// spaces and authorizes scoped calls through the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feedback-backend/internal/clock"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/session"
	"feedback-backend/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized wraps session.ErrInvalidSession and
	// session.ErrScopeMismatch at the service boundary. Clients drop their
	// token when they see it.
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

// dummyHash keeps unknown-username logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)

type Gateway struct {
	users    repository.UserRepository
	admins   repository.AdminRepository
	sessions *session.Store
	clock    clock.Clock
	logger   *zap.Logger
}

func NewGateway(users repository.UserRepository, admins repository.AdminRepository, sessions *session.Store, clk clock.Clock, logger *zap.Logger) *Gateway {
	return &Gateway{
		users:    users,
		admins:   admins,
		sessions: sessions,
		clock:    clk,
		logger:   logger,
	}
}

type Registration struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates a user account in the user identity space.
func (g *Gateway) Register(ctx context.Context, reg Registration) (*models.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if err := validation.Struct(reg); err != nil {
		return nil, err
	}

	existing, err := g.users.FindByUsername(ctx, reg.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = g.users.FindByEmail(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		CreatedAt:    g.clock.Now(),
	}
	if err := g.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent registration.
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	g.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// SeedAdmin creates or updates the admin account used for the admin scope.
func (g *Gateway) SeedAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.AdminAccount{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    g.clock.Now(),
	}
	if err := g.admins.Upsert(ctx, admin); err != nil {
		return fmt.Errorf("failed to store admin account: %w", err)
	}
	g.logger.Info("Admin account ready", zap.String("admin_id", admin.ID), zap.String("username", admin.Username))
	return nil
}

// Login checks the credential in the identity space that matches scope only
// and issues a session of that scope.
func (g *Gateway) Login(ctx context.Context, username, password string, scope models.Scope) (string, error) {
	subjectID, hash, err := g.lookup(ctx, strings.TrimSpace(username), scope)
	if err != nil {
		return "", err
	}
	if subjectID == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.Logins.WithLabelValues(string(scope), "rejected").Inc()
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		metrics.Logins.WithLabelValues(string(scope), "rejected").Inc()
		return "", ErrInvalidCredentials
	}

	token, err := g.sessions.Issue(ctx, subjectID, scope)
	if err != nil {
		return "", err
	}
	metrics.Logins.WithLabelValues(string(scope), "accepted").Inc()
	g.logger.Info("Login succeeded", zap.String("subject_id", subjectID), zap.String("scope", string(scope)))
	return token, nil
}

func (g *Gateway) lookup(ctx context.Context, username string, scope models.Scope) (string, string, error) {
	if username == "" {
		return "", "", nil
	}
	switch scope {
	case models.ScopeUser:
		user, err := g.users.FindByUsername(ctx, username)
		if err != nil {
			return "", "", fmt.Errorf("failed to look up user: %w", err)
		}
		if user == nil {
			return "", "", nil
		}
		return user.ID, user.PasswordHash, nil
	case models.ScopeAdmin:
		admin, err := g.admins.FindByUsername(ctx, username)
		if err != nil {
			return "", "", fmt.Errorf("failed to look up admin: %w", err)
		}
		if admin == nil {
			return "", "", nil
		}
		return admin.ID, admin.PasswordHash, nil
	}
	return "", "", fmt.Errorf("unknown scope %q", scope)
}

// Logout revokes token. It never fails from the caller's point of view.
func (g *Gateway) Logout(ctx context.Context, token string) {
	if err := g.sessions.Revoke(ctx, token); err != nil {
		g.logger.Warn("Failed to revoke session", zap.Error(err))
	}
}

// Authorize returns the subject behind token when it carries scope. Session
// failures come back as ErrUnauthorized. A user session presented to an
// admin operation is also revoked; an admin session on a user operation is
// refused but kept.
func (g *Gateway) Authorize(ctx context.Context, token string, scope models.Scope) (string, error) {
	subjectID, err := g.sessions.Validate(ctx, token, scope)
	switch {
	case err == nil:
		return subjectID, nil
	case errors.Is(err, session.ErrScopeMismatch):
		if scope == models.ScopeAdmin {
			g.logger.Warn("User session used for an admin operation, revoking")
			if rerr := g.sessions.Revoke(ctx, token); rerr != nil {
				g.logger.Warn("Failed to revoke mismatched session", zap.Error(rerr))
			}
		}
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case errors.Is(err, session.ErrInvalidSession):
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	default:
		return "", err
	}
}
