// Package session issues, validates and revokes scoped session tokens.
//
// A token is an HS256 JWT whose jti names a persisted session record. The
// record is authoritative: deleting it revokes the token, and its scope is
// the one checked on every call.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedback-backend/internal/clock"
	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrScopeMismatch  = errors.New("session scope does not permit this operation")
)

type Claims struct {
	Scope models.Scope `json:"scope"`
	jwt.RegisteredClaims
}

type Store struct {
	repo   repository.SessionRepository
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger
	parser *jwt.Parser
}

func NewStore(repo repository.SessionRepository, secret string, ttl time.Duration, clk clock.Clock, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
		logger: logger,
		// Expiry is enforced against the stored record, so expired tokens
		// still parse and can be revoked.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Issue persists a new session for subjectID and returns its token.
func (s *Store) Issue(ctx context.Context, subjectID string, scope models.Scope) (string, error) {
	if !scope.Valid() {
		return "", fmt.Errorf("unknown scope %q", scope)
	}

	now := s.clock.Now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Scope:     scope,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Debug("Session issued", zap.String("session_id", sess.ID), zap.String("scope", string(scope)))
	return token, nil
}

// Validate returns the subject of token if it names a live session issued
// for requiredScope.
func (s *Store) Validate(ctx context.Context, token string, requiredScope models.Scope) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	sess, err := s.repo.FindByID(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return "", ErrInvalidSession
	}
	if sess.IsExpired(s.clock.Now()) {
		if err := s.repo.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.String("session_id", sess.ID), zap.Error(err))
		}
		return "", ErrInvalidSession
	}
	if sess.Scope != claims.Scope || sess.SubjectID != claims.Subject {
		return "", ErrInvalidSession
	}
	if sess.Scope != requiredScope {
		return "", ErrScopeMismatch
	}
	return sess.SubjectID, nil
}

// Revoke removes the session behind token. Unknown, malformed and already
// revoked tokens are ignored.
func (s *Store) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.repo.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token has no session id")
	}
	return claims, nil
}
