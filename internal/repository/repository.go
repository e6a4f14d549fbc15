package repository

import (
	"context"
	"errors"
	"time"

	"feedback-backend/internal/models"

	"github.com/segmentio/ksuid"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrDuplicate = errors.New("duplicate key")
	ErrNotFound  = errors.New("not found")
)

// Lookups return (nil, nil) when nothing matches.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminAccount, error)
	// Upsert creates the account or replaces the password hash of the
	// existing one with the same username. ID and CreatedAt are filled in
	// from the stored record.
	Upsert(ctx context.Context, admin *models.AdminAccount) error
	EnsureIndexes(ctx context.Context) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	SetSentiment(ctx context.Context, id string, sentiment models.Sentiment) error
	// Find returns matching records newest first, ties broken by id descending.
	Find(ctx context.Context, criteria models.FilterCriteria) ([]models.Feedback, error)
	Summarize(ctx context.Context) (*models.FeedbackSummary, error)
	EnsureIndexes(ctx context.Context) error
}

// Stores bundles one backend's repositories.
type Stores struct {
	Users    UserRepository
	Admins   AdminRepository
	Sessions SessionRepository
	Feedback FeedbackRepository
}

// NewMongoStores wires every Mongo-backed repository against db.
func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Users:    NewUserRepo(db),
		Admins:   NewAdminRepo(db),
		Sessions: NewSessionRepo(db),
		Feedback: NewFeedbackRepo(db),
	}
}

// EnsureIndexes prepares every collection or table. Users come first so
// feedback can reference them.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	var errs []error
	for _, ensure := range []func(context.Context) error{
		s.Users.EnsureIndexes,
		s.Admins.EnsureIndexes,
		s.Sessions.EnsureIndexes,
		s.Feedback.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewID returns a K-sortable id whose time component is t.
func NewID(t time.Time) (string, error) {
	id, err := ksuid.NewRandomWithTime(t)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
