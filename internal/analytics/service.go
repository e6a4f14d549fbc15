// Package analytics serves the admin dashboard: aggregate statistics and a
// filterable feed over every feedback record.
package analytics

import (
	"context"
	"fmt"
	"math"

	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/validation"

	"go.uber.org/zap"
)

type Authorizer interface {
	Authorize(ctx context.Context, token string, scope models.Scope) (string, error)
}

type Service struct {
	auth     Authorizer
	users    repository.UserRepository
	feedback repository.FeedbackRepository
	logger   *zap.Logger
}

func NewService(authorizer Authorizer, users repository.UserRepository, feedback repository.FeedbackRepository, logger *zap.Logger) *Service {
	return &Service{
		auth:     authorizer,
		users:    users,
		feedback: feedback,
		logger:   logger,
	}
}

// GetStats requires an admin token. Records without a sentiment count toward
// TotalFeedback but not toward the distribution.
func (s *Service) GetStats(ctx context.Context, token string) (*models.Stats, error) {
	if _, err := s.auth.Authorize(ctx, token, models.ScopeAdmin); err != nil {
		return nil, err
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	summary, err := s.feedback.Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback: %w", err)
	}

	return &models.Stats{
		TotalUsers:    totalUsers,
		TotalFeedback: summary.Total,
		AverageRating: averageRating(summary),
		SentimentDistribution: distribution(summary),
	}, nil
}

// distribution lists every label, zero when absent.
func distribution(summary *models.FeedbackSummary) map[models.Sentiment]int64 {
	out := make(map[models.Sentiment]int64, len(models.Sentiments))
	for _, label := range models.Sentiments {
		out[label] = summary.Count(label)
	}
	return out
}

// averageRating is rounded to two decimals and is 0 with no records.
func averageRating(summary *models.FeedbackSummary) float64 {
	if summary.Total == 0 {
		return 0
	}
	avg := float64(summary.RatingSum) / float64(summary.Total)
	return math.Round(avg*100) / 100
}

// ListFeedback requires an admin token and returns the records matching every
// set criterion, newest first.
func (s *Service) ListFeedback(ctx context.Context, token string, criteria models.FilterCriteria) ([]models.Feedback, error) {
	if _, err := s.auth.Authorize(ctx, token, models.ScopeAdmin); err != nil {
		return nil, err
	}
	if err := validation.Struct(criteria); err != nil {
		return nil, err
	}

	records, err := s.feedback.Find(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	s.logger.Debug("Listed feedback", zap.Bool("filtered", !criteria.IsEmpty()), zap.Int("count", len(records)))
	return records, nil
}
