// Package feedback turns a user's rating and comment into a durable,
// sentiment-tagged record.
package feedback

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/clock"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/sentiment"
	"feedback-backend/internal/validation"

	"go.uber.org/zap"
)

type Authorizer interface {
	Authorize(ctx context.Context, token string, scope models.Scope) (string, error)
}

type Service struct {
	auth       Authorizer
	users      repository.UserRepository
	feedback   repository.FeedbackRepository
	classifier sentiment.Classifier
	notifier   notify.Notifier
	clock      clock.Clock
	timeout    time.Duration
	logger     *zap.Logger
}

func NewService(
	authorizer Authorizer,
	users repository.UserRepository,
	feedback repository.FeedbackRepository,
	classifier sentiment.Classifier,
	notifier notify.Notifier,
	clk clock.Clock,
	classifierTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		auth:       authorizer,
		users:      users,
		feedback:   feedback,
		classifier: classifier,
		notifier:   notifier,
		clock:      clk,
		timeout:    classifierTimeout,
		logger:     logger,
	}
}

type submission struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// Submit stores the feedback first and classifies it second. A nil error
// means the record is durable; its Sentiment is nil when classification
// failed or timed out.
func (s *Service) Submit(ctx context.Context, token string, rating int, comment string) (*models.Feedback, error) {
	userID, err := s.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	in := submission{Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: account no longer exists", auth.ErrUnauthorized)
	}

	record := &models.Feedback{
		UserID:    user.ID,
		Username:  user.Username,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.clock.Now(),
	}
	if err := s.feedback.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	metrics.Submissions.WithLabelValues(strconv.Itoa(record.Rating)).Inc()

	// The record is durable; the caller going away must not cut enrichment short.
	s.enrich(context.WithoutCancel(ctx), record)
	s.publish(*record)
	return record, nil
}

// Authorize checks that token may submit feedback. Transports call it before
// rejecting input they cannot hand to Submit.
func (s *Service) Authorize(ctx context.Context, token string) (string, error) {
	return s.auth.Authorize(ctx, token, models.ScopeUser)
}

func (s *Service) enrich(ctx context.Context, record *models.Feedback) {
	label, err := s.classify(ctx, record.Comment)
	if err != nil {
		metrics.Classifications.WithLabelValues("failed").Inc()
		s.logger.Warn("Sentiment classification failed, leaving sentiment empty",
			zap.String("feedback_id", record.ID), zap.Error(err))
		return
	}
	if err := s.feedback.SetSentiment(ctx, record.ID, label); err != nil {
		metrics.Classifications.WithLabelValues("unsaved").Inc()
		s.logger.Error("Failed to store sentiment",
			zap.String("feedback_id", record.ID), zap.String("sentiment", string(label)), zap.Error(err))
		return
	}
	metrics.Classifications.WithLabelValues(string(label)).Inc()
	record.Sentiment = &label
}

// classify bounds the classifier by the configured timeout even when the
// classifier ignores its context.
func (s *Service) classify(ctx context.Context, text string) (models.Sentiment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		label models.Sentiment
		err   error
	}
	done := make(chan result, 1)
	go func() {
		label, err := s.classifier.Classify(ctx, text)
		done <- result{label, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", sentiment.ErrClassifierFailure, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("%w: %w", sentiment.ErrClassifierFailure, r.err)
		}
		if !r.label.Valid() {
			return "", fmt.Errorf("%w: unknown label %q", sentiment.ErrClassifierFailure, r.label)
		}
		return r.label, nil
	}
}

// Fire notification in a background goroutine (non-blocking)
func (s *Service) publish(record models.Feedback) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.Publish(context.Background(), formatMessage(record)); err != nil {
			s.logger.Warn("Failed to publish feedback notification", zap.String("feedback_id", record.ID), zap.Error(err))
		}
	}()
}

func formatMessage(record models.Feedback) string {
	label := "unclassified"
	if record.Sentiment != nil {
		label = string(*record.Sentiment)
	}
	return "New feedback received\n" +
		"User: " + record.Username + "\n" +
		"Rating: " + strings.Repeat("★", record.Rating) + strings.Repeat("☆", 5-record.Rating) + "\n" +
		"Sentiment: " + label + "\n" +
		"Comment: " + record.Comment
}
