package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/session"
	"feedback-backend/internal/testutil"
	"feedback-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc        *Service
	gateway    *auth.Gateway
	stores     *repository.Stores
	clock      *testutil.Clock
	adminToken string
	users      map[string]*models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	stores := testutil.NewStores(t)
	clk := testutil.NewClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), time.Second)
	sessions := session.NewStore(stores.Sessions, "test-secret", time.Hour, clk, zap.NewNop())
	gateway := auth.NewGateway(stores.Users, stores.Admins, sessions, clk, zap.NewNop())
	require.NoError(t, gateway.SeedAdmin(ctx, "admin", "admin-password"))
	adminToken, err := gateway.Login(ctx, "admin", "admin-password", models.ScopeAdmin)
	require.NoError(t, err)

	f := &fixture{
		svc:        NewService(gateway, stores.Users, stores.Feedback, zap.NewNop()),
		gateway:    gateway,
		stores:     stores,
		clock:      clk,
		adminToken: adminToken,
		users:      map[string]*models.User{},
	}
	for _, name := range []string{"alice", "Bob"} {
		user, err := gateway.Register(ctx, auth.Registration{Username: name, Email: name + "@example.com", Password: "password123"})
		require.NoError(t, err)
		f.users[name] = user
	}
	return f
}

// add inserts a record directly, the way the feedback pipeline persists one.
func (f *fixture) add(t *testing.T, username string, rating int, comment string, label *models.Sentiment) models.Feedback {
	t.Helper()
	user := f.users[username]
	record := &models.Feedback{
		UserID:    user.ID,
		Username:  user.Username,
		Rating:    rating,
		Comment:   comment,
		Sentiment: label,
		CreatedAt: f.clock.Now(),
	}
	require.NoError(t, f.stores.Feedback.Create(context.Background(), record))
	return *record
}

func sentimentPtr(s models.Sentiment) *models.Sentiment { return &s }
func intPtr(i int) *int                                  { return &i }

func ids(records []models.Feedback) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestService_GetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return zeros with no feedback", func(t *testing.T) {
		f := newFixture(t)
		stats, err := f.svc.GetStats(ctx, f.adminToken)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalUsers)
		assert.Equal(t, int64(0), stats.TotalFeedback)
		assert.Equal(t, 0.0, stats.AverageRating)
		assert.Equal(t, map[models.Sentiment]int64{
			models.SentimentPositive: 0,
			models.SentimentNeutral:  0,
			models.SentimentNegative: 0,
		}, stats.SentimentDistribution)
	})

	t.Run("Should aggregate ratings and sentiment, skipping unclassified", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "alice", 5, "great", sentimentPtr(models.SentimentPositive))
		f.add(t, "alice", 4, "good", sentimentPtr(models.SentimentPositive))
		f.add(t, "Bob", 1, "awful", sentimentPtr(models.SentimentNegative))
		f.add(t, "Bob", 3, "unclassified", nil)

		stats, err := f.svc.GetStats(ctx, f.adminToken)
		require.NoError(t, err)
		assert.Equal(t, int64(4), stats.TotalFeedback)
		assert.Equal(t, 3.25, stats.AverageRating)
		assert.Equal(t, int64(2), stats.SentimentDistribution[models.SentimentPositive])
		assert.Equal(t, int64(0), stats.SentimentDistribution[models.SentimentNeutral])
		assert.Equal(t, int64(1), stats.SentimentDistribution[models.SentimentNegative])
	})

	t.Run("Should round the average to two decimals", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "alice", 5, "a", nil)
		f.add(t, "alice", 4, "b", nil)
		f.add(t, "alice", 4, "c", nil)

		stats, err := f.svc.GetStats(ctx, f.adminToken)
		require.NoError(t, err)
		assert.Equal(t, 4.33, stats.AverageRating)
	})

	t.Run("Should refuse user tokens", func(t *testing.T) {
		f := newFixture(t)
		userToken, err := f.gateway.Login(ctx, "alice", "password123", models.ScopeUser)
		require.NoError(t, err)

		_, err = f.svc.GetStats(ctx, userToken)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
		assert.ErrorIs(t, err, session.ErrScopeMismatch)
	})
}

func TestService_ListFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return everything newest first for empty criteria", func(t *testing.T) {
		f := newFixture(t)
		first := f.add(t, "alice", 5, "first", nil)
		second := f.add(t, "Bob", 2, "second", nil)
		third := f.add(t, "alice", 3, "third", nil)

		records, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{})
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(records))
	})

	t.Run("Should break created_at ties by id descending, deterministically", func(t *testing.T) {
		f := newFixture(t)
		f.clock.Step = 0
		for i := 0; i < 5; i++ {
			f.add(t, "alice", 3, "same instant", nil)
		}

		first, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{})
		require.NoError(t, err)
		second, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{})
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(second))
		for i := 1; i < len(first); i++ {
			assert.Greater(t, first[i-1].ID, first[i].ID)
		}
	})

	t.Run("Should AND-combine sentiment and rating", func(t *testing.T) {
		f := newFixture(t)
		match := f.add(t, "alice", 4, "good", sentimentPtr(models.SentimentPositive))
		f.add(t, "alice", 5, "great", sentimentPtr(models.SentimentPositive))
		f.add(t, "Bob", 4, "bad", sentimentPtr(models.SentimentNegative))
		f.add(t, "Bob", 4, "pending", nil)

		records, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{
			Sentiment: sentimentPtr(models.SentimentPositive),
			Rating:    intPtr(4),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{match.ID}, ids(records))
	})

	t.Run("Should search comment or username case-insensitively", func(t *testing.T) {
		f := newFixture(t)
		byComment := f.add(t, "alice", 4, "The DELIVERY was late", nil)
		byUsername := f.add(t, "Bob", 2, "nothing to add", nil)
		f.add(t, "alice", 5, "all good", nil)

		records, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{Search: "delivery"})
		require.NoError(t, err)
		assert.Equal(t, []string{byComment.ID}, ids(records))

		records, err = f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{Search: "bob"})
		require.NoError(t, err)
		assert.Equal(t, []string{byUsername.ID}, ids(records))
	})

	t.Run("Should treat wildcard characters in search literally", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "alice", 4, "plain comment", nil)
		pct := f.add(t, "alice", 4, "100% satisfied", nil)

		records, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{Search: "%"})
		require.NoError(t, err)
		assert.Equal(t, []string{pct.ID}, ids(records))
	})

	t.Run("Should combine search with the other filters", func(t *testing.T) {
		f := newFixture(t)
		want := f.add(t, "alice", 5, "friendly staff", sentimentPtr(models.SentimentPositive))
		f.add(t, "alice", 4, "friendly but slow", sentimentPtr(models.SentimentPositive))

		records, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{
			Sentiment: sentimentPtr(models.SentimentPositive),
			Rating:    intPtr(5),
			Search:    "FRIENDLY",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{want.ID}, ids(records))
	})

	t.Run("Should reject malformed criteria", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{Rating: intPtr(9)})
		var fe *validation.FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "rating", fe.Field)

		_, err = f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{Sentiment: sentimentPtr("mixed")})
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "sentiment", fe.Field)
	})

	t.Run("Should refuse user tokens and not mutate anything", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "alice", 5, "great", nil)
		userToken, err := f.gateway.Login(ctx, "alice", "password123", models.ScopeUser)
		require.NoError(t, err)

		_, err = f.svc.ListFeedback(ctx, userToken, models.FilterCriteria{})
		assert.ErrorIs(t, err, auth.ErrUnauthorized)

		records, err := f.svc.ListFeedback(ctx, f.adminToken, models.FilterCriteria{})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}
