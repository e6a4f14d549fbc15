package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"

	"github.com/jmoiron/sqlx"
)

type feedbackRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Username  string         `db:"username"`
	Rating    int            `db:"rating"`
	Comment   string         `db:"comment"`
	Sentiment sql.NullString `db:"sentiment"`
	CreatedAt int64          `db:"created_at"`
}

func (r feedbackRow) toModel() models.Feedback {
	f := models.Feedback{
		ID:        r.ID,
		UserID:    r.UserID,
		Username:  r.Username,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: fromMillis(r.CreatedAt),
	}
	if r.Sentiment.Valid {
		s := models.Sentiment(r.Sentiment.String)
		f.Sentiment = &s
	}
	return f
}

type FeedbackRepo struct {
	db *sqlx.DB
}

func NewFeedbackRepo(db *sqlx.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		id, err := repository.NewID(feedback.CreatedAt)
		if err != nil {
			return err
		}
		feedback.ID = id
	}
	var sentiment sql.NullString
	if feedback.Sentiment != nil {
		sentiment = sql.NullString{String: string(*feedback.Sentiment), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, username, rating, comment, sentiment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		feedback.ID, feedback.UserID, feedback.Username, feedback.Rating, feedback.Comment,
		sentiment, toMillis(feedback.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *FeedbackRepo) SetSentiment(ctx context.Context, id string, sentiment models.Sentiment) error {
	result, err := r.db.ExecContext(ctx, `UPDATE feedback SET sentiment = ? WHERE id = ?`, string(sentiment), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Find filters sentiment and rating in SQL. Search is matched in Go so case
// folding covers non-ASCII letters, which SQLite's LIKE does not.
func (r *FeedbackRepo) Find(ctx context.Context, criteria models.FilterCriteria) ([]models.Feedback, error) {
	var (
		where []string
		args  []any
	)
	if criteria.Sentiment != nil {
		where = append(where, "sentiment = ?")
		args = append(args, string(*criteria.Sentiment))
	}
	if criteria.Rating != nil {
		where = append(where, "rating = ?")
		args = append(args, *criteria.Rating)
	}

	query := `SELECT id, user_id, username, rating, comment, sentiment, created_at FROM feedback`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	var rows []feedbackRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	needle := strings.ToLower(criteria.Search)
	feedback := make([]models.Feedback, 0, len(rows))
	for _, row := range rows {
		if needle != "" &&
			!strings.Contains(strings.ToLower(row.Comment), needle) &&
			!strings.Contains(strings.ToLower(row.Username), needle) {
			continue
		}
		feedback = append(feedback, row.toModel())
	}
	return feedback, nil
}

func (r *FeedbackRepo) Summarize(ctx context.Context) (*models.FeedbackSummary, error) {
	var summary models.FeedbackSummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(rating), 0) AS rating_sum,
			COALESCE(SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END), 0) AS positive,
			COALESCE(SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END), 0) AS neutral,
			COALESCE(SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END), 0) AS negative
		FROM feedback`)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		username TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK(rating >= 1 AND rating <= 5),
		comment TEXT NOT NULL CHECK(length(trim(comment)) > 0),
		sentiment TEXT CHECK(sentiment IN ('positive', 'negative', 'neutral')),
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_sentiment_rating ON feedback(sentiment, rating)`)
	return err
}
