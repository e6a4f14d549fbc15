package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"

	"github.com/jmoiron/sqlx"
)

type sessionRow struct {
	ID        string `db:"id"`
	SubjectID string `db:"subject_id"`
	Scope     string `db:"scope"`
	IssuedAt  int64  `db:"issued_at"`
	ExpiresAt int64  `db:"expires_at"`
}

type SessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, session *models.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, subject_id, scope, issued_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.SubjectID, string(session.Scope), toMillis(session.IssuedAt), toMillis(session.ExpiresAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var row sessionRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM sessions WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &models.Session{
		ID:        row.ID,
		SubjectID: row.SubjectID,
		Scope:     models.Scope(row.Scope),
		IssuedAt:  fromMillis(row.IssuedAt),
		ExpiresAt: fromMillis(row.ExpiresAt),
	}, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *SessionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		scope TEXT NOT NULL CHECK(scope IN ('user', 'admin')),
		issued_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`)
	return err
}
