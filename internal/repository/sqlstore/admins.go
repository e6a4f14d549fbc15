package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"feedback-backend/internal/models"
	"feedback-backend/internal/repository"

	"github.com/jmoiron/sqlx"
)

type adminRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

type AdminRepo struct {
	db *sqlx.DB
}

func NewAdminRepo(db *sqlx.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) FindByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	var row adminRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM admins WHERE username = ?`, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &models.AdminAccount{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    fromMillis(row.CreatedAt),
	}, nil
}

func (r *AdminRepo) Upsert(ctx context.Context, admin *models.AdminAccount) error {
	id, err := repository.NewID(admin.CreatedAt)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash`,
		id, admin.Username, admin.PasswordHash, toMillis(admin.CreatedAt))
	if err != nil {
		return err
	}

	stored, err := r.FindByUsername(ctx, admin.Username)
	if err != nil {
		return err
	}
	if stored == nil {
		return repository.ErrNotFound
	}
	admin.ID = stored.ID
	admin.CreatedAt = stored.CreatedAt
	return nil
}

func (r *AdminRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	return err
}
