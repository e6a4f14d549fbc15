// Package sqlstore implements the repository interfaces on SQLite through
// sqlx. Timestamps are stored as Unix milliseconds.
package sqlstore

import (
	"errors"
	"time"

	"feedback-backend/internal/repository"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func NewStores(db *sqlx.DB) *repository.Stores {
	return &repository.Stores{
		Users:    NewUserRepo(db),
		Admins:   NewAdminRepo(db),
		Sessions: NewSessionRepo(db),
		Feedback: NewFeedbackRepo(db),
	}
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
