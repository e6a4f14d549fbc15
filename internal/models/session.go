package models

import "time"

// Scope is the authorization tier a session was issued for.
type Scope string

const (
	ScopeUser  Scope = "user"
	ScopeAdmin Scope = "admin"
)

func (s Scope) Valid() bool {
	return s == ScopeUser || s == ScopeAdmin
}

type Session struct {
	ID        string    `bson:"_id" json:"id"`
	SubjectID string    `bson:"subject_id" json:"subject_id"`
	Scope     Scope     `bson:"scope" json:"scope"`
	IssuedAt  time.Time `bson:"issued_at" json:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
