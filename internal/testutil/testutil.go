// Package testutil builds real stores and deterministic clocks for tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"feedback-backend/internal/database"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/repository/sqlstore"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewStores opens a fresh SQLite database under t.TempDir with every table
// created.
func NewStores(t *testing.T) *repository.Stores {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stores := sqlstore.NewStores(db)
	require.NoError(t, stores.EnsureIndexes(context.Background()))
	return stores
}

// Clock advances by Step on every call to Now.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{now: start.UTC().Truncate(time.Millisecond), Step: step}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
