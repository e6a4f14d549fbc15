// Package clock supplies creation timestamps.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Monotonic never returns a time earlier than one it already returned, even
// if the wall clock steps backwards. Times are UTC at millisecond precision,
// the resolution every store keeps.
type Monotonic struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func New() *Monotonic {
	return &Monotonic{now: time.Now}
}

func (c *Monotonic) Now() time.Time {
	t := c.now().UTC().Truncate(time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
