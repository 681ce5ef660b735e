package agent

import (
	"sync"
	"time"
)

// Session is the per-user assistant state. It remembers the API key it was
// built with so a key rotation invalidates it on next use.
type Session struct {
	UserID    int64
	APIKey    string
	CreatedAt time.Time

	lastUsed  time.Time
	Exchanges int
}

// SessionCache holds at most max sessions, each valid for ttl since last use.
// It replaces an unbounded per-user map: when full, the least recently used
// session is evicted.
type SessionCache struct {
	mu       sync.Mutex
	max      int
	ttl      time.Duration
	sessions map[int64]*Session

	now func() time.Time // test hook
}

func NewSessionCache(max int, ttl time.Duration) *SessionCache {
	if max <= 0 {
		max = 1
	}
	return &SessionCache{
		max:      max,
		ttl:      ttl,
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the user's live session, building a fresh one when none exists,
// the TTL has lapsed, or the API key changed since the session was created.
func (c *SessionCache) Get(userID int64, apiKey string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	s, ok := c.sessions[userID]
	if ok && s.APIKey == apiKey && now.Sub(s.lastUsed) < c.ttl {
		s.lastUsed = now
		return s
	}

	s = &Session{UserID: userID, APIKey: apiKey, CreatedAt: now, lastUsed: now}
	c.sessions[userID] = s
	c.evictLocked(now)
	return s
}

// evictLocked drops expired sessions, then least-recently-used ones until the
// cache fits.
func (c *SessionCache) evictLocked(now time.Time) {
	for id, s := range c.sessions {
		if now.Sub(s.lastUsed) >= c.ttl {
			delete(c.sessions, id)
		}
	}
	for len(c.sessions) > c.max {
		var oldestID int64
		var oldest time.Time
		first := true
		for id, s := range c.sessions {
			if first || s.lastUsed.Before(oldest) {
				oldestID, oldest, first = id, s.lastUsed, false
			}
		}
		delete(c.sessions, oldestID)
	}
}

// Invalidate drops one user's session; called on history clear and credential
// change. Reports whether a session was present.
func (c *SessionCache) Invalidate(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[userID]
	delete(c.sessions, userID)
	return ok
}

func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
