package model

import (
	"sync"
	"time"
)

// DefaultStatusTTL is how long a posted message stays visible.
const DefaultStatusTTL = 3 * time.Second

// StatusModel holds the most recent transient message shown next to the
// interaction state (for example "Can't undo anymore"). The zero value is
// usable and uses DefaultStatusTTL. Safe for concurrent use.
type StatusModel struct {
	mu     sync.Mutex
	msg    string
	posted time.Time
	TTL    time.Duration
}

// Post replaces the current message.
func (m *StatusModel) Post(msg string, now time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.msg, m.posted = msg, now
	m.mu.Unlock()
}

// Clear drops any message immediately.
func (m *StatusModel) Clear() { m.Post("", time.Time{}) }

// Message returns the current message, or "" once it has expired.
func (m *StatusModel) Message(now time.Time) string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl := m.TTL
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	if m.msg == "" || now.Sub(m.posted) >= ttl {
		return ""
	}
	return m.msg
}
