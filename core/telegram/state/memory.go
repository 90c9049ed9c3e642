package state

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/m3rciful/linkbot/core/logger"
)

// MemoryStore keeps sessions in process memory. Sessions idle for longer than
// ttl are dropped lazily on read and by Sweep; a zero ttl keeps them forever.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a copy of the stored session or a fresh idle one.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[userID]
	expired := ok && m.expired(sess)
	m.mu.RUnlock()

	if !ok {
		return NewSession(), nil
	}
	if expired {
		m.mu.Lock()
		if cur, still := m.sessions[userID]; still && m.expired(cur) {
			delete(m.sessions, userID)
		}
		m.mu.Unlock()
		logger.State.Debug("session expired",
			slog.String("event", "state.expired"),
			slog.Int64("user_id", userID),
			slog.String("state", string(sess.State)),
		)
		return NewSession(), nil
	}
	return clone(sess), nil
}

// Save stores a copy of s.
func (m *MemoryStore) Save(_ context.Context, userID int64, s *Session) error {
	if s == nil {
		s = NewSession()
	}
	s.UpdatedAt = m.now()
	m.mu.Lock()
	m.sessions[userID] = clone(s)
	m.mu.Unlock()
	return nil
}

// Delete removes the session for a user.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, sess := range m.sessions {
		if m.expired(sess) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.State.Debug("sessions swept",
					slog.String("event", "state.sweep"),
					slog.Int("count", n),
				)
			}
		}
	}
}

func (m *MemoryStore) expired(s *Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}

func clone(s *Session) *Session {
	out := *s
	out.Data = maps.Clone(s.Data)
	if out.Data == nil {
		out.Data = make(map[string]string)
	}
	return &out
}
