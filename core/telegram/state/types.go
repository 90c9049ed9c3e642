package state

import (
	"context"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and string data for a user.
type Session struct {
	State     State             `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSession returns an idle session with an empty data map.
func NewSession() *Session {
	return &Session{State: StateIdle, Data: make(map[string]string)}
}

// Active reports whether the session is in a non-idle state.
func (s *Session) Active() bool {
	return s != nil && s.State != "" && s.State != StateIdle
}

// Reset returns the session to idle and drops its data.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Data = make(map[string]string)
}

// Store persists sessions keyed by Telegram user ID.
//
// Get never returns nil without an error: unknown or expired users yield a
// fresh idle session. Save stamps UpdatedAt.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, userID int64, s *Session) error
	Delete(ctx context.Context, userID int64) error
}
