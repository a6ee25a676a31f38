package session

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned when no state exists for a session id.
var ErrSessionNotFound = errors.New("session not found")

// State is everything remembered about one browser session. The password a
// user typed is never part of it.
type State struct {
	// Checked is true once a password comparison happened in this session.
	Checked bool `json:"checked"`
	// Authorized is true once the correct password was entered.
	Authorized bool `json:"authorized"`
}

// Session pairs a session id with its state.
type Session struct {
	ID    string
	State State
	isNew bool
}

// IsNew reports whether the session was created by the current request.
func (s *Session) IsNew() bool {
	return s.isNew
}

// Store keeps session state between requests.
type Store interface {
	// Get returns the state for id or ErrSessionNotFound.
	Get(ctx context.Context, id string) (State, error)

	// Save stores state for id, refreshing its expiry.
	Save(ctx context.Context, id string, state State) error

	// Delete forgets id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error

	Close() error
}
