package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const sessionKey contextKey = "session"

// Manager ties the session cookie to the Store.
type Manager struct {
	store      Store
	signer     *Signer
	cookieName string
	secure     bool
}

// NewManager creates a session manager
func NewManager(store Store, signer *Signer, cookieName string, secure bool) *Manager {
	return &Manager{
		store:      store,
		signer:     signer,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Load returns the session for r. A missing or invalid cookie, or state that
// expired from the store, yields a fresh unsaved session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if id, err := m.signer.Parse(cookie.Value); err == nil {
			state, err := m.store.Get(r.Context(), id)
			switch {
			case err == nil:
				return &Session{ID: id, State: state}, nil
			case !errors.Is(err, ErrSessionNotFound):
				return nil, fmt.Errorf("failed to load session: %w", err)
			}
		}
	}

	return &Session{ID: uuid.NewString(), isNew: true}, nil
}

// Save stores the session state and issues the session cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if err := m.store.Save(r.Context(), sess.ID, sess.State); err != nil {
		return err
	}

	token, err := m.signer.Sign(sess.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	sess.isNew = false
	return nil
}

// Rotate moves the session state to a new id and issues a cookie for it. The
// old id stops resolving, so a cookie planted before login is useless after it.
func (m *Manager) Rotate(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if !sess.isNew {
		if err := m.store.Delete(r.Context(), sess.ID); err != nil {
			return fmt.Errorf("failed to drop old session: %w", err)
		}
	}
	sess.ID = uuid.NewString()
	return m.Save(w, r, sess)
}

// Destroy ends the session: its state is deleted and the cookie cleared.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if err := m.store.Delete(r.Context(), sess.ID); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	sess.State = State{}
	return nil
}

// WithSession stores sess in ctx
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext retrieves the session placed by WithSession
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok
}
