// Package gate implements the shared-password check in front of the
// comparison page. It is a convenience gate, not an authentication system:
// one secret, exact comparison, no hashing and no lockout.
package gate

import (
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog"

	"llm_compare/internal/config"
	"llm_compare/internal/session"
)

// SecretSource provides the configured password.
type SecretSource interface {
	Get(key string) (string, error)
}

type Gate struct {
	secrets SecretSource
	logger  zerolog.Logger
}

func New(secrets SecretSource, logger zerolog.Logger) *Gate {
	return &Gate{
		secrets: secrets,
		logger:  logger.With().Str("component", "gate").Logger(),
	}
}

// Check compares candidate with the configured password and records the
// outcome in state. A session that is already authorized stays authorized
// without a comparison. The candidate is not kept anywhere.
func (g *Gate) Check(state *session.State, candidate string) bool {
	if state.Authorized {
		return true
	}

	secret := g.password()
	state.Checked = true
	state.Authorized = subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
	return state.Authorized
}

// UsingFallback reports whether the built-in default password is in effect.
func (g *Gate) UsingFallback() bool {
	_, err := g.secrets.Get(config.PasswordKey)
	return err != nil
}

func (g *Gate) password() string {
	secret, err := g.secrets.Get(config.PasswordKey)
	if err != nil {
		if !errors.Is(err, config.ErrSecretNotFound) {
			g.logger.Warn().Err(err).Msg("secret store unavailable, using fallback password")
		}
		return config.FallbackPassword
	}
	return secret
}

// IsAuthorized reports whether the session passed the gate.
func (g *Gate) IsAuthorized(state *session.State) bool {
	return state != nil && state.Authorized
}

// NoticeIncorrect reports whether the "password incorrect" notice is due:
// a comparison happened and it failed.
func (g *Gate) NoticeIncorrect(state *session.State) bool {
	return state != nil && state.Checked && !state.Authorized
}
