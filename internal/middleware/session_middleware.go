package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"llm_compare/internal/session"
	"llm_compare/internal/utils"
)

// SessionLoader resolves the browser session for a request.
type SessionLoader interface {
	Load(r *http.Request) (*session.Session, error)
}

// SessionMiddleware loads the caller's session and adds it to the request
// context. Handlers read it back with session.FromContext.
func SessionMiddleware(loader SessionLoader, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := loader.Load(r)
			if err != nil {
				logger.Error().
					Err(err).
					Str("request_id", GetRequestID(r.Context())).
					Msg("failed to load session")
				utils.RespondWithError(w, http.StatusInternalServerError, "Error loading session")
				return
			}

			ctx := session.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
