package httpapi

import (
	"context"
	"net/http"
	"time"

	"llm_compare/internal/compare"
	"llm_compare/internal/metrics"
	"llm_compare/internal/middleware"
	"llm_compare/internal/session"
	"llm_compare/internal/utils"
)

const healthTimeout = 2 * time.Second

type compareRequest struct {
	Prompt string `json:"prompt"`
}

type compareResponse struct {
	Panels []compare.Panel `json:"panels"`
}

// currentSession returns the session placed by SessionMiddleware.
func currentSession(r *http.Request) *session.Session {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess
	}
	return &session.Session{}
}

func (d *Dependencies) handleIndex(w http.ResponseWriter, r *http.Request) {
	d.renderPage(w, r, d.newPage(currentSession(r)))
}

// handleLogin runs the password gate and sends the browser back to the page.
// The submitted password is only used for the comparison. A successful login
// moves the session to a fresh id.
func (d *Dependencies) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess := currentSession(r)
	wasAuthorized := d.Gate.IsAuthorized(&sess.State)
	outcome := metrics.OutcomeError
	if d.Gate.Check(&sess.State, r.PostForm.Get("password")) {
		outcome = metrics.OutcomeSuccess
	}
	d.Metrics.ObserveLogin(outcome)

	save := d.Sessions.Save
	if !wasAuthorized && d.Gate.IsAuthorized(&sess.State) {
		save = d.Sessions.Rotate
	}
	if err := save(w, r, sess); err != nil {
		d.Logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to save session")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (d *Dependencies) handleCompare(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if !d.Gate.IsAuthorized(&sess.State) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	prompt := r.PostForm.Get("prompt")

	page := d.newPage(sess)
	page.Prompt = prompt
	page.Panels = renderPanels(d.Compare.Run(r.Context(), prompt))
	d.renderPage(w, r, page)
}

func (d *Dependencies) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if !d.Gate.IsAuthorized(&sess.State) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Password required")
		return
	}

	var req compareRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	panels := d.Compare.Run(r.Context(), req.Prompt)
	if panels == nil {
		panels = []compare.Panel{}
	}
	utils.RespondWithJSON(w, http.StatusOK, compareResponse{Panels: panels})
}

func (d *Dependencies) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := d.Sessions.Destroy(w, r, currentSession(r)); err != nil {
		d.Logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to destroy session")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (d *Dependencies) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		d.Logger.Warn().Err(err).Msg("health check failed")
		utils.RespondWithError(w, http.StatusServiceUnavailable, "session store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
