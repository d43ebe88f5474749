package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"atrios.org/internal/ats"
	"atrios.org/internal/auth"
)

func (a *API) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if _, err := a.sessions.Authenticate(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}
	a.render(w, r, "login", "Sign in", nil, nil)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	token, _, err := a.sessions.Login(r.Context(), email, password)
	if err != nil {
		// One message for every failure mode: never reveal which part was wrong.
		a.flash.set(w, "error", "Invalid email or password.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	a.setSessionCookie(w, token, a.sessionTTL)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		_ = a.sessions.Logout(r.Context(), cookie.Value)
	}
	a.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *API) handlePasswordForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, "password", "Change password", nil, nil)
}

func (a *API) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.failRedirect(w, r, err, "/password")
		return
	}
	next := r.FormValue("password")
	if next != r.FormValue("confirm") {
		a.flash.set(w, "error", "New passwords do not match.")
		http.Redirect(w, r, "/password", http.StatusSeeOther)
		return
	}
	actor := principal(r)
	strict := a.settings != nil && a.settings.StrictPasswords(r.Context())
	err := a.users.ChangePassword(r.Context(), actor.User.ID, r.FormValue("current"), next, strict)
	switch {
	case err == nil:
		a.flash.set(w, "success", "Password changed.")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	case errors.Is(err, auth.ErrInvalidCredentials):
		a.flash.set(w, "error", "Current password is incorrect.")
		http.Redirect(w, r, "/password", http.StatusSeeOther)
	case errors.Is(err, auth.ErrInvalidInput):
		a.flash.set(w, "error", err.Error())
		http.Redirect(w, r, "/password", http.StatusSeeOther)
	default:
		a.failRedirect(w, r, err, "/password")
	}
}

type dashboardData struct {
	ActiveJobs      int
	Candidates      int
	NewApplications int
	Recent          []*ats.Application
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor := principal(r)
	ctx := r.Context()
	var data dashboardData

	if jobs, err := a.jobs.List(ctx, actor, ats.JobFilter{Status: ats.JobStatusActive}, ats.Page{Limit: 200}); err == nil {
		data.ActiveJobs = len(jobs)
	}
	if cands, err := a.candidates.List(ctx, actor, ats.CandidateFilter{}, ats.Page{Limit: 200}); err == nil {
		data.Candidates = len(cands)
	}
	if apps, err := a.applications.List(ctx, actor, ats.ApplicationFilter{Status: ats.StatusNew}, ats.Page{Limit: 200}); err == nil {
		data.NewApplications = len(apps)
	}
	if recent, err := a.applications.List(ctx, actor, ats.ApplicationFilter{}, ats.Page{Limit: 10}); err == nil {
		data.Recent = recent
	}
	a.render(w, r, "dashboard", "Dashboard", data, nil)
}
