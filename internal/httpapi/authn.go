package httpapi

import (
	"net/http"
	"time"

	"atrios.org/internal/auth"
)

const sessionCookie = "ats_session"

func (a *API) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// requireUser resolves the session cookie to a principal. Browsers get a
// redirect to the login page, not an error body: this is a staff UI.
func (a *API) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		principal, err := a.sessions.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			a.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
	}
}

// requireRole layers an allow-list on top of requireUser. A logged-in user
// outside the list lands back on the dashboard with a flash instead of a 403
// page.
func (a *API) requireRole(next http.HandlerFunc, allowed ...auth.Role) http.HandlerFunc {
	return a.requireUser(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.PrincipalFromContext(r.Context())
		if !principal.HasAnyRole(allowed...) {
			a.flash.set(w, "error", "You do not have access to that page.")
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}
