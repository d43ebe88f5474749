package httpapi

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"atrios.org/internal/auth"
	"atrios.org/internal/obs"
	"atrios.org/internal/settings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006 15:04")
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// pages lists every renderable template; each defines a "content" block that
// the shared layout wraps.
var pages = []string{
	"login", "dashboard",
	"clients_list", "client_form", "client_view",
	"jobs_list", "job_form", "job_view",
	"candidates_list", "candidate_form", "candidate_view",
	"applications_list", "application_view",
	"users_list", "user_form", "password",
	"apply", "apply_done",
	"activity", "settings",
	"error",
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// pageData is the single payload shape every template receives.
type pageData struct {
	Title    string
	SiteName string
	User     *auth.User
	Flash    *Flash
	Errors   map[string]string
	Data     any
}

func (a *API) render(w http.ResponseWriter, r *http.Request, page, pageTitle string, data any, fieldErrors map[string]string) {
	t, ok := a.templates[page]
	if !ok {
		a.renderError(w, r, http.StatusInternalServerError, "Page unavailable.")
		return
	}
	pd := pageData{
		Title:    pageTitle,
		SiteName: a.siteNameFor(r.Context()),
		Flash:    a.flash.take(w, r),
		Errors:   fieldErrors,
		Data:     data,
	}
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		u := p.User
		pd.User = &u
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, pd); err != nil {
		obs.Logger().Error().Err(err).Str("page", page).Msg("template render failed")
	}
}

// siteNameFor reads the admin-editable site name, falling back to the
// configured default when settings are unavailable.
func (a *API) siteNameFor(ctx context.Context) string {
	if a.settings != nil {
		if name, err := a.settings.Get(ctx, settings.KeySiteName); err == nil && name != "" {
			return name
		}
	}
	return a.siteName
}

func (a *API) renderError(w http.ResponseWriter, r *http.Request, code int, message string) {
	t, ok := a.templates["error"]
	if !ok {
		http.Error(w, message, code)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	pd := pageData{Title: http.StatusText(code), SiteName: a.siteNameFor(r.Context()), Data: message}
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		u := p.User
		pd.User = &u
	}
	_ = t.Execute(w, pd)
}
