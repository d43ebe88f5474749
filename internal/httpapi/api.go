// Package httpapi is the HTTP layer: session-authenticated staff pages,
// the public apply form, and the operational endpoints.
package httpapi

import (
	"database/sql"
	"html/template"
	"net/http"
	"time"

	"atrios.org/internal/ats"
	"atrios.org/internal/audit"
	"atrios.org/internal/auth"
	"atrios.org/internal/files"
	"atrios.org/internal/obs"
	"atrios.org/internal/settings"
)

// Config wires the API's collaborators and tunables.
type Config struct {
	Sessions     *auth.Service
	Users        *auth.Users
	Clients      *ats.Clients
	Jobs         *ats.Jobs
	Candidates   *ats.Candidates
	Applications *ats.Applications
	Uploads      *files.Storage
	Activity     *audit.Log
	Settings     *settings.Service

	DB            *sql.DB // readiness probe
	SiteName      string
	SiteURL       string
	SessionTTL    time.Duration
	SecureCookies bool
	Version       string

	MaxBodyBytes   int64
	ApplyRateBurst int
	ApplyPerMinute int
}

// API is the HTTP layer.
type API struct {
	mux       *http.ServeMux
	templates map[string]*template.Template
	flash     flashCodec

	sessions     *auth.Service
	users        *auth.Users
	clients      *ats.Clients
	jobs         *ats.Jobs
	candidates   *ats.Candidates
	applications *ats.Applications
	uploads      *files.Storage
	activity     *audit.Log
	settings     *settings.Service

	db            *sql.DB
	siteName      string
	siteURL       string
	sessionTTL    time.Duration
	secureCookies bool
	version       string

	maxBody        int64
	applyBurst     int
	applyPerMinute int
}

func New(cfg Config, flashSecret string) (*API, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	a := &API{
		mux:            http.NewServeMux(),
		templates:      templates,
		flash:          newFlashCodec(flashSecret),
		sessions:       cfg.Sessions,
		users:          cfg.Users,
		clients:        cfg.Clients,
		jobs:           cfg.Jobs,
		candidates:     cfg.Candidates,
		applications:   cfg.Applications,
		uploads:        cfg.Uploads,
		activity:       cfg.Activity,
		settings:       cfg.Settings,
		db:             cfg.DB,
		siteName:       cfg.SiteName,
		siteURL:        cfg.SiteURL,
		sessionTTL:     cfg.SessionTTL,
		secureCookies:  cfg.SecureCookies,
		version:        cfg.Version,
		maxBody:        cfg.MaxBodyBytes,
		applyBurst:     cfg.ApplyRateBurst,
		applyPerMinute: cfg.ApplyPerMinute,
	}
	if a.siteName == "" {
		a.siteName = "Atrios ATS"
	}
	if a.maxBody <= 0 {
		a.maxBody = 10 << 20
	}
	a.routes()
	return a, nil
}

func (a *API) routes() {
	// operational
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
	a.mux.HandleFunc("GET /version", a.handleVersion)
	a.mux.Handle("GET /metrics", obs.Handler())

	// sessions
	a.mux.HandleFunc("GET /login", a.handleLoginPage)
	a.mux.HandleFunc("POST /login", a.handleLogin)
	a.mux.HandleFunc("POST /logout", a.handleLogout)
	a.mux.HandleFunc("GET /password", a.requireUser(a.handlePasswordForm))
	a.mux.HandleFunc("POST /password", a.requireUser(a.handlePasswordChange))

	staff := []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleRecruiter}
	managers := []auth.Role{auth.RoleAdmin, auth.RoleManager}

	a.mux.HandleFunc("GET /", a.handleRoot)
	a.mux.HandleFunc("GET /dashboard", a.requireRole(a.handleDashboard, staff...))

	// clients
	a.mux.HandleFunc("GET /clients", a.requireRole(a.handleClientsList, managers...))
	a.mux.HandleFunc("GET /clients/new", a.requireRole(a.handleClientForm, managers...))
	a.mux.HandleFunc("GET /clients/edit", a.requireRole(a.handleClientForm, managers...))
	a.mux.HandleFunc("POST /clients/new", a.requireRole(a.handleClientSave, managers...))
	a.mux.HandleFunc("POST /clients/edit", a.requireRole(a.handleClientSave, managers...))
	a.mux.HandleFunc("GET /clients/view", a.requireRole(a.handleClientView, managers...))
	a.mux.HandleFunc("POST /clients/deactivate", a.requireRole(a.handleClientDeactivate, managers...))

	// jobs
	a.mux.HandleFunc("GET /jobs", a.requireRole(a.handleJobsList, staff...))
	a.mux.HandleFunc("GET /jobs/new", a.requireRole(a.handleJobForm, managers...))
	a.mux.HandleFunc("GET /jobs/edit", a.requireRole(a.handleJobForm, managers...))
	a.mux.HandleFunc("POST /jobs/new", a.requireRole(a.handleJobSave, managers...))
	a.mux.HandleFunc("POST /jobs/edit", a.requireRole(a.handleJobSave, managers...))
	a.mux.HandleFunc("GET /jobs/view", a.requireRole(a.handleJobView, staff...))
	a.mux.HandleFunc("POST /jobs/status", a.requireRole(a.handleJobStatus, managers...))
	a.mux.HandleFunc("POST /jobs/close", a.requireRole(a.handleJobClose, managers...))

	// candidates
	a.mux.HandleFunc("GET /candidates", a.requireRole(a.handleCandidatesList, staff...))
	a.mux.HandleFunc("GET /candidates/new", a.requireRole(a.handleCandidateForm, staff...))
	a.mux.HandleFunc("GET /candidates/edit", a.requireRole(a.handleCandidateForm, staff...))
	a.mux.HandleFunc("POST /candidates/new", a.requireRole(a.handleCandidateSave, staff...))
	a.mux.HandleFunc("POST /candidates/edit", a.requireRole(a.handleCandidateSave, staff...))
	a.mux.HandleFunc("GET /candidates/view", a.requireRole(a.handleCandidateView, staff...))
	a.mux.HandleFunc("POST /candidates/blacklist", a.requireRole(a.handleCandidateBlacklist, managers...))
	a.mux.HandleFunc("POST /candidates/unblacklist", a.requireRole(a.handleCandidateUnblacklist, managers...))

	// applications
	a.mux.HandleFunc("GET /applications", a.requireRole(a.handleApplicationsList, staff...))
	a.mux.HandleFunc("GET /applications/view", a.requireRole(a.handleApplicationView, staff...))
	a.mux.HandleFunc("POST /applications/accept", a.requireRole(a.handleApplicationAccept, staff...))
	a.mux.HandleFunc("POST /applications/reject", a.requireRole(a.handleApplicationReject, staff...))
	a.mux.HandleFunc("POST /applications/status", a.requireRole(a.handleApplicationStatus, staff...))

	// admin
	a.mux.HandleFunc("GET /users", a.requireRole(a.handleUsersList, auth.RoleAdmin))
	a.mux.HandleFunc("GET /users/new", a.requireRole(a.handleUserForm, auth.RoleAdmin))
	a.mux.HandleFunc("GET /users/edit", a.requireRole(a.handleUserForm, auth.RoleAdmin))
	a.mux.HandleFunc("POST /users/new", a.requireRole(a.handleUserSave, auth.RoleAdmin))
	a.mux.HandleFunc("POST /users/edit", a.requireRole(a.handleUserSave, auth.RoleAdmin))
	a.mux.HandleFunc("GET /activity", a.requireRole(a.handleActivity, auth.RoleAdmin))
	a.mux.HandleFunc("GET /settings", a.requireRole(a.handleSettingsPage, auth.RoleAdmin))
	a.mux.HandleFunc("POST /settings", a.requireRole(a.handleSettingsSave, auth.RoleAdmin))

	// stored files
	a.mux.HandleFunc("GET /files", a.requireRole(a.handleFileDownload, staff...))

	// public apply, rate-limited per IP
	applyLimited := RateLimit(http.HandlerFunc(a.handleApply), a.applyBurst, a.applyPerMinute)
	a.mux.Handle("GET /apply/{token}", applyLimited)
	a.mux.Handle("POST /apply/{token}", applyLimited)
}

// Handler wraps the mux in the shared middleware chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, a.maxBody)
	h = SecurityHeaders(h)
	h = obs.Instrument(h)
	h = Logging(h)
	return h
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		a.renderError(w, r, http.StatusNotFound, "That page does not exist.")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
