package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"atrios.org/internal/auth"
)

var staffRoles = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleRecruiter}

type usersListData struct {
	Users []*auth.User
}

func (a *API) handleUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		a.failRedirect(w, r, err, "/dashboard")
		return
	}
	a.render(w, r, "users_list", "Staff users", usersListData{Users: users}, nil)
}

type userFormData struct {
	User  *auth.User
	Roles []auth.Role
}

func (a *API) handleUserForm(w http.ResponseWriter, r *http.Request) {
	user := &auth.User{Role: auth.RoleRecruiter}
	if id := r.URL.Query().Get("id"); id != "" {
		found, err := a.users.Find(r.Context(), id)
		if err != nil {
			a.failUserError(w, r, err, "/users")
			return
		}
		user = found
	}
	a.render(w, r, "user_form", "User", userFormData{User: user, Roles: staffRoles}, nil)
}

func (a *API) handleUserSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.failRedirect(w, r, err, "/users")
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	role, _ := auth.ParseRole(r.FormValue("role"))

	id := r.URL.Query().Get("id")
	if id == "" {
		strict := a.settings != nil && a.settings.StrictPasswords(r.Context())
		_, err := a.users.Create(r.Context(), name, email, r.FormValue("password"), role, strict)
		if err != nil {
			a.failUserError(w, r, err, "/users/new")
			return
		}
	} else {
		status := strings.TrimSpace(r.FormValue("status"))
		_, err := a.users.Update(r.Context(), id, auth.UserUpdate{
			Name:   &name,
			Email:  &email,
			Role:   &role,
			Status: &status,
		})
		if err != nil {
			a.failUserError(w, r, err, "/users/edit?id="+id)
			return
		}
		// Deactivation must bite immediately, not at cookie expiry.
		if status == auth.UserStatusInactive {
			_ = a.sessions.RevokeAll(r.Context(), id)
		}
	}
	a.flash.set(w, "success", name+" saved.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// failUserError maps auth service sentinels to flash messages.
func (a *API) failUserError(w http.ResponseWriter, r *http.Request, err error, to string) {
	switch {
	case errors.Is(err, auth.ErrAlreadyExists):
		a.flash.set(w, "error", "A user with that email already exists.")
	case errors.Is(err, auth.ErrInvalidInput):
		a.flash.set(w, "error", err.Error())
	case errors.Is(err, auth.ErrNotFound):
		a.flash.set(w, "error", "User not found.")
	default:
		a.flash.set(w, "error", "Something went wrong. Please try again.")
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (a *API) handleActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := a.activity.List(r.Context(), 100, 0)
	if err != nil {
		a.failRedirect(w, r, err, "/dashboard")
		return
	}
	a.render(w, r, "activity", "Activity", map[string]any{"Entries": entries}, nil)
}

func (a *API) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	all, err := a.settings.All(r.Context())
	if err != nil {
		a.failRedirect(w, r, err, "/dashboard")
		return
	}
	a.render(w, r, "settings", "Settings", all, nil)
}

func (a *API) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.failRedirect(w, r, err, "/settings")
		return
	}
	for _, key := range []string{"site_name", "page_size", "password_policy"} {
		if v := strings.TrimSpace(r.FormValue(key)); v != "" {
			if err := a.settings.Set(r.Context(), key, v); err != nil {
				a.failRedirect(w, r, err, "/settings")
				return
			}
		}
	}
	a.flash.set(w, "success", "Settings saved.")
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}
