package httpapi

import (
	"errors"
	"net/http"

	"atrios.org/internal/ats"
	"atrios.org/internal/auth"
	"atrios.org/internal/files"
)

type clientsListData struct {
	Clients []*ats.Client
	Search  string
	Status  string
}

func (a *API) handleClientsList(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	status := r.URL.Query().Get("status")
	clients, err := a.clients.List(r.Context(), ats.ClientFilter{Search: search, Status: status}, a.pageFrom(r))
	if err != nil {
		a.failRedirect(w, r, err, "/dashboard")
		return
	}
	a.render(w, r, "clients_list", "Clients", clientsListData{Clients: clients, Search: search, Status: status}, nil)
}

type clientFormData struct {
	Client *ats.Client
	Staff  []*auth.User
}

func (a *API) handleClientForm(w http.ResponseWriter, r *http.Request) {
	client := &ats.Client{}
	if id := r.URL.Query().Get("id"); id != "" {
		found, err := a.clients.Find(r.Context(), id)
		if err != nil {
			a.failRedirect(w, r, err, "/clients")
			return
		}
		client = found
	}
	staff, err := a.users.List(r.Context())
	if err != nil {
		a.failRedirect(w, r, err, "/clients")
		return
	}
	a.render(w, r, "client_form", "Client", clientFormData{Client: client, Staff: staff}, nil)
}

func (a *API) handleClientSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.maxBody); err != nil {
		a.failRedirect(w, r, err, "/clients")
		return
	}
	in := parseClientInput(r)

	agreementPath, err := a.saveOptionalUpload(r, "agreement", "agreements")
	if err != nil {
		a.renderClientFormError(w, r, in, map[string]string{"agreement": uploadErrorMessage(err)})
		return
	}

	actor := principal(r)
	id := r.URL.Query().Get("id")
	var client *ats.Client
	if id == "" {
		client, err = a.clients.Create(r.Context(), actor, in, agreementPath)
	} else {
		client, err = a.clients.Update(r.Context(), actor, id, in, agreementPath)
	}
	if err != nil {
		if fields := fieldErrors(err); fields != nil {
			a.renderClientFormError(w, r, in, fields)
			return
		}
		a.failRedirect(w, r, err, "/clients")
		return
	}
	a.flash.set(w, "success", client.CompanyName+" saved.")
	http.Redirect(w, r, "/clients/view?id="+client.ID, http.StatusSeeOther)
}

func (a *API) renderClientFormError(w http.ResponseWriter, r *http.Request, in ats.ClientInput, fields map[string]string) {
	staff, _ := a.users.List(r.Context())
	client := &ats.Client{
		ID:          r.URL.Query().Get("id"),
		CompanyName: in.CompanyName,
		ContactName: in.ContactName,
		Email:       in.Email,
		Phone:       in.Phone,
		Website:     in.Website,
		Address:     in.Address,
		AssignedTo:  in.AssignedTo,
	}
	a.render(w, r, "client_form", "Client", clientFormData{Client: client, Staff: staff}, fields)
}

type clientViewData struct {
	Client *ats.Client
	Jobs   []*ats.Job
}

func (a *API) handleClientView(w http.ResponseWriter, r *http.Request) {
	client, err := a.clients.Find(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		a.failRedirect(w, r, err, "/clients")
		return
	}
	jobs, err := a.jobs.List(r.Context(), principal(r), ats.JobFilter{ClientID: client.ID}, ats.Page{Limit: 100})
	if err != nil {
		a.failRedirect(w, r, err, "/clients")
		return
	}
	a.render(w, r, "client_view", client.CompanyName, clientViewData{Client: client, Jobs: jobs}, nil)
}

func (a *API) handleClientDeactivate(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := a.clients.Deactivate(r.Context(), principal(r), id); err != nil {
		a.failRedirect(w, r, err, "/clients/view?id="+id)
		return
	}
	a.flash.set(w, "success", "Client deactivated.")
	http.Redirect(w, r, "/clients/view?id="+id, http.StatusSeeOther)
}

// saveOptionalUpload stores a form file if one was sent; absence is not an
// error so edit forms can keep the existing document.
func (a *API) saveOptionalUpload(r *http.Request, field, subdir string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()
	return a.uploads.Save(file, header, subdir)
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, files.ErrBadType):
		return "Only PDF, DOC and DOCX files are accepted."
	case errors.Is(err, files.ErrTooLarge):
		return "The file is too large."
	default:
		return "The file could not be stored."
	}
}
