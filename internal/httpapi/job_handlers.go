package httpapi

import (
	"net/http"

	"atrios.org/internal/ats"
	"atrios.org/internal/auth"
)

var jobStatuses = []ats.JobStatus{
	ats.JobStatusDraft, ats.JobStatusActive, ats.JobStatusOnHold, ats.JobStatusClosed, ats.JobStatusFilled,
}

type jobsListData struct {
	Jobs     []*ats.Job
	Search   string
	Status   ats.JobStatus
	Statuses []ats.JobStatus
}

func (a *API) handleJobsList(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	status, _ := ats.ParseJobStatus(r.URL.Query().Get("status"))
	jobs, err := a.jobs.List(r.Context(), principal(r), ats.JobFilter{Search: search, Status: status}, a.pageFrom(r))
	if err != nil {
		a.failRedirect(w, r, err, "/dashboard")
		return
	}
	a.render(w, r, "jobs_list", "Jobs", jobsListData{
		Jobs: jobs, Search: search, Status: status, Statuses: jobStatuses,
	}, nil)
}

type jobFormData struct {
	Job     *ats.Job
	Clients []*ats.Client
	Staff   []*auth.User
	TeamSet map[string]bool
}

func (a *API) handleJobForm(w http.ResponseWriter, r *http.Request) {
	job := &ats.Job{}
	if id := r.URL.Query().Get("id"); id != "" {
		found, err := a.jobs.Find(r.Context(), principal(r), id)
		if err != nil {
			a.failRedirect(w, r, err, "/jobs")
			return
		}
		job = found
	}
	a.renderJobForm(w, r, job, nil)
}

func (a *API) renderJobForm(w http.ResponseWriter, r *http.Request, job *ats.Job, fields map[string]string) {
	clients, err := a.clients.List(r.Context(), ats.ClientFilter{Status: ats.ClientStatusActive}, ats.Page{Limit: 200})
	if err != nil {
		a.failRedirect(w, r, err, "/jobs")
		return
	}
	staff, err := a.users.List(r.Context())
	if err != nil {
		a.failRedirect(w, r, err, "/jobs")
		return
	}
	team := make(map[string]bool, len(job.TeamIDs))
	for _, id := range job.TeamIDs {
		team[id] = true
	}
	a.render(w, r, "job_form", "Job", jobFormData{Job: job, Clients: clients, Staff: staff, TeamSet: team}, fields)
}

func (a *API) handleJobSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.failRedirect(w, r, err, "/jobs")
		return
	}
	in := parseJobInput(r)
	actor := principal(r)
	id := r.URL.Query().Get("id")

	var (
		job *ats.Job
		err error
	)
	if id == "" {
		job, err = a.jobs.Create(r.Context(), actor, in)
	} else {
		job, err = a.jobs.Update(r.Context(), actor, id, in)
	}
	if err != nil {
		if fields := fieldErrors(err); fields != nil {
			a.renderJobForm(w, r, jobFromInput(id, in), fields)
			return
		}
		a.failRedirect(w, r, err, "/jobs")
		return
	}
	a.flash.set(w, "success", job.Title+" saved.")
	http.Redirect(w, r, "/jobs/view?id="+job.ID, http.StatusSeeOther)
}

func jobFromInput(id string, in ats.JobInput) *ats.Job {
	return &ats.Job{
		ID:            id,
		ClientID:      in.ClientID,
		Title:         in.Title,
		Description:   in.Description,
		Locations:     in.Locations,
		JobType:       in.JobType,
		ExperienceMin: in.ExperienceMin,
		ExperienceMax: in.ExperienceMax,
		SalaryMin:     in.SalaryMin,
		SalaryMax:     in.SalaryMax,
		ScreeningQ1:   in.ScreeningQ1,
		ScreeningQ2:   in.ScreeningQ2,
		TeamIDs:       in.TeamIDs,
	}
}

type jobViewData struct {
	Job          *ats.Job
	ApplyURL     string
	Statuses     []ats.JobStatus
	Applications []*ats.Application
}

func (a *API) handleJobView(w http.ResponseWriter, r *http.Request) {
	actor := principal(r)
	job, err := a.jobs.Find(r.Context(), actor, r.URL.Query().Get("id"))
	if err != nil {
		a.failRedirect(w, r, err, "/jobs")
		return
	}
	apps, err := a.applications.List(r.Context(), actor, ats.ApplicationFilter{JobID: job.ID}, ats.Page{Limit: 100})
	if err != nil {
		a.failRedirect(w, r, err, "/jobs")
		return
	}
	a.render(w, r, "job_view", job.Title, jobViewData{
		Job:          job,
		ApplyURL:     a.siteURL + "/apply/" + job.ApplyToken,
		Statuses:     jobStatuses,
		Applications: apps,
	}, nil)
}

func (a *API) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := a.jobs.SetStatus(r.Context(), principal(r), id, r.FormValue("status")); err != nil {
		a.failRedirect(w, r, err, "/jobs/view?id="+id)
		return
	}
	a.flash.set(w, "success", "Job status updated.")
	http.Redirect(w, r, "/jobs/view?id="+id, http.StatusSeeOther)
}

func (a *API) handleJobClose(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	changed, err := a.jobs.Close(r.Context(), principal(r), id)
	if err != nil {
		a.failRedirect(w, r, err, "/jobs/view?id="+id)
		return
	}
	if changed {
		a.flash.set(w, "success", "Job closed.")
	} else {
		a.flash.set(w, "success", "Job was already closed.")
	}
	http.Redirect(w, r, "/jobs/view?id="+id, http.StatusSeeOther)
}
