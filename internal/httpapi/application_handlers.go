package httpapi

import (
	"net/http"

	"atrios.org/internal/ats"
)

var applicationStatuses = []ats.ApplicationStatus{
	ats.StatusNew, ats.StatusScreening, ats.StatusShortlisted, ats.StatusInterviewed,
	ats.StatusOffered, ats.StatusHired, ats.StatusRejected, ats.StatusWithdrawn,
}

type applicationRow struct {
	Application   *ats.Application
	JobTitle      string
	CandidateName string
}

type applicationsListData struct {
	Rows     []applicationRow
	Status   ats.ApplicationStatus
	Statuses []ats.ApplicationStatus
}

func (a *API) handleApplicationsList(w http.ResponseWriter, r *http.Request) {
	actor := principal(r)
	status, _ := ats.ParseApplicationStatus(r.URL.Query().Get("status"))
	apps, err := a.applications.List(r.Context(), actor, ats.ApplicationFilter{Status: status}, a.pageFrom(r))
	if err != nil {
		a.failRedirect(w, r, err, "/dashboard")
		return
	}

	rows := make([]applicationRow, 0, len(apps))
	for _, app := range apps {
		row := applicationRow{Application: app, JobTitle: "(unavailable)", CandidateName: "(unavailable)"}
		if job, err := a.jobs.Find(r.Context(), actor, app.JobID); err == nil {
			row.JobTitle = job.Title
		}
		if cand, err := a.candidates.Find(r.Context(), actor, app.CandidateID); err == nil {
			row.CandidateName = cand.FullName()
		}
		rows = append(rows, row)
	}
	a.render(w, r, "applications_list", "Applications", applicationsListData{
		Rows: rows, Status: status, Statuses: applicationStatuses,
	}, nil)
}

type applicationViewData struct {
	Application *ats.Application
	Job         *ats.Job
	Candidate   *ats.Candidate
	Statuses    []ats.ApplicationStatus
}

func (a *API) handleApplicationView(w http.ResponseWriter, r *http.Request) {
	actor := principal(r)
	app, err := a.applications.Find(r.Context(), actor, r.URL.Query().Get("id"))
	if err != nil {
		a.failRedirect(w, r, err, "/applications")
		return
	}
	job, err := a.jobs.Find(r.Context(), actor, app.JobID)
	if err != nil {
		a.failRedirect(w, r, err, "/applications")
		return
	}
	candidate, err := a.candidates.Find(r.Context(), actor, app.CandidateID)
	if err != nil {
		// Application visibility follows the job; the candidate record itself
		// may be scoped to another recruiter. Show the application anyway.
		candidate = &ats.Candidate{ID: app.CandidateID, FirstName: "(restricted)", Status: ats.CandidateStatusActive}
	}
	a.render(w, r, "application_view", "Application", applicationViewData{
		Application: app, Job: job, Candidate: candidate, Statuses: applicationStatuses,
	}, nil)
}

func (a *API) handleApplicationAccept(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if _, err := a.applications.Accept(r.Context(), principal(r), id, parseEnrichment(r)); err != nil {
		a.failRedirect(w, r, err, "/applications/view?id="+id)
		return
	}
	a.flash.set(w, "success", "Application shortlisted.")
	http.Redirect(w, r, "/applications/view?id="+id, http.StatusSeeOther)
}

func (a *API) handleApplicationReject(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := a.applications.Reject(r.Context(), principal(r), id, r.FormValue("reason")); err != nil {
		a.failRedirect(w, r, err, "/applications/view?id="+id)
		return
	}
	a.flash.set(w, "success", "Application rejected.")
	http.Redirect(w, r, "/applications/view?id="+id, http.StatusSeeOther)
}

func (a *API) handleApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := a.applications.SetStatus(r.Context(), principal(r), id, r.FormValue("status")); err != nil {
		a.failRedirect(w, r, err, "/applications/view?id="+id)
		return
	}
	a.flash.set(w, "success", "Application status updated.")
	http.Redirect(w, r, "/applications/view?id="+id, http.StatusSeeOther)
}
