package httpapi

import (
	"net/http"

	"atrios.org/internal/ats"
)

type candidatesListData struct {
	Candidates         []*ats.Candidate
	Search             string
	IncludeBlacklisted bool
}

func (a *API) handleCandidatesList(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	includeBlacklisted := r.URL.Query().Get("blacklisted") == "1"
	cands, err := a.candidates.List(r.Context(), principal(r), ats.CandidateFilter{
		Search:             search,
		IncludeBlacklisted: includeBlacklisted,
	}, a.pageFrom(r))
	if err != nil {
		a.failRedirect(w, r, err, "/dashboard")
		return
	}
	a.render(w, r, "candidates_list", "Candidates", candidatesListData{
		Candidates: cands, Search: search, IncludeBlacklisted: includeBlacklisted,
	}, nil)
}

type candidateFormData struct {
	Candidate *ats.Candidate
}

func (a *API) handleCandidateForm(w http.ResponseWriter, r *http.Request) {
	candidate := &ats.Candidate{}
	if id := r.URL.Query().Get("id"); id != "" {
		found, err := a.candidates.Find(r.Context(), principal(r), id)
		if err != nil {
			a.failRedirect(w, r, err, "/candidates")
			return
		}
		candidate = found
	}
	a.render(w, r, "candidate_form", "Candidate", candidateFormData{Candidate: candidate}, nil)
}

func (a *API) handleCandidateSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.maxBody); err != nil {
		a.failRedirect(w, r, err, "/candidates")
		return
	}
	in := parseCandidateInput(r)
	id := r.URL.Query().Get("id")

	resumePath, err := a.saveOptionalUpload(r, "resume", "resumes")
	if err != nil {
		a.renderCandidateFormError(w, r, id, in, map[string]string{"resume": uploadErrorMessage(err)})
		return
	}

	actor := principal(r)
	var candidate *ats.Candidate
	if id == "" {
		candidate, err = a.candidates.Create(r.Context(), actor, in, resumePath)
	} else {
		candidate, err = a.candidates.Update(r.Context(), actor, id, in, resumePath)
	}
	if err != nil {
		if fields := fieldErrors(err); fields != nil {
			a.renderCandidateFormError(w, r, id, in, fields)
			return
		}
		a.failRedirect(w, r, err, "/candidates")
		return
	}
	a.flash.set(w, "success", candidate.FullName()+" saved.")
	http.Redirect(w, r, "/candidates/view?id="+candidate.ID, http.StatusSeeOther)
}

func (a *API) renderCandidateFormError(w http.ResponseWriter, r *http.Request, id string, in ats.CandidateInput, fields map[string]string) {
	candidate := &ats.Candidate{
		ID:               id,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		Location:         in.Location,
		Skills:           in.Skills,
		ExperienceYears:  in.ExperienceYears,
		Education:        in.Education,
		CurrentCompany:   in.CurrentCompany,
		CurrentSalary:    in.CurrentSalary,
		ExpectedSalary:   in.ExpectedSalary,
		NoticePeriodDays: in.NoticePeriodDays,
		Notes:            in.Notes,
	}
	a.render(w, r, "candidate_form", "Candidate", candidateFormData{Candidate: candidate}, fields)
}

type candidateViewData struct {
	Candidate    *ats.Candidate
	Applications []*ats.Application
}

func (a *API) handleCandidateView(w http.ResponseWriter, r *http.Request) {
	actor := principal(r)
	candidate, err := a.candidates.Find(r.Context(), actor, r.URL.Query().Get("id"))
	if err != nil {
		a.failRedirect(w, r, err, "/candidates")
		return
	}
	apps, err := a.applications.List(r.Context(), actor, ats.ApplicationFilter{CandidateID: candidate.ID}, ats.Page{Limit: 100})
	if err != nil {
		a.failRedirect(w, r, err, "/candidates")
		return
	}
	a.render(w, r, "candidate_view", candidate.FullName(), candidateViewData{
		Candidate: candidate, Applications: apps,
	}, nil)
}

func (a *API) handleCandidateBlacklist(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := a.candidates.Blacklist(r.Context(), principal(r), id, r.FormValue("reason")); err != nil {
		a.failRedirect(w, r, err, "/candidates/view?id="+id)
		return
	}
	a.flash.set(w, "success", "Candidate blacklisted.")
	http.Redirect(w, r, "/candidates/view?id="+id, http.StatusSeeOther)
}

func (a *API) handleCandidateUnblacklist(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := a.candidates.Unblacklist(r.Context(), principal(r), id); err != nil {
		a.failRedirect(w, r, err, "/candidates/view?id="+id)
		return
	}
	a.flash.set(w, "success", "Candidate removed from blacklist.")
	http.Redirect(w, r, "/candidates/view?id="+id, http.StatusSeeOther)
}
