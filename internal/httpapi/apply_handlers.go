package httpapi

import (
	"errors"
	"net/http"

	"atrios.org/internal/ats"
)

type applyData struct {
	Job  *ats.Job
	Form ats.SubmitInput
}

// handleApply serves the public apply page. GET renders the form, POST
// submits it; unlike the staff pages, errors render inline because there is
// no session to carry a flash for.
func (a *API) handleApply(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	job, err := a.jobs.FindByToken(r.Context(), token)
	if err != nil {
		a.renderError(w, r, http.StatusNotFound, "This position is not open for applications.")
		return
	}
	if r.Method == http.MethodGet {
		a.render(w, r, "apply", "Apply: "+job.Title, applyData{Job: job}, nil)
		return
	}

	if err := r.ParseMultipartForm(a.maxBody); err != nil {
		a.renderError(w, r, http.StatusBadRequest, "The submission could not be read.")
		return
	}
	in := parseSubmitInput(r)

	file, header, err := r.FormFile("resume")
	if err != nil {
		a.render(w, r, "apply", "Apply: "+job.Title, applyData{Job: job, Form: in},
			map[string]string{"resume": "A resume is required."})
		return
	}
	defer file.Close()
	resumePath, err := a.uploads.Save(file, header, "resumes")
	if err != nil {
		a.render(w, r, "apply", "Apply: "+job.Title, applyData{Job: job, Form: in},
			map[string]string{"resume": uploadErrorMessage(err)})
		return
	}
	in.ResumePath = resumePath

	if _, err := a.applications.Submit(r.Context(), token, in); err != nil {
		// The stored resume is orphaned on failure; remove it best-effort.
		_ = a.uploads.Remove(resumePath)
		switch {
		case errors.Is(err, ats.ErrAlreadyApplied):
			a.render(w, r, "apply", "Apply: "+job.Title, applyData{Job: job, Form: in},
				map[string]string{"email": "You have already applied for this position."})
		case errors.Is(err, ats.ErrNotFound):
			a.renderError(w, r, http.StatusNotFound, "This position is not open for applications.")
		default:
			if fields := fieldErrors(err); fields != nil {
				a.render(w, r, "apply", "Apply: "+job.Title, applyData{Job: job, Form: in}, fields)
				return
			}
			var dup *ats.DuplicateError
			if errors.As(err, &dup) {
				a.render(w, r, "apply", "Apply: "+job.Title, applyData{Job: job, Form: in},
					map[string]string{dup.Field: "A profile with this " + dup.Field + " already exists. Please use the same contact details as before."})
				return
			}
			a.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return
	}
	a.render(w, r, "apply_done", "Application received", map[string]any{"JobTitle": job.Title}, nil)
}
