package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"atrios.org/internal/ats"
	"atrios.org/internal/obs"
)

func formInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	return n
}

func formInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	return n
}

// splitList turns a comma-separated field into trimmed values.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseClientInput(r *http.Request) ats.ClientInput {
	return ats.ClientInput{
		CompanyName: strings.TrimSpace(r.FormValue("company_name")),
		ContactName: strings.TrimSpace(r.FormValue("contact_name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		Website:     strings.TrimSpace(r.FormValue("website")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		AssignedTo:  strings.TrimSpace(r.FormValue("assigned_to")),
	}
}

func parseJobInput(r *http.Request) ats.JobInput {
	return ats.JobInput{
		ClientID:      strings.TrimSpace(r.FormValue("client_id")),
		Title:         strings.TrimSpace(r.FormValue("title")),
		Description:   strings.TrimSpace(r.FormValue("description")),
		Locations:     splitList(r.FormValue("locations")),
		JobType:       strings.TrimSpace(r.FormValue("job_type")),
		ExperienceMin: formInt(r, "experience_min"),
		ExperienceMax: formInt(r, "experience_max"),
		SalaryMin:     formInt64(r, "salary_min"),
		SalaryMax:     formInt64(r, "salary_max"),
		ScreeningQ1:   strings.TrimSpace(r.FormValue("screening_q1")),
		ScreeningQ2:   strings.TrimSpace(r.FormValue("screening_q2")),
		TeamIDs:       r.Form["team"],
	}
}

func parseCandidateInput(r *http.Request) ats.CandidateInput {
	return ats.CandidateInput{
		FirstName:        strings.TrimSpace(r.FormValue("first_name")),
		LastName:         strings.TrimSpace(r.FormValue("last_name")),
		Email:            strings.TrimSpace(r.FormValue("email")),
		Phone:            strings.TrimSpace(r.FormValue("phone")),
		Location:         strings.TrimSpace(r.FormValue("location")),
		Skills:           strings.TrimSpace(r.FormValue("skills")),
		ExperienceYears:  formInt(r, "experience_years"),
		Education:        strings.TrimSpace(r.FormValue("education")),
		CurrentCompany:   strings.TrimSpace(r.FormValue("current_company")),
		CurrentSalary:    formInt64(r, "current_salary"),
		ExpectedSalary:   formInt64(r, "expected_salary"),
		NoticePeriodDays: formInt(r, "notice_period_days"),
		Notes:            strings.TrimSpace(r.FormValue("notes")),
	}
}

func parseSubmitInput(r *http.Request) ats.SubmitInput {
	return ats.SubmitInput{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		Location:  strings.TrimSpace(r.FormValue("location")),
		Answer1:   strings.TrimSpace(r.FormValue("screening_answer_1")),
		Answer2:   strings.TrimSpace(r.FormValue("screening_answer_2")),
		CoverNote: strings.TrimSpace(r.FormValue("cover_note")),
	}
}

func parseEnrichment(r *http.Request) ats.Enrichment {
	return ats.Enrichment{
		Skills:           strings.TrimSpace(r.FormValue("skills")),
		ExperienceYears:  formInt(r, "experience_years"),
		Education:        strings.TrimSpace(r.FormValue("education")),
		CurrentCompany:   strings.TrimSpace(r.FormValue("current_company")),
		CurrentSalary:    formInt64(r, "current_salary"),
		ExpectedSalary:   formInt64(r, "expected_salary"),
		NoticePeriodDays: formInt(r, "notice_period_days"),
		Notes:            strings.TrimSpace(r.FormValue("notes")),
	}
}

// pageFrom builds listing pagination from ?page=, sized by the admin setting.
func (a *API) pageFrom(r *http.Request) ats.Page {
	size := 25
	if a.settings != nil {
		size = a.settings.PageSize(r.Context())
	}
	page := formInt(r, "page")
	if page < 1 {
		page = 1
	}
	return ats.Page{Limit: size, Offset: (page - 1) * size}
}

// fieldErrors unwraps a ValidationError's per-field messages, or nil.
func fieldErrors(err error) map[string]string {
	var ve *ats.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// failRedirect maps a service error to a flash message and sends the browser
// back. Internal errors never leak detail to the page.
func (a *API) failRedirect(w http.ResponseWriter, r *http.Request, err error, to string) {
	switch {
	case errors.Is(err, ats.ErrNotFound):
		a.flash.set(w, "error", "Record not found.")
	case errors.Is(err, ats.ErrAlreadyApplied):
		a.flash.set(w, "error", "An application for this candidate already exists.")
	default:
		var (
			ve       *ats.ValidationError
			dup      *ats.DuplicateError
			conflict *ats.ConflictError
		)
		switch {
		case errors.As(err, &ve):
			a.flash.set(w, "error", ve.Error())
		case errors.As(err, &dup):
			a.flash.set(w, "error", "A record with the same "+dup.Field+" already exists.")
		case errors.As(err, &conflict):
			a.flash.set(w, "error", conflict.Reason)
		default:
			obs.Logger().Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
			a.flash.set(w, "error", "Something went wrong. Please try again.")
		}
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
