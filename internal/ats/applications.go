package ats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"atrios.org/internal/auth"
)

// Applications is the lifecycle engine for the job-candidate join entity.
type Applications struct {
	store Store
	audit Recorder
	now   func() time.Time
}

// NewApplications constructs the lifecycle engine.
func NewApplications(store Store, audit Recorder) *Applications {
	if audit == nil {
		audit = noopRecorder{}
	}
	return &Applications{store: store, audit: audit, now: time.Now}
}

// Submit handles the public apply form. The job must resolve by token AND be
// active; otherwise ErrNotFound, indistinguishable from a bad token. The
// candidate upsert and application insert commit or roll back together, and
// the (job, candidate) unique constraint closes the concurrent-submit race.
func (s *Applications) Submit(ctx context.Context, jobToken string, in SubmitInput) (*Application, error) {
	job, err := s.store.Jobs(ctx).FindByToken(ctx, jobToken)
	if err != nil {
		return nil, ErrNotFound
	}
	if job.Status != JobStatusActive {
		return nil, ErrNotFound
	}
	if err := checkStruct(&in); err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	in.Phone = phone
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	// Public intake upserts by email match only.
	candidate, err := s.store.Candidates(ctx).FindDuplicate(ctx, in.Email, "", "")
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	candidateIsNew := candidate == nil
	if candidateIsNew {
		candidate = &Candidate{
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Email:      in.Email,
			Phone:      in.Phone,
			Location:   in.Location,
			ResumePath: in.ResumePath,
			Source:     SourcePublicApply,
			Status:     CandidateStatusActive,
		}
	} else {
		if existing, err := s.store.Applications(ctx).FindByJobAndCandidate(ctx, job.ID, candidate.ID); err == nil && existing != nil {
			return nil, ErrAlreadyApplied
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		candidate.ResumePath = in.ResumePath
	}

	app := &Application{
		JobID:       job.ID,
		CandidateID: candidate.ID,
		Status:      StatusNew,
		Answer1:     in.Answer1,
		Answer2:     in.Answer2,
		CoverNote:   in.CoverNote,
		AppliedAt:   s.now().UTC(),
	}
	if err := s.store.Applications(ctx).Submit(ctx, candidate, candidateIsNew, app); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "", "application.submitted", "application", app.ID,
		fmt.Sprintf("%s applied for %s via public link", candidate.FullName(), job.Title))
	return app, nil
}

// Accept enriches the candidate, assigns them to the actor, and moves the
// application to shortlisted. Both entity updates share one transaction.
func (s *Applications) Accept(ctx context.Context, actor auth.Principal, id string, enrich Enrichment) (*Application, error) {
	if err := checkStruct(&enrich); err != nil {
		return nil, err
	}
	app, err := s.store.Applications(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return nil, err
	}
	candidate, err := s.store.Candidates(ctx).Find(ctx, app.CandidateID, Scope{All: true})
	if err != nil {
		return nil, err
	}
	candidate.Skills = enrich.Skills
	candidate.ExperienceYears = enrich.ExperienceYears
	candidate.Education = enrich.Education
	candidate.CurrentCompany = enrich.CurrentCompany
	candidate.CurrentSalary = enrich.CurrentSalary
	candidate.ExpectedSalary = enrich.ExpectedSalary
	candidate.NoticePeriodDays = enrich.NoticePeriodDays
	candidate.Notes = enrich.Notes
	candidate.AssignedTo = actor.User.ID

	app.Status = StatusShortlisted
	app.RecruiterID = actor.User.ID
	if err := s.store.Applications(ctx).Accept(ctx, app, candidate); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.User.ID, "application.accepted", "application", app.ID,
		"Shortlisted "+candidate.FullName())
	return app, nil
}

// Reject records the reason in the free-text screening notes and sets
// status=rejected. The reason is optional.
func (s *Applications) Reject(ctx context.Context, actor auth.Principal, id, reason string) error {
	app, err := s.store.Applications(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided."
	}
	notes := appendNote(app.ScreeningNotes, "Rejected: "+reason)
	if err := s.store.Applications(ctx).SetStatus(ctx, id, StatusRejected, &notes, actor.User.ID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.User.ID, "application.rejected", "application", id, "Rejected: "+reason)
	return nil
}

// SetStatus writes any of the eight lifecycle statuses. Unknown values fail
// with a ValidationError and leave the row untouched. No transition graph is
// enforced; hired -> new is permitted.
func (s *Applications) SetStatus(ctx context.Context, actor auth.Principal, id, raw string) error {
	status, ok := ParseApplicationStatus(raw)
	if !ok {
		return newFieldError("status", fmt.Sprintf("unknown status %q", raw))
	}
	app, err := s.store.Applications(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return err
	}
	if err := s.store.Applications(ctx).SetStatus(ctx, id, status, nil, actor.User.ID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.User.ID, "application.status_changed", "application", id,
		fmt.Sprintf("Status %s -> %s", app.Status, status))
	return nil
}

// Find loads one application the actor may see.
func (s *Applications) Find(ctx context.Context, actor auth.Principal, id string) (*Application, error) {
	return s.store.Applications(ctx).Find(ctx, id, ScopeFor(actor))
}

// List returns applications visible to the actor.
func (s *Applications) List(ctx context.Context, actor auth.Principal, filter ApplicationFilter, page Page) ([]*Application, error) {
	return s.store.Applications(ctx).List(ctx, filter, ScopeFor(actor), page.Normalize())
}

func appendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + "\n" + note
}
