package ats

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"atrios.org/internal/auth"
)

// Jobs is the registry of postings.
type Jobs struct {
	store Store
	audit Recorder
}

// NewJobs constructs the job registry.
func NewJobs(store Store, audit Recorder) *Jobs {
	if audit == nil {
		audit = noopRecorder{}
	}
	return &Jobs{store: store, audit: audit}
}

// Create validates the posting and mints its immutable apply-link token.
func (s *Jobs) Create(ctx context.Context, actor auth.Principal, in JobInput) (*Job, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	j := &Job{
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
		ApplyToken:    uuid.NewString(),
		Status:        JobStatusDraft,
		TeamIDs:       dedupe(in.TeamIDs),
	}
	if err := s.store.Jobs(ctx).Create(ctx, j); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.User.ID, "job.created", "job", j.ID, "Created job "+j.Title)
	return j, nil
}

// Update applies the edit form, replacing the whole team set. The apply token
// is never touched.
func (s *Jobs) Update(ctx context.Context, actor auth.Principal, id string, in JobInput) (*Job, error) {
	j, err := s.store.Jobs(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	j.ClientID = in.ClientID
	j.Title = in.Title
	j.Description = in.Description
	j.Locations = in.Locations
	j.JobType = in.JobType
	j.ExperienceMin = in.ExperienceMin
	j.ExperienceMax = in.ExperienceMax
	j.SalaryMin = in.SalaryMin
	j.SalaryMax = in.SalaryMax
	j.ScreeningQ1 = in.ScreeningQ1
	j.ScreeningQ2 = in.ScreeningQ2
	j.TeamIDs = dedupe(in.TeamIDs)
	if err := s.store.Jobs(ctx).Update(ctx, j); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.User.ID, "job.updated", "job", j.ID, "Updated job "+j.Title)
	return j, nil
}

// Close sets status=closed. The second call reports changed=false ("already
// closed") without touching the row.
func (s *Jobs) Close(ctx context.Context, actor auth.Principal, id string) (changed bool, err error) {
	j, err := s.store.Jobs(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return false, err
	}
	if j.Status == JobStatusClosed {
		return false, nil
	}
	if err := s.store.Jobs(ctx).SetStatus(ctx, id, JobStatusClosed); err != nil {
		return false, err
	}
	s.audit.Record(ctx, actor.User.ID, "job.closed", "job", id, "Closed job "+j.Title)
	return true, nil
}

// SetStatus writes any of the five job statuses; the enum is advisory and no
// transition graph is enforced.
func (s *Jobs) SetStatus(ctx context.Context, actor auth.Principal, id, raw string) error {
	status, ok := ParseJobStatus(raw)
	if !ok {
		return newFieldError("status", fmt.Sprintf("unknown status %q", raw))
	}
	j, err := s.store.Jobs(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return err
	}
	if err := s.store.Jobs(ctx).SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.User.ID, "job.status_changed", "job", id,
		fmt.Sprintf("Job %s status %s -> %s", j.Title, j.Status, status))
	return nil
}

// Find loads one job the actor may see.
func (s *Jobs) Find(ctx context.Context, actor auth.Principal, id string) (*Job, error) {
	return s.store.Jobs(ctx).Find(ctx, id, ScopeFor(actor))
}

// FindByToken resolves a public apply token. Unknown tokens and non-active
// jobs both come back as ErrNotFound so an outsider cannot probe the catalog.
func (s *Jobs) FindByToken(ctx context.Context, token string) (*Job, error) {
	j, err := s.store.Jobs(ctx).FindByToken(ctx, token)
	if err != nil {
		return nil, ErrNotFound
	}
	if j.Status != JobStatusActive {
		return nil, ErrNotFound
	}
	return j, nil
}

// List returns jobs visible to the actor.
func (s *Jobs) List(ctx context.Context, actor auth.Principal, filter JobFilter, page Page) ([]*Job, error) {
	return s.store.Jobs(ctx).List(ctx, filter, ScopeFor(actor), page.Normalize())
}

func (s *Jobs) validate(ctx context.Context, in *JobInput) error {
	in.Locations = normalizeLocations(in.Locations)
	if err := checkStruct(in); err != nil {
		return err
	}
	if in.ExperienceMin > 0 && in.ExperienceMax > 0 && in.ExperienceMax < in.ExperienceMin {
		return newFieldError("experience_max", "must be greater than or equal to the minimum")
	}
	if in.SalaryMin > 0 && in.SalaryMax > 0 && in.SalaryMax < in.SalaryMin {
		return newFieldError("salary_max", "must be greater than or equal to the minimum")
	}
	client, err := s.store.Clients(ctx).Find(ctx, in.ClientID)
	if err != nil {
		return newFieldError("client_id", "must be an existing client")
	}
	if client.Status != ClientStatusActive {
		return newFieldError("client_id", "client is inactive")
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
