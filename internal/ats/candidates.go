package ats

import (
	"context"
	"errors"
	"strings"

	"atrios.org/internal/auth"
)

// Candidates is the registry of person profiles.
type Candidates struct {
	store Store
	files FileRemover
	audit Recorder
}

// NewCandidates constructs the candidate registry.
func NewCandidates(store Store, files FileRemover, audit Recorder) *Candidates {
	if audit == nil {
		audit = noopRecorder{}
	}
	return &Candidates{store: store, files: files, audit: audit}
}

// Create adds a profile from the internal form. A candidate sharing the email
// OR phone already exists ⇒ DuplicateError referencing it, and no row is
// written.
func (s *Candidates) Create(ctx context.Context, actor auth.Principal, in CandidateInput, resumePath string) (*Candidate, error) {
	if err := s.validate(ctx, &in, ""); err != nil {
		return nil, err
	}
	c := candidateFromInput(in)
	c.ResumePath = resumePath
	c.Source = "Internal"
	c.Status = CandidateStatusActive
	c.AddedBy = actor.User.ID
	if err := s.store.Candidates(ctx).Create(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.User.ID, "candidate.created", "candidate", c.ID, "Added candidate "+c.FullName())
	return c, nil
}

// Update applies the edit form; the duplicate check excludes the record
// itself. When newResumePath is non-empty the previous resume is deleted only
// after the replacement is persisted.
func (s *Candidates) Update(ctx context.Context, actor auth.Principal, id string, in CandidateInput, newResumePath string) (*Candidate, error) {
	c, err := s.store.Candidates(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in, id); err != nil {
		return nil, err
	}
	oldResume := c.ResumePath
	applyCandidateInput(c, in)
	if newResumePath != "" {
		c.ResumePath = newResumePath
	}
	if err := s.store.Candidates(ctx).Update(ctx, c); err != nil {
		return nil, err
	}
	if newResumePath != "" && oldResume != "" && oldResume != newResumePath && s.files != nil {
		// Delete failures are ignored; the new resume is already recorded.
		_ = s.files.Remove(oldResume)
	}
	s.audit.Record(ctx, actor.User.ID, "candidate.updated", "candidate", c.ID, "Updated candidate "+c.FullName())
	return c, nil
}

// Blacklist flags a candidate without touching their status. The reason must
// carry at least ten characters.
func (s *Candidates) Blacklist(ctx context.Context, actor auth.Principal, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) < 10 {
		return newFieldError("reason", "must be at least 10 characters")
	}
	c, err := s.store.Candidates(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return err
	}
	if err := s.store.Candidates(ctx).SetBlacklist(ctx, id, true, reason); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.User.ID, "candidate.blacklisted", "candidate", id, "Blacklisted "+c.FullName()+": "+reason)
	return nil
}

// Unblacklist clears the flag and the stored reason.
func (s *Candidates) Unblacklist(ctx context.Context, actor auth.Principal, id string) error {
	c, err := s.store.Candidates(ctx).Find(ctx, id, ScopeFor(actor))
	if err != nil {
		return err
	}
	if err := s.store.Candidates(ctx).SetBlacklist(ctx, id, false, ""); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.User.ID, "candidate.unblacklisted", "candidate", id, "Removed "+c.FullName()+" from blacklist")
	return nil
}

// Find loads one candidate the actor may see.
func (s *Candidates) Find(ctx context.Context, actor auth.Principal, id string) (*Candidate, error) {
	return s.store.Candidates(ctx).Find(ctx, id, ScopeFor(actor))
}

// List returns candidates visible to the actor; blacklisted rows are excluded
// unless the filter asks for them.
func (s *Candidates) List(ctx context.Context, actor auth.Principal, filter CandidateFilter, page Page) ([]*Candidate, error) {
	return s.store.Candidates(ctx).List(ctx, filter, ScopeFor(actor), page.Normalize())
}

func (s *Candidates) validate(ctx context.Context, in *CandidateInput, excludeID string) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return err
	}
	in.Phone = phone
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.store.Candidates(ctx).FindDuplicate(ctx, in.Email, in.Phone, excludeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		field := "phone"
		if existing.Email == in.Email {
			field = "email"
		}
		return &DuplicateError{ExistingID: existing.ID, Field: field}
	}
	return nil
}

func candidateFromInput(in CandidateInput) *Candidate {
	c := &Candidate{}
	applyCandidateInput(c, in)
	return c
}

func applyCandidateInput(c *Candidate, in CandidateInput) {
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Location = in.Location
	c.Skills = in.Skills
	c.ExperienceYears = in.ExperienceYears
	c.Education = in.Education
	c.CurrentCompany = in.CurrentCompany
	c.CurrentSalary = in.CurrentSalary
	c.ExpectedSalary = in.ExpectedSalary
	c.NoticePeriodDays = in.NoticePeriodDays
	c.Notes = in.Notes
}
