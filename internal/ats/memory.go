package ats

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"atrios.org/internal/ids"
)

// MemStore implements Store in memory with the same semantics as the
// PostgreSQL store, including the (job, candidate) uniqueness guarantee and
// the visibility predicates. Used by tests and by local development without
// a database.
type MemStore struct {
	mu           sync.RWMutex
	clients      map[string]*Client
	jobs         map[string]*Job
	candidates   map[string]*Candidate
	applications map[string]*Application
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		clients:      make(map[string]*Client),
		jobs:         make(map[string]*Job),
		candidates:   make(map[string]*Candidate),
		applications: make(map[string]*Application),
	}
}

var _ Store = (*MemStore)(nil)

func (m *MemStore) Clients(context.Context) ClientStore           { return (*memClients)(m) }
func (m *MemStore) Jobs(context.Context) JobStore                 { return (*memJobs)(m) }
func (m *MemStore) Candidates(context.Context) CandidateStore     { return (*memCandidates)(m) }
func (m *MemStore) Applications(context.Context) ApplicationStore { return (*memApplications)(m) }

func (m *MemStore) visibleJob(j *Job, scope Scope) bool {
	owner := ""
	if c, ok := m.clients[j.ClientID]; ok {
		owner = c.AssignedTo
	}
	return scope.CanSeeJob(j, owner)
}

// Clients -------------------------------------------------------------------

type memClients MemStore

func (m *memClients) Create(_ context.Context, c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = ids.New()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *memClients) Find(_ context.Context, id string) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memClients) Update(_ context.Context, c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *memClients) SetStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memClients) List(_ context.Context, filter ClientFilter, page Page) ([]*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Client
	for _, c := range m.clients {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(filter.Search, c.CompanyName, c.ContactName, c.Email) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortByID(out, func(c *Client) string { return c.ID })
	return paginate(out, page), nil
}

func (m *memClients) CountOpenJobs(_ context.Context, clientID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.jobs {
		if j.ClientID == clientID && (j.Status == JobStatusDraft || j.Status == JobStatusActive) {
			n++
		}
	}
	return n, nil
}

// Jobs ----------------------------------------------------------------------

type memJobs MemStore

func (m *memJobs) Create(_ context.Context, j *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.ID == "" {
		j.ID = ids.New()
	}
	j.CreatedAt = time.Now().UTC()
	j.UpdatedAt = j.CreatedAt
	cp := copyJob(j)
	m.jobs[j.ID] = cp
	return nil
}

func (m *memJobs) Find(_ context.Context, id string, scope Scope) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok || !(*MemStore)(m).visibleJob(j, scope) {
		return nil, ErrNotFound
	}
	return copyJob(j), nil
}

func (m *memJobs) FindByToken(_ context.Context, token string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, j := range m.jobs {
		if j.ApplyToken == token {
			return copyJob(j), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memJobs) Update(_ context.Context, j *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; !ok {
		return ErrNotFound
	}
	j.UpdatedAt = time.Now().UTC()
	m.jobs[j.ID] = copyJob(j)
	return nil
}

func (m *memJobs) SetStatus(_ context.Context, id string, status JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memJobs) List(_ context.Context, filter JobFilter, scope Scope, page Page) ([]*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Job
	for _, j := range m.jobs {
		if !(*MemStore)(m).visibleJob(j, scope) {
			continue
		}
		if filter.ClientID != "" && j.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(filter.Search, j.Title, j.Description) {
			continue
		}
		out = append(out, copyJob(j))
	}
	sortByID(out, func(j *Job) string { return j.ID })
	return paginate(out, page), nil
}

// Candidates ----------------------------------------------------------------

type memCandidates MemStore

func (m *memCandidates) Create(_ context.Context, c *Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*MemStore)(m).insertCandidateLocked(c)
}

func (m *MemStore) insertCandidateLocked(c *Candidate) error {
	for _, existing := range m.candidates {
		switch {
		case existing.Email == c.Email:
			return &DuplicateError{ExistingID: existing.ID, Field: "email"}
		case c.Phone != "" && existing.Phone == c.Phone:
			return &DuplicateError{ExistingID: existing.ID, Field: "phone"}
		}
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.candidates[c.ID] = &cp
	return nil
}

func (m *memCandidates) Find(_ context.Context, id string, scope Scope) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok || !scope.CanSeeCandidate(c) {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCandidates) FindDuplicate(_ context.Context, email, phone, excludeID string) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.candidates {
		if c.ID == excludeID {
			continue
		}
		if (email != "" && c.Email == email) || (phone != "" && c.Phone == phone) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCandidates) Update(_ context.Context, c *Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	m.candidates[c.ID] = &cp
	return nil
}

func (m *memCandidates) SetBlacklist(_ context.Context, id string, blacklisted bool, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return ErrNotFound
	}
	c.Blacklisted = blacklisted
	c.BlacklistReason = reason
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memCandidates) List(_ context.Context, filter CandidateFilter, scope Scope, page Page) ([]*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Candidate
	for _, c := range m.candidates {
		if !scope.CanSeeCandidate(c) {
			continue
		}
		if !filter.IncludeBlacklisted && c.Blacklisted {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(filter.Search, c.FirstName, c.LastName, c.Email, c.Skills) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortByID(out, func(c *Candidate) string { return c.ID })
	return paginate(out, page), nil
}

// Applications --------------------------------------------------------------

type memApplications MemStore

func (m *memApplications) Find(_ context.Context, id string, scope Scope) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	if j, ok := m.jobs[a.JobID]; ok && !(*MemStore)(m).visibleJob(j, scope) {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memApplications) FindByJobAndCandidate(_ context.Context, jobID, candidateID string) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.applications {
		if a.JobID == jobID && a.CandidateID == candidateID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memApplications) List(_ context.Context, filter ApplicationFilter, scope Scope, page Page) ([]*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Application
	for _, a := range m.applications {
		if j, ok := m.jobs[a.JobID]; ok && !(*MemStore)(m).visibleJob(j, scope) {
			continue
		}
		if filter.JobID != "" && a.JobID != filter.JobID {
			continue
		}
		if filter.CandidateID != "" && a.CandidateID != filter.CandidateID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sortByID(out, func(a *Application) string { return a.ID })
	return paginate(out, page), nil
}

func (m *memApplications) SetStatus(_ context.Context, id string, status ApplicationStatus, notes *string, recruiterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	if notes != nil {
		a.ScreeningNotes = *notes
	}
	a.RecruiterID = recruiterID
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memApplications) Submit(_ context.Context, candidate *Candidate, candidateIsNew bool, app *Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// All or nothing, mirroring the SQL transaction.
	if !candidateIsNew {
		for _, a := range m.applications {
			if a.JobID == app.JobID && a.CandidateID == candidate.ID {
				return ErrAlreadyApplied
			}
		}
	}
	if candidateIsNew {
		if err := (*MemStore)(m).insertCandidateLocked(candidate); err != nil {
			return err
		}
	} else {
		existing, ok := m.candidates[candidate.ID]
		if !ok {
			return ErrNotFound
		}
		existing.ResumePath = candidate.ResumePath
		existing.UpdatedAt = time.Now().UTC()
	}
	if app.ID == "" {
		app.ID = ids.New()
	}
	app.CandidateID = candidate.ID
	app.UpdatedAt = app.AppliedAt
	cp := *app
	m.applications[app.ID] = &cp
	return nil
}

func (m *memApplications) Accept(_ context.Context, app *Application, candidate *Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[app.ID]
	if !ok {
		return ErrNotFound
	}
	c, ok := m.candidates[candidate.ID]
	if !ok {
		return ErrNotFound
	}
	*c = *candidate
	c.UpdatedAt = time.Now().UTC()
	a.Status = StatusShortlisted
	a.RecruiterID = app.RecruiterID
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// helpers -------------------------------------------------------------------

func copyJob(j *Job) *Job {
	cp := *j
	cp.Locations = append([]string(nil), j.Locations...)
	cp.TeamIDs = append([]string(nil), j.TeamIDs...)
	return &cp
}

func containsFold(needle string, haystacks ...string) bool {
	needle = strings.ToLower(needle)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func sortByID[T any](items []*T, key func(*T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

func paginate[T any](items []*T, page Page) []*T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
