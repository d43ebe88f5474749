package ats

import "context"

// Store bundles the persistence the registries need.
type Store interface {
	Clients(ctx context.Context) ClientStore
	Jobs(ctx context.Context) JobStore
	Candidates(ctx context.Context) CandidateStore
	Applications(ctx context.Context) ApplicationStore
}

// ClientStore manages hiring-company records.
type ClientStore interface {
	Create(ctx context.Context, c *Client) error
	Find(ctx context.Context, id string) (*Client, error)
	Update(ctx context.Context, c *Client) error
	SetStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter ClientFilter, page Page) ([]*Client, error)
	// CountOpenJobs counts jobs in draft or active status under the client.
	CountOpenJobs(ctx context.Context, clientID string) (int, error)
}

// JobStore manages postings and their team join table.
type JobStore interface {
	Create(ctx context.Context, j *Job) error
	Find(ctx context.Context, id string, scope Scope) (*Job, error)
	FindByToken(ctx context.Context, token string) (*Job, error)
	// Update persists the job fields and replaces the whole team set.
	Update(ctx context.Context, j *Job) error
	SetStatus(ctx context.Context, id string, status JobStatus) error
	List(ctx context.Context, filter JobFilter, scope Scope, page Page) ([]*Job, error)
}

// CandidateStore manages person profiles.
type CandidateStore interface {
	Create(ctx context.Context, c *Candidate) error
	Find(ctx context.Context, id string, scope Scope) (*Candidate, error)
	// FindDuplicate looks up a candidate sharing the email OR phone,
	// excluding excludeID when updating an existing record.
	FindDuplicate(ctx context.Context, email, phone, excludeID string) (*Candidate, error)
	Update(ctx context.Context, c *Candidate) error
	SetBlacklist(ctx context.Context, id string, blacklisted bool, reason string) error
	List(ctx context.Context, filter CandidateFilter, scope Scope, page Page) ([]*Candidate, error)
}

// ApplicationStore manages the job-candidate join entity. Submit and Accept
// are multi-statement transactions that commit or roll back as a unit.
type ApplicationStore interface {
	Find(ctx context.Context, id string, scope Scope) (*Application, error)
	FindByJobAndCandidate(ctx context.Context, jobID, candidateID string) (*Application, error)
	List(ctx context.Context, filter ApplicationFilter, scope Scope, page Page) ([]*Application, error)
	// SetStatus updates the status and, when notes is non-nil, the screening
	// notes in the same statement.
	SetStatus(ctx context.Context, id string, status ApplicationStatus, notes *string, recruiterID string) error
	// Submit atomically upserts the candidate and inserts the application.
	// A duplicate (job, candidate) pair yields ErrAlreadyApplied and no
	// candidate effect survives.
	Submit(ctx context.Context, candidate *Candidate, candidateIsNew bool, app *Application) error
	// Accept atomically enriches the candidate, assigns it to the actor, and
	// moves the application to shortlisted.
	Accept(ctx context.Context, app *Application, candidate *Candidate) error
}
