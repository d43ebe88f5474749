package ats

import (
	"strings"
	"time"
)

// Client is a hiring company. Exactly one staff user owns it; deactivation is
// a soft delete and is refused while the client still has open jobs.
type Client struct {
	ID            string
	CompanyName   string
	ContactName   string
	Email         string
	Phone         string
	Website       string
	Address       string
	AssignedTo    string
	AgreementPath string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// JobStatus is advisory only: any value may follow any other.
type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusOnHold JobStatus = "on-hold"
	JobStatusClosed JobStatus = "closed"
	JobStatusFilled JobStatus = "filled"
)

// ParseJobStatus normalises and validates a job status string.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case JobStatusDraft:
		return JobStatusDraft, true
	case JobStatusActive:
		return JobStatusActive, true
	case JobStatusOnHold:
		return JobStatusOnHold, true
	case JobStatusClosed:
		return JobStatusClosed, true
	case JobStatusFilled:
		return JobStatusFilled, true
	}
	return "", false
}

// Job is a posting owned by one client. The apply token is generated once at
// creation and never rotated; it is the sole credential for public submission.
type Job struct {
	ID            string
	ClientID      string
	Title         string
	Description   string
	Locations     []string
	JobType       string
	ExperienceMin int
	ExperienceMax int
	SalaryMin     int64
	SalaryMax     int64
	ScreeningQ1   string
	ScreeningQ2   string
	ApplyToken    string
	Status        JobStatus
	TeamIDs       []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	CandidateStatusActive = "active"
	CandidateStatusPlaced = "placed"

	// SourcePublicApply marks candidates created through the public form.
	SourcePublicApply = "Public Apply Link"
)

// Candidate is a person profile, globally unique by email or phone. The
// blacklist flag is independent of status and only hides the candidate from
// default listings.
type Candidate struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Location         string
	Skills           string
	ExperienceYears  int
	Education        string
	CurrentCompany   string
	CurrentSalary    int64
	ExpectedSalary   int64
	NoticePeriodDays int
	Notes            string
	ResumePath       string
	Source           string
	Status           string
	Blacklisted      bool
	BlacklistReason  string
	AddedBy          string
	AssignedTo       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName joins the candidate's names for display and audit summaries.
func (c Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ApplicationStatus enumerates the lifecycle states. None is formally
// terminal; rejected and withdrawn are terminal by convention only.
type ApplicationStatus string

const (
	StatusNew         ApplicationStatus = "new"
	StatusScreening   ApplicationStatus = "screening"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusOffered     ApplicationStatus = "offered"
	StatusHired       ApplicationStatus = "hired"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

var applicationStatuses = map[ApplicationStatus]struct{}{
	StatusNew:         {},
	StatusScreening:   {},
	StatusShortlisted: {},
	StatusInterviewed: {},
	StatusOffered:     {},
	StatusHired:       {},
	StatusRejected:    {},
	StatusWithdrawn:   {},
}

// ParseApplicationStatus normalises and validates a status string.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	_, ok := applicationStatuses[status]
	return status, ok
}

// Application links one job to one candidate; at most one row may exist per
// pair. Rows are never deleted: rejection and withdrawal are statuses.
type Application struct {
	ID             string
	JobID          string
	CandidateID    string
	Status         ApplicationStatus
	Answer1        string
	Answer2        string
	CoverNote      string
	ScreeningNotes string
	RecruiterID    string
	AppliedAt      time.Time
	UpdatedAt      time.Time
}

// ClientFilter narrows client listings.
type ClientFilter struct {
	Search string
	Status string
}

// JobFilter narrows job listings.
type JobFilter struct {
	Search   string
	ClientID string
	Status   JobStatus
}

// CandidateFilter narrows candidate listings. Blacklisted rows are excluded
// unless IncludeBlacklisted is set.
type CandidateFilter struct {
	Search             string
	Status             string
	IncludeBlacklisted bool
}

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	JobID       string
	CandidateID string
	Status      ApplicationStatus
}

// Page carries offset pagination for listings.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps page bounds to sane values.
func (p Page) Normalize() Page {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 25
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
