package ats

import "atrios.org/internal/auth"

// Scope is the role-conditioned visibility predicate applied at every list
// and single-row staff read. It is derived in exactly one place so the
// recruiter filter cannot drift between entry points.
//
// Jobs and applications: a recruiter sees rows where they are on the job's
// team or own the job's client. Candidates: a recruiter sees rows they added
// or are assigned to. Admins and managers see everything.
type Scope struct {
	All    bool
	UserID string
}

// ScopeFor derives the visibility scope for the acting principal.
func ScopeFor(p auth.Principal) Scope {
	if p.HasAnyRole(auth.RoleAdmin, auth.RoleManager) {
		return Scope{All: true}
	}
	return Scope{UserID: p.User.ID}
}

// CanSeeJob evaluates the job predicate in memory for rows already loaded
// (the SQL stores apply the same predicate in their where clauses).
func (s Scope) CanSeeJob(job *Job, clientOwner string) bool {
	if s.All {
		return true
	}
	if clientOwner == s.UserID {
		return true
	}
	for _, id := range job.TeamIDs {
		if id == s.UserID {
			return true
		}
	}
	return false
}

// CanSeeCandidate evaluates the candidate predicate in memory.
func (s Scope) CanSeeCandidate(c *Candidate) bool {
	if s.All {
		return true
	}
	return c.AddedBy == s.UserID || c.AssignedTo == s.UserID
}
