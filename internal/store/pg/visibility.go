package pg

import (
	"fmt"

	"atrios.org/internal/ats"
)

// jobVisibility renders the recruiter predicate for queries where jobs are
// aliased j and clients c. ats.Scope is derived in one place; this is its one
// SQL rendering, shared by the job and application queries.
func jobVisibility(scope ats.Scope, argn int, args []any) (string, int, []any) {
	if scope.All {
		return "", argn, args
	}
	clause := fmt.Sprintf(
		"(exists(select 1 from job_team t where t.job_id=j.id and t.user_id=$%d) or c.assigned_to=$%d)",
		argn, argn,
	)
	return clause, argn + 1, append(args, scope.UserID)
}

// candidateVisibility renders the recruiter predicate for candidate queries
// aliased cd.
func candidateVisibility(scope ats.Scope, argn int, args []any) (string, int, []any) {
	if scope.All {
		return "", argn, args
	}
	clause := fmt.Sprintf("(cd.added_by=$%d or cd.assigned_to=$%d)", argn, argn)
	return clause, argn + 1, append(args, scope.UserID)
}
