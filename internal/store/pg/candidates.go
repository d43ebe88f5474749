package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"atrios.org/internal/ats"
	"atrios.org/internal/ids"
)

type candidateStore struct{ db *sql.DB }

const candidateColumns = `cd.id, cd.first_name, cd.last_name, cd.email, cd.phone, cd.location,
	cd.skills, cd.experience_years, cd.education, cd.current_company,
	cd.current_salary, cd.expected_salary, cd.notice_period_days, cd.notes,
	coalesce(cd.resume_path,''), cd.source, cd.status,
	cd.blacklisted, coalesce(cd.blacklist_reason,''), cd.added_by, cd.assigned_to,
	cd.created_at, cd.updated_at`

func (s *candidateStore) Create(ctx context.Context, c *ats.Candidate) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, insertCandidateSQL, candidateArgs(c)...)
	if pgErr := uniqueViolation(err); pgErr != nil {
		return candidateDuplicateError(ctx, s.db, c, pgErr.ConstraintName)
	}
	return err
}

const insertCandidateSQL = `
	insert into candidates(id, first_name, last_name, email, phone, location,
		skills, experience_years, education, current_company,
		current_salary, expected_salary, notice_period_days, notes,
		resume_path, source, status, added_by, assigned_to)
	values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,nullif($15,''),$16,$17,$18,$19)`

func candidateArgs(c *ats.Candidate) []any {
	return []any{
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Location,
		c.Skills, c.ExperienceYears, c.Education, c.CurrentCompany,
		c.CurrentSalary, c.ExpectedSalary, c.NoticePeriodDays, c.Notes,
		c.ResumePath, c.Source, c.Status, c.AddedBy, c.AssignedTo,
	}
}

func (s *candidateStore) Find(ctx context.Context, id string, scope ats.Scope) (*ats.Candidate, error) {
	args := []any{id}
	q := `select ` + candidateColumns + ` from candidates cd where cd.id=$1`
	if clause, _, scoped := candidateVisibility(scope, 2, args); clause != "" {
		q += " and " + clause
		args = scoped
	}
	return scanCandidate(s.db.QueryRowContext(ctx, q, args...))
}

func (s *candidateStore) FindDuplicate(ctx context.Context, email, phone, excludeID string) (*ats.Candidate, error) {
	// Empty values must never match: the guards keep a blank phone from
	// colliding with every other blank phone.
	q := `select ` + candidateColumns + ` from candidates cd
		where (($1<>'' and cd.email=$1) or ($2<>'' and cd.phone=$2)) and cd.id<>$3
		limit 1`
	return scanCandidate(s.db.QueryRowContext(ctx, q, email, phone, excludeID))
}

func (s *candidateStore) Update(ctx context.Context, c *ats.Candidate) error {
	res, err := s.db.ExecContext(ctx, updateCandidateSQL, candidateArgs(c)...)
	if pgErr := uniqueViolation(err); pgErr != nil {
		return candidateDuplicateError(ctx, s.db, c, pgErr.ConstraintName)
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

const updateCandidateSQL = `
	update candidates set first_name=$2, last_name=$3, email=$4, phone=$5, location=$6,
		skills=$7, experience_years=$8, education=$9, current_company=$10,
		current_salary=$11, expected_salary=$12, notice_period_days=$13, notes=$14,
		resume_path=nullif($15,''), source=$16, status=$17, added_by=$18, assigned_to=$19,
		updated_at=now()
	where id=$1`

func (s *candidateStore) SetBlacklist(ctx context.Context, id string, blacklisted bool, reason string) error {
	res, err := s.db.ExecContext(ctx, `
		update candidates set blacklisted=$2, blacklist_reason=nullif($3,''), updated_at=now()
		where id=$1
	`, id, blacklisted, reason)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *candidateStore) List(ctx context.Context, filter ats.CandidateFilter, scope ats.Scope, page ats.Page) ([]*ats.Candidate, error) {
	var (
		where []string
		args  []any
		argn  = 1
	)
	if !filter.IncludeBlacklisted {
		where = append(where, "not cd.blacklisted")
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("cd.status=$%d", argn))
		args = append(args, filter.Status)
		argn++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf(
			"(cd.first_name ilike $%d or cd.last_name ilike $%d or cd.email ilike $%d or cd.skills ilike $%d)",
			argn, argn, argn, argn))
		args = append(args, "%"+filter.Search+"%")
		argn++
	}
	if clause, next, scoped := candidateVisibility(scope, argn, args); clause != "" {
		where = append(where, clause)
		argn = next
		args = scoped
	}
	q := `select ` + candidateColumns + ` from candidates cd`
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	q += fmt.Sprintf(" order by cd.created_at desc limit $%d offset $%d", argn, argn+1)
	args = append(args, page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.Candidate
	for rows.Next() {
		var c ats.Candidate
		if err := scanCandidateInto(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// duplicateField maps a unique-constraint name to the user-facing field so
// that races the FindDuplicate pre-check missed still surface correctly.
func duplicateField(constraint string) string {
	if strings.Contains(constraint, "phone") {
		return "phone"
	}
	return "email"
}

// candidateDuplicateError builds the DuplicateError for a 23505 on the
// candidates table, looking up the colliding row's id. The lookup runs on the
// pool because the originating statement may have aborted its transaction.
func candidateDuplicateError(ctx context.Context, db *sql.DB, c *ats.Candidate, constraint string) error {
	dup := &ats.DuplicateError{Field: duplicateField(constraint)}
	match := c.Email
	if dup.Field == "phone" {
		match = c.Phone
	}
	q := fmt.Sprintf(`select id from candidates where %s=$1 and id<>$2 limit 1`, dup.Field)
	if err := db.QueryRowContext(ctx, q, match, c.ID).Scan(&dup.ExistingID); err != nil {
		// The colliding row may already be gone again; the field alone is
		// still a correct answer.
		dup.ExistingID = ""
	}
	return dup
}

func scanCandidate(row *sql.Row) (*ats.Candidate, error) {
	var c ats.Candidate
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Location,
		&c.Skills, &c.ExperienceYears, &c.Education, &c.CurrentCompany,
		&c.CurrentSalary, &c.ExpectedSalary, &c.NoticePeriodDays, &c.Notes,
		&c.ResumePath, &c.Source, &c.Status,
		&c.Blacklisted, &c.BlacklistReason, &c.AddedBy, &c.AssignedTo,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return &c, nil
}

func scanCandidateInto(rows *sql.Rows, c *ats.Candidate) error {
	return rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Location,
		&c.Skills, &c.ExperienceYears, &c.Education, &c.CurrentCompany,
		&c.CurrentSalary, &c.ExpectedSalary, &c.NoticePeriodDays, &c.Notes,
		&c.ResumePath, &c.Source, &c.Status,
		&c.Blacklisted, &c.BlacklistReason, &c.AddedBy, &c.AssignedTo,
		&c.CreatedAt, &c.UpdatedAt)
}
