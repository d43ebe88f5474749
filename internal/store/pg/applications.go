package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"atrios.org/internal/ats"
	"atrios.org/internal/ids"
)

type applicationStore struct{ db *sql.DB }

const applicationColumns = `a.id, a.job_id, a.candidate_id, a.status, a.answer1, a.answer2,
	a.cover_note, coalesce(a.screening_notes,''), coalesce(a.recruiter_id,''),
	a.applied_at, a.updated_at`

func (s *applicationStore) Find(ctx context.Context, id string, scope ats.Scope) (*ats.Application, error) {
	args := []any{id}
	q := `select ` + applicationColumns + ` from applications a
		join jobs j on j.id=a.job_id
		join clients c on c.id=j.client_id
		where a.id=$1`
	if clause, _, scoped := jobVisibility(scope, 2, args); clause != "" {
		q += " and " + clause
		args = scoped
	}
	return scanApplication(s.db.QueryRowContext(ctx, q, args...))
}

func (s *applicationStore) FindByJobAndCandidate(ctx context.Context, jobID, candidateID string) (*ats.Application, error) {
	q := `select ` + applicationColumns + ` from applications a where a.job_id=$1 and a.candidate_id=$2`
	return scanApplication(s.db.QueryRowContext(ctx, q, jobID, candidateID))
}

func (s *applicationStore) List(ctx context.Context, filter ats.ApplicationFilter, scope ats.Scope, page ats.Page) ([]*ats.Application, error) {
	var (
		where []string
		args  []any
		argn  = 1
	)
	if filter.JobID != "" {
		where = append(where, fmt.Sprintf("a.job_id=$%d", argn))
		args = append(args, filter.JobID)
		argn++
	}
	if filter.CandidateID != "" {
		where = append(where, fmt.Sprintf("a.candidate_id=$%d", argn))
		args = append(args, filter.CandidateID)
		argn++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("a.status=$%d", argn))
		args = append(args, filter.Status)
		argn++
	}
	if clause, next, scoped := jobVisibility(scope, argn, args); clause != "" {
		where = append(where, clause)
		argn = next
		args = scoped
	}
	q := `select ` + applicationColumns + ` from applications a
		join jobs j on j.id=a.job_id
		join clients c on c.id=j.client_id`
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	q += fmt.Sprintf(" order by a.applied_at desc limit $%d offset $%d", argn, argn+1)
	args = append(args, page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.Application
	for rows.Next() {
		a, err := scanApplicationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *applicationStore) SetStatus(ctx context.Context, id string, status ats.ApplicationStatus, notes *string, recruiterID string) error {
	var (
		res sql.Result
		err error
	)
	if notes != nil {
		res, err = s.db.ExecContext(ctx, `
			update applications set status=$2, screening_notes=$3, recruiter_id=nullif($4,''), updated_at=now()
			where id=$1
		`, id, status, *notes, recruiterID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			update applications set status=$2, recruiter_id=nullif($3,''), updated_at=now()
			where id=$1
		`, id, status, recruiterID)
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Submit runs the candidate upsert and the application insert as one
// transaction. The unique index on (job_id, candidate_id) is the real
// duplicate gate: the service-layer pre-check only improves the error message,
// this constraint closes the race.
func (s *applicationStore) Submit(ctx context.Context, candidate *ats.Candidate, candidateIsNew bool, app *ats.Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if candidateIsNew {
		if candidate.ID == "" {
			candidate.ID = ids.New()
		}
		if _, err := tx.ExecContext(ctx, insertCandidateSQL, candidateArgs(candidate)...); err != nil {
			if pgErr := uniqueViolation(err); pgErr != nil {
				return candidateDuplicateError(ctx, s.db, candidate, pgErr.ConstraintName)
			}
			return err
		}
	} else {
		if _, err := tx.ExecContext(ctx, updateCandidateSQL, candidateArgs(candidate)...); err != nil {
			return err
		}
	}

	if app.ID == "" {
		app.ID = ids.New()
	}
	app.CandidateID = candidate.ID
	_, err = tx.ExecContext(ctx, `
		insert into applications(id, job_id, candidate_id, status, answer1, answer2, cover_note)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, app.ID, app.JobID, app.CandidateID, app.Status, app.Answer1, app.Answer2, app.CoverNote)
	if err != nil {
		if uniqueViolation(err) != nil {
			return ats.ErrAlreadyApplied
		}
		return err
	}
	return tx.Commit()
}

// Accept enriches the candidate and shortlists the application atomically, so
// a reviewer never observes one effect without the other.
func (s *applicationStore) Accept(ctx context.Context, app *ats.Application, candidate *ats.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, updateCandidateSQL, candidateArgs(candidate)...)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	res, err = tx.ExecContext(ctx, `
		update applications set status=$2, recruiter_id=nullif($3,''), updated_at=now()
		where id=$1
	`, app.ID, app.Status, app.RecruiterID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func scanApplication(row *sql.Row) (*ats.Application, error) {
	var a ats.Application
	err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.Answer1, &a.Answer2,
		&a.CoverNote, &a.ScreeningNotes, &a.RecruiterID, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return &a, nil
}

func scanApplicationRows(rows *sql.Rows) (*ats.Application, error) {
	var a ats.Application
	err := rows.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.Answer1, &a.Answer2,
		&a.CoverNote, &a.ScreeningNotes, &a.RecruiterID, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
