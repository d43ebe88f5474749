package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"atrios.org/internal/ats"
	"atrios.org/internal/ids"
)

type jobStore struct{ db *sql.DB }

const jobColumns = `j.id, j.client_id, j.title, j.description, j.locations, j.job_type,
	j.experience_min, j.experience_max, j.salary_min, j.salary_max,
	j.screening_q1, j.screening_q2, j.apply_token, j.status, j.created_at, j.updated_at`

func (s *jobStore) Create(ctx context.Context, j *ats.Job) error {
	if j.ID == "" {
		j.ID = ids.New()
	}
	locs, err := json.Marshal(j.Locations)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		insert into jobs(id, client_id, title, description, locations, job_type,
			experience_min, experience_max, salary_min, salary_max,
			screening_q1, screening_q2, apply_token, status)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, j.ID, j.ClientID, j.Title, j.Description, locs, j.JobType,
		j.ExperienceMin, j.ExperienceMax, j.SalaryMin, j.SalaryMax,
		j.ScreeningQ1, j.ScreeningQ2, j.ApplyToken, j.Status)
	if err != nil {
		return err
	}
	if err := replaceTeam(ctx, tx, j.ID, j.TeamIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *jobStore) Find(ctx context.Context, id string, scope ats.Scope) (*ats.Job, error) {
	args := []any{id}
	q := `select ` + jobColumns + ` from jobs j join clients c on c.id=j.client_id where j.id=$1`
	if clause, _, scoped := jobVisibility(scope, 2, args); clause != "" {
		q += " and " + clause
		args = scoped
	}
	j, err := scanJob(s.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, err
	}
	if err := s.loadTeam(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *jobStore) FindByToken(ctx context.Context, token string) (*ats.Job, error) {
	q := `select ` + jobColumns + ` from jobs j where j.apply_token=$1`
	j, err := scanJob(s.db.QueryRowContext(ctx, q, token))
	if err != nil {
		return nil, err
	}
	if err := s.loadTeam(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *jobStore) Update(ctx context.Context, j *ats.Job) error {
	locs, err := json.Marshal(j.Locations)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		update jobs set client_id=$2, title=$3, description=$4, locations=$5, job_type=$6,
			experience_min=$7, experience_max=$8, salary_min=$9, salary_max=$10,
			screening_q1=$11, screening_q2=$12, updated_at=now()
		where id=$1
	`, j.ID, j.ClientID, j.Title, j.Description, locs, j.JobType,
		j.ExperienceMin, j.ExperienceMax, j.SalaryMin, j.SalaryMax,
		j.ScreeningQ1, j.ScreeningQ2)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if err := replaceTeam(ctx, tx, j.ID, j.TeamIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *jobStore) SetStatus(ctx context.Context, id string, status ats.JobStatus) error {
	res, err := s.db.ExecContext(ctx, `update jobs set status=$2, updated_at=now() where id=$1`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *jobStore) List(ctx context.Context, filter ats.JobFilter, scope ats.Scope, page ats.Page) ([]*ats.Job, error) {
	var (
		where []string
		args  []any
		argn  = 1
	)
	if filter.ClientID != "" {
		where = append(where, fmt.Sprintf("j.client_id=$%d", argn))
		args = append(args, filter.ClientID)
		argn++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("j.status=$%d", argn))
		args = append(args, filter.Status)
		argn++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("j.title ilike $%d", argn))
		args = append(args, "%"+filter.Search+"%")
		argn++
	}
	if clause, next, scoped := jobVisibility(scope, argn, args); clause != "" {
		where = append(where, clause)
		argn = next
		args = scoped
	}
	q := `select ` + jobColumns + ` from jobs j join clients c on c.id=j.client_id`
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	q += fmt.Sprintf(" order by j.created_at desc limit $%d offset $%d", argn, argn+1)
	args = append(args, page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.Job
	for rows.Next() {
		j, err := scanJobRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, j := range out {
		if err := s.loadTeam(ctx, j); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *jobStore) loadTeam(ctx context.Context, j *ats.Job) error {
	rows, err := s.db.QueryContext(ctx,
		`select user_id from job_team where job_id=$1 order by user_id`, j.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	j.TeamIDs = nil
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		j.TeamIDs = append(j.TeamIDs, id)
	}
	return rows.Err()
}

func replaceTeam(ctx context.Context, tx *sql.Tx, jobID string, userIDs []string) error {
	if _, err := tx.ExecContext(ctx, `delete from job_team where job_id=$1`, jobID); err != nil {
		return err
	}
	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`insert into job_team(job_id, user_id) values ($1,$2) on conflict do nothing`, jobID, uid); err != nil {
			return err
		}
	}
	return nil
}

func scanJob(row *sql.Row) (*ats.Job, error) {
	var (
		j    ats.Job
		locs []byte
	)
	err := row.Scan(&j.ID, &j.ClientID, &j.Title, &j.Description, &locs, &j.JobType,
		&j.ExperienceMin, &j.ExperienceMax, &j.SalaryMin, &j.SalaryMax,
		&j.ScreeningQ1, &j.ScreeningQ2, &j.ApplyToken, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, notFoundOn(err)
	}
	if err := json.Unmarshal(locs, &j.Locations); err != nil {
		return nil, err
	}
	return &j, nil
}

func scanJobRows(rows *sql.Rows) (*ats.Job, error) {
	var (
		j    ats.Job
		locs []byte
	)
	err := rows.Scan(&j.ID, &j.ClientID, &j.Title, &j.Description, &locs, &j.JobType,
		&j.ExperienceMin, &j.ExperienceMax, &j.SalaryMin, &j.SalaryMax,
		&j.ScreeningQ1, &j.ScreeningQ2, &j.ApplyToken, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(locs, &j.Locations); err != nil {
		return nil, err
	}
	return &j, nil
}
