package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"atrios.org/internal/ats"
	"atrios.org/internal/ids"
)

type clientStore struct{ db *sql.DB }

const clientColumns = `id, company_name, contact_name, email, phone, website, address,
	assigned_to, coalesce(agreement_path,''), status, created_at, updated_at`

func (s *clientStore) Create(ctx context.Context, c *ats.Client) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into clients(id, company_name, contact_name, email, phone, website, address, assigned_to, agreement_path, status)
		values ($1,$2,$3,$4,$5,$6,$7,$8,nullif($9,''),$10)
	`, c.ID, c.CompanyName, c.ContactName, c.Email, c.Phone, c.Website, c.Address, c.AssignedTo, c.AgreementPath, c.Status)
	return err
}

func (s *clientStore) Find(ctx context.Context, id string) (*ats.Client, error) {
	row := s.db.QueryRowContext(ctx, `select `+clientColumns+` from clients where id=$1`, id)
	return scanClient(row)
}

func (s *clientStore) Update(ctx context.Context, c *ats.Client) error {
	res, err := s.db.ExecContext(ctx, `
		update clients set company_name=$2, contact_name=$3, email=$4, phone=$5, website=$6,
			address=$7, assigned_to=$8, agreement_path=nullif($9,''), updated_at=now()
		where id=$1
	`, c.ID, c.CompanyName, c.ContactName, c.Email, c.Phone, c.Website, c.Address, c.AssignedTo, c.AgreementPath)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *clientStore) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `update clients set status=$2, updated_at=now() where id=$1`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *clientStore) List(ctx context.Context, filter ats.ClientFilter, page ats.Page) ([]*ats.Client, error) {
	var (
		where []string
		args  []any
		argn  = 1
	)
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status=$%d", argn))
		args = append(args, filter.Status)
		argn++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(company_name ilike $%d or contact_name ilike $%d or email ilike $%d)", argn, argn, argn))
		args = append(args, "%"+filter.Search+"%")
		argn++
	}
	q := `select ` + clientColumns + ` from clients`
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	q += fmt.Sprintf(" order by company_name limit $%d offset $%d", argn, argn+1)
	args = append(args, page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.Client
	for rows.Next() {
		c, err := scanClientRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *clientStore) CountOpenJobs(ctx context.Context, clientID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from jobs where client_id=$1 and status in ('draft','active')`, clientID,
	).Scan(&n)
	return n, err
}

func scanClient(row *sql.Row) (*ats.Client, error) {
	var c ats.Client
	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.Website, &c.Address,
		&c.AssignedTo, &c.AgreementPath, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ats.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanClientRows(rows *sql.Rows) (*ats.Client, error) {
	var c ats.Client
	err := rows.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.Website, &c.Address,
		&c.AssignedTo, &c.AgreementPath, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ats.ErrNotFound
	}
	return nil
}
