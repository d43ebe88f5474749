// Package audit appends one activity_logs row per business mutation and
// mirrors it to the structured log. Entries are write-only for business
// logic; only the admin listing reads them back.
package audit

import (
	"context"
	"database/sql"
	"time"

	"atrios.org/internal/ids"
	"atrios.org/internal/obs"
)

// Entry is one recorded action.
type Entry struct {
	ID          string
	ActorID     string
	Action      string
	EntityType  string
	EntityID    string
	Description string
	CreatedAt   time.Time
}

// Log satisfies ats.Recorder over the activity_logs table.
type Log struct {
	db *sql.DB
}

func New(db *sql.DB) *Log { return &Log{db: db} }

// Record is best-effort: a failed insert is logged and swallowed so the
// business mutation it annotates still commits.
func (l *Log) Record(ctx context.Context, actorID, action, entityType, entityID, description string) {
	logger := obs.Logger().With().
		Str("actor", actorID).
		Str("action", action).
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Logger()

	_, err := l.db.ExecContext(ctx, `
		insert into activity_logs(id, actor_id, action, entity_type, entity_id, description)
		values ($1,$2,$3,$4,$5,$6)
	`, ids.New(), actorID, action, entityType, entityID, description)
	if err != nil {
		logger.Error().Err(err).Msg("activity log write failed")
		return
	}
	logger.Info().Str("description", description).Msg("activity")
}

// List returns the newest entries first, for the admin activity page.
func (l *Log) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		select id, actor_id, action, entity_type, entity_id, description, created_at
		from activity_logs order by created_at desc limit $1 offset $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
