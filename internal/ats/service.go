package ats

import (
	"context"

	"atrios.org/internal/auth"
)

// Recorder writes one activity-log entry per mutation. Implementations are
// best-effort: a failed write must never roll back the business mutation.
type Recorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, description string)
}

// FileRemover deletes a stored upload by its relative path. Removal failures
// are ignored by callers; at worst one orphaned file remains.
type FileRemover interface {
	Remove(path string) error
}

// UserDirectory resolves staff accounts when validating assignments.
// auth.UserStore satisfies it.
type UserDirectory interface {
	Find(ctx context.Context, id string) (*auth.User, error)
}

// noopRecorder backs services constructed without an activity log.
type noopRecorder struct{}

func (noopRecorder) Record(context.Context, string, string, string, string, string) {}
