package ats

import (
	"context"
	"errors"
	"testing"

	"atrios.org/internal/auth"
)

func recruiterPrincipal(id string) auth.Principal {
	return auth.Principal{User: auth.User{ID: id, Role: auth.RoleRecruiter, Status: auth.UserStatusActive}}
}

func managerPrincipal(id string) auth.Principal {
	return auth.Principal{User: auth.User{ID: id, Role: auth.RoleManager, Status: auth.UserStatusActive}}
}

// seedJob creates a client and an active job and returns the job.
func seedJob(t *testing.T, store *MemStore, ownerID string, team ...string) *Job {
	t.Helper()
	ctx := context.Background()
	client := &Client{CompanyName: "Helios Retail", AssignedTo: ownerID, Status: ClientStatusActive}
	if err := store.Clients(ctx).Create(ctx, client); err != nil {
		t.Fatal(err)
	}
	job := &Job{
		ClientID:    client.ID,
		Title:       "Backend Engineer",
		Locations:   []string{"Remote"},
		ScreeningQ1: "Why this role?",
		ScreeningQ2: "Notice period?",
		ApplyToken:  "token-" + client.ID,
		Status:      JobStatusActive,
		TeamIDs:     team,
	}
	if err := store.Jobs(ctx).Create(ctx, job); err != nil {
		t.Fatal(err)
	}
	return job
}

func submitInput() SubmitInput {
	return SubmitInput{
		FirstName:  "Asha",
		LastName:   "Nair",
		Email:      "asha@example.com",
		Phone:      "98765 43210",
		Location:   "Bangalore",
		Answer1:    "I have shipped three Go services.",
		Answer2:    "Two weeks.",
		ResumePath: "resumes/asha.pdf",
	}
}

func TestSubmitCreatesCandidateAndApplication(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()

	app, err := apps.Submit(ctx, job.ApplyToken, submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.Status != StatusNew {
		t.Fatalf("initial status = %q, want new", app.Status)
	}
	cand, err := store.Candidates(ctx).Find(ctx, app.CandidateID, Scope{All: true})
	if err != nil {
		t.Fatalf("candidate not created: %v", err)
	}
	if cand.Source != SourcePublicApply {
		t.Fatalf("source = %q, want %q", cand.Source, SourcePublicApply)
	}
	if cand.Phone != "9876543210" {
		t.Fatalf("phone not normalised: %q", cand.Phone)
	}
}

func TestSubmitShortAnswerRejectedWithoutSideEffects(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()

	in := submitInput()
	in.Answer1 = "x"
	_, err := apps.Submit(ctx, job.ApplyToken, in)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["screening_answer_1"]; !ok {
		t.Fatalf("expected screening_answer_1 message, got %v", ve.Fields)
	}
	if _, err := store.Candidates(ctx).FindDuplicate(ctx, "asha@example.com", "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("candidate row must not exist after validation failure")
	}
	list, _ := store.Applications(ctx).List(ctx, ApplicationFilter{}, Scope{All: true}, Page{})
	if len(list) != 0 {
		t.Fatalf("application row must not exist after validation failure")
	}
}

func TestSubmitDuplicatePairRejected(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()

	if _, err := apps.Submit(ctx, job.ApplyToken, submitInput()); err != nil {
		t.Fatal(err)
	}
	if _, err := apps.Submit(ctx, job.ApplyToken, submitInput()); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	list, _ := store.Applications(ctx).List(ctx, ApplicationFilter{JobID: job.ID}, Scope{All: true}, Page{})
	if len(list) != 1 {
		t.Fatalf("want exactly one application, got %d", len(list))
	}
}

func TestSubmitConflatesBadTokenAndInactiveJob(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()

	if _, err := apps.Submit(ctx, "no-such-token", submitInput()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bad token: expected ErrNotFound, got %v", err)
	}
	if err := store.Jobs(ctx).SetStatus(ctx, job.ID, JobStatusOnHold); err != nil {
		t.Fatal(err)
	}
	if _, err := apps.Submit(ctx, job.ApplyToken, submitInput()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive job: expected ErrNotFound, got %v", err)
	}
}

func TestAcceptEnrichesCandidateAndShortlists(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()

	app, err := apps.Submit(ctx, job.ApplyToken, submitInput())
	if err != nil {
		t.Fatal(err)
	}

	actor := managerPrincipal("mgr-1")
	_, err = apps.Accept(ctx, actor, app.ID, Enrichment{
		Skills:          "Go, PostgreSQL",
		ExperienceYears: 6,
		CurrentCompany:  "Helios Retail",
		ExpectedSalary:  2400000,
	})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	got, _ := store.Applications(ctx).Find(ctx, app.ID, Scope{All: true})
	if got.Status != StatusShortlisted {
		t.Fatalf("status = %q, want shortlisted", got.Status)
	}
	cand, _ := store.Candidates(ctx).Find(ctx, app.CandidateID, Scope{All: true})
	if cand.Skills != "Go, PostgreSQL" || cand.AssignedTo != "mgr-1" {
		t.Fatalf("candidate not enriched: %+v", cand)
	}
}

func TestRejectAppendsReason(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	app, err := apps.Submit(ctx, job.ApplyToken, submitInput())
	if err != nil {
		t.Fatal(err)
	}
	if err := apps.Reject(ctx, actor, app.ID, "  "); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Applications(ctx).Find(ctx, app.ID, Scope{All: true})
	if got.Status != StatusRejected {
		t.Fatalf("status = %q, want rejected", got.Status)
	}
	if got.ScreeningNotes != "Rejected: No reason provided." {
		t.Fatalf("notes = %q", got.ScreeningNotes)
	}
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	app, err := apps.Submit(ctx, job.ApplyToken, submitInput())
	if err != nil {
		t.Fatal(err)
	}
	err = apps.SetStatus(ctx, actor, app.ID, "archived")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got, _ := store.Applications(ctx).Find(ctx, app.ID, Scope{All: true})
	if got.Status != StatusNew {
		t.Fatalf("prior status must be unchanged, got %q", got.Status)
	}
}

func TestSetStatusAllowsAnyTransition(t *testing.T) {
	store := NewMemStore()
	job := seedJob(t, store, "owner-1")
	apps := NewApplications(store, nil)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	app, err := apps.Submit(ctx, job.ApplyToken, submitInput())
	if err != nil {
		t.Fatal(err)
	}
	// hired followed by new both succeed: the enum is unguarded.
	if err := apps.SetStatus(ctx, actor, app.ID, "hired"); err != nil {
		t.Fatalf("hired: %v", err)
	}
	if err := apps.SetStatus(ctx, actor, app.ID, "new"); err != nil {
		t.Fatalf("new after hired: %v", err)
	}
	got, _ := store.Applications(ctx).Find(ctx, app.ID, Scope{All: true})
	if got.Status != StatusNew {
		t.Fatalf("status = %q, want new", got.Status)
	}
}

func TestApplicationVisibilityFollowsJobScope(t *testing.T) {
	store := NewMemStore()
	teamJob := seedJob(t, store, "owner-x", "rec-1")
	otherJob := seedJob(t, store, "owner-y")
	apps := NewApplications(store, nil)
	ctx := context.Background()

	a1, err := apps.Submit(ctx, teamJob.ApplyToken, submitInput())
	if err != nil {
		t.Fatal(err)
	}
	in := submitInput()
	in.Email = "other@example.com"
	in.Phone = "9000000001"
	if _, err := apps.Submit(ctx, otherJob.ApplyToken, in); err != nil {
		t.Fatal(err)
	}

	recruiter := recruiterPrincipal("rec-1")
	visible, err := apps.List(ctx, recruiter, ApplicationFilter{}, Page{})
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != a1.ID {
		t.Fatalf("recruiter must see exactly their team's application, got %d", len(visible))
	}
}
