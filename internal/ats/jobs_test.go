package ats

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func jobsFixture(t *testing.T) (*Jobs, *MemStore, *Client) {
	t.Helper()
	store := NewMemStore()
	ctx := context.Background()
	client := &Client{CompanyName: "Helios Retail", AssignedTo: "owner-1", Status: ClientStatusActive}
	if err := store.Clients(ctx).Create(ctx, client); err != nil {
		t.Fatal(err)
	}
	return NewJobs(store, nil), store, client
}

func jobInput(clientID string) JobInput {
	return JobInput{
		ClientID:    clientID,
		Title:       "Backend Engineer",
		Locations:   []string{"Remote", "Bangalore"},
		ScreeningQ1: "Why this role?",
		ScreeningQ2: "Notice period?",
	}
}

func TestJobCreateGeneratesImmutableToken(t *testing.T) {
	svc, _, client := jobsFixture(t)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	j, err := svc.Create(ctx, actor, jobInput(client.ID))
	if err != nil {
		t.Fatal(err)
	}
	if j.ApplyToken == "" {
		t.Fatalf("apply token must be generated at creation")
	}
	if j.Status != JobStatusDraft {
		t.Fatalf("new job status = %q, want draft", j.Status)
	}

	updated, err := svc.Update(ctx, actor, j.ID, jobInput(client.ID))
	if err != nil {
		t.Fatal(err)
	}
	if updated.ApplyToken != j.ApplyToken {
		t.Fatalf("apply token must never be regenerated")
	}
}

func TestJobLocationsRoundTripAsSet(t *testing.T) {
	svc, _, client := jobsFixture(t)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	in := jobInput(client.ID)
	in.Locations = []string{"Remote", "Bangalore", "Remote", " "}
	j, err := svc.Create(ctx, actor, in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Find(ctx, actor, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Bangalore", "Remote"}
	locs := append([]string(nil), got.Locations...)
	sort.Strings(locs)
	if len(locs) != len(want) || locs[0] != want[0] || locs[1] != want[1] {
		t.Fatalf("locations round-trip = %v, want set %v", got.Locations, want)
	}
}

func TestJobValidation(t *testing.T) {
	svc, _, client := jobsFixture(t)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")
	var ve *ValidationError

	in := jobInput(client.ID)
	in.Locations = nil
	if _, err := svc.Create(ctx, actor, in); !errors.As(err, &ve) {
		t.Fatalf("no locations: expected ValidationError, got %v", err)
	}

	in = jobInput(client.ID)
	in.ScreeningQ2 = ""
	if _, err := svc.Create(ctx, actor, in); !errors.As(err, &ve) {
		t.Fatalf("empty screening question: expected ValidationError, got %v", err)
	}

	in = jobInput(client.ID)
	in.SalaryMin = 2000000
	in.SalaryMax = 1500000
	if _, err := svc.Create(ctx, actor, in); !errors.As(err, &ve) {
		t.Fatalf("max below min: expected ValidationError, got %v", err)
	}

	in = jobInput("no-such-client")
	if _, err := svc.Create(ctx, actor, in); !errors.As(err, &ve) {
		t.Fatalf("unknown client: expected ValidationError, got %v", err)
	}
}

func TestJobCloseSecondCallIsNoOp(t *testing.T) {
	svc, _, client := jobsFixture(t)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	j, err := svc.Create(ctx, actor, jobInput(client.ID))
	if err != nil {
		t.Fatal(err)
	}
	changed, err := svc.Close(ctx, actor, j.ID)
	if err != nil || !changed {
		t.Fatalf("first close: changed=%v err=%v", changed, err)
	}
	changed, err = svc.Close(ctx, actor, j.ID)
	if err != nil || changed {
		t.Fatalf("second close must be a no-op: changed=%v err=%v", changed, err)
	}
}

func TestJobStatusIsUnguarded(t *testing.T) {
	svc, _, client := jobsFixture(t)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	j, err := svc.Create(ctx, actor, jobInput(client.ID))
	if err != nil {
		t.Fatal(err)
	}
	// closed -> active is allowed; the enum is advisory.
	for _, status := range []string{"closed", "active", "filled", "draft"} {
		if err := svc.SetStatus(ctx, actor, j.ID, status); err != nil {
			t.Fatalf("SetStatus(%s): %v", status, err)
		}
	}
	var ve *ValidationError
	if err := svc.SetStatus(ctx, actor, j.ID, "paused"); !errors.As(err, &ve) {
		t.Fatalf("unknown job status must fail validation, got %v", err)
	}
}

func TestRecruiterJobVisibilityIsExactUnion(t *testing.T) {
	store := NewMemStore()
	svc := NewJobs(store, nil)
	ctx := context.Background()

	mkClient := func(owner string) *Client {
		c := &Client{CompanyName: "C-" + owner, AssignedTo: owner, Status: ClientStatusActive}
		if err := store.Clients(ctx).Create(ctx, c); err != nil {
			t.Fatal(err)
		}
		return c
	}
	mkJob := func(clientID, token string, team ...string) *Job {
		j := &Job{
			ClientID: clientID, Title: "T-" + token, Locations: []string{"Remote"},
			ScreeningQ1: "q1", ScreeningQ2: "q2", ApplyToken: token,
			Status: JobStatusActive, TeamIDs: team,
		}
		if err := store.Jobs(ctx).Create(ctx, j); err != nil {
			t.Fatal(err)
		}
		return j
	}

	ownedClient := mkClient("rec-1")
	otherClient := mkClient("owner-z")
	onTeam := mkJob(otherClient.ID, "t1", "rec-1", "rec-2")
	viaOwnership := mkJob(ownedClient.ID, "t2")
	invisible := mkJob(otherClient.ID, "t3", "rec-2")

	visible, err := svc.List(ctx, recruiterPrincipal("rec-1"), JobFilter{}, Page{})
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, j := range visible {
		got[j.ID] = true
	}
	if len(got) != 2 || !got[onTeam.ID] || !got[viaOwnership.ID] {
		t.Fatalf("recruiter visibility must equal team ∪ owned-client jobs, got %v", got)
	}
	if got[invisible.ID] {
		t.Fatalf("job with neither condition leaked into recruiter listing")
	}

	// Single-row reads honor the same predicate.
	if _, err := svc.Find(ctx, recruiterPrincipal("rec-1"), invisible.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("scoped Find must hide invisible jobs, got %v", err)
	}
	all, _ := svc.List(ctx, managerPrincipal("mgr-1"), JobFilter{}, Page{})
	if len(all) != 3 {
		t.Fatalf("manager must see all jobs, got %d", len(all))
	}
}
