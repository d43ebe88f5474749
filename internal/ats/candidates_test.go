package ats

import (
	"context"
	"errors"
	"testing"
)

func candidateInput(email, phone string) CandidateInput {
	return CandidateInput{
		FirstName: "Asha",
		LastName:  "Nair",
		Email:     email,
		Phone:     phone,
		Location:  "Bangalore",
	}
}

type fakeRemover struct{ removed []string }

func (f *fakeRemover) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func TestCandidateCreateRejectsDuplicateEmailOrPhone(t *testing.T) {
	store := NewMemStore()
	svc := NewCandidates(store, nil, nil)
	ctx := context.Background()
	actor := recruiterPrincipal("rec-1")

	first, err := svc.Create(ctx, actor, candidateInput("asha@example.com", "9876543210"), "")
	if err != nil {
		t.Fatal(err)
	}

	var dup *DuplicateError
	_, err = svc.Create(ctx, actor, candidateInput("asha@example.com", "9000000000"), "")
	if !errors.As(err, &dup) || dup.ExistingID != first.ID {
		t.Fatalf("email match: expected DuplicateError for %s, got %v", first.ID, err)
	}
	_, err = svc.Create(ctx, actor, candidateInput("new@example.com", "9876543210"), "")
	if !errors.As(err, &dup) || dup.ExistingID != first.ID {
		t.Fatalf("phone match: expected DuplicateError for %s, got %v", first.ID, err)
	}

	all, _ := store.Candidates(ctx).List(ctx, CandidateFilter{IncludeBlacklisted: true}, Scope{All: true}, Page{})
	if len(all) != 1 {
		t.Fatalf("no new row may be written on duplicate, got %d rows", len(all))
	}
}

func TestStoreCreateLabelsDuplicateField(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	first := &Candidate{FirstName: "Asha", Email: "asha@example.com", Phone: "9876543210"}
	if err := store.Candidates(ctx).Create(ctx, first); err != nil {
		t.Fatal(err)
	}

	var dup *DuplicateError
	err := store.Candidates(ctx).Create(ctx, &Candidate{FirstName: "Ravi", Email: "ravi@example.com", Phone: "9876543210"})
	if !errors.As(err, &dup) || dup.Field != "phone" || dup.ExistingID != first.ID {
		t.Fatalf("phone collision must be labelled phone and reference %s, got %v", first.ID, err)
	}
	err = store.Candidates(ctx).Create(ctx, &Candidate{FirstName: "Ravi", Email: "asha@example.com", Phone: "9000000000"})
	if !errors.As(err, &dup) || dup.Field != "email" || dup.ExistingID != first.ID {
		t.Fatalf("email collision must be labelled email and reference %s, got %v", first.ID, err)
	}
}

func TestCandidateUpdateDuplicateCheckExcludesSelf(t *testing.T) {
	store := NewMemStore()
	svc := NewCandidates(store, nil, nil)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	c, err := svc.Create(ctx, actor, candidateInput("asha@example.com", "9876543210"), "")
	if err != nil {
		t.Fatal(err)
	}
	in := candidateInput("asha@example.com", "9876543210")
	in.Skills = "Go"
	if _, err := svc.Update(ctx, actor, c.ID, in, ""); err != nil {
		t.Fatalf("update keeping own email/phone must pass, got %v", err)
	}
}

func TestBlacklistRequiresReasonAndHidesFromDefaultListing(t *testing.T) {
	store := NewMemStore()
	svc := NewCandidates(store, nil, nil)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	c, err := svc.Create(ctx, actor, candidateInput("asha@example.com", "9876543210"), "")
	if err != nil {
		t.Fatal(err)
	}

	var ve *ValidationError
	if err := svc.Blacklist(ctx, actor, c.ID, "too short"); !errors.As(err, &ve) {
		t.Fatalf("9-char reason must fail validation, got %v", err)
	}
	if err := svc.Blacklist(ctx, actor, c.ID, "bad attitude"); err != nil {
		t.Fatalf("11+ char reason must pass, got %v", err)
	}

	got, _ := store.Candidates(ctx).Find(ctx, c.ID, Scope{All: true})
	if !got.Blacklisted || got.BlacklistReason != "bad attitude" {
		t.Fatalf("blacklist not recorded: %+v", got)
	}
	if got.Status != CandidateStatusActive {
		t.Fatalf("blacklisting must not alter status, got %q", got.Status)
	}

	visible, _ := svc.List(ctx, actor, CandidateFilter{}, Page{})
	if len(visible) != 0 {
		t.Fatalf("blacklisted candidate must be hidden from default listing")
	}
	all, _ := svc.List(ctx, actor, CandidateFilter{IncludeBlacklisted: true}, Page{})
	if len(all) != 1 {
		t.Fatalf("blacklisted candidate must appear when asked for")
	}

	if err := svc.Unblacklist(ctx, actor, c.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Candidates(ctx).Find(ctx, c.ID, Scope{All: true})
	if got.Blacklisted || got.BlacklistReason != "" {
		t.Fatalf("unblacklist must clear both fields: %+v", got)
	}
}

func TestCandidateResumeReplaceDeletesOldAfterUpdate(t *testing.T) {
	store := NewMemStore()
	remover := &fakeRemover{}
	svc := NewCandidates(store, remover, nil)
	ctx := context.Background()
	actor := managerPrincipal("mgr-1")

	c, err := svc.Create(ctx, actor, candidateInput("asha@example.com", "9876543210"), "resumes/old.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(ctx, actor, c.ID, candidateInput("asha@example.com", "9876543210"), "resumes/new.pdf"); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Candidates(ctx).Find(ctx, c.ID, Scope{All: true})
	if got.ResumePath != "resumes/new.pdf" {
		t.Fatalf("resume path = %q", got.ResumePath)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "resumes/old.pdf" {
		t.Fatalf("old resume must be deleted after the new one is recorded, removed=%v", remover.removed)
	}
}

func TestCandidateVisibilityScope(t *testing.T) {
	store := NewMemStore()
	svc := NewCandidates(store, nil, nil)
	ctx := context.Background()

	mine, err := svc.Create(ctx, recruiterPrincipal("rec-1"), candidateInput("a@example.com", "9000000001"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, recruiterPrincipal("rec-2"), candidateInput("b@example.com", "9000000002"), ""); err != nil {
		t.Fatal(err)
	}

	visible, err := svc.List(ctx, recruiterPrincipal("rec-1"), CandidateFilter{}, Page{})
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != mine.ID {
		t.Fatalf("recruiter must see only candidates they added or are assigned, got %d", len(visible))
	}
	all, _ := svc.List(ctx, managerPrincipal("mgr-1"), CandidateFilter{}, Page{})
	if len(all) != 2 {
		t.Fatalf("manager must see all candidates, got %d", len(all))
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"98765 43210":     "9876543210",
		"(987) 654-3210":  "9876543210",
		"09876543210":     "9876543210",
		"+91 98765 43210": "9876543210",
	}
	for input, want := range cases {
		got, err := NormalizePhone(input)
		if err != nil {
			t.Fatalf("NormalizePhone(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("NormalizePhone(%q)=%q, want %q", input, got, want)
		}
	}
	for _, bad := range []string{"12345", "", "987654321012345"} {
		if _, err := NormalizePhone(bad); err == nil {
			t.Fatalf("NormalizePhone(%q) should fail", bad)
		}
	}
}
