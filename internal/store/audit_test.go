package store

import (
	"context"
	"testing"

	"github.com/fieldline/fieldline/internal/form"
)

func TestAuditEntries_CreationOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateForm(ctx, testSchema("a")); err != nil {
		t.Fatalf("CreateForm: %v", err)
	}
	if err := s.CreateForm(ctx, testSchema("b")); err != nil {
		t.Fatalf("CreateForm: %v", err)
	}
	if _, err := s.BumpVersion(ctx, "a"); err != nil {
		t.Fatalf("BumpVersion: %v", err)
	}

	all, err := s.AuditEntries(ctx, "")
	if err != nil {
		t.Fatalf("AuditEntries: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("entries = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Errorf("ids out of order: %d then %d", all[i-1].ID, all[i].ID)
		}
	}

	// Filtered view only sees that form's entries.
	forA, err := s.AuditEntries(ctx, "a")
	if err != nil {
		t.Fatalf("AuditEntries(a): %v", err)
	}
	if len(forA) != 2 {
		t.Errorf("entries for a = %d, want 2", len(forA))
	}
	for _, e := range forA {
		if e.FormID != "a" {
			t.Errorf("entry for form %q in filtered view", e.FormID)
		}
	}
}

func TestAuditEntries_HashesVerify(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateForm(ctx, testSchema("order")); err != nil {
		t.Fatalf("CreateForm: %v", err)
	}
	if err := s.SaveSubmission(ctx, &form.Submission{
		ID: "sub-1", FormID: "order", FormVersion: "1.0.0",
		Data: map[string]any{"price": 10.0},
	}); err != nil {
		t.Fatalf("SaveSubmission: %v", err)
	}

	entries, err := s.AuditEntries(ctx, "")
	if err != nil {
		t.Fatalf("AuditEntries: %v", err)
	}
	for _, e := range entries {
		if got := form.PayloadHash(e.Payload); got != e.PayloadHash {
			t.Errorf("entry %d: stored hash %s, recomputed %s", e.ID, e.PayloadHash, got)
		}
	}

	bad, err := s.VerifyAudit(ctx)
	if err != nil {
		t.Fatalf("VerifyAudit: %v", err)
	}
	if len(bad) != 0 {
		t.Errorf("VerifyAudit flagged %v", bad)
	}
}

func TestVerifyAudit_DetectsTampering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateForm(ctx, testSchema("order")); err != nil {
		t.Fatalf("CreateForm: %v", err)
	}

	// Tamper with the payload behind the store's back.
	if _, err := s.db.Exec(`UPDATE audit SET payload = '{"forged":true}'`); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	bad, err := s.VerifyAudit(ctx)
	if err != nil {
		t.Fatalf("VerifyAudit: %v", err)
	}
	if len(bad) != 1 {
		t.Fatalf("VerifyAudit flagged %v, want one entry", bad)
	}
}

func TestAuditPayload_IsSchemaSnapshot(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateForm(ctx, testSchema("order")); err != nil {
		t.Fatalf("CreateForm: %v", err)
	}

	entries, _ := s.AuditEntries(ctx, "order")
	snap, err := unmarshalSchema(entries[0].Payload)
	if err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.ID != "order" || snap.Version != "1.0.0" {
		t.Errorf("snapshot = id %q version %q", snap.ID, snap.Version)
	}
	if len(snap.Pages) != 1 || len(snap.Pages[0].Elements) != 2 {
		t.Errorf("snapshot pages = %+v", snap.Pages)
	}
}
