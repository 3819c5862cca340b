package store

import (
	"context"
	"testing"

	"github.com/fieldline/fieldline/internal/form"
)

func TestSaveSubmission(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateForm(ctx, testSchema("order")); err != nil {
		t.Fatalf("CreateForm: %v", err)
	}

	sub := &form.Submission{
		ID:          "sub-1",
		FormID:      "order",
		FormVersion: "1.0.0",
		Data:        map[string]any{"price": 10.0, "qty": 3.0},
	}
	if err := s.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("SaveSubmission: %v", err)
	}
	if sub.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}

	got, err := s.GetSubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if got.FormID != "order" || got.FormVersion != "1.0.0" {
		t.Errorf("got %+v", got)
	}
	if got.Data["price"] != 10.0 || got.Data["qty"] != 3.0 {
		t.Errorf("data = %v", got.Data)
	}

	entries, _ := s.AuditEntries(ctx, "order")
	last := entries[len(entries)-1]
	if last.Action != form.AuditSubmission {
		t.Errorf("last audit action = %q, want submission", last.Action)
	}
}

func TestSaveSubmission_Duplicate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	sub := &form.Submission{ID: "sub-1", FormID: "order", FormVersion: "1.0.0", Data: map[string]any{}}
	if err := s.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("first SaveSubmission: %v", err)
	}

	err := s.SaveSubmission(ctx, &form.Submission{
		ID: "sub-1", FormID: "order", FormVersion: "1.0.0", Data: map[string]any{},
	})
	if !IsDuplicate(err) {
		t.Fatalf("err = %v, want DuplicateError", err)
	}
}

func TestSubmissionsByForm(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"sub-1", "sub-2"} {
		if err := s.SaveSubmission(ctx, &form.Submission{
			ID: id, FormID: "order", FormVersion: "1.0.0", Data: map[string]any{},
		}); err != nil {
			t.Fatalf("SaveSubmission %s: %v", id, err)
		}
	}
	if err := s.SaveSubmission(ctx, &form.Submission{
		ID: "sub-3", FormID: "other", FormVersion: "1.0.0", Data: map[string]any{},
	}); err != nil {
		t.Fatalf("SaveSubmission sub-3: %v", err)
	}

	subs, err := s.SubmissionsByForm(ctx, "order")
	if err != nil {
		t.Fatalf("SubmissionsByForm: %v", err)
	}
	if len(subs) != 2 || subs[0].ID != "sub-1" || subs[1].ID != "sub-2" {
		t.Errorf("subs = %+v", subs)
	}

	all, err := s.ListSubmissions(ctx)
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestGetSubmission_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetSubmission(context.Background(), "ghost")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}
