package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/fieldline/fieldline/internal/form"
)

// SaveSubmission persists a filled-out form instance and appends a
// submission audit entry. The submission's CreatedAt is stamped here.
// Duplicate ids return a DuplicateError.
func (s *Store) SaveSubmission(ctx context.Context, sub *form.Submission) error {
	now := s.now()
	data, err := marshalSubmissionData(sub.Data)
	if err != nil {
		return storageErr("save submission", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, form_id, form_version, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sub.ID,
		sub.FormID,
		sub.FormVersion,
		string(data),
		timestamp(now),
	)
	if err != nil {
		return storageErr("save submission", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("save submission", err)
	}
	if affected == 0 {
		return &DuplicateError{Entity: "submission", ID: sub.ID}
	}

	sub.CreatedAt = now

	payload, err := form.MarshalCanonical(map[string]any{
		"id":          sub.ID,
		"formId":      sub.FormID,
		"formVersion": sub.FormVersion,
		"data":        sub.Data,
	})
	if err != nil {
		return storageErr("save submission", err)
	}
	return s.appendAudit(ctx, sub.FormID, form.AuditSubmission, payload)
}

// GetSubmission loads a single submission by id.
func (s *Store) GetSubmission(ctx context.Context, id string) (*form.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, form_id, form_version, data, created_at
		FROM submissions WHERE id = ?
	`, id)

	sub, err := scanSubmission(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "submission", ID: id}
	}
	if err != nil {
		return nil, storageErr("get submission", err)
	}
	return sub, nil
}

// SubmissionsByForm returns all submissions for a form in creation
// order. Submissions survive form deletion, so this works for forms
// that no longer exist.
func (s *Store) SubmissionsByForm(ctx context.Context, formID string) ([]*form.Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT id, form_id, form_version, data, created_at
		FROM submissions WHERE form_id = ? ORDER BY created_at, id
	`, formID)
}

// ListSubmissions returns every submission in creation order.
func (s *Store) ListSubmissions(ctx context.Context) ([]*form.Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT id, form_id, form_version, data, created_at
		FROM submissions ORDER BY created_at, id
	`)
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]*form.Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query submissions", err)
	}
	defer rows.Close()

	var out []*form.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, storageErr("query submissions", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query submissions", err)
	}
	return out, nil
}

func scanSubmission(scan func(...any) error) (*form.Submission, error) {
	var (
		sub      form.Submission
		data, at string
	)
	if err := scan(&sub.ID, &sub.FormID, &sub.FormVersion, &data, &at); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &sub.Data); err != nil {
		return nil, err
	}
	var err error
	sub.CreatedAt, err = parseTimestamp(at)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
