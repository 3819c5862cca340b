package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fieldline/fieldline/internal/form"
)

// CreateForm inserts a new schema. If a form with the same id already
// exists it returns a DuplicateError, leaves the existing row untouched,
// and writes no audit entry.
func (s *Store) CreateForm(ctx context.Context, sc *form.Schema) error {
	now := s.now()
	stored := sc.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	body, err := marshalSchema(stored)
	if err != nil {
		return storageErr("create form", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO forms (id, title, version, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		stored.ID,
		stored.Title,
		stored.Version,
		string(body),
		timestamp(now),
		timestamp(now),
	)
	if err != nil {
		return storageErr("create form", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("create form", err)
	}
	if affected == 0 {
		return &DuplicateError{Entity: "form", ID: stored.ID}
	}

	// The schema row and its audit entry are separate statements: an
	// audit entry lagging behind a crash is tolerated, a spurious entry
	// for a failed write is not.
	return s.appendAudit(ctx, stored.ID, form.AuditCreate, body)
}

// SaveForm upserts a schema. On update the original created_at is
// preserved and updated_at is refreshed. An update audit entry with the
// full schema snapshot is appended either way.
func (s *Store) SaveForm(ctx context.Context, sc *form.Schema) error {
	now := s.now()
	stored := sc.Clone()
	stored.UpdatedAt = now

	existing, err := s.GetForm(ctx, stored.ID)
	switch {
	case err == nil:
		stored.CreatedAt = existing.CreatedAt
	case IsNotFound(err):
		stored.CreatedAt = now
	default:
		return err
	}

	body, err := marshalSchema(stored)
	if err != nil {
		return storageErr("save form", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forms (id, title, version, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			version = excluded.version,
			body = excluded.body,
			updated_at = excluded.updated_at
	`,
		stored.ID,
		stored.Title,
		stored.Version,
		string(body),
		timestamp(stored.CreatedAt),
		timestamp(now),
	)
	if err != nil {
		return storageErr("save form", err)
	}

	return s.appendAudit(ctx, stored.ID, form.AuditUpdate, body)
}

// GetForm loads the current revision of a schema.
func (s *Store) GetForm(ctx context.Context, id string) (*form.Schema, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM forms WHERE id = ?`, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "form", ID: id}
	}
	if err != nil {
		return nil, storageErr("get form", err)
	}

	sc, err := unmarshalSchema([]byte(body))
	if err != nil {
		return nil, storageErr("get form", err)
	}
	return sc, nil
}

// ListForms returns all schemas ordered by id.
func (s *Store) ListForms(ctx context.Context) ([]*form.Schema, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM forms ORDER BY id`)
	if err != nil {
		return nil, storageErr("list forms", err)
	}
	defer rows.Close()

	var out []*form.Schema
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, storageErr("list forms", err)
		}
		sc, err := unmarshalSchema([]byte(body))
		if err != nil {
			return nil, storageErr("list forms", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list forms", err)
	}
	return out, nil
}

// DeleteForm removes a schema and appends a delete audit entry holding
// the last snapshot. Submissions are deliberately not cascaded; their
// lifecycle is independent of the form's.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	sc, err := s.GetForm(ctx, id)
	if err != nil {
		return err
	}

	body, err := marshalSchema(sc)
	if err != nil {
		return storageErr("delete form", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id); err != nil {
		return storageErr("delete form", err)
	}

	return s.appendAudit(ctx, id, form.AuditDelete, body)
}

// BumpVersion increments the patch component of the form's version,
// persists the new revision, and appends an update snapshot. Returns
// the new version string.
func (s *Store) BumpVersion(ctx context.Context, id string) (string, error) {
	sc, err := s.GetForm(ctx, id)
	if err != nil {
		return "", err
	}

	next, err := form.BumpPatchString(sc.Version)
	if err != nil {
		return "", storageErr("bump version", fmt.Errorf("form %q: %w", id, err))
	}

	sc.Version = next
	if err := s.SaveForm(ctx, sc); err != nil {
		return "", err
	}
	return next, nil
}

// VersionRecord is one entry in a form's version history.
type VersionRecord struct {
	Version string
	Action  form.AuditAction
	At      string
}

// ListVersions returns the version history of a form in creation order,
// derived from create and update audit snapshots.
func (s *Store) ListVersions(ctx context.Context, id string) ([]VersionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT action, payload, at FROM audit
		WHERE form_id = ? AND action IN (?, ?)
		ORDER BY id
	`, id, string(form.AuditCreate), string(form.AuditUpdate))
	if err != nil {
		return nil, storageErr("list versions", err)
	}
	defer rows.Close()

	var out []VersionRecord
	for rows.Next() {
		var action, payload, at string
		if err := rows.Scan(&action, &payload, &at); err != nil {
			return nil, storageErr("list versions", err)
		}
		snap, err := unmarshalSchema([]byte(payload))
		if err != nil {
			return nil, storageErr("list versions", err)
		}
		out = append(out, VersionRecord{
			Version: snap.Version,
			Action:  form.AuditAction(action),
			At:      at,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list versions", err)
	}
	if len(out) == 0 {
		return nil, &NotFoundError{Entity: "form", ID: id}
	}
	return out, nil
}

// RevertToVersion restores the most recent audit snapshot whose schema
// version matches. The restored content replaces the current row with a
// refreshed updated_at, and a new update entry is appended; history is
// never rewritten. Returns the restored schema.
func (s *Store) RevertToVersion(ctx context.Context, id, version string) (*form.Schema, error) {
	// Newest snapshot first: the same version string can appear in
	// several snapshots and the latest content wins.
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM audit
		WHERE form_id = ? AND action IN (?, ?)
		ORDER BY id DESC
	`, id, string(form.AuditCreate), string(form.AuditUpdate))
	if err != nil {
		return nil, storageErr("revert to version", err)
	}
	defer rows.Close()

	var match *form.Schema
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, storageErr("revert to version", err)
		}
		snap, err := unmarshalSchema([]byte(payload))
		if err != nil {
			return nil, storageErr("revert to version", err)
		}
		if snap.Version == version {
			match = snap
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("revert to version", err)
	}
	// The pool holds a single connection; SaveForm cannot acquire it
	// while the iterator still does.
	rows.Close()

	if match == nil {
		return nil, &NotFoundError{Entity: "version", ID: version}
	}

	if err := s.SaveForm(ctx, match); err != nil {
		return nil, err
	}
	return s.GetForm(ctx, id)
}

// Reset clears forms, submissions, and the audit trail, repopulates the
// forms from seeds, and appends a single seed audit entry recording the
// count. Destructive: confirmation is the caller's job, not the store's.
func (s *Store) Reset(ctx context.Context, seeds []*form.Schema) error {
	for _, table := range []string{"forms", "submissions", "audit"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return storageErr("reset", err)
		}
	}

	now := s.now()
	for _, seed := range seeds {
		stored := seed.Clone()
		stored.CreatedAt = now
		stored.UpdatedAt = now

		body, err := marshalSchema(stored)
		if err != nil {
			return storageErr("reset", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO forms (id, title, version, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			stored.ID,
			stored.Title,
			stored.Version,
			string(body),
			timestamp(now),
			timestamp(now),
		)
		if err != nil {
			return storageErr("reset", err)
		}
	}

	payload, err := form.MarshalCanonical(map[string]any{"count": len(seeds)})
	if err != nil {
		return storageErr("reset", err)
	}
	return s.appendAudit(ctx, form.SystemFormID, form.AuditSeed, payload)
}
