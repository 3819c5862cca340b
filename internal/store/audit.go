package store

import (
	"context"

	"github.com/fieldline/fieldline/internal/form"
)

// appendAudit inserts one audit row. The payload must already be
// canonical JSON; its hash is computed here so every row carries a
// verifiable content hash.
func (s *Store) appendAudit(ctx context.Context, formID string, action form.AuditAction, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit (form_id, action, payload, payload_hash, at)
		VALUES (?, ?, ?, ?, ?)
	`,
		formID,
		string(action),
		string(payload),
		form.PayloadHash(payload),
		timestamp(s.now()),
	)
	if err != nil {
		return storageErr("append audit", err)
	}
	return nil
}

// AuditEntries returns audit rows in creation order. An empty formID
// returns the whole trail.
func (s *Store) AuditEntries(ctx context.Context, formID string) ([]form.AuditEntry, error) {
	query := `SELECT id, form_id, action, payload, payload_hash, at FROM audit`
	var args []any
	if formID != "" {
		query += ` WHERE form_id = ?`
		args = append(args, formID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("audit entries", err)
	}
	defer rows.Close()

	var out []form.AuditEntry
	for rows.Next() {
		var (
			entry       form.AuditEntry
			action      string
			payload, at string
		)
		if err := rows.Scan(&entry.ID, &entry.FormID, &action, &payload, &entry.PayloadHash, &at); err != nil {
			return nil, storageErr("audit entries", err)
		}
		entry.Action = form.AuditAction(action)
		entry.Payload = []byte(payload)
		entry.At, err = parseTimestamp(at)
		if err != nil {
			return nil, storageErr("audit entries", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("audit entries", err)
	}
	return out, nil
}

// VerifyAudit recomputes every entry's payload hash and reports the ids
// of rows whose stored hash no longer matches.
func (s *Store) VerifyAudit(ctx context.Context) ([]int64, error) {
	entries, err := s.AuditEntries(ctx, "")
	if err != nil {
		return nil, err
	}

	var bad []int64
	for _, entry := range entries {
		if form.PayloadHash(entry.Payload) != entry.PayloadHash {
			bad = append(bad, entry.ID)
		}
	}
	return bad, nil
}
