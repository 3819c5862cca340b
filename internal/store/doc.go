// Package store persists form schemas, submissions, and an append-only
// audit trail in SQLite.
//
// # Layout
//
// Three tables: forms holds the current revision of each schema as
// canonical JSON, submissions holds filled-out instances with an
// independent lifecycle, and audit is an append-only trail of
// create/update/delete/submission/seed events. Every audit payload is
// canonical JSON with a domain-separated SHA-256 content hash, so a
// trail can be integrity-checked offline (VerifyAudit).
//
// # Versioning
//
// Version history is not a separate table: create and update audit
// entries carry full schema snapshots, and ListVersions and
// RevertToVersion are derived from them. Reverting never rewrites
// history; it replaces the current row and appends a fresh update
// entry.
//
// # Concurrency
//
// The connection pool is capped at a single connection because SQLite
// allows one writer. Writes are last-writer-wins; there is no
// optimistic locking. A schema write and its audit append are separate
// statements: after a crash the trail may lag the data by one entry,
// which readers must tolerate.
package store
