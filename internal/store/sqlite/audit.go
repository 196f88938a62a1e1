// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/draftforge-dev/draftforge/internal/store"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

// Compile-time interface check.
var _ store.AuditLog = (*AuditLog)(nil)

// AuditLog implements store.AuditLog backed by a single SQLite database.
type AuditLog struct {
	db *sql.DB
}

// NewAuditLog opens (or creates) a SQLite database at dbPath and initialises
// the generation_log table.
func NewAuditLog(dbPath string) (*AuditLog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, dferr.Wrapf(err, dferr.CodeStoreOpenFailure, "opening audit db")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, dferr.Wrapf(err, dferr.CodeStoreOpenFailure, "pinging audit db")
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, dferr.Wrapf(err, dferr.CodeStoreOpenFailure, "migrating audit db")
	}

	return &AuditLog{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS generation_log (
	id            TEXT PRIMARY KEY,
	request_id    TEXT NOT NULL,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL DEFAULT '',
	ok            INTEGER NOT NULL,
	error_code    TEXT NOT NULL DEFAULT '',
	error_text    TEXT NOT NULL DEFAULT '',
	approx_tokens INTEGER NOT NULL DEFAULT 0,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_generation_log_created_at ON generation_log(created_at);
CREATE INDEX IF NOT EXISTS idx_generation_log_request ON generation_log(request_id);
`
	_, err := db.Exec(ddl)
	return err
}

func (a *AuditLog) Record(ctx context.Context, attempt store.Attempt) error {
	if attempt.ID == "" {
		return dferr.New(dferr.CodeStoreInvalidInput, "attempt id is required")
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	const q = `
INSERT INTO generation_log
	(id, request_id, provider, model, ok, error_code, error_text, approx_tokens, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := a.db.ExecContext(ctx, q,
		attempt.ID,
		attempt.RequestID,
		attempt.Provider,
		attempt.Model,
		boolToInt(attempt.OK),
		attempt.ErrorCode,
		attempt.ErrorText,
		attempt.ApproxTokens,
		attempt.Duration.Milliseconds(),
		attempt.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return dferr.Wrapf(err, dferr.CodeStoreQueryFailure, "inserting generation attempt")
	}
	return nil
}

func (a *AuditLog) Recent(ctx context.Context, limit int) ([]store.Attempt, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
SELECT id, request_id, provider, model, ok, error_code, error_text, approx_tokens, duration_ms, created_at
FROM generation_log
ORDER BY created_at DESC
LIMIT ?`

	rows, err := a.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, dferr.Wrapf(err, dferr.CodeStoreQueryFailure, "querying generation log")
	}
	defer func() { _ = rows.Close() }()

	var out []store.Attempt
	for rows.Next() {
		var (
			attempt    store.Attempt
			ok         int
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(
			&attempt.ID,
			&attempt.RequestID,
			&attempt.Provider,
			&attempt.Model,
			&ok,
			&attempt.ErrorCode,
			&attempt.ErrorText,
			&attempt.ApproxTokens,
			&durationMS,
			&createdAt,
		); err != nil {
			return nil, dferr.Wrapf(err, dferr.CodeStoreQueryFailure, "scanning generation attempt")
		}
		attempt.OK = ok != 0
		attempt.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			attempt.CreatedAt = t
		}
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, dferr.Wrapf(err, dferr.CodeStoreQueryFailure, "iterating generation log")
	}
	return out, nil
}

func (a *AuditLog) Close() error {
	return a.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
