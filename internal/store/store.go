// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

// Package store defines the generation audit log: an append-only record of
// every provider attempt the dispatch engine makes. The audit trail is
// operational history only; router health state lives in memory and is
// never persisted.
package store

import (
	"context"
	"time"
)

// Attempt is one provider invocation outcome.
type Attempt struct {
	ID           string
	RequestID    string
	Provider     string
	Model        string
	OK           bool
	ErrorCode    string
	ErrorText    string
	ApproxTokens int
	Duration     time.Duration
	CreatedAt    time.Time
}

// AuditLog records and queries generation attempts.
type AuditLog interface {
	Record(ctx context.Context, attempt Attempt) error
	Recent(ctx context.Context, limit int) ([]Attempt, error)
	Close() error
}
