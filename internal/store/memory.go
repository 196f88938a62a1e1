// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package store

import (
	"context"
	"sync"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

// MemoryAuditLog is an in-memory AuditLog for tests and the "memory"
// storage backend. Attempts are kept newest-first up to a fixed cap.
type MemoryAuditLog struct {
	mu       sync.Mutex
	attempts []Attempt
	cap      int
}

var _ AuditLog = (*MemoryAuditLog)(nil)

// DefaultMemoryAuditCap bounds how many attempts the memory backend keeps.
const DefaultMemoryAuditCap = 1000

// NewMemoryAuditLog creates a MemoryAuditLog. A non-positive cap uses the
// default.
func NewMemoryAuditLog(cap int) *MemoryAuditLog {
	if cap <= 0 {
		cap = DefaultMemoryAuditCap
	}
	return &MemoryAuditLog{cap: cap}
}

func (m *MemoryAuditLog) Record(_ context.Context, attempt Attempt) error {
	if attempt.ID == "" {
		return dferr.New(dferr.CodeStoreInvalidInput, "attempt id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = append([]Attempt{attempt}, m.attempts...)
	if len(m.attempts) > m.cap {
		m.attempts = m.attempts[:m.cap]
	}
	return nil
}

func (m *MemoryAuditLog) Recent(_ context.Context, limit int) ([]Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.attempts) {
		limit = len(m.attempts)
	}
	out := make([]Attempt, limit)
	copy(out, m.attempts[:limit])
	return out, nil
}

func (m *MemoryAuditLog) Close() error { return nil }
