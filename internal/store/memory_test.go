// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/draftforge-dev/draftforge/internal/store"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAuditLog_RecordAndRecent(t *testing.T) {
	log := store.NewMemoryAuditLog(10)
	ctx := context.Background()

	require.NoError(t, log.Record(ctx, store.Attempt{ID: "a-1", RequestID: "req-1", Provider: "gemini", OK: true}))
	require.NoError(t, log.Record(ctx, store.Attempt{ID: "a-2", RequestID: "req-1", Provider: "groq", OK: false, ErrorText: "boom"}))

	attempts, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	// Newest first.
	assert.Equal(t, "a-2", attempts[0].ID)
	assert.Equal(t, "a-1", attempts[1].ID)
	assert.Equal(t, "boom", attempts[0].ErrorText)
}

func TestMemoryAuditLog_RequiresID(t *testing.T) {
	log := store.NewMemoryAuditLog(10)

	err := log.Record(context.Background(), store.Attempt{RequestID: "req-1"})
	require.Error(t, err)
	assert.True(t, dferr.IsInvalidInput(err))
}

func TestMemoryAuditLog_RecentLimit(t *testing.T) {
	log := store.NewMemoryAuditLog(10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(ctx, store.Attempt{ID: fmt.Sprintf("a-%d", i)}))
	}

	attempts, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "a-4", attempts[0].ID)

	// Zero and oversized limits return everything.
	attempts, err = log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, attempts, 5)
}

func TestMemoryAuditLog_CapEviction(t *testing.T) {
	log := store.NewMemoryAuditLog(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(ctx, store.Attempt{ID: fmt.Sprintf("a-%d", i)}))
	}

	attempts, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 3)

	// Oldest entries dropped.
	assert.Equal(t, "a-4", attempts[0].ID)
	assert.Equal(t, "a-2", attempts[2].ID)
}
