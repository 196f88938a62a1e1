// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package health

import "time"

// Snapshot exposes the point-in-time health state of a single provider for
// monitoring and operator visibility. All fields are copies safe to
// serialize to JSON; none reference live ledger state.
type Snapshot struct {
	Provider            string     `json:"provider"`
	Model               string     `json:"model"`
	PriorityRank        int        `json:"priority_rank"`
	Available           bool       `json:"available"`
	Enabled             bool       `json:"enabled"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	FailureThreshold    int        `json:"failure_threshold"`
	TotalErrors         int64      `json:"total_errors"`
	LastError           string     `json:"last_error,omitempty"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	RateLimitedUntil    *time.Time `json:"rate_limited_until,omitempty"`
	RateLimitHits       int        `json:"rate_limit_hits,omitempty"`
}

// Usable reports whether the provider can currently serve requests: it must
// be both statically available and dynamically enabled.
func (s Snapshot) Usable() bool {
	return s.Available && s.Enabled
}
