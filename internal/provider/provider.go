// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package provider

import (
	"context"
	"time"

	"github.com/draftforge-dev/draftforge/pkg/health"
)

// Provider is the capability contract every LLM backend implements: attempt
// one generation and either return non-empty text or an error. Backends must
// signal failures as errors, never as sentinel return values; an empty string
// that slips through is treated as a failure by the dispatch engine.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// Request is a single generation request as seen by a backend. MaxTokens is
// already clamped to the backend's output cap by the time it arrives here.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Result is the outcome of a successful dispatch.
type Result struct {
	RequestID    string `json:"request_id"`
	Text         string `json:"text"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	ApproxTokens int    `json:"approx_tokens"`
}

// HealthView is the slice of ledger state the selector consults. Eligible
// folds in the consecutive-failure threshold so selection cannot drift from
// the ledger's disablement rule.
type HealthView struct {
	Available           bool
	Enabled             bool
	ConsecutiveFailures int
	Eligible            bool
}

// HealthStore is the mutable per-provider health ledger shared by every
// request path. Implementations must make each read-modify-write on a single
// provider's record atomic with respect to concurrent updates; selection
// reads may observe a snapshot that is stale by one update.
type HealthStore interface {
	// Track creates the record for a provider at startup. available=false
	// marks a backend that was never successfully constructed.
	Track(name string, available bool)

	// View returns the selection-relevant state for one provider.
	View(name string) (HealthView, bool)

	// RecordSuccess resets consecutive-failure bookkeeping and re-enables
	// the provider regardless of prior failure count.
	RecordSuccess(name string)

	// RecordFailure increments the consecutive and lifetime counters and
	// disables the provider once the threshold is crossed.
	RecordFailure(name, errText string)

	// RecordRateLimit applies the stricter rate-limit path: failure
	// bookkeeping plus immediate disablement and a reset window derived
	// from the error text (or the explicit override when positive).
	RecordRateLimit(name, errText string, override time.Duration)

	// Reconcile re-admits disabled or unavailable providers whose cooldown
	// has elapsed. Called before every selection attempt.
	Reconcile()

	// Revive is the global-exhaustion fallback: zero consecutive failures
	// and re-enable every provider that is still available. Lifetime error
	// counts are preserved.
	Revive()

	// Reset is the administrative override: zero all counters, including
	// the lifetime count, and force-enable. available reflects whether the
	// backend has a constructed capability to return to.
	Reset(name string, available bool) error

	// Snapshot returns the full record for status introspection. Registry
	// fields (model, rank) are filled in by the caller.
	Snapshot(name string) (health.Snapshot, bool)
}
