// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package provider

import (
	"sync"
	"time"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/draftforge-dev/draftforge/pkg/health"
)

// Defaults for the ledger's failure threshold and re-admission cooldown.
const (
	DefaultFailureThreshold = 3
	DefaultCooldown         = 10 * time.Minute
)

// rateLimitState tracks provider-side throttling. ResetAt is when the
// throttle window is expected to clear; Hits counts how many times the
// provider has been rate limited since process start.
type rateLimitState struct {
	resetAt time.Time
	hits    int
}

// record is the mutable health state for one provider. Zero time values mean
// "never". totalErrors is historical and survives cooldown recovery; only an
// administrative reset clears it.
type record struct {
	consecutiveFailures int
	totalErrors         int64
	enabled             bool
	available           bool
	lastError           string
	lastSuccessAt       time.Time
	lastFailureAt       time.Time
	rateLimit           *rateLimitState
}

// usable reports whether the provider can serve requests right now.
func (r *record) usable() bool {
	return r.available && r.enabled
}

// Ledger is the in-memory HealthStore implementation. One mutex guards all
// records: the provider count is small and calls are I/O-bound, so
// contention is negligible and per-record locking would buy nothing.
type Ledger struct {
	mu        sync.Mutex
	records   map[string]*record
	threshold int
	cooldown  time.Duration
	nowFunc   func() time.Time // for testing
}

// Compile-time check that Ledger implements HealthStore.
var _ HealthStore = (*Ledger)(nil)

// NewLedger creates an empty Ledger. Returns an error if threshold or
// cooldown is not positive.
func NewLedger(threshold int, cooldown time.Duration) (*Ledger, error) {
	if threshold <= 0 {
		return nil, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"failure threshold must be positive, got %d", threshold)
	}
	if cooldown <= 0 {
		return nil, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"cooldown must be positive, got %s", cooldown)
	}
	return &Ledger{
		records:   make(map[string]*record),
		threshold: threshold,
		cooldown:  cooldown,
		nowFunc:   time.Now,
	}, nil
}

// SetNowFunc overrides the time source (for testing).
func (l *Ledger) SetNowFunc(fn func() time.Time) {
	l.mu.Lock()
	l.nowFunc = fn
	l.mu.Unlock()
}

// Track creates the record for a provider. Records are created once at
// startup for every configured provider, including ones whose backend could
// not be constructed (available=false), and are never destroyed.
func (l *Ledger) Track(name string, available bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[name]; ok {
		return
	}
	l.records[name] = &record{enabled: true, available: available}
}

// View returns the selection-relevant state for one provider.
func (l *Ledger) View(name string) (HealthView, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return HealthView{}, false
	}
	return HealthView{
		Available:           rec.available,
		Enabled:             rec.enabled,
		ConsecutiveFailures: rec.consecutiveFailures,
		Eligible:            rec.usable() && rec.consecutiveFailures < l.threshold,
	}, true
}

// RecordSuccess resets consecutive-failure bookkeeping, stamps the success
// time, and re-enables the provider regardless of prior failure count.
func (l *Ledger) RecordSuccess(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return
	}
	rec.consecutiveFailures = 0
	rec.lastError = ""
	rec.lastFailureAt = time.Time{}
	rec.lastSuccessAt = l.nowFunc()
	rec.enabled = true
}

// RecordFailure increments the consecutive and lifetime counters, records
// the error and failure time, and disables the provider once consecutive
// failures reach the threshold. Below the threshold the provider stays in
// rotation: one soft failure does not remove it.
func (l *Ledger) RecordFailure(name, errText string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordFailureLocked(name, errText)
}

func (l *Ledger) recordFailureLocked(name, errText string) {
	rec, ok := l.records[name]
	if !ok {
		return
	}
	rec.consecutiveFailures++
	rec.totalErrors++
	rec.lastError = errText
	rec.lastFailureAt = l.nowFunc()
	if rec.consecutiveFailures >= l.threshold {
		rec.enabled = false
	}
}

// RecordRateLimit applies the stricter rate-limit path: the generic failure
// bookkeeping runs first, then the provider is disabled unconditionally. A
// throttle response is unambiguous proof of unavailability, so disablement
// is not threshold-gated.
func (l *Ledger) RecordRateLimit(name, errText string, override time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return
	}

	wait := rateLimitCooldown(errText, override)
	now := l.nowFunc()

	hits := 1
	if rec.rateLimit != nil {
		hits = rec.rateLimit.hits + 1
	}
	rec.rateLimit = &rateLimitState{resetAt: now.Add(wait), hits: hits}

	l.recordFailureLocked(name, errText)
	rec.enabled = false
	rec.lastFailureAt = now
}

// Reconcile re-admits every disabled or unavailable provider whose cooldown
// has elapsed. The wait is the configured cooldown, extended when a
// rate-limit record promises a later reset. Re-admission is a probe, not a
// health guarantee: the provider gets one attempt per cooldown window
// through ordinary selection.
func (l *Ledger) Reconcile() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	for _, rec := range l.records {
		if rec.usable() || rec.lastFailureAt.IsZero() {
			continue
		}

		wait := l.cooldown
		if rec.rateLimit != nil {
			if until := rec.rateLimit.resetAt.Sub(rec.lastFailureAt); until > wait {
				wait = until
			}
		}

		// Strictly more than the cooldown must have elapsed.
		if now.Sub(rec.lastFailureAt) <= wait {
			continue
		}

		rec.available = true
		rec.enabled = true
		rec.consecutiveFailures = 0
		rec.lastError = ""
		rec.lastFailureAt = time.Time{}
	}
}

// Revive is the global-exhaustion fallback: when no provider is eligible
// even after reconciliation, zero the consecutive-failure counters and
// re-enable every provider that is still available, so a transient outage
// hitting the whole fleet cannot deadlock the router. Lifetime error counts
// are preserved. This re-admits providers uninvolved in the current failure
// too, which can repeatedly probe a genuinely unhealthy backend; the trade
// is deliberate — the router always attempts a request when any provider
// was ever functional.
func (l *Ledger) Revive() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rec := range l.records {
		if !rec.available {
			continue
		}
		if rec.consecutiveFailures == 0 && rec.enabled {
			continue
		}
		rec.consecutiveFailures = 0
		rec.lastError = ""
		rec.lastFailureAt = time.Time{}
		rec.enabled = true
	}
}

// Reset is the administrative override: zero every counter including the
// lifetime total, clear the rate-limit record, and force-enable. available
// reflects whether the backend has a constructed capability to return to.
func (l *Ledger) Reset(name string, available bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return dferr.New(dferr.CodeProviderNotFound,
			"provider not tracked: "+name, dferr.FieldProvider(name))
	}

	rec.consecutiveFailures = 0
	rec.totalErrors = 0
	rec.lastError = ""
	rec.lastFailureAt = time.Time{}
	rec.rateLimit = nil
	rec.enabled = true
	rec.available = available
	return nil
}

// Snapshot returns a copy of the full record for status introspection.
func (l *Ledger) Snapshot(name string) (health.Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return health.Snapshot{}, false
	}

	snap := health.Snapshot{
		Provider:            name,
		Available:           rec.available,
		Enabled:             rec.enabled,
		ConsecutiveFailures: rec.consecutiveFailures,
		FailureThreshold:    l.threshold,
		TotalErrors:         rec.totalErrors,
		LastError:           rec.lastError,
	}
	if !rec.lastSuccessAt.IsZero() {
		t := rec.lastSuccessAt
		snap.LastSuccessAt = &t
	}
	if !rec.lastFailureAt.IsZero() {
		t := rec.lastFailureAt
		snap.LastFailureAt = &t
	}
	if rec.rateLimit != nil {
		t := rec.rateLimit.resetAt
		snap.RateLimitedUntil = &t
		snap.RateLimitHits = rec.rateLimit.hits
	}
	return snap, true
}
