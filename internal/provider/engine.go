// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package provider

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/draftforge-dev/draftforge/internal/store"
	"github.com/draftforge-dev/draftforge/internal/tokens"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/draftforge-dev/draftforge/pkg/health"
)

// Engine defaults.
const (
	DefaultAttemptTimeout = 2 * time.Minute
	DefaultBatchTimeout   = 10 * time.Minute
	DefaultMaxParallel    = 4
)

// EngineConfig tunes the dispatch engine. Zero values take the defaults.
type EngineConfig struct {
	AttemptTimeout time.Duration // per provider invocation
	BatchTimeout   time.Duration // whole GenerateMany batch
	MaxParallel    int           // concurrent requests in a batch
}

func (c *EngineConfig) applyDefaults() {
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.MaxParallel <= 0 {
		c.MaxParallel = DefaultMaxParallel
	}
}

// Engine orchestrates logical generation requests: it reconciles cooldowns,
// selects the best eligible backend, invokes it, converts failures into
// ledger updates, and retries with the failed backend excluded until the
// request succeeds or every registered backend has been tried once.
type Engine struct {
	registry  *Registry
	ledger    HealthStore
	audit     store.AuditLog    // optional
	estimator *tokens.Estimator // optional, heuristic fallback when nil
	cfg       EngineConfig
}

// NewEngine creates an Engine. audit may be nil to disable the attempt log.
// Token counting uses the word heuristic until SetEstimator installs a real
// encoding.
func NewEngine(registry *Registry, ledger HealthStore, audit store.AuditLog, cfg EngineConfig) *Engine {
	cfg.applyDefaults()
	return &Engine{
		registry:  registry,
		ledger:    ledger,
		audit:     audit,
		estimator: &tokens.Estimator{},
		cfg:       cfg,
	}
}

// SetEstimator replaces the token estimator.
func (e *Engine) SetEstimator(est *tokens.Estimator) {
	if est != nil {
		e.estimator = est
	}
}

// Generate runs one logical request through the failover protocol. It
// returns the terminal no-provider error only when every backend has been
// tried or nothing is eligible; individual backend failures never
// propagate. Ledger mutations made here are visible to concurrent and
// subsequent requests by design.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, dferr.New(dferr.CodeProviderRequestInvalid, "prompt is required")
	}

	requestID := uuid.NewString()
	tried := make(map[string]bool)
	total := e.registry.Len()

	for len(tried) < total {
		name, ok := e.selectWithRecovery(tried)
		if !ok {
			return nil, e.exhausted(requestID, tried)
		}

		reg, err := e.registry.Get(name)
		if err != nil {
			return nil, err
		}
		tried[name] = true

		started := time.Now()
		text, err := e.invoke(ctx, reg, req)
		elapsed := time.Since(started)

		// An empty response is a failure: the backend contract requires
		// non-empty text or an error, never both absent.
		if err == nil && strings.TrimSpace(text) == "" {
			err = dferr.New(dferr.CodeProviderEmptyResponse,
				"empty response from provider", dferr.FieldProvider(name))
		}

		if err != nil {
			e.recordFailure(ctx, requestID, reg, err, elapsed)
			continue
		}

		approx := e.estimator.Count(text)
		e.ledger.RecordSuccess(name)
		e.recordAttempt(ctx, store.Attempt{
			ID:           uuid.NewString(),
			RequestID:    requestID,
			Provider:     name,
			Model:        reg.Model,
			OK:           true,
			ApproxTokens: approx,
			Duration:     elapsed,
		})
		slog.Info("generation succeeded",
			"request_id", requestID,
			"provider", name,
			"approx_tokens", approx,
		)

		return &Result{
			RequestID:    requestID,
			Text:         text,
			Provider:     name,
			Model:        reg.Model,
			ApproxTokens: approx,
		}, nil
	}

	return nil, e.exhausted(requestID, tried)
}

// selectWithRecovery reconciles cooldowns and selects the best eligible
// backend. The global-exhaustion revive runs only at initial selection,
// never mid-request: once anything has been tried, an empty selection
// means the remaining backends are still inside a rate-limit window or
// failure cooldown, and they stay isolated.
func (e *Engine) selectWithRecovery(exclude map[string]bool) (string, bool) {
	e.ledger.Reconcile()

	if name, ok := SelectBest(e.registry.All(), e.ledger, exclude); ok {
		return name, true
	}
	if len(exclude) > 0 {
		return "", false
	}

	e.ledger.Revive()
	return SelectBest(e.registry.All(), e.ledger, exclude)
}

// invoke calls the backend with the request's token budget clamped to the
// backend's cap and a per-attempt timeout so one slow provider cannot
// stall the caller indefinitely.
func (e *Engine) invoke(ctx context.Context, reg Registration, req Request) (string, error) {
	if !reg.Constructed() {
		return "", dferr.New(dferr.CodeProviderCallFailure,
			"provider has no constructed backend", dferr.FieldProvider(reg.Name))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 || maxTokens > reg.MaxOutputTokens {
		maxTokens = reg.MaxOutputTokens
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	return reg.Capability.Generate(callCtx, Request{
		Prompt:      req.Prompt,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
}

// recordFailure classifies the error, updates the ledger, and writes the
// audit row. Rate-limit errors take the stricter disablement path.
func (e *Engine) recordFailure(ctx context.Context, requestID string, reg Registration, err error, elapsed time.Duration) {
	errText := err.Error()
	code := dferr.CodeOf(err)

	if dferr.HasCode(err, dferr.CodeProviderEmptyResponse) {
		e.ledger.RecordFailure(reg.Name, errText)
	} else if IsRateLimitError(errText) {
		code = dferr.CodeProviderRateLimited
		e.ledger.RecordRateLimit(reg.Name, errText, 0)
	} else {
		if code == "" {
			code = dferr.CodeProviderCallFailure
		}
		e.ledger.RecordFailure(reg.Name, errText)
	}

	slog.Warn("generation attempt failed",
		"request_id", requestID,
		"provider", reg.Name,
		"code", string(code),
		"error", errText,
	)

	e.recordAttempt(ctx, store.Attempt{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Provider:  reg.Name,
		Model:     reg.Model,
		OK:        false,
		ErrorCode: string(code),
		ErrorText: errText,
		Duration:  elapsed,
	})
}

func (e *Engine) recordAttempt(ctx context.Context, attempt store.Attempt) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Record(ctx, attempt); err != nil {
		slog.Warn("failed to record generation attempt", "error", err)
	}
}

func (e *Engine) exhausted(requestID string, tried map[string]bool) error {
	slog.Error("no provider available",
		"request_id", requestID,
		"tried", len(tried),
		"registered", e.registry.Len(),
	)
	return dferr.New(dferr.CodeProviderNoneAvailable,
		"no provider available", dferr.FieldRequestID(requestID))
}

// BatchRequest is one entry in a parallel fan-out.
type BatchRequest struct {
	ID          string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// BatchResult is the per-request outcome of a fan-out. Exactly one of
// Result and Err is set.
type BatchResult struct {
	Result *Result
	Err    error
}

// GenerateMany dispatches every request concurrently through the
// single-request protocol against the shared ledger, so a backend failing
// under load is disabled for sibling requests still in flight. The batch
// waits at most the configured batch timeout; requests still pending are
// reported as timeouts but their underlying calls are not cancelled — they
// complete in the background and their ledger updates still land.
func (e *Engine) GenerateMany(ctx context.Context, requests []BatchRequest) map[string]BatchResult {
	var mu sync.Mutex
	completed := make(map[string]BatchResult, len(requests))

	// Workers run on a detached context: abandoning the batch must not
	// cancel calls already issued.
	callCtx := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.MaxParallel)
	for _, req := range requests {
		g.Go(func() error {
			res, err := e.Generate(callCtx, Request{
				Prompt:      req.Prompt,
				MaxTokens:   req.MaxTokens,
				Temperature: req.Temperature,
			})
			mu.Lock()
			completed[req.ID] = BatchResult{Result: res, Err: err}
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	timer := time.NewTimer(e.cfg.BatchTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		slog.Warn("batch timeout elapsed with requests still pending",
			"batch_size", len(requests))
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()

	out := make(map[string]BatchResult, len(requests))
	for _, req := range requests {
		if br, ok := completed[req.ID]; ok {
			out[req.ID] = br
			continue
		}
		out[req.ID] = BatchResult{Err: dferr.New(dferr.CodeProviderBatchTimeout,
			"request still pending when batch deadline elapsed",
			dferr.Field("batch_request_id", req.ID))}
	}
	return out
}

// ProviderStatus returns the status introspection map: one snapshot per
// registered provider, merging the static registry description with the
// live ledger record.
func (e *Engine) ProviderStatus() map[string]health.Snapshot {
	out := make(map[string]health.Snapshot, e.registry.Len())
	for _, reg := range e.registry.All() {
		snap, ok := e.ledger.Snapshot(reg.Name)
		if !ok {
			continue
		}
		snap.Model = reg.Model
		snap.PriorityRank = reg.Rank
		out[reg.Name] = snap
	}
	return out
}

// ResetProviderErrors is the administrative override: zero counters and
// force-enable one provider, or every provider when name is empty. A
// backend is only marked available again when it actually has a
// constructed capability to return to.
func (e *Engine) ResetProviderErrors(name string) error {
	if name != "" {
		reg, err := e.registry.Get(name)
		if err != nil {
			return err
		}
		slog.Info("resetting provider errors", "provider", name)
		return e.ledger.Reset(name, reg.Constructed())
	}

	for _, reg := range e.registry.All() {
		if err := e.ledger.Reset(reg.Name, reg.Constructed()); err != nil {
			return err
		}
	}
	slog.Info("reset errors for all providers", "count", e.registry.Len())
	return nil
}
