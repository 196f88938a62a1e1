// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

// Package content builds structured marketing deliverables on top of the
// routing engine. Each builder constructs a prompt for its deliverable
// kind, asks the router for a JSON document, validates the result, and
// falls back to an embedded static template when generation fails or the
// output is unusable.
package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/draftforge-dev/draftforge/internal/provider"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

// Kind identifies a deliverable builder.
type Kind string

const (
	KindActionPlan  Kind = "action-plan"
	KindKeywords    Kind = "keywords"
	KindPositioning Kind = "positioning"
	KindVisualProof Kind = "visual-proof"
)

// Kinds lists every registered deliverable kind.
func Kinds() []Kind {
	return []Kind{KindActionPlan, KindKeywords, KindPositioning, KindVisualProof}
}

// Brief is the business context every builder works from.
type Brief struct {
	Segment string `json:"segment"`
	Product string `json:"product"`
	// Concept narrows visual-proof briefs to one claim to demonstrate.
	Concept string `json:"concept,omitempty"`
}

// Deliverable is a built document plus its provenance.
type Deliverable struct {
	Kind        Kind           `json:"kind"`
	RequestID   string         `json:"request_id,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	Model       string         `json:"model,omitempty"`
	Fallback    bool           `json:"fallback"`
	Payload     map[string]any `json:"payload"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Generator is the slice of the routing engine builders need.
type Generator interface {
	Generate(ctx context.Context, req provider.Request) (*provider.Result, error)
}

// builder couples a prompt constructor with its output contract.
type builder struct {
	prompt       func(Brief) string
	requiredKeys []string
	maxTokens    int
}

// Service dispatches deliverable builds by kind.
type Service struct {
	gen      Generator
	builders map[Kind]builder
}

// NewService creates a Service over the given generator.
func NewService(gen Generator) *Service {
	return &Service{
		gen: gen,
		builders: map[Kind]builder{
			KindActionPlan: {
				prompt:       actionPlanPrompt,
				requiredKeys: []string{"plan_90_days", "milestones", "critical_resources", "risks"},
				maxTokens:    2000,
			},
			KindKeywords: {
				prompt:       keywordsPrompt,
				requiredKeys: []string{"primary_keywords", "secondary_keywords", "long_tail_keywords", "content_strategy"},
				maxTokens:    2000,
			},
			KindPositioning: {
				prompt:       positioningPrompt,
				requiredKeys: []string{"value_proposition", "differentiators", "core_message", "brand_architecture"},
				maxTokens:    1500,
			},
			KindVisualProof: {
				prompt:       visualProofPrompt,
				requiredKeys: []string{"name", "target_concept", "proof_type", "experiment", "materials", "script", "success_metrics"},
				maxTokens:    1000,
			},
		},
	}
}

// Build produces the deliverable for kind. Generation failures and
// unusable model output degrade to the embedded fallback template rather
// than erroring: a deliverable is always returned for a known kind.
func (s *Service) Build(ctx context.Context, kind Kind, brief Brief) (*Deliverable, error) {
	b, ok := s.builders[kind]
	if !ok {
		return nil, dferr.Errorf(dferr.CodeContentKindUnknown, "unknown deliverable kind %q", kind)
	}
	if brief.Segment == "" && brief.Product == "" {
		return nil, dferr.New(dferr.CodeContentParseInvalid,
			"brief requires a segment or a product", dferr.FieldDeliverable(string(kind)))
	}

	res, err := s.gen.Generate(ctx, provider.Request{
		Prompt:    b.prompt(brief),
		MaxTokens: b.maxTokens,
	})
	if err != nil {
		slog.Warn("generation failed, using fallback deliverable",
			"kind", string(kind), "error", err)
		return s.fallback(kind, brief)
	}

	payload, err := ExtractJSON(res.Text)
	if err != nil {
		slog.Warn("model output is not usable JSON, using fallback deliverable",
			"kind", string(kind), "request_id", res.RequestID, "error", err)
		return s.fallback(kind, brief)
	}

	if missing := missingKeys(payload, b.requiredKeys); len(missing) > 0 {
		slog.Warn("model output is missing required keys, using fallback deliverable",
			"kind", string(kind), "request_id", res.RequestID, "missing", missing)
		return s.fallback(kind, brief)
	}

	return &Deliverable{
		Kind:        kind,
		RequestID:   res.RequestID,
		Provider:    res.Provider,
		Model:       res.Model,
		Payload:     payload,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) fallback(kind Kind, brief Brief) (*Deliverable, error) {
	payload, err := FallbackPayload(kind, brief)
	if err != nil {
		return nil, err
	}
	return &Deliverable{
		Kind:        kind,
		Fallback:    true,
		Payload:     payload,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func missingKeys(payload map[string]any, required []string) []string {
	var missing []string
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
