// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/draftforge-dev/draftforge/internal/content"
	"github.com/draftforge-dev/draftforge/internal/provider"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/draftforge-dev/draftforge/pkg/health"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	// Generation endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "generate",
		Method:      http.MethodPost,
		Path:        "/api/v1/generate",
		Summary:     "Generate text through the failover router",
		Tags:        []string{"generation"},
	}, s.handleGenerate)

	huma.Register(s.api, huma.Operation{
		OperationID: "generate-batch",
		Method:      http.MethodPost,
		Path:        "/api/v1/generate/batch",
		Summary:     "Generate a batch of requests in parallel",
		Tags:        []string{"generation"},
	}, s.handleGenerateBatch)

	// Provider administration
	huma.Register(s.api, huma.Operation{
		OperationID: "provider-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers",
		Summary:     "Provider status introspection",
		Tags:        []string{"providers"},
	}, s.handleProviderStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-provider",
		Method:      http.MethodPost,
		Path:        "/api/v1/providers/{name}/reset",
		Summary:     "Reset error counters for one provider",
		Tags:        []string{"providers"},
	}, s.handleResetProvider)

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-all-providers",
		Method:      http.MethodPost,
		Path:        "/api/v1/providers/reset",
		Summary:     "Reset error counters for all providers",
		Tags:        []string{"providers"},
	}, s.handleResetAllProviders)

	// Deliverable builders
	huma.Register(s.api, huma.Operation{
		OperationID: "build-deliverable",
		Method:      http.MethodPost,
		Path:        "/api/v1/deliverables/{kind}",
		Summary:     "Build a marketing deliverable",
		Tags:        []string{"deliverables"},
	}, s.handleBuildDeliverable)
}

// --- Request/Response types for huma ---

type generateInput struct {
	Body struct {
		Prompt      string  `json:"prompt" minLength:"1" doc:"Prompt text"`
		MaxTokens   int     `json:"max_tokens,omitempty" doc:"Output token budget; clamped to the provider cap"`
		Temperature float64 `json:"temperature,omitempty" doc:"Sampling temperature"`
	}
}
type generateOutput struct {
	Body provider.Result
}

type batchRequestBody struct {
	ID          string  `json:"id" minLength:"1" doc:"Caller-chosen request identifier"`
	Prompt      string  `json:"prompt" minLength:"1" doc:"Prompt text"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type generateBatchInput struct {
	Body struct {
		Requests []batchRequestBody `json:"requests" minItems:"1" doc:"Batch entries"`
	}
}

// batchEntry is the per-request outcome: a result or an error message.
type batchEntry struct {
	Result *provider.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type generateBatchOutput struct {
	Body struct {
		Results map[string]batchEntry `json:"results"`
	}
}

type providerStatusOutput struct {
	Body struct {
		Providers map[string]health.Snapshot `json:"providers"`
	}
}

type resetProviderInput struct {
	Name string `path:"name"`
}
type resetOutput struct {
	Body struct {
		Status string `json:"status" example:"reset"`
	}
}

type buildDeliverableInput struct {
	Kind string `path:"kind"`
	Body content.Brief
}
type buildDeliverableOutput struct {
	Body content.Deliverable
}

// --- Handlers ---

func (s *Server) handleGenerate(ctx context.Context, input *generateInput) (*generateOutput, error) {
	res, err := s.services.Router().Generate(ctx, provider.Request{
		Prompt:      input.Body.Prompt,
		MaxTokens:   input.Body.MaxTokens,
		Temperature: input.Body.Temperature,
	})
	if err != nil {
		return nil, humaError(err)
	}
	return &generateOutput{Body: *res}, nil
}

func (s *Server) handleGenerateBatch(ctx context.Context, input *generateBatchInput) (*generateBatchOutput, error) {
	seen := make(map[string]bool, len(input.Body.Requests))
	requests := make([]provider.BatchRequest, 0, len(input.Body.Requests))
	for _, req := range input.Body.Requests {
		if seen[req.ID] {
			return nil, huma.Error400BadRequest("duplicate batch request id: " + req.ID)
		}
		seen[req.ID] = true
		requests = append(requests, provider.BatchRequest{
			ID:          req.ID,
			Prompt:      req.Prompt,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
	}

	results := s.services.Router().GenerateMany(ctx, requests)

	out := &generateBatchOutput{}
	out.Body.Results = make(map[string]batchEntry, len(results))
	for id, br := range results {
		entry := batchEntry{Result: br.Result}
		if br.Err != nil {
			entry.Error = br.Err.Error()
		}
		out.Body.Results[id] = entry
	}
	return out, nil
}

func (s *Server) handleProviderStatus(_ context.Context, _ *struct{}) (*providerStatusOutput, error) {
	out := &providerStatusOutput{}
	out.Body.Providers = s.services.Router().ProviderStatus()
	return out, nil
}

func (s *Server) handleResetProvider(_ context.Context, input *resetProviderInput) (*resetOutput, error) {
	if err := s.services.Router().ResetProviderErrors(input.Name); err != nil {
		return nil, humaError(err)
	}
	out := &resetOutput{}
	out.Body.Status = "reset"
	return out, nil
}

func (s *Server) handleResetAllProviders(_ context.Context, _ *struct{}) (*resetOutput, error) {
	if err := s.services.Router().ResetProviderErrors(""); err != nil {
		return nil, humaError(err)
	}
	out := &resetOutput{}
	out.Body.Status = "reset"
	return out, nil
}

func (s *Server) handleBuildDeliverable(ctx context.Context, input *buildDeliverableInput) (*buildDeliverableOutput, error) {
	d, err := s.services.Content().Build(ctx, content.Kind(input.Kind), input.Body)
	if err != nil {
		return nil, humaError(err)
	}
	return &buildDeliverableOutput{Body: *d}, nil
}

// humaError converts a coded error into the matching huma status error.
func humaError(err error) error {
	switch dferr.HTTPStatus(err) {
	case http.StatusBadRequest:
		return huma.Error400BadRequest(err.Error())
	case http.StatusNotFound:
		return huma.Error404NotFound(err.Error())
	case http.StatusConflict:
		return huma.Error409Conflict(err.Error())
	case http.StatusTooManyRequests:
		return huma.Error429TooManyRequests(err.Error())
	case http.StatusServiceUnavailable:
		return huma.Error503ServiceUnavailable(err.Error())
	case http.StatusGatewayTimeout:
		return huma.Error504GatewayTimeout(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
