// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package server

import (
	"context"

	"github.com/draftforge-dev/draftforge/internal/content"
	"github.com/draftforge-dev/draftforge/internal/provider"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/draftforge-dev/draftforge/pkg/health"
)

// RouterService is the routing engine surface the HTTP handlers need.
// *provider.Engine satisfies it.
type RouterService interface {
	Generate(ctx context.Context, req provider.Request) (*provider.Result, error)
	GenerateMany(ctx context.Context, requests []provider.BatchRequest) map[string]provider.BatchResult
	ProviderStatus() map[string]health.Snapshot
	ResetProviderErrors(name string) error
}

// ContentService builds deliverables. *content.Service satisfies it.
type ContentService interface {
	Build(ctx context.Context, kind content.Kind, brief content.Brief) (*content.Deliverable, error)
}

// Services holds dependencies injected into route handlers. Each field is
// an interface so subsystems can be mocked in tests.
type Services struct {
	router  RouterService
	content ContentService
}

// NewServices creates a Services instance with validation.
func NewServices(router RouterService, contentSvc ContentService) (*Services, error) {
	if router == nil {
		return nil, dferr.New(dferr.CodeServerConfigInvalid, "router service is required")
	}
	if contentSvc == nil {
		return nil, dferr.New(dferr.CodeServerConfigInvalid, "content service is required")
	}
	return &Services{router: router, content: contentSvc}, nil
}

// Router returns the routing engine service.
func (s *Services) Router() RouterService {
	return s.router
}

// Content returns the deliverable builder service.
func (s *Services) Content() ContentService {
	return s.content
}
