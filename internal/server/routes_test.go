// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/draftforge-dev/draftforge/internal/content"
	"github.com/draftforge-dev/draftforge/internal/provider"
	"github.com/draftforge-dev/draftforge/internal/server"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/draftforge-dev/draftforge/pkg/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRouterService is a scriptable RouterService.
type mockRouterService struct {
	generateErr error
	resetErr    error
	lastReset   string
}

func (m *mockRouterService) Generate(_ context.Context, req provider.Request) (*provider.Result, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &provider.Result{
		RequestID:    "req-1",
		Text:         "generated for: " + req.Prompt,
		Provider:     "gemini",
		Model:        "gemini-2.0-flash",
		ApproxTokens: 4,
	}, nil
}

func (m *mockRouterService) GenerateMany(ctx context.Context, requests []provider.BatchRequest) map[string]provider.BatchResult {
	out := make(map[string]provider.BatchResult, len(requests))
	for _, req := range requests {
		res, err := m.Generate(ctx, provider.Request{Prompt: req.Prompt})
		out[req.ID] = provider.BatchResult{Result: res, Err: err}
	}
	return out
}

func (m *mockRouterService) ProviderStatus() map[string]health.Snapshot {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return map[string]health.Snapshot{
		"gemini": {Provider: "gemini", Model: "gemini-2.0-flash", PriorityRank: 1, Available: true, Enabled: true, LastSuccessAt: &now},
		"groq":   {Provider: "groq", Model: "llama-3.3-70b-versatile", PriorityRank: 2, Available: true, Enabled: false, ConsecutiveFailures: 3, LastError: "boom"},
	}
}

func (m *mockRouterService) ResetProviderErrors(name string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.lastReset = name
	return nil
}

// mockContentService builds a fixed deliverable.
type mockContentService struct{}

func (m *mockContentService) Build(_ context.Context, kind content.Kind, brief content.Brief) (*content.Deliverable, error) {
	known := map[content.Kind]bool{}
	for _, k := range content.Kinds() {
		known[k] = true
	}
	if !known[kind] {
		return nil, dferr.Errorf(dferr.CodeContentKindUnknown, "unknown deliverable kind %q", kind)
	}
	if brief.Segment == "" && brief.Product == "" {
		return nil, dferr.New(dferr.CodeContentParseInvalid, "brief requires a segment or a product")
	}
	return &content.Deliverable{
		Kind:     kind,
		Provider: "gemini",
		Payload:  map[string]any{"core_message": "Transform " + brief.Segment},
	}, nil
}

func newTestServer(t *testing.T, router server.RouterService) *server.Server {
	t.Helper()
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	require.NoError(t, err)

	svc, err := server.NewServices(router, &mockContentService{})
	require.NoError(t, err)
	srv.RegisterServices(svc)
	return srv
}

func doRequest(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/generate", `{"prompt": "write a tagline"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res provider.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, "generated for: write a tagline", res.Text)
	assert.Equal(t, "req-1", res.RequestID)
}

func TestGenerate_EmptyPromptRejected(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/generate", `{"prompt": ""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerate_NoProviderAvailable(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{
		generateErr: dferr.New(dferr.CodeProviderNoneAvailable, "no provider available"),
	})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/generate", `{"prompt": "hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no provider available")
}

func TestGenerateBatch(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/generate/batch",
		`{"requests": [{"id": "a", "prompt": "first"}, {"id": "b", "prompt": "second"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Results map[string]struct {
			Result *provider.Result `json:"result"`
			Error  string           `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "generated for: first", out.Results["a"].Result.Text)
	assert.Empty(t, out.Results["a"].Error)
}

func TestGenerateBatch_DuplicateIDs(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/generate/batch",
		`{"requests": [{"id": "a", "prompt": "x"}, {"id": "a", "prompt": "y"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate batch request id")
}

func TestProviderStatus(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Providers map[string]health.Snapshot `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Providers, 2)
	assert.True(t, out.Providers["gemini"].Usable())
	assert.False(t, out.Providers["groq"].Enabled)
	assert.Equal(t, "boom", out.Providers["groq"].LastError)
}

func TestResetProvider(t *testing.T) {
	router := &mockRouterService{}
	srv := newTestServer(t, router)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/providers/gemini/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gemini", router.lastReset)
	assert.Contains(t, rec.Body.String(), `"status":"reset"`)
}

func TestResetProvider_Unknown(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{
		resetErr: dferr.New(dferr.CodeProviderNotFound, "provider not found: nope"),
	})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/providers/nope/reset", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetAllProviders(t *testing.T) {
	router := &mockRouterService{lastReset: "sentinel"}
	srv := newTestServer(t, router)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/providers/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", router.lastReset)
}

func TestBuildDeliverable(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/deliverables/positioning",
		`{"segment": "fitness studios", "product": "scheduling app"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var d content.Deliverable
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, content.KindPositioning, d.Kind)
	assert.Equal(t, "Transform fitness studios", d.Payload["core_message"])
}

func TestBuildDeliverable_UnknownKind(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/deliverables/press-release",
		`{"segment": "x", "product": "y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildDeliverable_EmptyBrief(t *testing.T) {
	srv := newTestServer(t, &mockRouterService{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/deliverables/keywords", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewServices_Validation(t *testing.T) {
	_, err := server.NewServices(nil, &mockContentService{})
	require.Error(t, err)
	assert.True(t, dferr.HasCode(err, dferr.CodeServerConfigInvalid))

	_, err = server.NewServices(&mockRouterService{}, nil)
	require.Error(t, err)
}

func TestNew_RequiresListenAddr(t *testing.T) {
	_, err := server.New(server.Config{})
	require.Error(t, err)
	assert.True(t, dferr.HasCode(err, dferr.CodeServerConfigInvalid))
}
