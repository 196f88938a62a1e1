// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/draftforge-dev/draftforge/internal/config"
	"github.com/draftforge-dev/draftforge/internal/provider"
	"github.com/draftforge-dev/draftforge/pkg/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGatewayConfig(groqEndpoint string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Listen: "127.0.0.1:0"},
		Providers: map[string]config.ProviderConfig{
			"groq":   {APIKey: "test-key", Endpoint: groqEndpoint, Priority: 1},
			"openai": {Priority: 2}, // no API key, stays unconstructed
		},
		Router: config.RouterConfig{
			FailureThreshold: 3,
			Cooldown:         10 * time.Minute,
		},
		Storage: config.StorageConfig{Backend: "memory"},
	}
}

// newUpstream fakes an OpenAI-compatible chat completion endpoint.
func newUpstream(t *testing.T, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": text}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWireGateway(t *testing.T) {
	upstream := newUpstream(t, "hello from groq")
	cfg := testGatewayConfig(upstream.URL)

	gw, err := WireGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	assert.NotNil(t, gw.Server)
	assert.NotNil(t, gw.Engine)
	assert.NotNil(t, gw.Ledger)
	assert.NotNil(t, gw.Audit)
	assert.Equal(t, 2, gw.Registry.Len())
}

func TestWireGateway_GenerateEndToEnd(t *testing.T) {
	upstream := newUpstream(t, "hello from groq")
	cfg := testGatewayConfig(upstream.URL)

	gw, err := WireGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	gw.Server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res provider.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "hello from groq", res.Text)
	assert.Equal(t, "groq", res.Provider)
}

func TestWireGateway_ProviderStatusShowsUnconstructed(t *testing.T) {
	upstream := newUpstream(t, "x")
	cfg := testGatewayConfig(upstream.URL)

	gw, err := WireGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	w := httptest.NewRecorder()
	gw.Server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Providers map[string]health.Snapshot `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Providers, 2)
	assert.True(t, body.Providers["groq"].Usable())
	assert.False(t, body.Providers["openai"].Available, "provider without an API key must not be selectable")
}

func TestWireGateway_DeliverableFallsBackWithoutUpstream(t *testing.T) {
	// Upstream that always fails, so the deliverable builder degrades to
	// its embedded template.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad request"}}`))
	}))
	t.Cleanup(srv.Close)
	cfg := testGatewayConfig(srv.URL)

	gw, err := WireGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliverables/positioning",
		strings.NewReader(`{"segment":"bakeries","product":"sourdough kits"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	gw.Server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"fallback":true`)
	assert.Contains(t, w.Body.String(), "bakeries")
}

func TestGateway_GracefulShutdown(t *testing.T) {
	upstream := newUpstream(t, "x")
	cfg := testGatewayConfig(upstream.URL)

	gw, err := WireGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Start and immediately cancel — should shut down cleanly.
	err = gw.Start(ctx)
	assert.NoError(t, err)
}
