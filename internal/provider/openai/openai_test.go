// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package openai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/draftforge-dev/draftforge/internal/provider"
	"github.com/draftforge-dev/draftforge/internal/provider/openai"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*openai.Provider)(nil)

func TestOpenAIProvider_MissingAPIKey(t *testing.T) {
	_, err := openai.New(openai.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.True(t, dferr.HasCode(err, dferr.CodeProviderSetupFailure))
}

func TestOpenAIProvider_NameAndModel(t *testing.T) {
	p, err := openai.New(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, openai.DefaultModel, p.Model())
	assert.NoError(t, p.Close())

	p, err = openai.New(openai.Config{APIKey: "test-key", Model: "gpt-4.1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", p.Model())
}

func TestOpenAIProvider_GenerateAgainstMockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"model": "gpt-4.1-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "mocked reply"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8}
		}`))
	}))
	defer server.Close()

	p, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), provider.Request{Prompt: "hello", MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "mocked reply", text)
}

func TestOpenAIProvider_GenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"invalid_request_error","message":"boom"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	p, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), provider.Request{Prompt: "hello"})
	require.Error(t, err)
	assert.True(t, dferr.HasCode(err, dferr.CodeProviderCallFailure))
}

func TestOpenAIProvider_GenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-test", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	p, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), provider.Request{Prompt: "hello"})
	require.Error(t, err)
	assert.True(t, dferr.HasCode(err, dferr.CodeProviderEmptyResponse))
	assert.Empty(t, text)
}
