// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

// Package groq talks to Groq's OpenAI-compatible API through the OpenAI SDK.
package groq

import (
	"context"

	"github.com/draftforge-dev/draftforge/internal/provider"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const baseURL = "https://api.groq.com/openai/v1"

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "llama-3.3-70b-versatile"

// Config holds Groq provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
	Model   string // optional, defaults to DefaultModel
}

// Provider implements provider.Provider using Groq's OpenAI-compatible API.
type Provider struct {
	client openaisdk.Client
	model  string
}

// New creates a new Groq provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, dferr.New(dferr.CodeProviderSetupFailure,
			"groq: missing api_key in config", dferr.FieldProvider("groq"))
	}

	base := baseURL
	if cfg.BaseURL != "" {
		base = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client := openaisdk.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
	)
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string  { return "groq" }
func (p *Provider) Model() string { return p.model }
func (p *Provider) Close() error  { return nil }

// Generate sends a single-turn chat completion and returns the first
// choice's content.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(req.Prompt),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", dferr.Wrapf(err, dferr.CodeProviderCallFailure, "groq: chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", dferr.New(dferr.CodeProviderEmptyResponse, "groq: completion has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
