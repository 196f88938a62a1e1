// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package openai

import (
	"context"

	"github.com/draftforge-dev/draftforge/internal/provider"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gpt-4.1-mini"

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
	Model   string // optional, defaults to DefaultModel
}

// Provider implements provider.Provider using the OpenAI Chat Completions API.
type Provider struct {
	client openaisdk.Client
	model  string
}

// New creates a new OpenAI provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, dferr.New(dferr.CodeProviderSetupFailure,
			"openai: missing api_key in config", dferr.FieldProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client: openaisdk.NewClient(opts...),
		model:  model,
	}, nil
}

func (p *Provider) Name() string  { return "openai" }
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
		return "", dferr.Wrapf(err, dferr.CodeProviderCallFailure, "openai: chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", dferr.New(dferr.CodeProviderEmptyResponse, "openai: completion has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
