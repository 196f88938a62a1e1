// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/draftforge-dev/draftforge/internal/provider"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gemini-2.0-flash"

// Config holds Google Gemini provider configuration.
type Config struct {
	APIKey string
	Model  string // optional, defaults to DefaultModel
}

// Provider implements provider.Provider using the Google Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, dferr.New(dferr.CodeProviderSetupFailure,
			"gemini: missing api_key in config", dferr.FieldProvider("gemini"))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, dferr.Wrapf(err, dferr.CodeProviderSetupFailure, "gemini: creating client")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string  { return "gemini" }
func (p *Provider) Model() string { return p.model }
func (p *Provider) Close() error  { return nil }

// Generate sends a single-turn content request and returns the response
// text parts joined together.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", dferr.Wrapf(err, dferr.CodeProviderCallFailure, "gemini: generate content")
	}
	return resp.Text(), nil
}
