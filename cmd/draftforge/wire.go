// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/draftforge-dev/draftforge/internal/config"
	"github.com/draftforge-dev/draftforge/internal/content"
	"github.com/draftforge-dev/draftforge/internal/provider"
	anthropicprov "github.com/draftforge-dev/draftforge/internal/provider/anthropic"
	googleprov "github.com/draftforge-dev/draftforge/internal/provider/google"
	groqprov "github.com/draftforge-dev/draftforge/internal/provider/groq"
	openaiprov "github.com/draftforge-dev/draftforge/internal/provider/openai"
	"github.com/draftforge-dev/draftforge/internal/server"
	"github.com/draftforge-dev/draftforge/internal/store"
	sqliteaudit "github.com/draftforge-dev/draftforge/internal/store/sqlite"
	"github.com/draftforge-dev/draftforge/internal/tokens"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

// defaultMaxOutputTokens caps provider output when the configuration does
// not set a per-provider budget.
const defaultMaxOutputTokens = 8192

// Gateway holds all wired subsystems and manages their lifecycle.
type Gateway struct {
	Server   *server.Server
	Engine   *provider.Engine
	Registry *provider.Registry
	Ledger   *provider.Ledger
	Audit    store.AuditLog
}

// WireGateway creates all subsystems and wires them together.
func WireGateway(_ context.Context, cfg *config.Config) (*Gateway, error) {
	// 1. Attempt audit log.
	audit, err := newAuditLog(cfg.Storage)
	if err != nil {
		return nil, dferr.Wrapf(err, dferr.CodeCLISetupFailure, "creating audit log")
	}

	// 2. Provider registry and health ledger.
	registry := provider.NewRegistry()
	ledger, err := provider.NewLedger(cfg.Router.FailureThreshold, cfg.Router.Cooldown)
	if err != nil {
		_ = audit.Close()
		return nil, dferr.Wrapf(err, dferr.CodeCLISetupFailure, "creating health ledger")
	}
	if err := registerConfiguredBackends(cfg, registry, ledger); err != nil {
		_ = audit.Close()
		return nil, err
	}

	// 3. Failover engine.
	engine := provider.NewEngine(registry, ledger, audit, provider.EngineConfig{
		AttemptTimeout: cfg.Router.AttemptTimeout,
		BatchTimeout:   cfg.Router.Batch.Timeout,
		MaxParallel:    cfg.Router.Batch.MaxParallel,
	})
	engine.SetEstimator(tokens.NewEstimator())

	// 4. Deliverable builders run on top of the engine.
	contentSvc := content.NewService(engine)

	// 5. HTTP server.
	srv, err := server.New(server.Config{ListenAddr: cfg.Server.Listen})
	if err != nil {
		_ = audit.Close()
		return nil, dferr.Wrapf(err, dferr.CodeCLISetupFailure, "creating server")
	}
	services, err := server.NewServices(engine, contentSvc)
	if err != nil {
		_ = audit.Close()
		return nil, dferr.Wrapf(err, dferr.CodeCLISetupFailure, "creating services")
	}
	srv.RegisterServices(services)

	return &Gateway{
		Server:   srv,
		Engine:   engine,
		Registry: registry,
		Ledger:   ledger,
		Audit:    audit,
	}, nil
}

// Start runs the HTTP server and blocks until the context is cancelled.
func (gw *Gateway) Start(ctx context.Context) error {
	return gw.Server.Start(ctx)
}

// Close releases all resources held by the gateway.
func (gw *Gateway) Close() error {
	type closer interface{ Close() error }
	closers := []closer{gw.Registry, gw.Audit}

	var errs []error
	for _, c := range closers {
		if c != nil {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func newAuditLog(cfg config.StorageConfig) (store.AuditLog, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryAuditLog(store.DefaultMemoryAuditCap), nil
	default:
		return sqliteaudit.NewAuditLog(cfg.Path)
	}
}

// backendFactory builds a provider.Provider from a ProviderConfig.
type backendFactory func(config.ProviderConfig) (provider.Provider, error)

// builtinBackendFactories maps provider names to their constructors.
// Declared as a variable so tests can inject failing factories.
var builtinBackendFactories = map[string]backendFactory{
	"gemini": func(pc config.ProviderConfig) (provider.Provider, error) {
		return googleprov.New(googleprov.Config{APIKey: pc.APIKey, Model: pc.Model})
	},
	"groq": func(pc config.ProviderConfig) (provider.Provider, error) {
		return groqprov.New(groqprov.Config{APIKey: pc.APIKey, BaseURL: pc.Endpoint, Model: pc.Model})
	},
	"openai": func(pc config.ProviderConfig) (provider.Provider, error) {
		return openaiprov.New(openaiprov.Config{APIKey: pc.APIKey, BaseURL: pc.Endpoint, Model: pc.Model})
	},
	"anthropic": func(pc config.ProviderConfig) (provider.Provider, error) {
		return anthropicprov.New(anthropicprov.Config{APIKey: pc.APIKey, BaseURL: pc.Endpoint, Model: pc.Model})
	},
}

// defaultBackendModels names the model shown in status output for backends
// that could not be constructed.
var defaultBackendModels = map[string]string{
	"gemini":    googleprov.DefaultModel,
	"groq":      groqprov.DefaultModel,
	"openai":    openaiprov.DefaultModel,
	"anthropic": anthropicprov.DefaultModel,
}

// registerConfiguredBackends registers every configured provider with the
// registry and tracks it in the ledger. A backend whose construction fails
// (missing API key, bad endpoint) is registered without a capability so it
// stays visible in status output but is never selected.
func registerConfiguredBackends(cfg *config.Config, registry *provider.Registry, ledger *provider.Ledger) error {
	// Deterministic registration order keeps log output stable.
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pc := cfg.Providers[name]
		factory, ok := builtinBackendFactories[name]
		if !ok {
			slog.Warn("unknown provider in config, skipping", "provider", name)
			continue
		}

		model := pc.Model
		if model == "" {
			model = defaultBackendModels[name]
		}
		maxTokens := pc.MaxOutputTokens
		if maxTokens <= 0 {
			maxTokens = defaultMaxOutputTokens
		}

		reg := provider.Registration{
			Name:            name,
			Rank:            pc.Priority,
			Model:           model,
			MaxOutputTokens: maxTokens,
		}

		backend, err := factory(pc)
		if err != nil {
			slog.Warn("provider unavailable", "provider", name, "error", err)
		} else {
			reg.Capability = backend
			reg.Model = backend.Model()
		}

		if err := registry.Register(reg); err != nil {
			return dferr.Wrapf(err, dferr.CodeCLISetupFailure, "registering provider %s", name)
		}
		ledger.Track(name, reg.Constructed())
		if reg.Constructed() {
			slog.Info("registered provider", "provider", name, "model", reg.Model, "priority", reg.Rank)
		}
	}

	return nil
}
