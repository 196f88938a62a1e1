// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package provider

import (
	"cmp"
	"slices"
	"sync"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

// Registration is the immutable static description of one backend, created
// at startup and never mutated afterwards. Capability is nil when the
// backend could not be constructed (missing credentials, SDK init failure);
// such providers are registered anyway so the ledger tracks them as
// permanently unavailable until an explicit reset.
type Registration struct {
	Name            string
	Rank            int // lower is preferred
	Model           string
	MaxOutputTokens int
	Capability      Provider
}

// Constructed reports whether the backend was successfully built.
func (r Registration) Constructed() bool {
	return r.Capability != nil
}

// Registry owns the static provider descriptions. It is written once during
// wiring and read-only afterwards; the lock exists for the registration
// phase only.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
	order   []Registration // sorted by (rank, name)
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds a backend description. Returns an error on an empty name,
// non-positive rank or token cap, or a duplicate name.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return dferr.New(dferr.CodeConfigValidateInvalidValue, "provider name is required")
	}
	if reg.Rank <= 0 {
		return dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"provider %q: priority rank must be positive, got %d", reg.Name, reg.Rank)
	}
	if reg.MaxOutputTokens <= 0 {
		return dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"provider %q: max output tokens must be positive, got %d", reg.Name, reg.MaxOutputTokens)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[reg.Name]; ok {
		return dferr.New(dferr.CodeProviderDuplicate,
			"provider already registered: "+reg.Name, dferr.FieldProvider(reg.Name))
	}

	r.entries[reg.Name] = reg
	r.order = append(r.order, reg)
	slices.SortFunc(r.order, func(a, b Registration) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return nil
}

// Get retrieves a registration by name.
func (r *Registry) Get(name string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[name]
	if !ok {
		return Registration{}, dferr.New(dferr.CodeProviderNotFound,
			"provider not found: "+name, dferr.FieldProvider(name))
	}
	return reg, nil
}

// All returns the registrations ordered by ascending rank (name breaks
// ties for determinism). The returned slice is shared; callers must not
// mutate it.
func (r *Registry) All() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.order
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close shuts down every constructed backend.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, reg := range r.order {
		if !reg.Constructed() {
			continue
		}
		if err := reg.Capability.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return dferr.Join(errs...)
	}
	return nil
}
