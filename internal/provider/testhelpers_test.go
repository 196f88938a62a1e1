// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package provider_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/draftforge-dev/draftforge/internal/provider"
)

// fakeBackend is a scriptable provider.Provider for tests. Outcomes are
// consumed in order; when the script is exhausted the last outcome repeats.
type fakeBackend struct {
	name  string
	model string

	mu       sync.Mutex
	script   []outcome
	requests []provider.Request
	delay    time.Duration
}

type outcome struct {
	text string
	err  error
}

func newFakeBackend(name, model string) *fakeBackend {
	return &fakeBackend{name: name, model: model}
}

func (f *fakeBackend) succeedWith(text string) *fakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, outcome{text: text})
	return f
}

func (f *fakeBackend) failWith(msg string) *fakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, outcome{err: errors.New(msg)})
	return f
}

func (f *fakeBackend) Name() string  { return f.name }
func (f *fakeBackend) Model() string { return f.model }
func (f *fakeBackend) Close() error  { return nil }

func (f *fakeBackend) Generate(ctx context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	var out outcome
	if len(f.script) > 0 {
		out = f.script[0]
		if len(f.script) > 1 {
			f.script = f.script[1:]
		}
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return out.text, out.err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeBackend) lastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return provider.Request{}
	}
	return f.requests[len(f.requests)-1]
}

// fakeClock is a mutable time source for ledger tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
