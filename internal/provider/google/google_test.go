// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package google_test

import (
	"testing"

	"github.com/draftforge-dev/draftforge/internal/provider"
	"github.com/draftforge-dev/draftforge/internal/provider/google"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*google.Provider)(nil)

func TestGoogleProvider_MissingAPIKey(t *testing.T) {
	_, err := google.New(google.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.True(t, dferr.HasCode(err, dferr.CodeProviderSetupFailure))
}

func TestGoogleProvider_NameAndModel(t *testing.T) {
	p, err := google.New(google.Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
	assert.Equal(t, google.DefaultModel, p.Model())
	assert.NoError(t, p.Close())

	p, err = google.New(google.Config{APIKey: "test-key", Model: "gemini-2.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", p.Model())
}
