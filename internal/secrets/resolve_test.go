// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package secrets_test

import (
	"testing"

	"github.com/draftforge-dev/draftforge/internal/secrets"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsKeyringURI(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"valid URI", "keyring://draftforge/gemini-api-key", true},
		{"valid URI with dashes", "keyring://my-svc/my-key", true},
		{"env var reference", "${GEMINI_API_KEY}", false},
		{"literal value", "sk-abc123", false},
		{"empty string", "", false},
		{"just scheme", "keyring://", true},
		{"other scheme", "vault://secret/key", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secrets.IsKeyringURI(tt.value))
		})
	}
}

func TestParseKeyringURI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		wantService string
		wantKey     string
		wantErr     bool
	}{
		{"valid", "keyring://draftforge/api-key", "draftforge", "api-key", false},
		{"dashes", "keyring://my-service/my-key-name", "my-service", "my-key-name", false},
		{"slashes in key", "keyring://draftforge/path/to/key", "draftforge", "path/to/key", false},
		{"not a keyring URI", "vault://secret/key", "", "", true},
		{"missing key", "keyring://draftforge/", "", "", true},
		{"missing service", "keyring:///key", "", "", true},
		{"missing both", "keyring://", "", "", true},
		{"no path", "keyring://draftforge", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, key, err := secrets.ParseKeyringURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dferr.HasCode(err, dferr.CodeSecretInvalidInput))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantService, svc)
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}

func TestResolveKeyringURI(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Save("draftforge", "test-key", "resolved-secret"))

	t.Run("resolves keyring URI", func(t *testing.T) {
		val, err := secrets.ResolveKeyringURI(ks, "keyring://draftforge/test-key")
		require.NoError(t, err)
		assert.Equal(t, "resolved-secret", val)
	})

	t.Run("passes through non-keyring values", func(t *testing.T) {
		val, err := secrets.ResolveKeyringURI(ks, "literal-value")
		require.NoError(t, err)
		assert.Equal(t, "literal-value", val)
	})

	t.Run("error on missing secret", func(t *testing.T) {
		_, err := secrets.ResolveKeyringURI(ks, "keyring://draftforge/nonexistent")
		require.Error(t, err)
		assert.True(t, dferr.HasCode(err, dferr.CodeSecretResolveFailure))
	})

	t.Run("error on malformed URI", func(t *testing.T) {
		_, err := secrets.ResolveKeyringURI(ks, "keyring://bad")
		require.Error(t, err)
	})
}

func TestResolveViperSecrets(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Save("draftforge", "gemini-api-key", "gm-secret"))
	require.NoError(t, ks.Save("draftforge", "groq-api-key", "gq-secret"))

	v := viper.New()
	v.Set("providers.gemini.api_key", "keyring://draftforge/gemini-api-key")
	v.Set("providers.groq.api_key", "keyring://draftforge/groq-api-key")
	v.Set("server.listen", "127.0.0.1:18650")
	v.Set("providers.gemini.model", "gemini-2.0-flash")

	secrets.ResolveViperSecrets(v, ks)

	assert.Equal(t, "gm-secret", v.GetString("providers.gemini.api_key"))
	assert.Equal(t, "gq-secret", v.GetString("providers.groq.api_key"))
	assert.Equal(t, "127.0.0.1:18650", v.GetString("server.listen"))
	assert.Equal(t, "gemini-2.0-flash", v.GetString("providers.gemini.model"))
}

func TestResolveViperSecrets_MissingSecretKeepsOriginal(t *testing.T) {
	ks := secrets.NewKeyringStore()

	v := viper.New()
	v.Set("providers.gemini.api_key", "keyring://draftforge/nonexistent-key")

	secrets.ResolveViperSecrets(v, ks)

	// The unresolved URI stays so provider construction can report it.
	assert.Equal(t, "keyring://draftforge/nonexistent-key", v.GetString("providers.gemini.api_key"))
}
