// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package secrets

import (
	"errors"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/zalando/go-keyring"
)

// KeyringStore implements Store using the OS keyring via zalando/go-keyring.
// On macOS it uses Keychain, on Linux secret-service (D-Bus), and on Windows
// the Credential Manager.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Save(service, key, value string) error {
	if err := validateRef(service, key); err != nil {
		return err
	}
	if err := keyring.Set(service, key, value); err != nil {
		return dferr.Wrapf(err, dferr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return nil
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if err := validateRef(service, key); err != nil {
		return "", err
	}

	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", dferr.Errorf(dferr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", dferr.Wrapf(err, dferr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := validateRef(service, key); err != nil {
		return err
	}

	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return dferr.Errorf(dferr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return dferr.Wrapf(err, dferr.CodeSecretStoreFailure, "deleting secret %s/%s", service, key)
	}
	return nil
}

func validateRef(service, key string) error {
	if service == "" {
		return dferr.New(dferr.CodeSecretInvalidInput, "secret store: service must not be empty")
	}
	if key == "" {
		return dferr.New(dferr.CodeSecretInvalidInput, "secret store: key must not be empty")
	}
	return nil
}
