package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FallbackPassword is used when no password is present in the secrets file.
// It is public knowledge and unsafe for anything beyond local development.
const FallbackPassword = "default_password_change_me"

// PasswordKey is the secrets file entry holding the shared password.
const PasswordKey = "password"

// ErrSecretNotFound is returned when the secrets file has no such key.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore reads values from a local YAML secrets file. The file is read on
// every lookup so edits take effect without a restart.
type SecretStore struct {
	path string
}

// NewSecretStore creates a store backed by the file at path.
func NewSecretStore(path string) *SecretStore {
	return &SecretStore{path: path}
}

// Path returns the secrets file location.
func (s *SecretStore) Path() string {
	return s.path
}

// Get returns the secret stored under key.
func (s *SecretStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}

	var secrets map[string]string
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}

	value, ok := secrets[key]
	if !ok || value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}
