package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "langra"

// Credentials stores provider API keys in the OS keyring
type Credentials struct {
	service string
}

// NewCredentials returns the keyring-backed credential store
func NewCredentials() *Credentials {
	return &Credentials{service: keyringService}
}

func keyringUser(provider string) string {
	return provider + "_api_key"
}

// APIKey returns the stored key for provider, or "" when none is stored
func (c *Credentials) APIKey(provider string) (string, error) {
	key, err := keyring.Get(c.service, keyringUser(provider))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s key from keyring: %w", provider, err)
	}
	return key, nil
}

// SetAPIKey stores key for provider; an empty key deletes it
func (c *Credentials) SetAPIKey(provider, key string) error {
	if key == "" {
		return c.deleteKey(provider)
	}
	if err := keyring.Set(c.service, keyringUser(provider), key); err != nil {
		return fmt.Errorf("failed to store %s key in keyring: %w", provider, err)
	}
	return nil
}

// Clear removes every stored API key
func (c *Credentials) Clear() error {
	var errs []error
	for _, p := range []string{ProviderOpenAI, ProviderAzure} {
		if err := c.deleteKey(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Credentials) deleteKey(provider string) error {
	err := keyring.Delete(c.service, keyringUser(provider))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s key from keyring: %w", provider, err)
	}
	return nil
}

// HasCredentials reports whether the configured provider can be called:
// azure needs an endpoint and a key, openai needs a key.
func (c *Credentials) HasCredentials(t TranslationConfig) bool {
	key, err := c.APIKey(t.Provider)
	if err != nil || key == "" {
		return false
	}
	if t.Provider == ProviderAzure && t.AzureEndpoint == "" {
		return false
	}
	return true
}
