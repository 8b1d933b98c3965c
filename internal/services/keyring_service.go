package services

import (
	"errors"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const keyringServiceName = "docfoundry"

// envVarForProvider maps a provider id to the environment variable that can
// supply its key without touching the system keyring.
var envVarForProvider = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// KeyringService stores provider API keys in the OS keyring, with an
// environment-variable override for headless deployments.
type KeyringService struct {
	open func() (keyring.Keyring, error)
}

func NewKeyringService() *KeyringService {
	return &KeyringService{
		open: func() (keyring.Keyring, error) {
			return keyring.Open(keyring.Config{ServiceName: keyringServiceName})
		},
	}
}

func (s *KeyringService) StoreApiKey(provider, apiKey string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return errors.New("provider is required")
	}
	if apiKey == "" {
		return errors.New("API key is empty")
	}
	ring, err := s.open()
	if err != nil {
		return err
	}
	return ring.Set(keyring.Item{
		Key:   provider,
		Data:  []byte(apiKey),
		Label: provider + " API key",
	})
}

// GetApiKey resolves a provider's key, preferring the environment variable
// over the keyring entry.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "", errors.New("provider is required")
	}
	if envVar, ok := envVarForProvider[provider]; ok {
		if value := os.Getenv(envVar); value != "" {
			return value, nil
		}
	}
	ring, err := s.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(provider)
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return errors.New("provider is required")
	}
	ring, err := s.open()
	if err != nil {
		return err
	}
	return ring.Remove(provider)
}

// ListProviders returns the provider ids with a stored keyring entry.
func (s *KeyringService) ListProviders() ([]string, error) {
	ring, err := s.open()
	if err != nil {
		return nil, err
	}
	return ring.Keys()
}
