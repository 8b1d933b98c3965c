package client

import (
	"encoding/json"
	"fmt"

	"docfoundry/internal/assets"
)

// ProviderInfo describes one supported backend provider from the embedded
// catalog.
type ProviderInfo struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	DefaultModel string   `json:"defaultModel"`
	Models       []string `json:"models"`
}

// LoadCatalog parses the embedded provider catalog.
func LoadCatalog() ([]ProviderInfo, error) {
	var payload struct {
		Providers []ProviderInfo `json:"providers"`
	}
	if err := json.Unmarshal(assets.ModelsData, &payload); err != nil {
		return nil, fmt.Errorf("parse model catalog: %w", err)
	}
	return payload.Providers, nil
}
