// Package config loads service configuration from DOCFOUNDRY_* environment
// variables with sensible defaults.
package config

import (
	"github.com/spf13/viper"

	"docfoundry/internal/chunker"
)

type Config struct {
	Addr string `mapstructure:"addr"`

	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`

	Encoding    string `mapstructure:"encoding"`
	TokenBudget int    `mapstructure:"token_budget"`
	Overlap     int    `mapstructure:"overlap"`
	Concurrency int    `mapstructure:"concurrency"`
	CacheSize   int    `mapstructure:"cache_size"`

	// DatabasePath empty means an in-memory store scoped to the process.
	DatabasePath string `mapstructure:"database_path"`

	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	GitHubRedirectURI  string `mapstructure:"github_redirect_uri"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCFOUNDRY")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8000")
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4o")
	v.SetDefault("encoding", "cl100k_base")
	v.SetDefault("token_budget", chunker.DefaultTokenBudget)
	v.SetDefault("overlap", chunker.DefaultOverlap)
	v.SetDefault("concurrency", 4)
	v.SetDefault("cache_size", 256)
	v.SetDefault("database_path", "")
	v.SetDefault("github_redirect_uri", "http://localhost:8000/api/auth/github/callback")

	// AutomaticEnv alone does not surface env values through Unmarshal;
	// touching each key binds it explicitly.
	for _, key := range []string{
		"addr", "provider", "model", "encoding", "token_budget", "overlap",
		"concurrency", "cache_size", "database_path",
		"github_client_id", "github_client_secret", "github_redirect_uri",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
