package config

import (
	"log"
	"os"

	"github.com/transferai/agreement-proxy/cache"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Assist     AssistFetcher `yaml:"assist"`
	Cache      cache.Config  `yaml:"cache"`
	TokensFile string        `yaml:"tokens_file"`
	AuthTokens *AuthTokens

	OverrideAssistURL string `yaml:"override_assist_url"`
}

// DefaultConfig returns a configuration with all defaults applied and no
// auth credential
func DefaultConfig() Config {
	return Config{
		Assist:     DefaultAssistFetcher(),
		Cache:      cache.DefaultConfig(),
		AuthTokens: &AuthTokens{},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Config{
		Assist: DefaultAssistFetcher(),
		Cache:  cache.DefaultConfig(),
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	authTokens, err := LoadAuthTokens(config.TokensFile)
	if err != nil {
		log.Printf("Warning: Error loading auth tokens from %s: %v. Authorized endpoints (IGETC) will be skipped.",
			config.TokensFile, err)
		config.AuthTokens = &AuthTokens{}
	} else {
		config.AuthTokens = authTokens
	}

	return &config, nil
}
