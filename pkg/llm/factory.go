package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Supported provider names for ProviderConfig.Provider.
const (
	ProviderNone      = ""
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ProviderConfig selects and configures the completion provider.
type ProviderConfig struct {
	Provider string
	Endpoint string
	Model    string
	APIKey   string
	JSONMode bool
}

// NewFromConfig builds the client for the configured provider.
// It returns (nil, nil) when no provider is configured; callers treat a nil
// client as "always use the fallback template".
func NewFromConfig(cfg ProviderConfig, logger *zap.Logger) (LLMClient, error) {
	clientCfg := &Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		JSONMode: cfg.JSONMode,
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderNone:
		return nil, nil
	case ProviderOpenAI:
		client, err := NewClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil
	case ProviderAnthropic:
		client, err := NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
