package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFromConfig_NoProvider(t *testing.T) {
	client, err := NewFromConfig(ProviderConfig{}, zap.NewNop())

	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewFromConfig_OpenAI(t *testing.T) {
	client, err := NewFromConfig(ProviderConfig{
		Provider: "OpenAI",
		Endpoint: "http://localhost:11434/v1",
		Model:    "llama3",
	}, zap.NewNop())

	require.NoError(t, err)
	require.IsType(t, &Client{}, client)
	assert.Equal(t, "llama3", client.GetModel())
	assert.Equal(t, "http://localhost:11434/v1", client.GetEndpoint())
}

func TestNewFromConfig_OpenAIRequiresEndpoint(t *testing.T) {
	_, err := NewFromConfig(ProviderConfig{Provider: ProviderOpenAI, Model: "gpt-4o-mini"}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")
}

func TestNewFromConfig_Anthropic(t *testing.T) {
	client, err := NewFromConfig(ProviderConfig{
		Provider: ProviderAnthropic,
		Model:    "claude-3-5-haiku-latest",
		APIKey:   "test-key",
	}, zap.NewNop())

	require.NoError(t, err)
	require.IsType(t, &AnthropicClient{}, client)
	assert.Equal(t, "claude-3-5-haiku-latest", client.GetModel())
}

func TestNewFromConfig_AnthropicRequiresKey(t *testing.T) {
	_, err := NewFromConfig(ProviderConfig{Provider: ProviderAnthropic, Model: "claude-3-5-haiku-latest"}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is required")
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	_, err := NewFromConfig(ProviderConfig{Provider: "bedrock"}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown llm provider "bedrock"`)
}
