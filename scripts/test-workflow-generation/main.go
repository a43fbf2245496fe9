// test-workflow-generation sends the workflow design prompt to a model once
// per agent type and reports whether the reply decodes into a usable n8n
// document or would have been replaced by the fallback.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/llm"
	"github.com/agentforge-io/agent-builder/pkg/logging"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/services"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

const webhookPath = "probe-workflow"

type testResult struct {
	agentType    models.AgentType
	success      bool
	reason       string
	nodes        int
	durationMs   int64
	tokensPerSec float64
}

func main() {
	provider := flag.String("provider", envOr("LLM_PROVIDER", llm.ProviderOpenAI), "openai or anthropic")
	endpoint := flag.String("endpoint", os.Getenv("LLM_ENDPOINT"), "model endpoint (OpenAI-compatible providers)")
	model := flag.String("model", os.Getenv("LLM_MODEL"), "model name")
	timeout := flag.Duration("timeout", 120*time.Second, "timeout for each model call")
	temperature := flag.Float64("temperature", 0.2, "sampling temperature")
	flag.Parse()

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, _ := logConfig.Build()
	defer logger.Sync()

	client, err := llm.NewFromConfig(llm.ProviderConfig{
		Provider: *provider,
		Endpoint: *endpoint,
		Model:    *model,
		APIKey:   os.Getenv("LLM_API_KEY"),
		JSONMode: true,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create client: %v\n", err)
		os.Exit(2)
	}
	if client == nil {
		fmt.Fprintln(os.Stderr, "no provider selected; pass -provider")
		os.Exit(2)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Workflow generation probe: %s (%s)\n", client.GetModel(), client.GetEndpoint())
	fmt.Println(strings.Repeat("=", 80))

	generator := templates.NewGenerator("")
	ctx := context.Background()

	passed := 0
	for _, agentType := range models.ValidAgentTypes {
		result := probe(ctx, client, generator, agentType, *temperature, *timeout)
		printResult(result)
		if result.success {
			passed++
		}
	}

	fmt.Printf("\n%d/%d agent types produced a usable document\n", passed, len(models.ValidAgentTypes))
	if passed != len(models.ValidAgentTypes) {
		os.Exit(1)
	}
}

func probe(ctx context.Context, client llm.LLMClient, generator *templates.Generator, agentType models.AgentType, temperature float64, timeout time.Duration) testResult {
	result := testResult{agentType: agentType}

	display, _ := templates.Defaults(agentType)
	prompt, err := services.BuildWorkflowPrompt(models.AgentConfig{
		Name:        display.Name,
		Description: display.Description,
		Type:        agentType,
		Tools:       []string{"web_search"},
	}, webhookPath)
	if err != nil {
		result.reason = err.Error()
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.GenerateResponse(ctx, prompt, services.WorkflowSystemPrompt, temperature)
	result.durationMs = time.Since(start).Milliseconds()
	if err != nil {
		result.reason = fmt.Sprintf("API call failed: %v", err)
		return result
	}
	if result.durationMs > 0 && resp.CompletionTokens > 0 {
		result.tokensPerSec = float64(resp.CompletionTokens) / (float64(result.durationMs) / 1000.0)
	}

	fmt.Printf("\n--- %s raw response (first 600 chars) ---\n", agentType)
	fmt.Println(logging.TruncateString(resp.Content, 600))

	decoded := generator.DecodeModelOutput(resp.Content, webhookPath)
	result.nodes = len(decoded.Document.Nodes)
	if decoded.Fallback {
		result.reason = decoded.Reason
		return result
	}
	result.success = true
	return result
}

func printResult(r testResult) {
	status := "PASS"
	if !r.success {
		status = "FAIL"
	}
	fmt.Printf("[%s] %-10s nodes=%d duration=%dms throughput=%.1f tok/s\n",
		status, r.agentType, r.nodes, r.durationMs, r.tokensPerSec)
	if r.reason != "" {
		fmt.Printf("       reason: %s\n", r.reason)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
