package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "agent-builder",
	Short: "Generate n8n agent workflows gated by subscription plan",
	Long: `agent-builder turns a chosen agent type into an importable n8n workflow,
checks it against the caller's subscription plan, and records it per user.

Run "agent-builder serve" to start the HTTP and MCP API.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("agent-builder version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to config.yaml")

	rootCmd.AddCommand(serveCmd, migrateCmd, templateCmd, profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadRuntime loads configuration and builds the process logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath, Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
