package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/auth"
	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/database"
	"github.com/agentforge-io/agent-builder/pkg/handlers"
	"github.com/agentforge-io/agent-builder/pkg/llm"
	"github.com/agentforge-io/agent-builder/pkg/mcp"
	"github.com/agentforge-io/agent-builder/pkg/mcp/tools"
	"github.com/agentforge-io/agent-builder/pkg/middleware"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
	"github.com/agentforge-io/agent-builder/pkg/services"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

const rateLimiterCleanupInterval = 5 * time.Minute

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and MCP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_enabled", cfg.Auth.Enabled()),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("n8n_base_url", cfg.N8N.BaseURL))

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrations {
		if err := database.RunMigrationsWithPool(db.Pool, migrationsPath, logger.Named("migrations")); err != nil {
			return err
		}
	}

	auditor := audit.NewSecurityAuditor(logger)

	workflowRepo := repositories.NewWorkflowRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	usageLogRepo := repositories.NewUsageLogRepository(db)

	llmClient, err := llm.NewFromConfig(llm.ProviderConfig{
		Provider: cfg.LLM.Provider,
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		JSONMode: cfg.LLM.JSONMode,
	}, logger.Named("llm"))
	if err != nil {
		return err
	}
	if llmClient == nil {
		logger.Info("No LLM provider configured; generation will use the fallback template")
	}
	breaker := llm.NewCircuitBreaker(llm.CircuitBreakerConfig{
		Threshold:  cfg.LLM.CircuitThreshold,
		ResetAfter: time.Duration(cfg.LLM.CircuitResetSeconds) * time.Second,
	})

	generator := templates.NewGenerator(cfg.N8N.InstanceID)
	entitlement := services.NewEntitlementService(profileRepo, auditor, logger)
	workflowService := services.NewWorkflowService(workflowRepo, profileRepo, usageLogRepo,
		entitlement, generator, &cfg.N8N, auditor, logger)
	aiWorkflowService := services.NewAIWorkflowService(workflowRepo, profileRepo, usageLogRepo,
		entitlement, generator, llmClient, breaker, &cfg.LLM, &cfg.N8N, auditor, logger)
	usageService := services.NewUsageService(profileRepo, workflowRepo, usageLogRepo, logger)
	billingService := services.NewBillingService(profileRepo, usageLogRepo, &cfg.Billing, auditor, logger)

	metrics := middleware.NewMetrics()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.GenerateRPS, cfg.RateLimit.GenerateBurst, metrics, logger)
	limiter.StartCleanup(ctx, rateLimiterCleanupInterval)

	mcpServer := mcp.NewServer("agent-builder", cfg.Version, mcp.NewToolCallLogger(logger).Hooks(), logger)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	tools.RegisterPlanTools(mcpServer.MCP())
	tools.RegisterTemplateTools(mcpServer.MCP(), &tools.TemplateToolDeps{
		Previewer: workflowService,
		Logger:    logger.Named("mcp-tools"),
	})

	public := []routeRegistrar{
		handlers.NewHealthHandler(cfg, db, logger),
		handlers.NewBillingHandler(billingService, logger),
		routeFunc(func(mux *http.ServeMux) { mux.Handle("GET /metrics", metrics.Handler()) }),
	}
	protected := []routeRegistrar{
		handlers.NewWorkflowHandler(workflowService, metrics, auditor, logger),
		handlers.NewAIWorkflowHandler(aiWorkflowService, limiter, metrics, auditor, logger),
		handlers.NewTemplateHandler(workflowService, logger),
		handlers.NewPlanHandler(logger),
		handlers.NewUsageHandler(usageService, auditor, logger),
		handlers.NewMCPHandler(mcpServer, logger),
	}

	var authenticate func(http.Handler) http.Handler
	if cfg.Auth.Enabled() {
		jwksClient, err := auth.NewJWKSClient(ctx, &auth.JWKSConfig{JWKSEndpoints: cfg.Auth.JWKSEndpoints})
		if err != nil {
			return fmt.Errorf("failed to initialize JWKS client: %w", err)
		}
		defer jwksClient.Close()

		authenticate = auth.NewMiddleware(auth.NewAuthService(jwksClient, logger), cfg.Auth.RequireToken, logger).Authenticate
	}

	var handler http.Handler = newRouter(public, protected, authenticate)
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.ClientAddress(cfg.TrustProxyHeaders)(handler)
	handler = metrics.Instrument(handler)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting agent-builder", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// routeRegistrar mounts a group of routes on a mux.
type routeRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// routeFunc adapts a plain function to routeRegistrar.
type routeFunc func(mux *http.ServeMux)

func (f routeFunc) RegisterRoutes(mux *http.ServeMux) { f(mux) }

// newRouter mounts public routes directly and every other route behind
// authenticate. Public routes are the ones whose callers never hold a user
// token: probes, the metrics scraper and the payment provider, which signs
// its webhook instead. authenticate may be nil when auth is disabled.
func newRouter(public, protected []routeRegistrar, authenticate func(http.Handler) http.Handler) *http.ServeMux {
	api := http.NewServeMux()
	for _, r := range protected {
		r.RegisterRoutes(api)
	}

	root := http.NewServeMux()
	for _, r := range public {
		r.RegisterRoutes(root)
	}

	var apiHandler http.Handler = api
	if authenticate != nil {
		apiHandler = authenticate(api)
	}
	root.Handle("/", apiHandler)
	return root
}
