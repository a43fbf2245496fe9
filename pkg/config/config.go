package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/agentforge-io/agent-builder/pkg/plans"
)

// DefaultConfigPath is read when no explicit path is given.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for the agent builder.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database password, API keys, webhook secret) only come from the environment.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TrustProxyHeaders takes the client address from X-Forwarded-For,
	// X-Real-IP or True-Client-IP. Enable only behind a proxy that sets them;
	// otherwise every caller behind the proxy shares one rate limit bucket.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"TRUST_PROXY_HEADERS" env-default:"false"`

	// ShutdownTimeoutSeconds bounds graceful shutdown of the HTTP server.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"15"`

	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	N8N       N8NConfig       `yaml:"n8n"`
	Billing   BillingConfig   `yaml:"billing"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// AuthConfig controls caller verification.
type AuthConfig struct {
	// RequireToken rejects requests without a valid bearer token.
	// When false, tokens are still verified if present.
	RequireToken bool `yaml:"require_token" env:"AUTH_REQUIRE_TOKEN" env-default:"false"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	// Format: "issuer1=url1,issuer2=url2"
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr (not from config file).
	JWKSEndpoints map[string]string `yaml:"-"`
}

// Enabled reports whether any issuer is configured for token verification.
func (a *AuthConfig) Enabled() bool {
	return len(a.JWKSEndpoints) > 0
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"agent_builder"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"agent_builder"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MaxIdleConns   int32  `yaml:"max_idle_conns" env:"PGMAX_IDLE_CONNS" env-default:"5"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// LLMConfig selects the model provider used by AI-assisted generation.
// An empty Provider disables the model and every generation uses the fallback template.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:""`
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:""`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	JSONMode    bool    `yaml:"json_mode" env:"LLM_JSON_MODE" env-default:"true"`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`

	TimeoutSeconds      int `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`
	CircuitThreshold    int `yaml:"circuit_threshold" env:"LLM_CIRCUIT_THRESHOLD" env-default:"3"`
	CircuitResetSeconds int `yaml:"circuit_reset_seconds" env:"LLM_CIRCUIT_RESET_SECONDS" env-default:"60"`
}

// N8NConfig describes the automation engine that imports generated workflows.
type N8NConfig struct {
	// BaseURL prefixes webhook URLs: <base_url>/webhook/<workflow id>.
	BaseURL    string `yaml:"base_url" env:"N8N_BASE_URL" env-default:"http://localhost:5678"`
	InstanceID string `yaml:"instance_id" env:"N8N_INSTANCE_ID" env-default:"agent-builder"`
}

// BillingConfig holds payment webhook settings.
type BillingConfig struct {
	SecretKey string `yaml:"-" env:"BILLING_SECRET_KEY"` // Secret - not in YAML

	// PlanCodesStr maps payment plan codes to roles.
	// Format: "PLN_abc=pro,PLN_def=business"
	PlanCodesStr string `yaml:"plan_codes" env:"BILLING_PLAN_CODES" env-default:""`

	// PlanCodes is the parsed map from PlanCodesStr (not from config file).
	PlanCodes map[string]string `yaml:"-"`
}

// RateLimitConfig throttles AI generation per caller.
// GenerateRPS must be positive; a zero rate would reject every caller once
// the burst is spent.
type RateLimitConfig struct {
	GenerateRPS   float64 `yaml:"generate_rps" env:"RATE_LIMIT_GENERATE_RPS" env-default:"0.5"`
	GenerateBurst int     `yaml:"generate_burst" env:"RATE_LIMIT_GENERATE_BURST" env-default:"3"`
}

// Load reads configuration from path with environment variable overrides.
// A missing file is not an error: defaults and the environment are used.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Database.Host = ResolveHostForDocker(cfg.Database.Host)
	cfg.LLM.Endpoint = ResolveURLForDocker(cfg.LLM.Endpoint)

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	c.Auth.JWKSEndpoints = parseKeyValuePairs(c.Auth.JWKSEndpointsStr)
	c.Billing.PlanCodes = parseKeyValuePairs(c.Billing.PlanCodesStr)

	for code, role := range c.Billing.PlanCodes {
		if !plans.IsValidRole(role) {
			return fmt.Errorf("billing plan code %q maps to unknown role %q", code, role)
		}
	}
	return nil
}

func (c *Config) validate() error {
	c.N8N.BaseURL = strings.TrimSuffix(c.N8N.BaseURL, "/")
	if c.N8N.BaseURL == "" {
		return fmt.Errorf("n8n.base_url is required")
	}
	if c.Auth.RequireToken && !c.Auth.Enabled() {
		return fmt.Errorf("auth.require_token needs at least one jwks endpoint")
	}
	if c.RateLimit.GenerateRPS <= 0 {
		return fmt.Errorf("rate_limit.generate_rps must be positive")
	}
	if c.RateLimit.GenerateBurst < 1 {
		return fmt.Errorf("rate_limit.generate_burst must be at least 1")
	}
	return nil
}

// parseKeyValuePairs parses "k1=v1,k2=v2" into a map.
// Values may contain '=' (URLs with query strings); malformed pairs are skipped.
func parseKeyValuePairs(value string) map[string]string {
	result := make(map[string]string)
	if value == "" {
		return result
	}

	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if ok && k != "" && v != "" {
			result[k] = v
		}
	}
	return result
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// WebhookURL returns the n8n webhook URL for a workflow id.
func (n *N8NConfig) WebhookURL(id string) string {
	return n.BaseURL + "/webhook/" + id
}
