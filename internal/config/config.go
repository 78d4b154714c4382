// Package config handles loading and validation of service configuration.
// Supports both development (YAML file / env vars) and production
// (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"gopkg.in/yaml.v3"

	"negobot/internal/policy"
)

// Config holds all service configuration.
// Environment determines whether secrets load from env vars (development)
// or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"` // "development" or "production"
	LogLevel    string `yaml:"log_level"`   // "debug", "info", "warn", "error"

	// Conversation settings
	BotName string `yaml:"bot_name"`

	// Catalog seed file (CSV). Optional; without it the catalog starts
	// empty unless MySQL already holds products.
	CatalogCSV string `yaml:"catalog_csv"`

	// GCP settings (required in production)
	GCPProject string `yaml:"gcp_project"`

	// Secrets. Empty MySQLDSN selects the in-memory catalog and
	// transcript stores; empty OpenAIKey selects the rule-based
	// classifier and hashing embedder.
	MySQLDSN string       `yaml:"mysql_dsn"`
	OpenAI   OpenAIConfig `yaml:"openai"`

	// Seed negotiation policy. Zero value means policy.Default().
	Policy *policy.Policy `yaml:"policy"`
}

// OpenAIConfig configures the model-backed classifier and embedder.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// secrets is the JSON payload stored in Secret Manager for production.
type secrets struct {
	MySQLDSN  string `json:"mysql_dsn"`
	OpenAIKey string `json:"openai_api_key"`
}

// Load reads configuration with the following precedence: CONFIG_FILE
// (YAML, if set), then environment variable overrides, then Secret
// Manager in production. Validates the result.
func Load(ctx context.Context) (*Config, error) {
	seed := policy.Default()
	cfg := &Config{Policy: &seed}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, fmt.Errorf("loading secrets: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables where set.
func (c *Config) applyEnv() {
	setIfEnv(&c.Port, "PORT")
	setIfEnv(&c.Environment, "ENVIRONMENT")
	setIfEnv(&c.LogLevel, "LOG_LEVEL")
	setIfEnv(&c.BotName, "BOT_NAME")
	setIfEnv(&c.CatalogCSV, "CATALOG_CSV")
	setIfEnv(&c.GCPProject, "GCP_PROJECT")
	setIfEnv(&c.MySQLDSN, "MYSQL_DSN")
	setIfEnv(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setIfEnv(&c.OpenAI.Model, "OPENAI_MODEL")
}

func (c *Config) applyDefaults() {
	c.Port = withDefault(c.Port, "8080")
	c.Environment = withDefault(c.Environment, "development")
	c.LogLevel = withDefault(c.LogLevel, "info")
	c.BotName = withDefault(c.BotName, "Kiki")
}

// loadFromSecretManager fetches the secrets payload from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/negobot/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/negobot/versions/latest", c.GCPProject)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	var s secrets
	if err := json.Unmarshal(result.Payload.Data, &s); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	if s.MySQLDSN != "" {
		c.MySQLDSN = s.MySQLDSN
	}
	if s.OpenAIKey != "" {
		c.OpenAI.APIKey = s.OpenAIKey
	}
	return nil
}

// validate checks the fields that cannot be defaulted into sanity.
func (c *Config) validate() error {
	switch c.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("invalid environment %q (want development or production)", c.Environment)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	if c.Environment == "production" && c.MySQLDSN == "" {
		return fmt.Errorf("mysql_dsn is required in production")
	}

	if c.Policy != nil {
		if err := c.Policy.Validate(); err != nil {
			return fmt.Errorf("seed policy: %w", err)
		}
	}
	return nil
}

// SeedPolicy returns the configured policy, or the default when none set.
func (c *Config) SeedPolicy() policy.Policy {
	if c.Policy != nil {
		return *c.Policy
	}
	return policy.Default()
}

// setIfEnv overwrites dst when the environment variable is non-empty.
func setIfEnv(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}
