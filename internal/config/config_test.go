package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"negobot/internal/policy"
)

// clearEnv blanks every variable Load reads so tests are hermetic.
// t.Setenv restores the originals automatically.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "ENVIRONMENT", "LOG_LEVEL", "BOT_NAME",
		"CATALOG_CSV", "GCP_PROJECT", "MYSQL_DSN", "OPENAI_API_KEY", "OPENAI_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.BotName != "Kiki" {
		t.Errorf("BotName = %s, want Kiki", cfg.BotName)
	}
	if cfg.SeedPolicy() != policy.Default() {
		t.Errorf("SeedPolicy = %+v, want defaults", cfg.SeedPolicy())
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BOT_NAME", "Mira")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/negobot")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.BotName != "Mira" {
		t.Errorf("BotName = %s, want Mira", cfg.BotName)
	}
	if cfg.MySQLDSN != "user:pass@tcp(db:3306)/negobot" {
		t.Errorf("MySQLDSN = %s", cfg.MySQLDSN)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("OpenAI.APIKey = %s", cfg.OpenAI.APIKey)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	content := `
port: "9191"
bot_name: Mira
catalog_csv: seed/products.csv
openai:
  model: gpt-4o
policy:
  high_stock_discount_pct: 0.20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "9191" {
		t.Errorf("Port = %s, want 9191", cfg.Port)
	}
	if cfg.CatalogCSV != "seed/products.csv" {
		t.Errorf("CatalogCSV = %s", cfg.CatalogCSV)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %s", cfg.OpenAI.Model)
	}

	// A partial policy block merges onto the defaults.
	pol := cfg.SeedPolicy()
	if pol.HighStockDiscountPct != 0.20 {
		t.Errorf("HighStockDiscountPct = %f, want 0.20", pol.HighStockDiscountPct)
	}
	if pol.LowStockThreshold != 5 || pol.RoundingStep != 1000 {
		t.Errorf("unspecified policy fields lost defaults: %+v", pol)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: \"9191\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %s, want the env override", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantErr string
	}{
		{
			name:    "bad log level",
			setup:   func(t *testing.T) { t.Setenv("LOG_LEVEL", "loud") },
			wantErr: "invalid log_level",
		},
		{
			name:    "bad environment",
			setup:   func(t *testing.T) { t.Setenv("ENVIRONMENT", "staging") },
			wantErr: "invalid environment",
		},
		{
			name:    "production without project",
			setup:   func(t *testing.T) { t.Setenv("ENVIRONMENT", "production") },
			wantErr: "GCP_PROJECT required",
		},
		{
			name: "bad seed policy",
			setup: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "config.yaml")
				if err := os.WriteFile(path, []byte("policy:\n  min_price_floor_ratio: 2\n"), 0o600); err != nil {
					t.Fatal(err)
				}
				t.Setenv("CONFIG_FILE", path)
			},
			wantErr: "min_price_floor_ratio",
		},
		{
			name:    "missing config file",
			setup:   func(t *testing.T) { t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml") },
			wantErr: "reading config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			tt.setup(t)

			_, err := Load(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWithDefault(t *testing.T) {
	if got := withDefault("value", "default"); got != "value" {
		t.Errorf("withDefault(value, default) = %q", got)
	}
	if got := withDefault("", "default"); got != "default" {
		t.Errorf("withDefault('', default) = %q", got)
	}
}
