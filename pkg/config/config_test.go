package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoadConfigOptional_EmptyPath tests loading when file path is empty
func TestLoadConfigOptional_EmptyPath(t *testing.T) {
	t.Setenv("PORT", "9999")

	cfg, err := LoadConfigOptional("")
	if err != nil {
		t.Fatalf("LoadConfigOptional with empty path should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected non-nil config")
	}
	if cfg.Port != 9999 {
		t.Errorf("Expected Port=9999 from env, got %d", cfg.Port)
	}
}

// TestLoadConfigOptional_WhitespacePath tests loading when file path is only whitespace
func TestLoadConfigOptional_WhitespacePath(t *testing.T) {
	cfg, err := LoadConfigOptional("   ")
	if err != nil {
		t.Fatalf("LoadConfigOptional with whitespace path should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected non-nil config")
	}
}

// TestLoadConfigOptional_FileNotExist tests loading when file does not exist
func TestLoadConfigOptional_FileNotExist(t *testing.T) {
	nonExistentPath := filepath.Join(t.TempDir(), "config-does-not-exist.yaml")

	cfg, err := LoadConfigOptional(nonExistentPath)
	if err != nil {
		t.Fatalf("LoadConfigOptional with non-existent file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected non-nil config")
	}
}

// TestLoadConfigOptional_InvalidYAML tests loading when file exists but has invalid YAML
func TestLoadConfigOptional_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
port: 8080
webhookUrl: "http://n8n:5678/webhook/deck"
  invalid indentation here
  more bad yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadConfigOptional(configPath); err == nil {
		t.Fatal("Expected error when loading invalid YAML, got nil")
	}
}

func TestLoadConfigOptional_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "valid.yaml")

	validYAML := `
port: 8081
env: "test"
logLevel: "debug"
webhookUrl: "https://n8n.example.com/webhook/deck"
webhookTimeoutSeconds: 12
sessionSecret: "0123456789abcdef0123"
allowedOrigins: ["https://pitch.example.com"]
redisAddr: "localhost:6379"
rateLimit:
  submit:
    requestsPerMinute: 6
    burstSize: 2
`
	if err := os.WriteFile(configPath, []byte(validYAML), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	cfg, err := LoadConfigOptional(configPath)
	if err != nil {
		t.Fatalf("LoadConfigOptional with valid config should not error: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("Expected Port=8081, got %d", cfg.Port)
	}
	if cfg.Env != "test" || cfg.LogLevel != "debug" {
		t.Errorf("Unexpected env/logLevel: %q/%q", cfg.Env, cfg.LogLevel)
	}
	if cfg.WebhookURL != "https://n8n.example.com/webhook/deck" {
		t.Errorf("Unexpected WebhookURL %q", cfg.WebhookURL)
	}
	if cfg.WebhookTimeoutSeconds != 12 {
		t.Errorf("Expected WebhookTimeoutSeconds=12, got %d", cfg.WebhookTimeoutSeconds)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://pitch.example.com" {
		t.Errorf("Unexpected AllowedOrigins %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimit.Submit.RequestsPerMinute != 6 || cfg.RateLimit.Submit.BurstSize != 2 {
		t.Errorf("Unexpected rate limit %+v", cfg.RateLimit.Submit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestLoadConfigOptional_EnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configYAML := `
port: 8080
webhookUrl: "http://file-webhook/deck"
redisAddr: "localhost:6379"
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	t.Setenv("PORT", "9090")
	t.Setenv("WEBHOOK_URL", "http://env-webhook/deck")
	t.Setenv("REDIS_ADDR", "env-redis:6380")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := LoadConfigOptional(configPath)
	if err != nil {
		t.Fatalf("LoadConfigOptional should not error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Expected Port=9090 from env, got %d", cfg.Port)
	}
	if cfg.WebhookURL != "http://env-webhook/deck" {
		t.Errorf("Expected WebhookURL from env, got %q", cfg.WebhookURL)
	}
	if cfg.RedisAddr != "env-redis:6380" {
		t.Errorf("Expected RedisAddr from env, got %q", cfg.RedisAddr)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("Unexpected AllowedOrigins %v", cfg.AllowedOrigins)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfigOptional("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WebhookTimeoutSeconds != 30 {
		t.Errorf("WebhookTimeoutSeconds = %d", cfg.WebhookTimeoutSeconds)
	}
	if cfg.ClientTTLSeconds != 3600 || cfg.ClientCleanupSeconds != 60 {
		t.Errorf("client ttl/cleanup = %d/%d", cfg.ClientTTLSeconds, cfg.ClientCleanupSeconds)
	}
	if cfg.SessionTTLHours != 24 {
		t.Errorf("SessionTTLHours = %d", cfg.SessionTTLHours)
	}
	if cfg.Tracing.ServiceName != "pitchflow" {
		t.Errorf("Tracing.ServiceName = %q", cfg.Tracing.ServiceName)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:          8080,
			Env:           "prod",
			WebhookURL:    "https://n8n.example.com/webhook/deck",
			SessionSecret: "a-very-long-session-secret",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing webhook", func(c *Config) { c.WebhookURL = "" }, "webhookUrl is required"},
		{"bad webhook scheme", func(c *Config) { c.WebhookURL = "ftp://x/y" }, "valid http(s) URL"},
		{"missing secret", func(c *Config) { c.SessionSecret = "" }, "sessionSecret is required"},
		{"short secret", func(c *Config) { c.SessionSecret = "short" }, "at least 16"},
		{"short secret dev", func(c *Config) { c.Env = "dev"; c.SessionSecret = "short" }, ""},
		{"half rate limit", func(c *Config) { c.RateLimit.Submit.RequestsPerMinute = 5 }, "rateLimit.submit"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "port must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
