package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type RateLimitBucketConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
	BurstSize         int `yaml:"burstSize"`
}

type RateLimitConfig struct {
	Submit RateLimitBucketConfig `yaml:"submit"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	OTLPInsecure bool    `yaml:"otlpInsecure"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

type Config struct {
	Port                  int             `yaml:"port"`
	Env                   string          `yaml:"env"`
	LogLevel              string          `yaml:"logLevel"`
	LogFormat             string          `yaml:"logFormat"`
	WebhookURL            string          `yaml:"webhookUrl"`
	WebhookTimeoutSeconds int             `yaml:"webhookTimeoutSeconds"`
	SessionSecret         string          `yaml:"sessionSecret"`
	SessionTTLHours       int             `yaml:"sessionTtlHours"`
	ClientTTLSeconds      int             `yaml:"clientTtlSeconds"`
	ClientCleanupSeconds  int             `yaml:"clientCleanupSeconds"`
	AllowedOrigins        []string        `yaml:"allowedOrigins"`
	RedisAddr             string          `yaml:"redisAddr"`
	RedisPassword         string          `yaml:"redisPassword"`
	RateLimit             RateLimitConfig `yaml:"rateLimit"`
	Tracing               TracingConfig   `yaml:"tracing"`
}

const devWebhookURL = "http://localhost:5678/webhook/pitch-deck"

func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

// LoadConfigOptional behaves like LoadConfig but falls back to env and
// defaults when filePath is empty or does not exist.
func LoadConfigOptional(filePath string) (*Config, error) {
	if strings.TrimSpace(filePath) == "" {
		return fromEnv(), nil
	}
	cfg, err := LoadConfig(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return fromEnv(), nil
	}
	return cfg, err
}

func fromEnv() *Config {
	var c Config
	c.applyEnv()
	c.applyDefaults()
	return &c
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("PITCHFLOW_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		c.WebhookURL = v
	}
	if v := os.Getenv("WEBHOOK_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WebhookTimeoutSeconds = n
		}
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SessionTTLHours = n
		}
	}
	if v := os.Getenv("CLIENT_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ClientTTLSeconds = n
		}
	}
	if v := os.Getenv("CLIENT_CLEANUP_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ClientCleanupSeconds = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("RATE_LIMIT_SUBMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.Submit.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_SUBMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.Submit.BurstSize = n
		}
	}
	if v := os.Getenv("OTEL_TRACING_ENABLED"); v != "" {
		c.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Tracing.SampleRatio = f
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.WebhookURL == "" && c.IsDev() {
		log.Println("Warning: WebhookURL not set, using local default (dev only)")
		c.WebhookURL = devWebhookURL
	}
	if c.WebhookTimeoutSeconds <= 0 {
		c.WebhookTimeoutSeconds = 30
	}
	if c.SessionSecret == "" && c.IsDev() {
		log.Println("Warning: SessionSecret not set, using an insecure default (dev only)")
		c.SessionSecret = "pitchflow-dev-secret"
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 24
	}
	if c.ClientTTLSeconds <= 0 {
		c.ClientTTLSeconds = 3600
	}
	if c.ClientCleanupSeconds <= 0 {
		c.ClientCleanupSeconds = 60
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "pitchflow"
	}
}

func (c *Config) IsDev() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "" || env == "dev"
}

func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.WebhookURL) == "" {
		errs = append(errs, "webhookUrl is required")
	} else {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, "webhookUrl must be a valid http(s) URL")
		}
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		errs = append(errs, "sessionSecret is required")
	} else if !c.IsDev() && len(c.SessionSecret) < 16 {
		errs = append(errs, "sessionSecret must be at least 16 characters in non-dev")
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, "port must be between 0 and 65535")
	}
	if b := c.RateLimit.Submit; (b.RequestsPerMinute > 0) != (b.BurstSize > 0) {
		errs = append(errs, "rateLimit.submit needs both requestsPerMinute and burstSize")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func parseBool(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "true" || v == "1" || v == "yes" || v == "y" || v == "on"
}
