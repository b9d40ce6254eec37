// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App           AppConfig           `koanf:"app"`
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	Redis         RedisConfig         `koanf:"redis"`
	JWT           JWTConfig           `koanf:"jwt"`
	Quota         QuotaConfig         `koanf:"quota"`
	Knowledge     KnowledgeConfig     `koanf:"knowledge"`
	Completion    CompletionConfig    `koanf:"completion"`
	LoginThrottle LoginThrottleConfig `koanf:"login_throttle"`
	Admin         AdminConfig         `koanf:"admin"`
	CORS          CORSConfig          `koanf:"cors"`
	Log           LogConfig           `koanf:"log"`
	Otel          OtelConfig          `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// RedisConfig backs the knowledge cache and login throttle. CommandTimeout
// bounds every command so a slow server falls back to the database quickly.
type RedisConfig struct {
	URL            string        `koanf:"url"`
	PoolSize       int           `koanf:"pool_size"`
	MinIdleConns   int           `koanf:"min_idle_conns"`
	CommandTimeout time.Duration `koanf:"command_timeout"`
}

type JWTConfig struct {
	Secret   string `koanf:"secret"`
	Issuer   string `koanf:"issuer"`
	Audience string `koanf:"audience"`
}

// QuotaConfig selects the accounting window for usage counters. Valid
// periods are "monthly" and "daily".
type QuotaConfig struct {
	Period string `koanf:"period"`
}

type KnowledgeConfig struct {
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

type CompletionConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	SystemPrompt      string        `koanf:"system_prompt"`
}

type LoginThrottleConfig struct {
	Requests int `koanf:"requests"`
	Burst    int `koanf:"burst"`
}

type AdminConfig struct {
	APIKey string `koanf:"api_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

const minSecretLength = 32

const DefaultSystemPrompt = "You are a customer support assistant for an online store.\n" +
	"Only answer using the provided business information.\n" +
	"If the answer is not available, politely direct the user to human support."

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Support Gateway",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "60s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":       10,
		"redis.min_idle_conns":  5,
		"redis.command_timeout": "250ms",

		"jwt.issuer":   "support-gateway",
		"jwt.audience": "support-gateway-api",

		"quota.period": "monthly",

		"knowledge.cache_ttl": "10m",

		"completion.base_url":            "https://api.openai.com/v1",
		"completion.model":               "gpt-4o-mini",
		"completion.timeout":             "30s",
		"completion.requests_per_second": 20.0,
		"completion.burst":               40,
		"completion.system_prompt":       DefaultSystemPrompt,

		"login_throttle.requests": 10,
		"login_throttle.burst":    5,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Admin-Key",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "support-gateway",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                    "database.url",
	"DATABASE_AUTO_MIGRATE":           "database.auto_migrate",
	"REDIS_URL":                       "redis.url",
	"REDIS_COMMAND_TIMEOUT":           "redis.command_timeout",
	"ENVIRONMENT":                     "app.environment",
	"HOST":                            "server.host",
	"PORT":                            "server.port",
	"LOG_LEVEL":                       "log.level",
	"LOG_FORMAT":                      "log.format",
	"JWT_SECRET":                      "jwt.secret",
	"JWT_ISSUER":                      "jwt.issuer",
	"JWT_AUDIENCE":                    "jwt.audience",
	"QUOTA_PERIOD":                    "quota.period",
	"KNOWLEDGE_CACHE_TTL":             "knowledge.cache_ttl",
	"COMPLETION_BASE_URL":             "completion.base_url",
	"COMPLETION_API_KEY":              "completion.api_key",
	"OPENAI_API_KEY":                  "completion.api_key",
	"COMPLETION_MODEL":                "completion.model",
	"COMPLETION_TIMEOUT":              "completion.timeout",
	"COMPLETION_REQUESTS_PER_SECOND":  "completion.requests_per_second",
	"COMPLETION_BURST":                "completion.burst",
	"LOGIN_THROTTLE_REQUESTS":         "login_throttle.requests",
	"LOGIN_THROTTLE_BURST":            "login_throttle.burst",
	"ADMIN_API_KEY":                   "admin.api_key",
	"OTEL_ENDPOINT":                   "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT":     "otel.endpoint",
	"OTEL_SERVICE_NAME":               "otel.service_name",
	"OTEL_ENABLED":                    "otel.enabled",
	"OTEL_INSECURE":                   "otel.insecure",
	"OTEL_SAMPLE_RATE":                "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if len(c.JWT.Secret) < minSecretLength {
		return fmt.Errorf(
			"JWT_SECRET is required and must be at least %d bytes",
			minSecretLength,
		)
	}

	switch strings.ToLower(c.Quota.Period) {
	case "monthly", "daily":
	default:
		return fmt.Errorf("quota.period must be monthly or daily, got %q", c.Quota.Period)
	}

	if c.Completion.Timeout <= 0 {
		return fmt.Errorf("completion.timeout must be positive")
	}

	if c.Completion.RequestsPerSecond <= 0 || c.Completion.Burst <= 0 {
		return fmt.Errorf("completion rate limit must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if c.Completion.APIKey == "" {
			return fmt.Errorf("COMPLETION_API_KEY is required in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
