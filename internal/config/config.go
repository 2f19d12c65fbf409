/*
Package config loads the process configuration once at startup.
Values come from the environment, optionally seeded from a .env file,
and are validated before the server starts. The returned Config is
never mutated afterwards.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"DietWallah/internal/utility"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultChatURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel   = "gpt-3.5-turbo-0125"
)

// Config holds every tunable of the service.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `validate:"min=1,max=65535"`

	// AppEnv is "development" or "production". Production turns on secure cookies
	// and JSON logs.
	AppEnv string `validate:"oneof=development production test"`

	LogLevel string `validate:"oneof=trace debug info warn error"`

	// SubmitRate caps plan submissions per client IP, per second. Zero disables
	// the limit.
	SubmitRate  float64 `validate:"gte=0"`
	SubmitBurst int     `validate:"min=1"`

	OpenAI OpenAIConfig

	Session SessionConfig
}

// OpenAIConfig describes the chat-completion endpoint.
type OpenAIConfig struct {
	APIKey  string        `validate:"required"`
	URL     string        `validate:"required,url"`
	Model   string        `validate:"required"`
	Timeout time.Duration `validate:"gt=0"`
}

// SessionConfig bounds the in-memory controller registry.
type SessionConfig struct {
	Secret      string        `validate:"required,min=16"`
	TTL         time.Duration `validate:"gt=0"`
	MaxSessions int           `validate:"min=1"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, reading from environment")
	}
	return FromEnv()
}

// FromEnv builds and validates a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:     GetIntEnv("PORT", 8080),
		AppEnv:   GetStringEnv("APP_ENV", "development"),
		LogLevel: GetStringEnv("LOG_LEVEL", "info"),

		SubmitRate:  GetFloatEnv("SUBMIT_RATE_LIMIT", 0.2),
		SubmitBurst: GetIntEnv("SUBMIT_BURST", 3),

		OpenAI: OpenAIConfig{
			// VITE_API_KEY is accepted so existing .env files keep working.
			APIKey:  GetStringEnv("OPENAI_API_KEY", os.Getenv("VITE_API_KEY")),
			URL:     GetStringEnv("OPENAI_API_URL", DefaultChatURL),
			Model:   GetStringEnv("OPENAI_MODEL", DefaultModel),
			Timeout: GetDurationEnv("OPENAI_TIMEOUT", 60*time.Second),
		},
		Session: SessionConfig{
			Secret:      os.Getenv("SESSION_SECRET"),
			TTL:         GetDurationEnv("SESSION_TTL", 30*time.Minute),
			MaxSessions: GetIntEnv("MAX_SESSIONS", 1024),
		},
	}

	if cfg.Session.Secret == "" && !cfg.IsProduction() {
		secret, err := utility.GenerateSecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.Session.Secret = secret
		log.Warn().Msg("SESSION_SECRET not set, using a random secret for this process")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
